// Package schemaorg builds the schema.org JobPosting data embedded in job pages.
package schemaorg

import (
	"encoding/json"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/maniaxatwork/jobs-server/internal/htmltext"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

// Context is the JSON-LD context of every graph
const Context = "https://schema.org"

// DateLayout renders dates with a numeric UTC offset
const DateLayout = "2006-01-02T15:04:05-07:00"

// Posting holds the inputs of a JobPosting besides the job itself
type Posting struct {
	// URL of the job's detail view
	URL string
	// Author is the back-end user who wrote the job; nil drops the organization
	Author *jobs.User
	// Logo is the organization logo file
	Logo *jobs.File
	// Image is the teaser image file when it is shown
	Image *jobs.File
	// Origin is scheme and host of the site, used to make file paths absolute
	Origin string
	// Location is the time zone dates are rendered in
	Location *time.Location
}

// JobPosting returns the schema.org JobPosting of job
func JobPosting(job *jobs.Job, p Posting) map[string]any {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}

	data := map[string]any{
		"@type":      "JobPosting",
		"title":      htmltext.ToPlain(job.Headline),
		"identifier": "#/schema/news/" + strconv.FormatInt(job.ID, 10),
		"url":        p.URL,
		"datePosted": job.Date.In(loc).Format(DateLayout),
	}
	if job.EmploymentType != "" {
		data["employmentType"] = job.EmploymentType
	}
	if job.Teaser != "" {
		data["description"] = htmltext.ToPlain(job.Teaser)
	}
	if !job.EndDate.IsZero() {
		data["validThrough"] = job.EndDate.In(loc).Format(DateLayout)
	}

	if p.Author != nil {
		org := map[string]any{
			"@type":  "Organization",
			"name":   job.Organization,
			"sameAs": job.OrganizationURL,
		}
		if p.Logo != nil {
			org["logo"] = fileURL(p.Origin, p.Logo)
		}
		data["hiringOrganization"] = org
	}

	if p.Image != nil {
		data["image"] = map[string]any{
			"@type":      "ImageObject",
			"contentUrl": fileURL(p.Origin, p.Image),
		}
	}
	return data
}

func fileURL(origin string, f *jobs.File) string {
	return strings.TrimSuffix(origin, "/") + "/" + strings.TrimPrefix(f.Path, "/")
}

// Graph wraps items into a JSON-LD document
func Graph(items ...map[string]any) map[string]any {
	graph := make([]map[string]any, 0, len(items))
	for _, item := range items {
		if item != nil {
			graph = append(graph, item)
		}
	}
	return map[string]any{
		"@context": Context,
		"@graph":   graph,
	}
}

// Script renders items as a JSON-LD script element. The JSON encoder escapes
// <, > and & so the payload cannot close the element early.
func Script(items ...map[string]any) (template.HTML, error) {
	if len(items) == 0 {
		return "", nil
	}
	payload, err := json.Marshal(Graph(items...))
	if err != nil {
		return "", fmt.Errorf("failed to encode JSON-LD: %w", err)
	}
	//nolint:gosec // payload is JSON with HTML special characters escaped
	return template.HTML(`<script type="application/ld+json">` + string(payload) + `</script>`), nil
}
