// Package inserttags resolves the jobs insert tags, e.g. {{jobs_url::12}},
// in text produced by other front-end components.
package inserttags

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/maniaxatwork/jobs-server/internal/jobs"
	"github.com/maniaxatwork/jobs-server/internal/logger"
	"github.com/maniaxatwork/jobs-server/internal/service"
	"github.com/maniaxatwork/jobs-server/internal/urls"
)

// Supported tag names
const (
	TagJobs       = "jobs"
	TagJobsOpen   = "jobs_open"
	TagJobsURL    = "jobs_url"
	TagJobsTitle  = "jobs_title"
	TagJobsTeaser = "jobs_teaser"
)

const (
	argAbsolute = "absolute"
	argBlank    = "blank"
	emptyURL    = "./"
	blankAttrs  = ` target="_blank" rel="noreferrer noopener"`
)

// SupportedTags lists the tag names handled by Resolver
var SupportedTags = []string{TagJobs, TagJobsOpen, TagJobsURL, TagJobsTitle, TagJobsTeaser}

var tagPattern = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

var (
	attrEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&#039;")
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
)

// Resolver replaces jobs insert tags
type Resolver struct {
	store    service.JobsService
	settings urls.Settings
	current  *url.URL
}

// NewResolver returns a Resolver generating URLs with settings
func NewResolver(store service.JobsService, settings urls.Settings) *Resolver {
	return &Resolver{store: store, settings: settings}
}

// WithURL returns a copy of r resolving relative to the page current
func (r *Resolver) WithURL(current *url.URL) *Resolver {
	c := *r
	c.current = current
	return &c
}

// Supports reports whether name is a jobs insert tag. Names are case insensitive.
func Supports(name string) bool {
	return slices.Contains(SupportedTags, strings.ToLower(name))
}

// Resolve replaces one tag of the form "name::idOrAlias[::arg...]".
// flags are the pipe separated flags that followed the tag; "absolute" and
// "blank" may be given as argument or flag. The boolean is false for tags
// that are not jobs tags. Unknown jobs resolve to the empty string.
func (r *Resolver) Resolve(ctx context.Context, tag string, flags []string) (string, bool, error) {
	elements := strings.Split(tag, "::")
	key := strings.ToLower(elements[0])
	if !Supports(key) {
		return "", false, nil
	}
	if len(elements) < 2 || elements[1] == "" {
		return "", true, nil
	}

	args := append(slices.Clone(flags), elements[2:]...)
	out, err := r.replace(ctx, key, elements[1], args)
	return out, true, err
}

func (r *Resolver) replace(ctx context.Context, key, idOrAlias string, args []string) (string, error) {
	job, err := r.store.FindJobByIDOrAlias(ctx, idOrAlias)
	if errors.Is(err, service.ErrJobNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to find job %q: %w", idOrAlias, err)
	}

	absolute := slices.Contains(args, argAbsolute)
	var target string
	if slices.Contains(args, argBlank) {
		target = blankAttrs
	}

	switch key {
	case TagJobs:
		href, err := r.jobURL(ctx, job, absolute)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`<a href="%s" title="%s"%s>%s</a>`, href, attrEscaper.Replace(job.Headline), target, textEscaper.Replace(job.Headline)), nil
	case TagJobsOpen:
		href, err := r.jobURL(ctx, job, absolute)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(`<a href="%s" title="%s"%s>`, href, attrEscaper.Replace(job.Headline), target), nil
	case TagJobsURL:
		return r.jobURL(ctx, job, absolute)
	case TagJobsTitle:
		return attrEscaper.Replace(job.Headline), nil
	case TagJobsTeaser:
		return job.Teaser, nil
	}
	return "", nil
}

func (r *Resolver) jobURL(ctx context.Context, job *jobs.Job, absolute bool) (string, error) {
	u, err := urls.NewGenerator(r.store, r.settings, r.current).JobURL(ctx, job, false, absolute)
	if err != nil {
		return "", err
	}
	if u == "" {
		return emptyURL, nil
	}
	return urls.Ampersand(u), nil
}

// Replace substitutes every jobs insert tag in text. Other tags are left as
// they are, failing tags resolve to the empty string.
func (r *Resolver) Replace(ctx context.Context, text string) string {
	if !strings.Contains(text, "{{") {
		return text
	}

	cache := make(map[string]string)
	return tagPattern.ReplaceAllStringFunc(text, func(match string) string {
		inner := match[2 : len(match)-2]
		if v, ok := cache[inner]; ok {
			return v
		}

		parts := strings.Split(inner, "|")
		out, ok, err := r.Resolve(ctx, parts[0], parts[1:])
		if !ok {
			return match
		}
		if err != nil {
			logger.Warnw("Failed to resolve insert tag", "tag", inner, "error", err)
			out = ""
		}
		cache[inner] = out
		return out
	})
}
