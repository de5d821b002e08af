package admin

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/maniaxatwork/jobs-server/internal/authz"
	"github.com/maniaxatwork/jobs-server/internal/jobs"
)

const (
	maxTextLength = 255
	maxURLLength  = 2048
)

// ValidationError reports an invalid field of a request body
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func tooLong(field, value string, limit int) error {
	if utf8.RuneCountInString(value) > limit {
		return invalid(field, "must not be longer than %d characters", limit)
	}
	return nil
}

// validateArchive checks and trims an archive before it is stored
func validateArchive(a *jobs.Archive) error {
	a.Title = strings.TrimSpace(a.Title)
	if a.Title == "" {
		return invalid("title", "is required")
	}
	if err := tooLong("title", a.Title, maxTextLength); err != nil {
		return err
	}
	if a.JumpTo < 0 {
		return invalid("jumpTo", "must not be negative")
	}
	if a.Protected && len(a.Groups) == 0 {
		return invalid("groups", "protected archives need at least one member group")
	}
	return nil
}

// prepareJob applies the defaults and field rules of the job edit form.
// current is the stored job on updates and nil on create.
func prepareJob(job *jobs.Job, user *jobs.User, current *jobs.Job, now time.Time, loc *time.Location) error {
	job.Headline = strings.TrimSpace(job.Headline)
	job.Alias = strings.TrimSpace(job.Alias)

	if job.Headline == "" {
		return invalid("headline", "is required")
	}
	for _, f := range []struct{ name, value string }{
		{"headline", job.Headline},
		{"alias", job.Alias},
		{"pageTitle", job.PageTitle},
		{"subheadline", job.Subheadline},
	} {
		if err := tooLong(f.name, f.value, maxTextLength); err != nil {
			return err
		}
	}

	if job.Author == 0 {
		job.Author = user.ID
	}
	if job.Date.IsZero() {
		job.Date = now
	}
	job.Date = midnight(job.Date, loc)

	if job.Source == "" {
		job.Source = jobs.SourceDefault
	}
	var currentSource jobs.Source
	if current != nil {
		currentSource = current.Source
	}
	// editors may always pick the jumpTo page; excluded fields are not modelled
	if !slices.Contains(authz.SourceOptions(user, true, currentSource), job.Source) {
		return invalid("source", "%q is not an allowed option", job.Source)
	}
	switch job.Source {
	case jobs.SourceInternal:
		if job.JumpTo <= 0 {
			return invalid("jumpTo", "is required for internal jobs")
		}
	case jobs.SourceExternal:
		if strings.TrimSpace(job.URL) == "" {
			return invalid("url", "is required for external jobs")
		}
		if err := tooLong("url", job.URL, maxURLLength); err != nil {
			return err
		}
	}

	if !jobs.ValidRobots(job.Robots) {
		return invalid("robots", "%q is not an allowed option", job.Robots)
	}
	if !jobs.ValidFloating(job.Floating) {
		return invalid("floating", "%q is not an allowed option", job.Floating)
	}
	if job.AddImage && job.SingleSRC == nil {
		return invalid("singleSRC", "is required when an image is added")
	}
	if !job.Start.IsZero() && !job.Stop.IsZero() && !job.Stop.After(job.Start) {
		return invalid("stop", "must be after start")
	}
	return nil
}

// midnight returns 00:00 of the day of t in loc
func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}
