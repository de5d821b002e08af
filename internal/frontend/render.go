package frontend

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// moduleView is the data shared by the module wrapper templates
type moduleView struct {
	Type       string
	ID         int64
	CSSClass   string
	Headline   string
	Articles   []template.HTML
	Empty      string
	Pagination template.HTML
}

// Class returns the wrapper classes, e.g. "mod_jobslist block"
func (v moduleView) Class() string {
	c := "mod_" + v.Type + " block"
	if v.CSSClass != "" {
		c += " " + v.CSSClass
	}
	return c
}

// HasTemplate reports whether name is a known template
func HasTemplate(name string) bool {
	return templates.Lookup(name+".html") != nil
}

func render(name string, data any) (template.HTML, error) {
	t := templates.Lookup(name + ".html")
	if t == nil {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", name, err)
	}
	//nolint:gosec // html/template output is escaped
	return template.HTML(buf.String()), nil
}

func renderArticle(name string, view *ArticleView) (template.HTML, error) {
	return render(name, view)
}
