package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"io"
)

// TemplateName is the name of the dashboard page template
const TemplateName = "index.html"

//go:embed templates/*.html
var templateFS embed.FS

// Renderer renders the dashboard page
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New(TemplateName).Funcs(template.FuncMap{
		"section": SectionLabel,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse dashboard templates: %w", err)
	}

	return &Renderer{tmpl: tmpl}, nil
}

// Template returns the parsed template set, e.g. for gin's SetHTMLTemplate
func (r *Renderer) Template() *template.Template {
	return r.tmpl
}

// Render writes the dashboard page
func (r *Renderer) Render(w io.Writer, page Page) error {
	if page.Title == "" {
		page.Title = "Sonido Insight"
	}
	if err := r.tmpl.ExecuteTemplate(w, TemplateName, page); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}
	return nil
}
