package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"strings"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.html
var templateFS embed.FS

const layoutFile = "templates/layout.html"

// Views holds one parsed template set per page.
type Views struct {
	pages map[string]*template.Template
}

// New parses the embedded templates. Every page is parsed together with
// the layout and the shared partials (files prefixed with "_").
func New() (*Views, error) {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	shared := []string{layoutFile}
	var pages []string
	for _, f := range files {
		switch {
		case f == layoutFile:
		case strings.HasPrefix(path.Base(f), "_"):
			shared = append(shared, f)
		default:
			pages = append(pages, f)
		}
	}

	funcs := sprig.FuncMap()

	v := &Views{pages: make(map[string]*template.Template, len(pages))}
	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")
		tmpl, err := template.New(path.Base(layoutFile)).
			Funcs(funcs).
			ParseFS(templateFS, append(append([]string{}, shared...), page)...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		v.pages[name] = tmpl
	}
	return v, nil
}

// Render executes page into w with the given status code. Output is
// buffered so template errors never produce a partial page.
func (v *Views) Render(w http.ResponseWriter, status int, page string, data any) error {
	tmpl, ok := v.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
