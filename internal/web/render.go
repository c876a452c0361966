// Package web holds the HTML templates and the gin renderer built from them.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var templateFS embed.FS

const layout = "base"

// Renderer implements gin's render.HTMLRender. Every page is parsed together
// with the shared layout and includes, then executed through the layout.
type Renderer struct {
	pages map[string]*template.Template
}

// Funcs available to all templates; mediaURL maps a stored image path to a URL.
func Funcs(mediaURL func(string) string) template.FuncMap {
	return template.FuncMap{
		"media": mediaURL,
		"date": func(t time.Time) string {
			return t.Format("2 Jan 2006")
		},
		"truncate": func(s string, n int) string {
			r := []rune(s)
			if len(r) <= n {
				return s
			}
			return string(r[:n]) + "…"
		},
		"linebreaks": func(s string) template.HTML {
			return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
		},
		"seq": func(n int) []int {
			out := make([]int, n)
			for i := range out {
				out[i] = i + 1
			}
			return out
		},
	}
}

// NewRenderer parses every page under templates/ except the layout and includes.
func NewRenderer(funcs template.FuncMap) (*Renderer, error) {
	shared := []string{"templates/base.html", "templates/includes/*.html"}
	r := &Renderer{pages: map[string]*template.Template{}}

	err := fs.WalkDir(templateFS, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if p == "templates/base.html" || strings.HasPrefix(p, "templates/includes/") {
			return nil
		}
		name := strings.TrimPrefix(p, "templates/")
		t, err := template.New(path.Base(p)).Funcs(funcs).ParseFS(templateFS, append(shared, p)...)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// Instance satisfies render.HTMLRender.
func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.pages[name]
	if !ok {
		panic(fmt.Sprintf("web: unknown template %q", name))
	}
	return render.HTML{Template: t, Name: layout, Data: data}
}

// Has reports whether a page template exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}
