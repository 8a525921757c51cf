// Package views renders the server-side HTML pages. Every page is parsed
// together with the base layout and the shared partials, and is executed
// through the layout.
package views

import (
	"embed"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

//go:embed all:templates
var templatesFS embed.FS

const (
	layoutFile   = "templates/layout.html"
	partialsGlob = "templates/*/_*.html"
)

// Renderer implements echo.Renderer over the embedded templates.
type Renderer struct {
	pages map[string]*template.Template
}

// New parses every page under templates. Pages are named by their path
// relative to templates without the extension, e.g. "books/show".
func New() (*Renderer, error) {
	return newFromFS(templatesFS)
}

func newFromFS(fsys fs.FS) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(fsys, layoutFile)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	partials, err := fs.Glob(fsys, partialsGlob)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if len(partials) > 0 {
		if _, err := base.ParseFS(fsys, partials...); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	err = fs.WalkDir(fsys, "templates", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || p == layoutFile || strings.HasPrefix(path.Base(p), "_") || path.Ext(p) != ".html" {
			return nil
		}

		b, err := fs.ReadFile(fsys, p)
		if err != nil {
			return errors.WithStack(err)
		}
		page, err := base.Clone()
		if err != nil {
			return errors.WithStack(err)
		}
		if _, err := page.New("body").Parse(string(b)); err != nil {
			return errors.Wrapf(err, "could not parse template %s", p)
		}

		name := strings.TrimSuffix(strings.TrimPrefix(p, "templates/"), ".html")
		r.pages[name] = page
		return nil
	})
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return r, nil
}

// Render executes the named page through the layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, _ echo.Context) error {
	page, ok := r.pages[name]
	if !ok {
		return errors.Errorf("template %q not found", name)
	}
	return errors.WithStack(page.ExecuteTemplate(w, "layout.html", data))
}

// Has reports whether a page with the given name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.pages[name]
	return ok
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format(time.DateOnly)
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
	"derefInt": func(i *int) string {
		if i == nil {
			return ""
		}
		return strconv.Itoa(*i)
	},
}
