package templates

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"net/http"
	"path"
	"time"

	"github.com/labstack/echo/v4"

	"fitpack_admin/internal/dashboard"
)

//go:embed *.html layouts/*.html partials/*.html views/*.html
var files embed.FS

// Renderer holds one template set per page. Each page gets its own clone
// of the base layout so pages can define the same blocks.
type Renderer struct {
	templates map[string]*template.Template
}

// ActionButton is a one-button form posting a dashboard action
type ActionButton struct {
	Query  string
	Action string
	ID     uint
	Label  string
	Class  string
}

// PackageModal feeds the create and edit package modal
type PackageModal struct {
	Query   string
	Action  string
	Heading string
	Form    dashboard.PackageForm
	Errors  dashboard.FieldErrors
}

// UserModal feeds the create and edit user modal. The password input is
// only shown on create.
type UserModal struct {
	Query        string
	Action       string
	Heading      string
	Form         dashboard.UserForm
	Errors       dashboard.FieldErrors
	WithPassword bool
}

// Funcs available to every template
var Funcs = template.FuncMap{
	"amount": dashboard.FormatAmount,
	"field": func(errs dashboard.FieldErrors, name string) string {
		return errs[name]
	},
	"title": func(v interface{}) string {
		return dashboard.TitleCase(fmt.Sprint(v))
	},
	"date": func(t time.Time) string {
		return t.Format("Jan 02, 2006")
	},
	"datetime": func(t time.Time) string {
		return t.Format("Jan 02, 2006 15:04")
	},
	"btn": func(query, action string, id uint, label, class string) ActionButton {
		return ActionButton{Query: query, Action: action, ID: id, Label: label, Class: class}
	},
	"packageModal": func(query, action, heading string, form dashboard.PackageForm, errs dashboard.FieldErrors) PackageModal {
		return PackageModal{Query: query, Action: action, Heading: heading, Form: form, Errors: errs}
	},
	"userModal": func(query, action, heading string, form dashboard.UserForm, errs dashboard.FieldErrors, withPassword bool) UserModal {
		return UserModal{Query: query, Action: action, Heading: heading, Form: form, Errors: errs, WithPassword: withPassword}
	},
	"deref": func(s *string) string {
		if s == nil {
			return ""
		}
		return *s
	},
}

// NewRenderer parses the embedded layouts, partials and pages
func NewRenderer() (*Renderer, error) {
	return newRenderer(files)
}

func newRenderer(fsys fs.FS) (*Renderer, error) {
	base, err := template.New("").Funcs(Funcs).ParseFS(fsys, "layouts/*.html", "partials/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse layouts: %w", err)
	}

	pages, err := fs.Glob(fsys, "views/*.html")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(fsys, page); err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		templates[path.Base(page)] = clone
	}

	// top-level pages such as login render without the layout
	standalone, err := fs.Glob(fsys, "*.html")
	if err != nil {
		return nil, err
	}
	for _, page := range standalone {
		name := path.Base(page)
		tmpl, err := template.New(name).Funcs(Funcs).ParseFS(fsys, page)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		templates[name] = tmpl
	}

	return &Renderer{templates: templates}, nil
}

// Execute writes page name with data. Pages with a base layout render
// through it; standalone pages render directly.
func (r *Renderer) Execute(w io.Writer, name string, data interface{}) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template not found: %s", name)
	}
	if tmpl.Lookup("base") != nil {
		return tmpl.ExecuteTemplate(w, "base", data)
	}
	return tmpl.Execute(w, data)
}

// Render implements echo.Renderer
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	if err := r.Execute(w, name, data); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return nil
}

var defaultRenderer *Renderer

func init() {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	defaultRenderer = r
}

// Default is the renderer over the embedded templates
func Default() *Renderer {
	return defaultRenderer
}
