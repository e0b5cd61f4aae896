package pages

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"fitpack_admin/internal/dashboard"
	"fitpack_admin/internal/models"
	"fitpack_admin/internal/orders"
	"fitpack_admin/web/templates"
	"fitpack_admin/web/templates/shared"
)

func page(name string, props interface{}) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		return templates.Default().Execute(w, name, props)
	})
}

// Pager is the footer of one paginated dashboard list
type Pager struct {
	Page     int
	LastPage int
	From     int
	To       int
	Total    int64
	HasPrev  bool
	HasNext  bool
	PrevLink string
	NextLink string
}

// NewPager builds the footer for p. Links move only the list under key.
func NewPager[T any](p dashboard.Page[T], cur dashboard.Cursors, key string) Pager {
	return Pager{
		Page:     p.Page,
		LastPage: p.LastPage(),
		From:     p.From(),
		To:       p.To(),
		Total:    p.Total,
		HasPrev:  p.HasPrev(),
		HasNext:  p.HasNext(),
		PrevLink: cur.Link(key, p.Page-1),
		NextLink: cur.Link(key, p.Page+1),
	}
}

type AdminDashboardProps struct {
	Title       string
	ActiveNav   string
	Breadcrumbs []shared.Breadcrumb
	UserEmail   string
	UserUID     string

	View     *dashboard.View
	Notice   *dashboard.Notice
	Currency string
	Tabs     []string

	// Query is "?..." carrying the current list pages, or empty
	Query string

	PackagesPager Pager
	UsersPager    Pager
	OrdersPager   Pager
}

// NewAdminDashboardProps fills the pagers and tabs from view
func NewAdminDashboardProps(view *dashboard.View, notice *dashboard.Notice, currency string) AdminDashboardProps {
	query := ""
	if enc := view.Cursors.Values().Encode(); enc != "" {
		query = "?" + enc
	}
	return AdminDashboardProps{
		Title:         "Admin Dashboard",
		ActiveNav:     "admin",
		Breadcrumbs:   shared.Trail(shared.Breadcrumb{Title: "Admin Dashboard"}),
		View:          view,
		Notice:        notice,
		Currency:      currency,
		Tabs:          []string{dashboard.TabPackages, dashboard.TabUsers, dashboard.TabOrders},
		Query:         query,
		PackagesPager: NewPager(view.Packages, view.Cursors, dashboard.PackagesPageKey),
		UsersPager:    NewPager(view.Users, view.Cursors, dashboard.UsersPageKey),
		OrdersPager:   NewPager(view.Orders, view.Cursors, dashboard.OrdersPageKey),
	}
}

func AdminDashboard(props AdminDashboardProps) templ.Component {
	return page("admin.html", props)
}

type OrdersProps struct {
	Title       string
	ActiveNav   string
	Breadcrumbs []shared.Breadcrumb
	UserEmail   string
	UserUID     string

	List     *orders.List
	Statuses []string
	Currency string
}

// OrderStatusOptions is "all" followed by every order status
func OrderStatusOptions() []string {
	out := []string{orders.StatusAll}
	for _, s := range models.OrderStatuses {
		out = append(out, string(s))
	}
	return out
}

func Orders(props OrdersProps) templ.Component {
	return page("orders.html", props)
}

type ErrorPageProps struct {
	Title        string
	ActiveNav    string
	Breadcrumbs  []shared.Breadcrumb
	UserEmail    string
	UserUID      string
	ErrorTitle   string
	ErrorMessage string
	BackLink     string
	BackText     string
}

func ErrorPage(props ErrorPageProps) templ.Component {
	return page("error.html", props)
}

// PublicErrorPage renders without the navigation layout
func PublicErrorPage(props ErrorPageProps) templ.Component {
	return page("public_error.html", props)
}

type LoginProps struct {
	FirebaseAPIKey     string
	FirebaseAuthDomain string
	FirebaseProjectID  string
	Error              string
}

func Login(props LoginProps) templ.Component {
	return page("login.html", props)
}
