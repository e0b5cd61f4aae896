package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"fitpack_admin/internal/dashboard"
	"fitpack_admin/internal/models"
)

func TestNewPagerKeepsOtherCursors(t *testing.T) {
	p := dashboard.NewPage(make([]models.User, 10), 25, 2)
	pager := NewPager(p, dashboard.Cursors{Packages: 3, Users: 2, Orders: 1}, dashboard.UsersPageKey)

	if pager.PrevLink != "?page=3" {
		t.Errorf("PrevLink = %q", pager.PrevLink)
	}
	if pager.NextLink != "?page=3&usersPage=3" {
		t.Errorf("NextLink = %q", pager.NextLink)
	}
	if pager.From != 11 || pager.To != 20 || pager.LastPage != 3 || !pager.HasNext || !pager.HasPrev {
		t.Errorf("pager = %+v", pager)
	}
}

func TestAdminDashboardRenders(t *testing.T) {
	img := "/storage/products/a.png"
	pid := uint(1)
	st := dashboard.NewState()
	st.ShowCreatePackageModal = true
	st.Errors = dashboard.FieldErrors{"name": "The name field is required."}
	st.Stats.TotalRevenue = decimal.RequireFromString("12500")

	view := &dashboard.View{
		State: st,
		Packages: dashboard.NewPage([]models.Product{{
			ID: pid, Name: "Strength Starter", Price: decimal.RequireFromString("1999"),
			DiscountPercentage: decimal.RequireFromString("10"), DurationDays: 90, IsActive: true,
			MainImage: &img, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		}}, 1, 1),
		Users:   dashboard.NewPage[models.User](nil, 0, 1),
		Orders:  dashboard.NewPage[models.Order](nil, 0, 1),
		Cursors: dashboard.Cursors{Packages: 1, Users: 2, Orders: 1},
	}
	props := NewAdminDashboardProps(view, &dashboard.Notice{Kind: dashboard.NoticeSuccess, Text: "Package created successfully!"}, "₹")
	props.UserEmail = "admin@example.com"

	var buf bytes.Buffer
	if err := AdminDashboard(props).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render: %v", err)
	}
	html := buf.String()

	for _, want := range []string{
		"Strength Starter",
		"₹1,799.10",
		"₹12,500.00",
		"3 month(s)",
		"Package created successfully!",
		"The name field is required.",
		"Create Package",
		"/admin/actions/store-package?usersPage=2",
		"admin@example.com",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered page is missing %q", want)
		}
	}
}

func TestErrorPagesRender(t *testing.T) {
	props := ErrorPageProps{Title: "Page Not Found", ErrorTitle: "Page Not Found", ErrorMessage: "The page you're looking for doesn't exist."}

	var buf bytes.Buffer
	if err := ErrorPage(props).Render(context.Background(), &buf); err != nil {
		t.Fatalf("ErrorPage: %v", err)
	}
	if !strings.Contains(buf.String(), "Page Not Found") {
		t.Error("error page missing its title")
	}

	buf.Reset()
	if err := PublicErrorPage(props).Render(context.Background(), &buf); err != nil {
		t.Fatalf("PublicErrorPage: %v", err)
	}
	if strings.Contains(buf.String(), "My Orders") {
		t.Error("public error page must not render the navigation")
	}
}

func TestLoginRendersFirebaseConfig(t *testing.T) {
	var buf bytes.Buffer
	err := Login(LoginProps{FirebaseAPIKey: "key-123", FirebaseProjectID: "fitpack"}).Render(context.Background(), &buf)
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if !strings.Contains(buf.String(), `"key-123"`) {
		t.Error("api key not rendered as a JS string")
	}
}
