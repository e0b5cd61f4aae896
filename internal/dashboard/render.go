package dashboard

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"fitpack_admin/internal/models"
)

// Query keys of the three independent list cursors
const (
	PackagesPageKey = "page"
	UsersPageKey    = "usersPage"
	OrdersPageKey   = "ordersPage"
)

// Cursors are the current page of each list
type Cursors struct {
	Packages int
	Users    int
	Orders   int
}

// CursorsFromQuery reads the page keys; missing or bad values mean page 1
func CursorsFromQuery(q url.Values) Cursors {
	return Cursors{
		Packages: pageParam(q.Get(PackagesPageKey)),
		Users:    pageParam(q.Get(UsersPageKey)),
		Orders:   pageParam(q.Get(OrdersPageKey)),
	}
}

func pageParam(v string) int {
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Values encodes the cursors, leaving out lists on page 1
func (c Cursors) Values() url.Values {
	q := url.Values{}
	set := func(key string, n int) {
		if n > 1 {
			q.Set(key, strconv.Itoa(n))
		}
	}
	set(PackagesPageKey, c.Packages)
	set(UsersPageKey, c.Users)
	set(OrdersPageKey, c.Orders)
	return q
}

// Link is the query string after moving one list to page n. The other
// lists keep their page.
func (c Cursors) Link(key string, n int) string {
	next := c
	switch key {
	case PackagesPageKey:
		next.Packages = n
	case UsersPageKey:
		next.Users = n
	case OrdersPageKey:
		next.Orders = n
	}
	enc := next.Values().Encode()
	if enc == "" {
		return "?"
	}
	return "?" + enc
}

// View is everything the dashboard page renders
type View struct {
	State    *State
	Packages Page[models.Product]
	Users    Page[models.User]
	Orders   Page[models.Order]
	Cursors  Cursors

	// set while the order modal is open
	ViewingOrder *models.Order
}

// Render loads the three filtered, paginated lists
func (d *Dashboard) Render(ctx context.Context, st *State, cur Cursors) (*View, error) {
	packages, err := d.store.ListProducts(ctx, d.productFilter(st), cur.Packages)
	if err != nil {
		return nil, fmt.Errorf("list packages: %w", err)
	}
	users, err := d.store.ListUsers(ctx, st.Search, cur.Users)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	orders, err := d.store.ListOrders(ctx, st.Search, cur.Orders)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	view := &View{
		State:    st,
		Packages: packages,
		Users:    users,
		Orders:   orders,
		Cursors:  cur,
	}

	if st.ShowOrderModal && st.ViewingOrderID != 0 {
		o, err := d.store.FindOrder(ctx, st.ViewingOrderID)
		switch {
		case err == nil:
			view.ViewingOrder = o
		case errors.Is(err, ErrNotFound):
			// deleted elsewhere since the modal opened
			st.ShowOrderModal = false
			st.ViewingOrderID = 0
		default:
			return nil, fmt.Errorf("load order: %w", err)
		}
	}

	return view, nil
}

func (d *Dashboard) productFilter(st *State) ProductFilter {
	f := ProductFilter{Search: st.Search}

	switch st.StatusFilter {
	case "active":
		active := true
		f.Active = &active
	case "inactive":
		active := false
		f.Active = &active
	}

	if n, err := strconv.Atoi(st.DateFilter); err == nil && n > 0 {
		now := d.now()
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
		since := day.AddDate(0, 0, -n)
		f.CreatedSince = &since
	}
	return f
}
