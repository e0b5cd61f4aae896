package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"fitpack_admin/internal/models"
)

// StatusAll disables the status filter
const StatusAll = "all"

// MissingProductName is shown for orders whose package no longer exists
const MissingProductName = "Product Not Available"

var ErrInvalidStatus = errors.New("invalid order status filter")

// Source loads one customer's orders with their products, newest first.
// An empty status means every status.
type Source interface {
	CustomerOrders(ctx context.Context, userID uint, status models.OrderStatus) ([]models.Order, error)
}

// ProductView is the package side of a listed order
type ProductView struct {
	Name      string
	MainImage *string
	Images    []string
}

// OrderView is one row of the customer order list
type OrderView struct {
	models.Order
	Product ProductView
}

// List is the read-only order list of a single customer
type List struct {
	src    Source
	userID uint

	Status string
	Orders []OrderView
}

func New(src Source, userID uint) *List {
	return &List{src: src, userID: userID, Status: StatusAll}
}

// ParseStatus accepts "all" or a known order status, case-insensitively
func ParseStatus(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == StatusAll {
		return StatusAll, nil
	}
	if !models.OrderStatus(s).Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return s, nil
}

// LoadOrders reloads the list for the current status filter
func (l *List) LoadOrders(ctx context.Context) error {
	var status models.OrderStatus
	if l.Status != StatusAll {
		status = models.OrderStatus(l.Status)
	}

	rows, err := l.src.CustomerOrders(ctx, l.userID, status)
	if err != nil {
		return fmt.Errorf("load orders: %w", err)
	}

	l.Orders = make([]OrderView, 0, len(rows))
	for _, o := range rows {
		l.Orders = append(l.Orders, OrderView{Order: o, Product: productView(o)})
	}
	return nil
}

// UpdateStatusFilter changes the filter and reloads. An unknown status
// leaves the list untouched.
func (l *List) UpdateStatusFilter(ctx context.Context, status string) error {
	parsed, err := ParseStatus(status)
	if err != nil {
		return err
	}
	l.Status = parsed
	return l.LoadOrders(ctx)
}

func productView(o models.Order) ProductView {
	if o.ProductID == nil || o.Product == nil {
		return ProductView{Name: MissingProductName}
	}
	return ProductView{
		Name:      o.Product.Name,
		MainImage: o.Product.MainImage,
		Images:    o.Product.Images,
	}
}
