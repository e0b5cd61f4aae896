package dashboard

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"fitpack_admin/internal/models"
)

// ErrNotFound is returned by stores when a row does not exist
var ErrNotFound = errors.New("record not found")

// PerPage is the page size of every dashboard list
const PerPage = 10

// Store is the persistence the dashboard works against. Implementations
// must run Transaction callbacks against a store bound to the transaction.
type Store interface {
	Transaction(ctx context.Context, fn func(tx Store) error) error

	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, p *models.Product) error
	UpdateProduct(ctx context.Context, p *models.Product) error
	DeleteProduct(ctx context.Context, id uint) error
	ListProducts(ctx context.Context, f ProductFilter, page int) (Page[models.Product], error)

	FindUser(ctx context.Context, id uint) (*models.User, error)
	EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error)
	CreateUser(ctx context.Context, u *models.User) error
	UpdateUser(ctx context.Context, u *models.User) error
	SyncRole(ctx context.Context, userID uint, role models.Role) error
	DeleteUser(ctx context.Context, id uint) error
	ListUsers(ctx context.Context, search string, page int) (Page[models.User], error)

	// FindOrder loads the order with its user and items
	FindOrder(ctx context.Context, id uint) (*models.Order, error)
	DeleteOrder(ctx context.Context, id uint) error
	ListOrders(ctx context.Context, search string, page int) (Page[models.Order], error)

	OrderSource

	Stats(ctx context.Context) (Stats, error)
}

// OrderSource streams every order with its user, oldest first
type OrderSource interface {
	EachOrder(ctx context.Context, batchSize int, fn func([]models.Order) error) error
}

// ProductFilter narrows the package list
type ProductFilter struct {
	Search       string
	Active       *bool
	CreatedSince *time.Time
}

// Stats are the dashboard counters
type Stats struct {
	TotalUsers    int64           `json:"total_users"`
	TotalOrders   int64           `json:"total_orders"`
	TotalProducts int64           `json:"total_products"`
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
}

// Page is one page of a list plus the total row count
type Page[T any] struct {
	Items   []T
	Total   int64
	Page    int
	PerPage int
}

// NewPage normalises page numbers below 1
func NewPage[T any](items []T, total int64, page int) Page[T] {
	if page < 1 {
		page = 1
	}
	return Page[T]{Items: items, Total: total, Page: page, PerPage: PerPage}
}

// Offset is the row offset of page p
func Offset(p int) int {
	if p < 1 {
		p = 1
	}
	return (p - 1) * PerPage
}

// LastPage is at least 1
func (p Page[T]) LastPage() int {
	if p.Total == 0 || p.PerPage == 0 {
		return 1
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p Page[T]) HasPrev() bool { return p.Page > 1 }

func (p Page[T]) HasNext() bool { return p.Page < p.LastPage() }

// From and To are the 1-based row numbers shown in "Showing x to y of z"
func (p Page[T]) From() int {
	if len(p.Items) == 0 {
		return 0
	}
	return Offset(p.Page) + 1
}

func (p Page[T]) To() int {
	return Offset(p.Page) + len(p.Items)
}
