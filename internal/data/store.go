package data

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"fitpack_admin/internal/dashboard"
	"fitpack_admin/internal/models"
)

// Store is the gorm implementation of dashboard.Store
type Store struct {
	db *gorm.DB
}

func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

var _ dashboard.Store = (*Store)(nil)

func (s *Store) conn(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx)
}

func (s *Store) Transaction(ctx context.Context, fn func(tx dashboard.Store) error) error {
	return s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&Store{db: tx})
	})
}

// notFound maps gorm's missing-row error onto dashboard.ErrNotFound
func notFound(kind string, id uint, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s %d: %w", kind, id, dashboard.ErrNotFound)
	}
	return err
}

func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(search) + "%"
}

// newest first, ties broken by id
const newestFirst = "created_at DESC, id DESC"

// Products

func (s *Store) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var p models.Product
	if err := s.conn(ctx).First(&p, id).Error; err != nil {
		return nil, notFound("product", id, err)
	}
	return &p, nil
}

func (s *Store) CreateProduct(ctx context.Context, p *models.Product) error {
	return s.conn(ctx).Create(p).Error
}

func (s *Store) UpdateProduct(ctx context.Context, p *models.Product) error {
	return s.conn(ctx).Save(p).Error
}

// DeleteProduct keeps orders of the package; their product_id is cleared
func (s *Store) DeleteProduct(ctx context.Context, id uint) error {
	db := s.conn(ctx)
	if err := db.Model(&models.Order{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
		return err
	}
	if err := db.Model(&models.OrderItem{}).Where("product_id = ?", id).Update("product_id", nil).Error; err != nil {
		return err
	}
	return db.Delete(&models.Product{}, id).Error
}

func (s *Store) ListProducts(ctx context.Context, f dashboard.ProductFilter, page int) (dashboard.Page[models.Product], error) {
	q := s.conn(ctx).Model(&models.Product{})
	if f.Search != "" {
		like := likePattern(f.Search)
		q = q.Where(s.db.Where("name ILIKE ?", like).Or("description ILIKE ?", like))
	}
	if f.Active != nil {
		q = q.Where("is_active = ?", *f.Active)
	}
	if f.CreatedSince != nil {
		q = q.Where("created_at >= ?", *f.CreatedSince)
	}
	return paginate[models.Product](q, page)
}

// Users

func (s *Store) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.conn(ctx).First(&u, id).Error; err != nil {
		return nil, notFound("user", id, err)
	}
	return &u, nil
}

// UserByEmail looks up the account behind a verified login
func (s *Store) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	err := s.conn(ctx).Where("LOWER(email) = LOWER(?)", email).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("user %q: %w", email, dashboard.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	var n int64
	q := s.conn(ctx).Model(&models.User{}).Where("LOWER(email) = LOWER(?)", email)
	if exceptID != 0 {
		q = q.Where("id <> ?", exceptID)
	}
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Create(u).Error
}

func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	return s.conn(ctx).Save(u).Error
}

// SyncRole replaces whatever role the user had with role
func (s *Store) SyncRole(ctx context.Context, userID uint, role models.Role) error {
	res := s.conn(ctx).Model(&models.User{}).Where("id = ?", userID).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("user %d: %w", userID, dashboard.ErrNotFound)
	}
	return nil
}

// DeleteUser removes the user together with their orders and order items
func (s *Store) DeleteUser(ctx context.Context, id uint) error {
	db := s.conn(ctx)
	orderIDs := db.Model(&models.Order{}).Select("id").Where("user_id = ?", id)
	if err := db.Where("order_id IN (?)", orderIDs).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	if err := db.Where("user_id = ?", id).Delete(&models.Order{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.User{}, id).Error
}

func (s *Store) ListUsers(ctx context.Context, search string, page int) (dashboard.Page[models.User], error) {
	q := s.conn(ctx).Model(&models.User{})
	if search != "" {
		like := likePattern(search)
		q = q.Where(s.db.Where("name ILIKE ?", like).Or("email ILIKE ?", like))
	}
	return paginate[models.User](q, page)
}

// Orders

func (s *Store) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	var o models.Order
	err := s.conn(ctx).
		Preload("User").
		Preload("Product").
		Preload("Items").
		First(&o, id).Error
	if err != nil {
		return nil, notFound("order", id, err)
	}
	return &o, nil
}

func (s *Store) DeleteOrder(ctx context.Context, id uint) error {
	db := s.conn(ctx)
	if err := db.Where("order_id = ?", id).Delete(&models.OrderItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Order{}, id).Error
}

// ListOrders searches by customer name or e-mail
func (s *Store) ListOrders(ctx context.Context, search string, page int) (dashboard.Page[models.Order], error) {
	q := s.conn(ctx).Model(&models.Order{})
	if search != "" {
		like := likePattern(search)
		customers := s.db.Model(&models.User{}).Select("id").Where("name ILIKE ? OR email ILIKE ?", like, like)
		q = q.Where("user_id IN (?)", customers)
	}
	return paginate[models.Order](q, page, "User", "Product")
}

// CustomerOrders lists one customer's orders, newest first. An empty
// status means every status.
func (s *Store) CustomerOrders(ctx context.Context, userID uint, status models.OrderStatus) ([]models.Order, error) {
	q := s.conn(ctx).Preload("Product").Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var out []models.Order
	if err := q.Order(newestFirst).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Store) EachOrder(ctx context.Context, batchSize int, fn func([]models.Order) error) error {
	var batch []models.Order
	res := s.conn(ctx).Preload("User").Order("id").FindInBatches(&batch, batchSize, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	return res.Error
}

func (s *Store) Stats(ctx context.Context) (dashboard.Stats, error) {
	db := s.conn(ctx)
	var st dashboard.Stats
	if err := db.Model(&models.User{}).Count(&st.TotalUsers).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Order{}).Count(&st.TotalOrders).Error; err != nil {
		return st, err
	}
	if err := db.Model(&models.Product{}).Count(&st.TotalProducts).Error; err != nil {
		return st, err
	}

	var revenue decimal.Decimal
	row := revenueQuery(db).Row()
	if err := row.Scan(&revenue); err != nil {
		return st, err
	}
	st.TotalRevenue = revenue
	return st, nil
}

// revenueQuery sums every order amount, 0 when there are none
func revenueQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Order{}).Select("COALESCE(SUM(total_amount), 0)")
}

// paginate counts q, then loads page of it newest first with the given
// relations preloaded
func paginate[T any](q *gorm.DB, page int, preload ...string) (dashboard.Page[T], error) {
	if page < 1 {
		page = 1
	}
	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return dashboard.Page[T]{}, err
	}
	var items []T
	find := q.Session(&gorm.Session{})
	for _, rel := range preload {
		find = find.Preload(rel)
	}
	err := find.
		Order(newestFirst).
		Offset(dashboard.Offset(page)).
		Limit(dashboard.PerPage).
		Find(&items).Error
	if err != nil {
		return dashboard.Page[T]{}, err
	}
	return dashboard.NewPage(items, total, page), nil
}
