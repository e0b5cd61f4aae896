package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"maps"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"fitpack_admin/internal/models"
	"fitpack_admin/internal/services"
)

var testNow = time.Date(2026, 3, 15, 10, 30, 0, 0, time.UTC)

// fakeStore is an in-memory Store. Transaction snapshots the maps and
// restores them when the callback fails.
type fakeStore struct {
	products map[uint]models.Product
	users    map[uint]models.User
	orders   map[uint]models.Order
	nextID   uint
	clock    time.Time

	failOn    map[string]error
	roleSyncs []models.Role
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		products: map[uint]models.Product{},
		users:    map[uint]models.User{},
		orders:   map[uint]models.Order{},
		clock:    testNow.Add(-24 * time.Hour),
		failOn:   map[string]error{},
	}
}

func (s *fakeStore) newID() uint {
	s.nextID++
	return s.nextID
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Minute)
	return s.clock
}

func notFound(kind string, id uint) error {
	return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
}

func (s *fakeStore) Transaction(ctx context.Context, fn func(tx Store) error) error {
	products, users, orders := maps.Clone(s.products), maps.Clone(s.users), maps.Clone(s.orders)
	syncs := len(s.roleSyncs)
	if err := fn(s); err != nil {
		s.products, s.users, s.orders = products, users, orders
		s.roleSyncs = s.roleSyncs[:syncs]
		return err
	}
	return nil
}

func (s *fakeStore) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, notFound("product", id)
	}
	return &p, nil
}

func (s *fakeStore) CreateProduct(ctx context.Context, p *models.Product) error {
	if err := s.failOn["CreateProduct"]; err != nil {
		return err
	}
	p.ID = s.newID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.tick()
	}
	s.products[p.ID] = *p
	return nil
}

func (s *fakeStore) UpdateProduct(ctx context.Context, p *models.Product) error {
	if err := s.failOn["UpdateProduct"]; err != nil {
		return err
	}
	if _, ok := s.products[p.ID]; !ok {
		return notFound("product", p.ID)
	}
	s.products[p.ID] = *p
	return nil
}

func (s *fakeStore) DeleteProduct(ctx context.Context, id uint) error {
	delete(s.products, id)
	for oid, o := range s.orders {
		if o.ProductID != nil && *o.ProductID == id {
			o.ProductID = nil
			s.orders[oid] = o
		}
	}
	return nil
}

func (s *fakeStore) ListProducts(ctx context.Context, f ProductFilter, page int) (Page[models.Product], error) {
	var out []models.Product
	for _, p := range s.products {
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
			continue
		}
		if f.Active != nil && p.IsActive != *f.Active {
			continue
		}
		if f.CreatedSince != nil && p.CreatedAt.Before(*f.CreatedSince) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return paginate(out, page), nil
}

func (s *fakeStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	u, ok := s.users[id]
	if !ok {
		return nil, notFound("user", id)
	}
	return &u, nil
}

func (s *fakeStore) EmailTaken(ctx context.Context, email string, exceptID uint) (bool, error) {
	for _, u := range s.users {
		if u.Email == email && u.ID != exceptID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.failOn["CreateUser"]; err != nil {
		return err
	}
	u.ID = s.newID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.tick()
	}
	s.users[u.ID] = *u
	return nil
}

func (s *fakeStore) UpdateUser(ctx context.Context, u *models.User) error {
	if _, ok := s.users[u.ID]; !ok {
		return notFound("user", u.ID)
	}
	s.users[u.ID] = *u
	return nil
}

func (s *fakeStore) SyncRole(ctx context.Context, userID uint, role models.Role) error {
	if err := s.failOn["SyncRole"]; err != nil {
		return err
	}
	u, ok := s.users[userID]
	if !ok {
		return notFound("user", userID)
	}
	u.Role = role
	s.users[userID] = u
	s.roleSyncs = append(s.roleSyncs, role)
	return nil
}

func (s *fakeStore) DeleteUser(ctx context.Context, id uint) error {
	delete(s.users, id)
	for oid, o := range s.orders {
		if o.UserID == id {
			delete(s.orders, oid)
		}
	}
	return nil
}

func (s *fakeStore) ListUsers(ctx context.Context, search string, page int) (Page[models.User], error) {
	var out []models.User
	for _, u := range s.users {
		if search != "" && !containsFold(u.Name, search) && !containsFold(u.Email, search) {
			continue
		}
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return paginate(out, page), nil
}

func (s *fakeStore) withRelations(o models.Order) models.Order {
	if u, ok := s.users[o.UserID]; ok {
		o.User = &u
	}
	if o.ProductID != nil {
		if p, ok := s.products[*o.ProductID]; ok {
			o.Product = &p
		}
	}
	return o
}

func (s *fakeStore) FindOrder(ctx context.Context, id uint) (*models.Order, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, notFound("order", id)
	}
	o = s.withRelations(o)
	return &o, nil
}

func (s *fakeStore) DeleteOrder(ctx context.Context, id uint) error {
	if err := s.failOn["DeleteOrder"]; err != nil {
		return err
	}
	delete(s.orders, id)
	return nil
}

func (s *fakeStore) ListOrders(ctx context.Context, search string, page int) (Page[models.Order], error) {
	var out []models.Order
	for _, o := range s.orders {
		o = s.withRelations(o)
		if search != "" && (o.User == nil || (!containsFold(o.User.Name, search) && !containsFold(o.User.Email, search))) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool { return newer(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID) })
	return paginate(out, page), nil
}

func (s *fakeStore) EachOrder(ctx context.Context, batchSize int, fn func([]models.Order) error) error {
	var all []models.Order
	for _, o := range s.orders {
		all = append(all, s.withRelations(o))
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID < all[j].ID })
	for start := 0; start < len(all); start += batchSize {
		end := min(start+batchSize, len(all))
		if err := fn(all[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (s *fakeStore) Stats(ctx context.Context) (Stats, error) {
	revenue := decimal.Zero
	for _, o := range s.orders {
		revenue = revenue.Add(o.TotalAmount)
	}
	return Stats{
		TotalUsers:    int64(len(s.users)),
		TotalOrders:   int64(len(s.orders)),
		TotalProducts: int64(len(s.products)),
		TotalRevenue:  revenue,
	}, nil
}

// seed helpers

func (s *fakeStore) addProduct(p models.Product) models.Product {
	p.ID = s.newID()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.tick()
	}
	s.products[p.ID] = p
	return p
}

func (s *fakeStore) addUser(u models.User) models.User {
	u.ID = s.newID()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.tick()
	}
	s.users[u.ID] = u
	return u
}

func (s *fakeStore) addOrder(o models.Order) models.Order {
	o.ID = s.newID()
	if o.CreatedAt.IsZero() {
		o.CreatedAt = s.tick()
	}
	s.orders[o.ID] = o
	return o
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

func newer(at time.Time, aid uint, bt time.Time, bid uint) bool {
	if !at.Equal(bt) {
		return at.After(bt)
	}
	return aid > bid
}

func paginate[T any](items []T, page int) Page[T] {
	if page < 1 {
		page = 1
	}
	start := min(Offset(page), len(items))
	end := min(start+PerPage, len(items))
	return NewPage(items[start:end], int64(len(items)), page)
}

// fakeFiles is an in-memory FileStore
type fakeFiles struct {
	prefix  string
	objects map[string][]byte
	deleted []string
	putErr  error
}

func newFakeFiles(prefix string) *fakeFiles {
	return &fakeFiles{prefix: prefix, objects: map[string][]byte{}}
}

func (f *fakeFiles) Put(ctx context.Context, dir, filename string, data []byte, contentType string) (string, error) {
	if f.putErr != nil {
		return "", f.putErr
	}
	key := dir + "/" + filename
	f.objects[key] = data
	return key, nil
}

func (f *fakeFiles) Exists(ctx context.Context, key string) (bool, error) {
	_, ok := f.objects[key]
	return ok, nil
}

func (f *fakeFiles) Delete(ctx context.Context, key string) error {
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeFiles) PublicPrefix() string {
	return f.prefix
}

func newTestDashboard(t *testing.T) (*Dashboard, *fakeStore, *fakeFiles) {
	t.Helper()
	store := newFakeStore()
	files := newFakeFiles("/storage/")
	d := New(store, files, services.NewImageProcessor(0), &services.BcryptHasher{Cost: 4}, zap.NewNop())
	d.now = func() time.Time { return testNow }
	n := 0
	d.newID = func() string {
		n++
		return fmt.Sprintf("img%d", n)
	}
	return d, store, files
}

func pngUpload(t *testing.T) *Upload {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return &Upload{Filename: "photo.png", Data: buf.Bytes()}
}

func validPackageForm() PackageForm {
	f := DefaultPackageForm()
	f.Name = "Strength Starter"
	f.Description = "Three full-body sessions a week"
	f.Price = "1999.00"
	f.Features = "Coach check-ins"
	return f
}

func ptr[T any](v T) *T {
	return &v
}

func noticeText(r Result) string {
	if r.Notice == nil {
		return ""
	}
	return r.Notice.Text
}
