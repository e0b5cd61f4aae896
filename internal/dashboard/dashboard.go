package dashboard

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"fitpack_admin/internal/services"
)

// Signals emitted after successful mutations
const (
	SignalPackageCreated = "package-created"
	SignalPackageUpdated = "package-updated"
	SignalPackageDeleted = "package-deleted"
	SignalUserCreated    = "user-created"
	SignalUserUpdated    = "user-updated"
	SignalUserDeleted    = "userDeleted"
	SignalOrderDeleted   = "order-deleted"
)

// Notice kinds
const (
	NoticeSuccess = "success"
	NoticeError   = "error"
	NoticeMessage = "message"
)

// directory uploaded package images are stored under
const productImageDir = "products"

var ErrSelfDelete = errors.New("You cannot delete your own account.")

// Notice is a one-shot message shown on the next render
type Notice struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// Result is what an action reports back to the caller. Validation
// failures carry no notice; their messages live in State.Errors.
type Result struct {
	Notice  *Notice
	Signals []string
}

func success(text string, signals ...string) Result {
	return Result{Notice: &Notice{Kind: NoticeSuccess, Text: text}, Signals: signals}
}

func failure(text string) Result {
	return Result{Notice: &Notice{Kind: NoticeError, Text: text}}
}

func failureErr(prefix string, err error) Result {
	return failure(prefix + err.Error())
}

// Upload is an image file attached to a package form
type Upload struct {
	Filename string
	Data     []byte
}

// FileStore is where package images live; see services.FileStorage
type FileStore interface {
	Put(ctx context.Context, dir, filename string, data []byte, contentType string) (string, error)
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	PublicPrefix() string
}

// PasswordHasher hashes user passwords
type PasswordHasher interface {
	Hash(plain string) (string, error)
}

// Dashboard runs the admin actions over packages, users and orders
type Dashboard struct {
	store  Store
	files  FileStore
	images *services.ImageProcessor
	hasher PasswordHasher
	log    *zap.Logger
	now    func() time.Time
	newID  func() string
}

func New(store Store, files FileStore, images *services.ImageProcessor, hasher PasswordHasher, log *zap.Logger) *Dashboard {
	if log == nil {
		log = zap.NewNop()
	}
	return &Dashboard{
		store:  store,
		files:  files,
		images: images,
		hasher: hasher,
		log:    log,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Mount prepares a freshly loaded state
func (d *Dashboard) Mount(ctx context.Context, st *State) {
	if st.ActiveTab == "" {
		st.ActiveTab = TabPackages
	}
	d.LoadStats(ctx, st)
}

// LoadStats recomputes the dashboard counters
func (d *Dashboard) LoadStats(ctx context.Context, st *State) {
	stats, err := d.store.Stats(ctx)
	if err != nil {
		d.log.Warn("load dashboard stats", zap.Error(err))
		return
	}
	st.Stats = stats
}

// SetActiveTab switches tabs; unknown tabs are ignored
func (d *Dashboard) SetActiveTab(st *State, tab string) {
	switch tab {
	case TabPackages, TabUsers, TabOrders:
		st.ActiveTab = tab
	}
}

// maximum accepted date filter, ten years
const maxDateFilterDays = 3650

// ApplyFilters sets search, status and date filters. Invalid status or
// date values are reported and leave the previous filter in place.
func (d *Dashboard) ApplyFilters(st *State, search, status, date string) {
	delete(st.Errors, "status_filter")
	delete(st.Errors, "date_filter")

	st.Search = strings.TrimSpace(search)

	switch status {
	case "", "active", "inactive":
		st.StatusFilter = status
	default:
		st.Errors = st.Errors.merge(FieldErrors{"status_filter": "The selected status filter is invalid."})
	}

	date = strings.TrimSpace(date)
	if date == "" {
		st.DateFilter = ""
		return
	}
	if n, err := strconv.Atoi(date); err == nil && n > 0 && n <= maxDateFilterDays {
		st.DateFilter = date
		return
	}
	st.Errors = st.Errors.merge(FieldErrors{"date_filter": "The date filter must be a whole number of days between 1 and 3650."})
}

// CloseModals hides every modal and clears the forms and selections
func (d *Dashboard) CloseModals(st *State) {
	st.ShowCreatePackageModal = false
	st.ShowEditPackageModal = false
	st.ShowCreateUserModal = false
	st.ShowEditUserModal = false
	st.ShowOrderModal = false
	st.ShowDeleteOrderModal = false
	st.resetDeleteSelection()

	st.NewPackage = DefaultPackageForm()
	st.EditPackage = PackageForm{}
	st.EditUser = DefaultUserForm()
	st.EditingPackageID = 0
	st.EditingUserID = 0
	st.ViewingOrderID = 0
	st.DeletingOrderID = 0
	st.Errors = nil
}

// CloseDeleteModal drops the pending package or user deletion
func (d *Dashboard) CloseDeleteModal(st *State) {
	st.resetDeleteSelection()
}

// ConfirmDelete runs the deletion the delete modal was opened for
func (d *Dashboard) ConfirmDelete(ctx context.Context, st *State, actorID uint) Result {
	switch {
	case st.DeleteType == DeletePackage && st.DeletingPackageID != 0:
		return d.DeletePackage(ctx, st)
	case st.DeleteType == DeleteUser && st.DeletingUserID != 0:
		return d.DeleteUser(ctx, st, actorID)
	}
	d.CloseDeleteModal(st)
	return failure("No item selected for deletion or invalid delete type.")
}

// managedKey returns the storage key of ref when ref points into our storage
func (d *Dashboard) managedKey(ref *string) (string, bool) {
	if ref == nil || *ref == "" {
		return "", false
	}
	prefix := d.files.PublicPrefix()
	if prefix == "" || !strings.HasPrefix(*ref, prefix) {
		return "", false
	}
	return strings.TrimPrefix(*ref, prefix), true
}

// removeManagedFile deletes the file behind ref if we own it and it exists
func (d *Dashboard) removeManagedFile(ctx context.Context, ref *string) error {
	key, ok := d.managedKey(ref)
	if !ok {
		return nil
	}
	exists, err := d.files.Exists(ctx, key)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return d.files.Delete(ctx, key)
}

// storeImage writes a prepared image and returns its key and public reference
func (d *Dashboard) storeImage(ctx context.Context, img *services.PreparedImage) (string, string, error) {
	key, err := d.files.Put(ctx, productImageDir, d.newID()+img.Ext, img.Data, img.ContentType)
	if err != nil {
		return "", "", err
	}
	return key, d.files.PublicPrefix() + key, nil
}

// discardFile is best-effort cleanup for a file whose row never committed
func (d *Dashboard) discardFile(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := d.files.Delete(ctx, key); err != nil {
		d.log.Warn("remove orphaned upload", zap.String("key", key), zap.Error(err))
	}
}
