package dashboard

import (
	"strconv"

	"fitpack_admin/internal/models"
)

// Tabs of the dashboard
const (
	TabPackages = "packages"
	TabUsers    = "users"
	TabOrders   = "orders"
)

// Delete discriminators for the shared delete modal
const (
	DeletePackage = "package"
	DeleteUser    = "user"
)

// FieldErrors maps a form field name to its first validation message
type FieldErrors map[string]string

// PackageForm buffers the create and edit package modals
type PackageForm struct {
	Name               string `json:"name" form:"name" validate:"required,max=255"`
	Description        string `json:"description" form:"description" validate:"required"`
	Price              string `json:"price" form:"price" validate:"required,numeric,decgte=0"`
	Category           string `json:"category" form:"category" validate:"required,max=255"`
	DurationMonths     string `json:"duration_months" form:"duration_months" validate:"required,number,decgte=1,declte=1200"`
	DiscountPercentage string `json:"discount_percentage" form:"discount_percentage" validate:"required,numeric,decgte=0,declte=100"`
	Features           string `json:"features" form:"features"`
	IsActive           bool   `json:"is_active" form:"is_active"`
}

// DefaultPackageForm is the blank create form
func DefaultPackageForm() PackageForm {
	return PackageForm{
		Category:           "fitness",
		DurationMonths:     "1",
		DiscountPercentage: "0",
		IsActive:           true,
	}
}

func packageFormFrom(p *models.Product) PackageForm {
	return PackageForm{
		Name:               p.Name,
		Description:        p.Description,
		Price:              p.Price.StringFixed(2),
		Category:           p.Category,
		DurationMonths:     strconv.Itoa(p.DurationMonths()),
		DiscountPercentage: p.DiscountPercentage.String(),
		Features:           p.Features,
		IsActive:           p.IsActive,
	}
}

// UserForm buffers the create and edit user modals. The password is never
// persisted with the rest of the state.
type UserForm struct {
	Name      string `json:"name" form:"name" validate:"required,max=255"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"-" form:"password" validate:"required,min=8"`
	Phone     string `json:"phone" form:"phone" validate:"max=20"`
	Gender    string `json:"gender" form:"gender" validate:"required,oneof=male female other"`
	IsTrainer bool   `json:"is_trainer" form:"is_trainer"`
}

// DefaultUserForm is the blank user form
func DefaultUserForm() UserForm {
	return UserForm{Gender: string(models.GenderMale)}
}

func userFormFrom(u *models.User) UserForm {
	gender := string(u.Gender)
	if gender == "" {
		gender = string(models.GenderMale)
	}
	return UserForm{
		Name:      u.Name,
		Email:     u.Email,
		Phone:     u.Phone,
		Gender:    gender,
		IsTrainer: u.IsTrainer,
	}
}

// State is the per-session UI state of the admin dashboard
type State struct {
	ActiveTab string `json:"active_tab"`

	ShowCreatePackageModal bool `json:"show_create_package_modal"`
	ShowEditPackageModal   bool `json:"show_edit_package_modal"`
	ShowCreateUserModal    bool `json:"show_create_user_modal"`
	ShowEditUserModal      bool `json:"show_edit_user_modal"`
	ShowDeleteModal        bool `json:"show_delete_modal"`
	ShowOrderModal         bool `json:"show_order_modal"`
	ShowDeleteOrderModal   bool `json:"show_delete_order_modal"`

	NewPackage  PackageForm `json:"new_package"`
	EditPackage PackageForm `json:"edit_package"`
	NewUser     UserForm    `json:"new_user"`
	EditUser    UserForm    `json:"edit_user"`

	EditingPackageID  uint   `json:"editing_package_id"`
	DeletingPackageID uint   `json:"deleting_package_id"`
	EditingUserID     uint   `json:"editing_user_id"`
	DeletingUserID    uint   `json:"deleting_user_id"`
	ViewingOrderID    uint   `json:"viewing_order_id"`
	DeletingOrderID   uint   `json:"deleting_order_id"`
	DeleteType        string `json:"delete_type"`
	DeleteItemName    string `json:"delete_item_name"`

	Search       string `json:"search"`
	StatusFilter string `json:"status_filter"`
	DateFilter   string `json:"date_filter"`

	Errors FieldErrors `json:"errors,omitempty"`
	Stats  Stats       `json:"stats"`
}

// NewState is the state of a freshly opened dashboard
func NewState() *State {
	return &State{
		ActiveTab:  TabPackages,
		NewPackage: DefaultPackageForm(),
		NewUser:    DefaultUserForm(),
		EditUser:   DefaultUserForm(),
	}
}

// AnyModalOpen reports whether a modal is showing
func (s *State) AnyModalOpen() bool {
	return s.ShowCreatePackageModal || s.ShowEditPackageModal || s.ShowCreateUserModal ||
		s.ShowEditUserModal || s.ShowDeleteModal || s.ShowOrderModal || s.ShowDeleteOrderModal
}

func (s *State) resetDeleteSelection() {
	s.DeletingPackageID = 0
	s.DeletingUserID = 0
	s.DeleteType = ""
	s.DeleteItemName = ""
	s.ShowDeleteModal = false
}
