package dashboard

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"fitpack_admin/internal/models"
	"fitpack_admin/internal/services"
)

func validUserForm() UserForm {
	return UserForm{
		Name:      "Priya Sharma",
		Email:     "priya@example.com",
		Password:  "correct-horse",
		Phone:     "+91 98765 43210",
		Gender:    "female",
		IsTrainer: true,
	}
}

func TestCreateUser(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	st := NewState()
	d.OpenCreateUserModal(st)
	st.NewUser = validUserForm()

	res := d.CreateUser(ctx, st)

	if got := noticeText(res); got != "User created successfully!" {
		t.Fatalf("notice = %q; errors = %v", got, st.Errors)
	}
	if !reflect.DeepEqual(res.Signals, []string{SignalUserCreated}) {
		t.Errorf("signals = %v", res.Signals)
	}
	if len(store.users) != 1 {
		t.Fatalf("users = %d", len(store.users))
	}
	for _, u := range store.users {
		if u.Password == "correct-horse" || !(&services.BcryptHasher{}).Matches(u.Password, "correct-horse") {
			t.Error("password not stored as a bcrypt hash")
		}
		if u.Role != models.RoleTrainer {
			t.Errorf("Role = %q; want trainer", u.Role)
		}
		if u.EmailVerifiedAt == nil || !u.EmailVerifiedAt.Equal(testNow) {
			t.Errorf("EmailVerifiedAt = %v", u.EmailVerifiedAt)
		}
		if u.Gender != models.GenderFemale {
			t.Errorf("Gender = %q", u.Gender)
		}
	}
	if !reflect.DeepEqual(store.roleSyncs, []models.Role{models.RoleTrainer}) {
		t.Errorf("role syncs = %v", store.roleSyncs)
	}
	if st.ShowCreateUserModal || st.NewUser != DefaultUserForm() {
		t.Error("create modal not closed and reset")
	}
}

func TestCreateUserAssignsMemberRole(t *testing.T) {
	d, store, _ := newTestDashboard(t)
	st := NewState()
	st.NewUser = validUserForm()
	st.NewUser.IsTrainer = false

	d.CreateUser(context.Background(), st)

	for _, u := range store.users {
		if u.Role != models.RoleMember {
			t.Errorf("Role = %q; want member", u.Role)
		}
	}
}

func TestCreateUserValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(f *UserForm)
		field   string
		message string
	}{
		{
			name:    "short password",
			mutate:  func(f *UserForm) { f.Password = "short" },
			field:   "password",
			message: "The password field must be at least 8 characters.",
		},
		{
			name:    "bad email",
			mutate:  func(f *UserForm) { f.Email = "not-an-email" },
			field:   "email",
			message: "The email field must be a valid email address.",
		},
		{
			name:    "duplicate email",
			mutate:  func(f *UserForm) { f.Email = "taken@example.com" },
			field:   "email",
			message: "The email has already been taken.",
		},
		{
			name:    "unknown gender",
			mutate:  func(f *UserForm) { f.Gender = "robot" },
			field:   "gender",
			message: "The selected gender is invalid.",
		},
		{
			name:    "long phone",
			mutate:  func(f *UserForm) { f.Phone = strings.Repeat("9", 21) },
			field:   "phone",
			message: "The phone field must not be greater than 20 characters.",
		},
		{
			name:    "missing name",
			mutate:  func(f *UserForm) { f.Name = "" },
			field:   "name",
			message: "The name field is required.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, store, _ := newTestDashboard(t)
			store.addUser(models.User{Name: "Existing", Email: "taken@example.com"})
			st := NewState()
			st.NewUser = validUserForm()
			tt.mutate(&st.NewUser)

			res := d.CreateUser(context.Background(), st)

			if got := st.Errors[tt.field]; got != tt.message {
				t.Errorf("errors[%s] = %q; want %q (all: %v)", tt.field, got, tt.message, st.Errors)
			}
			if res.Notice != nil {
				t.Errorf("unexpected notice %q", res.Notice.Text)
			}
			if len(store.users) != 1 {
				t.Error("user created despite validation errors")
			}
		})
	}
}

func TestCreateUserRollsBackRoleFailure(t *testing.T) {
	d, store, _ := newTestDashboard(t)
	store.failOn["SyncRole"] = errors.New("role table locked")
	st := NewState()
	st.ShowCreateUserModal = true
	st.NewUser = validUserForm()

	res := d.CreateUser(context.Background(), st)

	if got := noticeText(res); got != "Error creating user: role table locked" {
		t.Errorf("notice = %q", got)
	}
	if len(store.users) != 0 {
		t.Error("user row survived a rolled back transaction")
	}
	if !st.ShowCreateUserModal {
		t.Error("modal should stay open")
	}
}

func TestUpdateUserRoleSync(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	u := store.addUser(models.User{Name: "Leo", Email: "leo@example.com", Gender: models.GenderMale, Role: models.RoleMember})

	st := NewState()
	d.OpenEditUserModal(ctx, st, u.ID)
	st.EditUser.Phone = "555-0100"

	// same email, same role: no re-sync
	res := d.UpdateUser(ctx, st)
	if got := noticeText(res); got != "User updated successfully!" {
		t.Fatalf("notice = %q; errors = %v", got, st.Errors)
	}
	if len(store.roleSyncs) != 0 {
		t.Errorf("unexpected role sync: %v", store.roleSyncs)
	}
	if store.users[u.ID].Phone != "555-0100" {
		t.Errorf("Phone = %q", store.users[u.ID].Phone)
	}

	d.OpenEditUserModal(ctx, st, u.ID)
	st.EditUser.IsTrainer = true
	res = d.UpdateUser(ctx, st)
	if !reflect.DeepEqual(res.Signals, []string{SignalUserUpdated}) {
		t.Errorf("signals = %v", res.Signals)
	}
	if !reflect.DeepEqual(store.roleSyncs, []models.Role{models.RoleTrainer}) {
		t.Errorf("role syncs = %v", store.roleSyncs)
	}
	if got := store.users[u.ID]; got.Role != models.RoleTrainer || !got.IsTrainer {
		t.Errorf("user = %+v", got)
	}
	if st.EditingUserID != 0 || st.ShowEditUserModal {
		t.Error("edit state not reset")
	}
}

func TestUpdateUserEmailUniqueness(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	store.addUser(models.User{Name: "Other", Email: "other@example.com"})
	u := store.addUser(models.User{Name: "Mia", Email: "mia@example.com", Gender: models.GenderFemale})

	st := NewState()
	d.OpenEditUserModal(ctx, st, u.ID)
	st.EditUser.Email = "other@example.com"

	d.UpdateUser(ctx, st)

	if got := st.Errors["email"]; got != "The email has already been taken." {
		t.Errorf("email error = %q", got)
	}
	if _, ok := st.Errors["password"]; ok {
		t.Error("password must not be validated on update")
	}
	if store.users[u.ID].Email != "mia@example.com" {
		t.Error("email changed despite the conflict")
	}
}

func TestDeleteUserSelfGuard(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	admin := store.addUser(models.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true})

	st := NewState()
	d.OpenDeleteUserModal(ctx, st, admin.ID)
	res := d.ConfirmDelete(ctx, st, admin.ID)

	if got := noticeText(res); got != "Error deleting user: You cannot delete your own account." {
		t.Errorf("notice = %q", got)
	}
	if _, ok := store.users[admin.ID]; !ok {
		t.Fatal("admin row was deleted")
	}
	if len(res.Signals) != 0 {
		t.Errorf("signals = %v", res.Signals)
	}
}

func TestDeleteUser(t *testing.T) {
	ctx := context.Background()
	d, store, _ := newTestDashboard(t)
	admin := store.addUser(models.User{Name: "Admin", Email: "admin@example.com", IsAdmin: true})
	jane := store.addUser(models.User{Name: "Jane", Email: "jane@example.com"})
	store.addOrder(models.Order{UserID: jane.ID, Status: models.OrderStatusCompleted})

	st := NewState()
	d.OpenDeleteUserModal(ctx, st, jane.ID)
	if st.DeleteType != DeleteUser || st.DeleteItemName != "Jane" {
		t.Fatalf("delete modal state = %+v", st)
	}
	res := d.ConfirmDelete(ctx, st, admin.ID)

	if got := noticeText(res); got != `User "Jane" has been deleted successfully!` {
		t.Fatalf("notice = %q", got)
	}
	if !reflect.DeepEqual(res.Signals, []string{SignalUserDeleted}) {
		t.Errorf("signals = %v", res.Signals)
	}
	if _, ok := store.users[jane.ID]; ok {
		t.Error("user still present")
	}
	if len(store.orders) != 0 {
		t.Error("orders of a deleted user should be gone")
	}
	if st.Stats.TotalUsers != 1 || st.Stats.TotalOrders != 0 {
		t.Errorf("stats = %+v", st.Stats)
	}
	if st.ShowDeleteModal || st.DeletingUserID != 0 {
		t.Error("delete state not reset")
	}
}

func TestDeleteUserRequiresSelection(t *testing.T) {
	d, _, _ := newTestDashboard(t)
	res := d.DeleteUser(context.Background(), NewState(), 1)
	if got := noticeText(res); got != "No user selected for deletion." {
		t.Errorf("notice = %q", got)
	}
}
