package dashboard

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"fitpack_admin/internal/models"
)

// OpenCreateUserModal shows a blank user form
func (d *Dashboard) OpenCreateUserModal(st *State) {
	st.NewUser = DefaultUserForm()
	st.Errors = nil
	st.ShowCreateUserModal = true
}

// OpenEditUserModal loads a user into the edit form
func (d *Dashboard) OpenEditUserModal(ctx context.Context, st *State, id uint) Result {
	u, err := d.store.FindUser(ctx, id)
	if err != nil {
		return failureErr("Error opening user edit: ", err)
	}
	st.EditingUserID = u.ID
	st.EditUser = userFormFrom(u)
	st.Errors = nil
	st.ShowEditUserModal = true
	return Result{}
}

// OpenDeleteUserModal asks for confirmation before deleting a user
func (d *Dashboard) OpenDeleteUserModal(ctx context.Context, st *State, id uint) Result {
	u, err := d.store.FindUser(ctx, id)
	if err != nil {
		return failureErr("Error opening delete confirmation: ", err)
	}
	st.DeletingUserID = u.ID
	st.DeletingPackageID = 0
	st.DeleteType = DeleteUser
	st.DeleteItemName = u.Name
	st.ShowDeleteModal = true
	return Result{}
}

// checkUserForm validates the form and e-mail uniqueness. exceptID skips
// the row being edited; a zero exceptID also validates the password.
func (d *Dashboard) checkUserForm(ctx context.Context, form UserForm, exceptID uint) (FieldErrors, error) {
	var errs FieldErrors
	if exceptID == 0 {
		errs = validateForm(form)
	} else {
		errs = validateForm(form, "Password")
	}

	if _, bad := errs["email"]; !bad {
		taken, err := d.store.EmailTaken(ctx, strings.TrimSpace(form.Email), exceptID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs = errs.merge(FieldErrors{"email": "The email has already been taken."})
		}
	}
	return errs, nil
}

// CreateUser validates the new user form, hashes the password and assigns
// the member or trainer role.
func (d *Dashboard) CreateUser(ctx context.Context, st *State) Result {
	form := st.NewUser
	errs, err := d.checkUserForm(ctx, form, 0)
	if err != nil {
		return failureErr("Error creating user: ", err)
	}
	if len(errs) > 0 {
		st.Errors = errs
		return Result{}
	}
	st.Errors = nil

	hashed, err := d.hasher.Hash(form.Password)
	if err != nil {
		return failureErr("Error creating user: ", err)
	}

	err = d.store.Transaction(ctx, func(tx Store) error {
		verified := d.now()
		u := &models.User{
			Name:            form.Name,
			Email:           strings.TrimSpace(form.Email),
			Password:        hashed,
			Phone:           form.Phone,
			Gender:          models.Gender(form.Gender),
			IsTrainer:       form.IsTrainer,
			EmailVerifiedAt: &verified,
		}
		if err := tx.CreateUser(ctx, u); err != nil {
			return err
		}
		return tx.SyncRole(ctx, u.ID, models.RoleFor(form.IsTrainer))
	})
	if err != nil {
		d.log.Error("create user", zap.Error(err))
		return failureErr("Error creating user: ", err)
	}

	st.NewUser = DefaultUserForm()
	st.ShowCreateUserModal = false
	d.LoadStats(ctx, st)
	return success("User created successfully!", SignalUserCreated)
}

// UpdateUser saves the edit form and re-syncs the role when it changed
func (d *Dashboard) UpdateUser(ctx context.Context, st *State) Result {
	if st.EditingUserID == 0 {
		return failure("No user selected for update.")
	}

	form := st.EditUser
	errs, err := d.checkUserForm(ctx, form, st.EditingUserID)
	if err != nil {
		return failureErr("Error updating user: ", err)
	}
	if len(errs) > 0 {
		st.Errors = errs
		return Result{}
	}
	st.Errors = nil

	err = d.store.Transaction(ctx, func(tx Store) error {
		u, err := tx.FindUser(ctx, st.EditingUserID)
		if err != nil {
			return err
		}
		u.Name = form.Name
		u.Email = strings.TrimSpace(form.Email)
		u.Phone = form.Phone
		u.Gender = models.Gender(form.Gender)
		u.IsTrainer = form.IsTrainer
		if err := tx.UpdateUser(ctx, u); err != nil {
			return err
		}

		role := models.RoleFor(form.IsTrainer)
		if !u.HasRole(role) {
			return tx.SyncRole(ctx, u.ID, role)
		}
		return nil
	})
	if err != nil {
		d.log.Error("update user", zap.Uint("user_id", st.EditingUserID), zap.Error(err))
		return failureErr("Error updating user: ", err)
	}

	st.EditUser = DefaultUserForm()
	st.EditingUserID = 0
	st.ShowEditUserModal = false
	d.LoadStats(ctx, st)
	return success("User updated successfully!", SignalUserUpdated)
}

// DeleteUser removes the selected user. The acting admin can never delete
// their own account.
func (d *Dashboard) DeleteUser(ctx context.Context, st *State, actorID uint) Result {
	if st.DeletingUserID == 0 {
		return failure("No user selected for deletion.")
	}

	var name string
	err := d.store.Transaction(ctx, func(tx Store) error {
		u, err := tx.FindUser(ctx, st.DeletingUserID)
		if err != nil {
			return err
		}
		if u.ID == actorID {
			return ErrSelfDelete
		}
		name = u.Name
		if err := tx.DeleteUser(ctx, u.ID); err != nil {
			return fmt.Errorf("delete user %d: %w", u.ID, err)
		}
		return nil
	})
	if err != nil {
		d.log.Warn("delete user", zap.Uint("user_id", st.DeletingUserID), zap.Error(err))
		return failureErr("Error deleting user: ", err)
	}

	st.resetDeleteSelection()
	d.LoadStats(ctx, st)
	return success(`User "`+name+`" has been deleted successfully!`, SignalUserDeleted)
}
