package dashboard

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"fitpack_admin/internal/models"
	"fitpack_admin/internal/services"
)

// OpenCreatePackageModal shows a blank create form
func (d *Dashboard) OpenCreatePackageModal(st *State) {
	st.NewPackage = DefaultPackageForm()
	st.Errors = nil
	st.ShowCreatePackageModal = true
}

// OpenEditPackageModal loads a package into the edit form
func (d *Dashboard) OpenEditPackageModal(ctx context.Context, st *State, id uint) Result {
	p, err := d.store.FindProduct(ctx, id)
	if err != nil {
		return failureErr("Error opening package edit: ", err)
	}
	st.EditingPackageID = p.ID
	st.EditPackage = packageFormFrom(p)
	st.Errors = nil
	st.ShowEditPackageModal = true
	return Result{}
}

// OpenDeletePackageModal asks for confirmation before deleting a package
func (d *Dashboard) OpenDeletePackageModal(ctx context.Context, st *State, id uint) Result {
	p, err := d.store.FindProduct(ctx, id)
	if err != nil {
		return failureErr("Error opening delete confirmation: ", err)
	}
	st.DeletingPackageID = p.ID
	st.DeletingUserID = 0
	st.DeleteType = DeletePackage
	st.DeleteItemName = p.Name
	st.ShowDeleteModal = true
	return Result{}
}

// MaxDurationMonths caps a package duration at 100 years
const MaxDurationMonths = 1200

// packageValues is a validated package form
type packageValues struct {
	name, description, category, features string
	price, discount                       decimal.Decimal
	durationDays                          int
	isActive                              bool
	image                                 *services.PreparedImage
}

// checkPackageForm validates the form and upload together so that every
// field error is reported at once.
func (d *Dashboard) checkPackageForm(form PackageForm, upload *Upload) (*packageValues, FieldErrors) {
	errs := validateForm(form)

	var img *services.PreparedImage
	if upload != nil {
		prepared, err := d.images.Prepare(upload.Data)
		if err != nil {
			d.log.Debug("rejected upload", zap.String("filename", upload.Filename), zap.Error(err))
			errs = errs.merge(FieldErrors{"image": imageMessage(err)})
		} else {
			img = prepared
		}
	}
	months, err := strconv.Atoi(strings.TrimSpace(form.DurationMonths))
	if _, bad := errs["duration_months"]; !bad && (err != nil || months < 1 || months > MaxDurationMonths) {
		errs = errs.merge(FieldErrors{"duration_months": fmt.Sprintf("The duration months field must not be greater than %d.", MaxDurationMonths)})
	}
	if len(errs) > 0 {
		return nil, errs
	}

	// already validated as decimal strings
	price, _ := decimal.NewFromString(strings.TrimSpace(form.Price))
	discount, _ := decimal.NewFromString(strings.TrimSpace(form.DiscountPercentage))

	return &packageValues{
		name:         form.Name,
		description:  form.Description,
		category:     form.Category,
		features:     form.Features,
		price:        price,
		discount:     discount,
		durationDays: months * models.DaysPerMonth,
		isActive:     form.IsActive,
		image:        img,
	}, nil
}

func (v *packageValues) applyTo(p *models.Product) {
	p.Name = v.name
	p.Description = v.description
	p.Price = v.price
	p.Category = v.category
	p.DurationDays = v.durationDays
	p.DiscountPercentage = v.discount
	p.Features = v.features
	p.IsActive = v.isActive
}

// CreatePackage validates the create form and inserts a package
func (d *Dashboard) CreatePackage(ctx context.Context, st *State, upload *Upload) Result {
	vals, errs := d.checkPackageForm(st.NewPackage, upload)
	if errs != nil {
		st.Errors = errs
		return Result{}
	}
	st.Errors = nil

	var storedKey string
	err := d.store.Transaction(ctx, func(tx Store) error {
		p := &models.Product{Images: datatypes.JSONSlice[string]{}}
		vals.applyTo(p)

		if vals.image != nil {
			key, ref, err := d.storeImage(ctx, vals.image)
			if err != nil {
				return err
			}
			storedKey = key
			p.MainImage = &ref
			p.Images = datatypes.JSONSlice[string]{ref}
		}

		return tx.CreateProduct(ctx, p)
	})
	if err != nil {
		d.discardFile(ctx, storedKey)
		d.log.Error("create package", zap.Error(err))
		return failureErr("Error creating package: ", err)
	}

	st.NewPackage = DefaultPackageForm()
	st.ShowCreatePackageModal = false
	d.LoadStats(ctx, st)
	return success("Package created successfully!", SignalPackageCreated)
}

// UpdatePackage saves the edit form onto the selected package. Without a
// new upload the existing images are kept untouched.
func (d *Dashboard) UpdatePackage(ctx context.Context, st *State, upload *Upload) Result {
	if st.EditingPackageID == 0 {
		return failure("No package selected for update.")
	}

	vals, errs := d.checkPackageForm(st.EditPackage, upload)
	if errs != nil {
		st.Errors = errs
		return Result{}
	}
	st.Errors = nil

	var storedKey string
	err := d.store.Transaction(ctx, func(tx Store) error {
		p, err := tx.FindProduct(ctx, st.EditingPackageID)
		if err != nil {
			return err
		}
		vals.applyTo(p)

		if vals.image != nil {
			if err := d.removeManagedFile(ctx, p.MainImage); err != nil {
				return fmt.Errorf("remove old image: %w", err)
			}
			key, ref, err := d.storeImage(ctx, vals.image)
			if err != nil {
				return err
			}
			storedKey = key
			p.MainImage = &ref
			p.Images = datatypes.JSONSlice[string]{ref}
		}

		return tx.UpdateProduct(ctx, p)
	})
	if err != nil {
		d.discardFile(ctx, storedKey)
		d.log.Error("update package", zap.Uint("package_id", st.EditingPackageID), zap.Error(err))
		return failureErr("Error updating package: ", err)
	}

	st.EditPackage = PackageForm{}
	st.EditingPackageID = 0
	st.ShowEditPackageModal = false
	d.LoadStats(ctx, st)
	return success("Package updated successfully!", SignalPackageUpdated)
}

// DeletePackage removes the selected package and its stored image
func (d *Dashboard) DeletePackage(ctx context.Context, st *State) Result {
	if st.DeletingPackageID == 0 {
		return failure("No package selected for deletion.")
	}

	var name string
	err := d.store.Transaction(ctx, func(tx Store) error {
		p, err := tx.FindProduct(ctx, st.DeletingPackageID)
		if err != nil {
			return err
		}
		if err := d.removeManagedFile(ctx, p.MainImage); err != nil {
			return fmt.Errorf("remove image: %w", err)
		}
		name = p.Name
		return tx.DeleteProduct(ctx, p.ID)
	})
	if err != nil {
		d.log.Error("delete package", zap.Uint("package_id", st.DeletingPackageID), zap.Error(err))
		return failureErr("Error deleting package: ", err)
	}

	st.resetDeleteSelection()
	d.LoadStats(ctx, st)
	return success(`Package "`+name+`" has been deleted successfully!`, SignalPackageDeleted)
}

// TogglePackageStatus flips is_active outside the modal workflow
func (d *Dashboard) TogglePackageStatus(ctx context.Context, st *State, id uint) Result {
	p, err := d.store.FindProduct(ctx, id)
	if err != nil {
		return failureErr("Error updating product status: ", err)
	}
	p.IsActive = !p.IsActive
	if err := d.store.UpdateProduct(ctx, p); err != nil {
		return failureErr("Error updating product status: ", err)
	}

	status := "deactivated"
	if p.IsActive {
		status = "activated"
	}
	d.LoadStats(ctx, st)
	return Result{Notice: &Notice{Kind: NoticeMessage, Text: "Product " + status + " successfully!"}}
}
