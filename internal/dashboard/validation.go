package dashboard

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"fitpack_admin/internal/services"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return f.Name
		}
		return name
	})
	// decgte / declte compare decimal strings against the tag parameter
	mustRegister(v, "decgte", decimalBound(func(val, bound decimal.Decimal) bool {
		return val.GreaterThanOrEqual(bound)
	}))
	mustRegister(v, "declte", decimalBound(func(val, bound decimal.Decimal) bool {
		return val.LessThanOrEqual(bound)
	}))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

func decimalBound(cmp func(val, bound decimal.Decimal) bool) validator.Func {
	return func(fl validator.FieldLevel) bool {
		val, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
		if err != nil {
			return false
		}
		bound, err := decimal.NewFromString(fl.Param())
		if err != nil {
			return false
		}
		return cmp(val, bound)
	}
}

// validateForm runs the struct rules, skipping the named fields
func validateForm(form interface{}, except ...string) FieldErrors {
	var err error
	if len(except) > 0 {
		err = validate.StructExcept(form, except...)
	} else {
		err = validate.Struct(form)
	}
	if err == nil {
		return nil
	}

	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return FieldErrors{"form": err.Error()}
	}

	out := FieldErrors{}
	for _, fe := range ves {
		if _, seen := out[fe.Field()]; seen {
			continue
		}
		out[fe.Field()] = fieldMessage(fe)
	}
	return out
}

func fieldMessage(fe validator.FieldError) string {
	label := strings.ReplaceAll(fe.Field(), "_", " ")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("The %s field is required.", label)
	case "max":
		return fmt.Sprintf("The %s field must not be greater than %s characters.", label, fe.Param())
	case "min":
		return fmt.Sprintf("The %s field must be at least %s characters.", label, fe.Param())
	case "email":
		return fmt.Sprintf("The %s field must be a valid email address.", label)
	case "numeric":
		return fmt.Sprintf("The %s field must be a number.", label)
	case "number":
		return fmt.Sprintf("The %s field must be an integer.", label)
	case "decgte":
		return fmt.Sprintf("The %s field must be at least %s.", label, fe.Param())
	case "declte":
		return fmt.Sprintf("The %s field must not be greater than %s.", label, fe.Param())
	case "oneof":
		return fmt.Sprintf("The selected %s is invalid.", label)
	default:
		return fmt.Sprintf("The %s field is invalid.", label)
	}
}

func imageMessage(err error) string {
	switch {
	case errors.Is(err, services.ErrImageTooLarge):
		return fmt.Sprintf("The image field must not be greater than %d kilobytes.", services.MaxImageKB)
	case errors.Is(err, services.ErrNotImage):
		return "The image field must be an image."
	default:
		return "The image failed to upload."
	}
}

// merge adds the entries of other that e does not already hold
func (e FieldErrors) merge(other FieldErrors) FieldErrors {
	if len(other) == 0 {
		return e
	}
	if e == nil {
		e = FieldErrors{}
	}
	for k, v := range other {
		if _, ok := e[k]; !ok {
			e[k] = v
		}
	}
	return e
}
