package validation

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/rahmatfauzi/modular-backend/internal"
)

// Group selects which validation rules apply to a payload. Partial relaxes
// "required" for omitted fields while still enforcing format and length
// constraints on the values that are present.
type Group string

const (
	GroupCreate  Group = "create"
	GroupUpdate  Group = "update"
	GroupPartial Group = "partial"
)

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())

	// report json field names so error properties match the wire format
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	return &Validator{v: v}
}

// Struct validates every tagged field of data and returns a 400 AppError
// aggregating all field failures, or nil.
func (va *Validator) Struct(data interface{}) *internal.AppError {
	return va.toAppError(va.v.Struct(data))
}

// StructPartial validates only the fields of data that carry a value, so a
// PATCH payload may omit required fields without tripping their rules.
func (va *Validator) StructPartial(data interface{}) *internal.AppError {
	fields := presentFields(data)
	if len(fields) == 0 {
		return nil
	}
	return va.toAppError(va.v.StructPartial(data, fields...))
}

// ForGroup dispatches to Struct or StructPartial based on the group.
func (va *Validator) ForGroup(data interface{}, group Group) *internal.AppError {
	if group == GroupPartial {
		return va.StructPartial(data)
	}
	return va.Struct(data)
}

func (va *Validator) toAppError(err error) *internal.AppError {
	if err == nil {
		return nil
	}
	ve, ok := err.(validator.ValidationErrors)
	if !ok {
		return internal.NewInternal("validation failed", err)
	}

	// aggregate constraints per property
	byField := make(map[string]*internal.FieldError)
	var order []string
	for _, fe := range ve {
		name := fe.Field()
		f, exists := byField[name]
		if !exists {
			f = &internal.FieldError{
				Property:    name,
				Value:       fe.Value(),
				Constraints: map[string]string{},
			}
			byField[name] = f
			order = append(order, name)
		}
		f.Constraints[fe.Tag()] = constraintMessage(fe)
	}

	fields := make([]internal.FieldError, 0, len(order))
	for _, name := range order {
		fields = append(fields, *byField[name])
	}
	return internal.NewBadRequest(fields)
}

func constraintMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return field + " must be at least " + fe.Param() + " characters"
	case "max":
		return field + " must not exceed " + fe.Param() + " characters"
	case "oneof":
		return field + " must be one of: " + fe.Param()
	default:
		return field + " failed on the " + fe.Tag() + " constraint"
	}
}

// presentFields returns the Go names of data's exported fields whose values
// are non-zero, i.e. the fields the client actually supplied.
func presentFields(data interface{}) []string {
	rv := reflect.ValueOf(data)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return nil
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return nil
	}

	var names []string
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		if !rv.Field(i).IsZero() {
			names = append(names, f.Name)
		}
	}
	return names
}
