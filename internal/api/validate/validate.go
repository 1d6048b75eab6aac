package validate

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/baharkarakas/reliefshare/internal/models"
)

type ErrField struct {
	Field string `json:"field"`
	Msg   string `json:"msg"`
}

type Errs []ErrField

func (e Errs) Error() string {
	var b strings.Builder
	for i, ef := range e {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(ef.Field + ": " + ef.Msg)
	}
	return b.String()
}

func (e *Errs) Add(field, msg string) { *e = append(*e, ErrField{Field: field, Msg: msg}) }

// Err returns nil for an empty list so callers can `return errs.Err()`.
func (e Errs) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New(validator.WithRequiredStructEnabled())
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = val.RegisterValidation("resourcetype", func(fl validator.FieldLevel) bool {
		return models.IsResourceType(fl.Field().String())
	})
	return val
}

// Struct runs the `validate` tags on s and converts failures into Errs keyed
// by json field name.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return err
	}
	out := make(Errs, 0, len(ves))
	for _, fe := range ves {
		out = append(out, ErrField{Field: fieldPath(fe), Msg: message(fe)})
	}
	return out
}

// fieldPath drops the top-level struct name from the namespace,
// e.g. "CreateResourceInput.types[1]" -> "types[1]".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if _, rest, ok := strings.Cut(ns, "."); ok {
		return rest
	}
	return fe.Field()
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "required"
	case "min":
		if fe.Kind() == reflect.Slice {
			return "must contain at least " + fe.Param() + " item(s)"
		}
		if fe.Kind() == reflect.String {
			return "must be at least " + fe.Param() + " characters"
		}
		return "must be >= " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return "must be at most " + fe.Param() + " characters"
		}
		return "must be <= " + fe.Param()
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "email":
		return "must be a valid email address"
	case "resourcetype":
		names := make([]string, 0, len(models.ResourceTypes))
		for _, t := range models.ResourceTypes {
			names = append(names, string(t))
		}
		return "must be one of: " + strings.Join(names, ", ")
	default:
		return "invalid (" + fe.Tag() + ")"
	}
}
