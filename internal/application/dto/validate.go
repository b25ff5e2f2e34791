package dto

import (
	"errors"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/Gestion-api/internal/domain"
)

// DateLayout formato de las fechas de documento (YYYY-MM-DD).
const DateLayout = "2006-01-02"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// los errores usan el nombre json del campo
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("date", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := time.Parse(DateLayout, s)
		return err == nil
	})
	return v
}

// Validate valida las etiquetas `validate` y devuelve el primer fallo como domain.ValidationError.
func Validate(in any) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return domain.NewValidation("", err.Error())
	}
	fe := verrs[0]
	return domain.NewValidation(fieldPath(fe), reason(fe))
}

// fieldPath quita el nombre del struct raíz: "CreatePurchaseOrderRequest.items[0].product_id" → "items[0].product_id".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "champ obligatoire"
	case "oneof":
		return "valeur non autorisée (" + fe.Param() + ")"
	case "min":
		return "minimum " + fe.Param()
	case "max":
		return "maximum " + fe.Param()
	case "date":
		return "date invalide, format attendu AAAA-MM-JJ"
	default:
		return "valeur invalide (" + fe.Tag() + ")"
	}
}

// ParseDate interpreta una fecha YYYY-MM-DD (UTC).
func ParseDate(field, s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, domain.NewValidation(field, "date invalide, format attendu AAAA-MM-JJ")
	}
	return t, nil
}

// ParseOptionalDate como ParseDate; cadena vacía = nil.
func ParseOptionalDate(field, s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := ParseDate(field, s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate formatea una fecha de documento.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}
