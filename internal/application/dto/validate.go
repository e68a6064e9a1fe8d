package dto

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/jhoicas/dresssync-api/internal/domain"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func engine() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Usar el nombre JSON del campo en los mensajes
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// Validate aplica las reglas de los tags `validate` y devuelve un *domain.ValidationError
// con un mensaje por campo inválido.
func Validate(v any) error {
	err := engine().Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewValidationError(err.Error())
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, fmt.Sprintf("%s: %s", fieldPath(e), message(e)))
	}
	return domain.NewValidationError(msgs...)
}

// fieldPath quita el nombre del struct raíz: "CreateOrderRequest.lines[0].color" -> "lines[0].color".
func fieldPath(e validator.FieldError) string {
	ns := e.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return e.Field()
}

func message(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "es requerido"
	case "email":
		return "email inválido"
	case "min":
		if e.Kind() == reflect.String {
			return "debe tener al menos " + e.Param() + " caracteres"
		}
		if e.Kind() == reflect.Slice || e.Kind() == reflect.Map {
			return "debe tener al menos " + e.Param() + " elementos"
		}
		return "debe ser al menos " + e.Param()
	case "max":
		if e.Kind() == reflect.String {
			return "debe tener como máximo " + e.Param() + " caracteres"
		}
		return "debe ser como máximo " + e.Param()
	case "oneof":
		return "debe ser uno de: " + e.Param()
	case "gte":
		return "debe ser mayor o igual a " + e.Param()
	case "lte":
		return "debe ser menor o igual a " + e.Param()
	case "uuid":
		return "UUID inválido"
	default:
		return "valor inválido"
	}
}
