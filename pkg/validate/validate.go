package validate

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var v = validator.New()

// Struct valida un struct según sus tags `validate` y devuelve un error
// legible con los campos que fallaron.
func Struct(s any) error {
	err := v.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		parts = append(parts, fmt.Sprintf("%s: falla la regla %q", fe.Field(), fe.Tag()))
	}
	return fmt.Errorf("validación: %s", strings.Join(parts, "; "))
}
