package serverutils

import (
	"errors"

	"github.com/MarkerAnn/wine-backend/internal/pkg/apperror"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest runs struct tag validation and folds failures into the
// invalid-query sentinel so the error middleware answers 400.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}
	var fields validator.ValidationErrors
	if errors.As(err, &fields) && len(fields) > 0 {
		f := fields[0]
		return apperror.Invalid("field %s failed on %s", f.Field(), f.Tag())
	}
	return apperror.Wrap(apperror.ErrInvalidQuery, err)
}
