package resolver

import (
	"errors"
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/go-playground/validator/v10"
)

// validate is a singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// ValidateResolution checks the shape of an advisor reply before it is applied.
func ValidateResolution(res *domain.Resolution) error {
	if res == nil {
		return fmt.Errorf("%w: no resolution returned", domain.ErrUnusableResolution)
	}
	if err := validate.Struct(res); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrUnusableResolution, formatValidationError(err))
	}
	if res.Empty() {
		return fmt.Errorf("%w: no changes proposed", domain.ErrUnusableResolution)
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Return the first validation error in a user-friendly format
	for _, e := range validationErrs {
		field := e.Namespace()
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s]", field, e.Param())
		case "gte", "lte":
			return fmt.Errorf("%s: must be within [0, 1]", field)
		case "contains":
			return fmt.Errorf("%s: must contain %q", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
