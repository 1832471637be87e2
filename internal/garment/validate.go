package garment

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func getValidator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate checks the struct constraints on a and its color distribution.
func Validate(a Attributes) error {
	if err := getValidator().Struct(a); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid garment attributes: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid garment attributes: %w", err)
	}
	if err := a.Colors.Validate(); err != nil {
		return fmt.Errorf("invalid garment attributes: %w", err)
	}
	return nil
}
