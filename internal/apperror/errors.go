package apperror

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrValidation        = errors.New("validation failed")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrConflict          = errors.New("concurrent modification, please retry")
	ErrForbidden         = errors.New("forbidden")
)

func NotFound(entity, id string) error {
	return fmt.Errorf("%s %q: %w", entity, id, ErrNotFound)
}

func Validation(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Forbidden(action string) error {
	return fmt.Errorf("%w: %s requires an administrator", ErrForbidden, action)
}

// InsufficientStockError names the counter that would have gone negative.
type InsufficientStockError struct {
	Counter string // "filled", "empty" or "damaged"
	Have    int
	Need    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient %s stock: have %d, need %d", e.Counter, e.Have, e.Need)
}

func (e *InsufficientStockError) Is(target error) bool {
	return target == ErrInsufficientStock
}
