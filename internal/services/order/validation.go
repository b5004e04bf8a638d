package order

import (
	"errors"
	"fmt"
)

// ErrEmptyCart is returned when an order is submitted with no lines
var ErrEmptyCart = errors.New("cart is empty")

type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

func emptyCartError() error {
	return ValidationError{
		Field:   "cart",
		Message: "cart is empty",
		Err:     ErrEmptyCart,
	}
}
