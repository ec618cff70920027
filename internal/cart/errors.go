package cart

import "errors"

var (
	ErrOutOfStock      = errors.New("requested quantity exceeds available stock")
	ErrEmptyCart       = errors.New("cart is empty, nothing to checkout")
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrLineNotFound    = errors.New("item not found in cart")
	ErrCheckedOut      = errors.New("item is already checked out")
)
