package checkout

import "errors"

var (
	ErrEmptyCart  = errors.New("cart is empty, nothing to checkout")
	ErrSaveFailed = errors.New("failed to save customer record")
)
