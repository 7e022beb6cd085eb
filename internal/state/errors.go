package state

import "errors"

// ErrProductNotFound is set on the detail state when the product does not exist.
var ErrProductNotFound = errors.New("product not found")
