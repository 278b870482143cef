package errors

import (
	"fmt"
)

var (
	ErrNotFound   = fmt.Errorf("not found")
	ErrValidation = fmt.Errorf("validation failed")
	// ErrDataLoad marks a shard that could not be read or parsed. It is logged
	// and recovered by the catalog, never returned to API callers.
	ErrDataLoad = fmt.Errorf("data load failed")
)
