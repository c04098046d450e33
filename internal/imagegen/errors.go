package imagegen

import "errors"

// ErrInvalidOptions indicates a generator cannot be built from the given options.
var ErrInvalidOptions = errors.New("imagegen: invalid options")
