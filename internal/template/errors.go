package template

import "errors"

// ErrUnknown indicates an invalid snippet format was specified.
var ErrUnknown = errors.New("unknown format")
