package lang

import "errors"

// ErrInvalid indicates a language code outside the ISO 639-1 table.
var ErrInvalid = errors.New("invalid language code")
