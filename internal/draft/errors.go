package draft

import "errors"

// ErrInvalidDraft indicates a draft file could not be decoded or has
// impossible segment bounds.
var ErrInvalidDraft = errors.New("invalid draft")
