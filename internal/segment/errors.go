package segment

import "errors"

// ErrInvalidConfig indicates segmentation parameters that cannot produce a result,
// such as a non-positive window or an overlap that would never advance.
var ErrInvalidConfig = errors.New("invalid segmentation config")
