package config

import "errors"

// ErrUnsupportedFormat indicates a file whose extension does not map to any
// supported configuration format.
var ErrUnsupportedFormat = errors.New("unsupported configuration format")
