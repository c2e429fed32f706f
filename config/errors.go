package config

import "errors"

// ErrInvalidConfig is returned for a value outside its documented range.
var ErrInvalidConfig = errors.New("config: invalid value")
