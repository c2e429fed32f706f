package peakio

import "errors"

// ErrFormat is returned for a line that cannot be parsed.
var ErrFormat = errors.New("peakio: malformed input")
