package shadow

import "errors"

// errLengthMismatch is returned when two score vectors being compared
// are not the same length, i.e. not aligned to the same node order.
var errLengthMismatch = errors.New("shadow: score vectors have different lengths")
