package field

import "errors"

// ErrInvalidArgument is returned when an Animator cannot be built from the
// given arguments. It is the only failure mode of the package.
var ErrInvalidArgument = errors.New("field: invalid argument")
