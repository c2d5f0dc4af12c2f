package kdtree

import "github.com/pkg/errors"

// ErrInvalidArgument is wrapped by every InvalidArgument failure this
// package raises (inverted AABBSearch box, bucket size < 1). Callers
// can test for it with errors.Is.
var ErrInvalidArgument = errors.New("kdtree: invalid argument")

func invalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
