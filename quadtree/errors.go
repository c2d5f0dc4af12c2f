package quadtree

import "github.com/pkg/errors"

// ErrInvalidArgument is wrapped by every InvalidArgument failure this
// package raises (reduce called with numpts <= 0).
var ErrInvalidArgument = errors.New("quadtree: invalid argument")

func invalidArgument(format string, args ...interface{}) error {
	return errors.Wrapf(ErrInvalidArgument, format, args...)
}
