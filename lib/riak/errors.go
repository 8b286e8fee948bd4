package riak

import "errors"

var (
	// ErrUnresolvedConflict is returned when a single object is requested from a
	// fetch result that does not hold exactly one content.
	ErrUnresolvedConflict = errors.New("riak: unresolved conflict")

	// ErrIndexOutOfRange is returned when a sibling index is outside of the contents.
	ErrIndexOutOfRange = errors.New("riak: invalid sibling index")

	// ErrInvalidArgument is returned before any I/O when a call argument is unusable.
	ErrInvalidArgument = errors.New("riak: invalid argument")
)
