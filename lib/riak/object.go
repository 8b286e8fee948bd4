package riak

import (
	"fmt"
)

// --------------------------------------------------------------------------
// Object
// --------------------------------------------------------------------------

// Object is a single content together with the version it was read at
type Object struct {
	Version Version
	Content Content
}

// NewObject creates an object for a key that was not read before (empty vclock)
func NewObject(bucket, key string, value []byte) *Object {
	return &Object{
		Version: Version{Key: Key{Bucket: bucket, Key: key}},
		Content: Content{Value: value},
	}
}

func (o *Object) Bucket() string { return o.Version.Key.Bucket }

func (o *Object) Key() string { return o.Version.Key.Key }

func (o *Object) VClock() []byte { return o.Version.VClock }

// SetValue replaces the value that will be written by the next store
func (o *Object) SetValue(value []byte) {
	o.Content.Value = value
}

// --------------------------------------------------------------------------
// Fetch result
// --------------------------------------------------------------------------

// FetchState tells how many contents a fetch returned
type FetchState uint8

const (
	NotFound FetchState = iota
	Resolved
	Conflict
)

func (s FetchState) String() string {
	switch s {
	case NotFound:
		return "not found"
	case Resolved:
		return "resolved"
	case Conflict:
		return "conflict"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(s))
	}
}

// FetchResult holds all siblings of a key and the version they were read at
type FetchResult struct {
	Version  Version
	Contents []Content
}

// State returns NotFound for zero contents, Resolved for one and Conflict for more
func (r *FetchResult) State() FetchState {
	switch len(r.Contents) {
	case 0:
		return NotFound
	case 1:
		return Resolved
	default:
		return Conflict
	}
}

// SiblingCount returns the number of contents
func (r *FetchResult) SiblingCount() int { return len(r.Contents) }

// Empty reports whether the key holds no content
func (r *FetchResult) Empty() bool { return len(r.Contents) == 0 }

// Resolve returns the only content as object. It fails with ErrUnresolvedConflict
// unless the result holds exactly one content.
func (r *FetchResult) Resolve() (*Object, error) {
	if len(r.Contents) != 1 {
		return nil, fmt.Errorf("%w: %s has %d siblings", ErrUnresolvedConflict, r.Version.Key, len(r.Contents))
	}
	return r.object(r.Contents[0]), nil
}

// Choose returns sibling i as object carrying the version of the fetch.
// Storing the object replaces all siblings the fetch has seen.
func (r *FetchResult) Choose(i int) (*Object, error) {
	c, err := ChooseContent(r.Contents, i)
	if err != nil {
		return nil, err
	}
	return r.object(c), nil
}

func (r *FetchResult) object(c Content) *Object {
	return &Object{Version: r.Version, Content: c}
}

// ChooseContent returns contents[i] or ErrIndexOutOfRange
func ChooseContent(contents []Content, i int) (Content, error) {
	if i < 0 || i >= len(contents) {
		return Content{}, fmt.Errorf("%w: %d of %d", ErrIndexOutOfRange, i, len(contents))
	}
	return contents[i], nil
}
