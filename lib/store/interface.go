package store

import (
	"fmt"
	"github.com/ValentinKolb/riakpbc/lib/riak"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// Entry is the state of a key: its current vclock and all sibling contents
type Entry struct {
	Key      string
	VClock   []byte
	Contents []riak.Content
}

// IStore is the storage behind the development server. Keys live in buckets; every bucket has
// properties that decide whether concurrent writes are kept as siblings.
// Returned entries are copies owned by the caller.
type IStore interface {
	// Get returns the entry of a key. The boolean return value indicates whether the key exists.
	Get(bucket, key string) (entry Entry, found bool, err error)
	// Put writes content to a key. vclock is the version the writer has seen (empty for a blind
	// write). If the bucket allows multiple values and vclock is not the current one, the
	// content is added as sibling, otherwise it replaces all contents. An empty key is
	// replaced by a generated one. The new state of the key is returned.
	Put(bucket, key string, vclock []byte, content riak.Content) (entry Entry, err error)
	// Delete removes a key. The boolean return value indicates whether the key existed.
	Delete(bucket, key string) (found bool, err error)
	// ListBuckets returns the names of all buckets holding at least one key, sorted.
	ListBuckets() ([]string, error)
	// ListKeys returns all keys of a bucket, sorted.
	ListKeys(bucket string) ([]string, error)
	// BucketProps returns the properties of a bucket (the defaults if never set).
	BucketProps(bucket string) (riak.BucketProperties, error)
	// SetBucketProps replaces the properties of a bucket.
	SetBucketProps(bucket string, props riak.BucketProperties) error
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("StoreError (code %s): %s", e.Code, e.Msg)
}

// NewError creates a new store Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint32

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal error.
	RetCInvalidOperation                // 2: Invalid operation (e.g. empty bucket name).
)

func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidOperation:
		return "InvalidOperation"
	default:
		return "Unknown"
	}
}
