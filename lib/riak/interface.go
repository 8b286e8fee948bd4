package riak

import (
	"iter"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IClient is the interface of a client connected to one node of the store.
// A client runs one request at a time and must not be shared between goroutines.
// Failures of the connection are returned to the caller, nothing is retried.
// After a transport or framing error the connection is closed and every later
// call fails with a transport error.
type IClient interface {
	// Ping checks that the node answers.
	Ping() error

	// Fetch returns all contents of a key. A key without content yields a
	// result in state NotFound, not an error. Conflicts are never resolved automatically.
	Fetch(bucket, key string, r, pr Quorum) (*FetchResult, error)
	// Store writes the content of obj using its vclock (empty for new objects).
	// An empty key lets the server generate one. The result is nil unless
	// params.ReturnBody is set.
	Store(obj *Object, params StoreParams) (*FetchResult, error)
	// Delete removes a key.
	Delete(bucket, key string, rw Quorum) error
	// DeleteVClock removes a key in the version it was read at.
	DeleteVClock(version Version, rw Quorum) error

	// FetchBucketProperties returns the properties of a bucket.
	FetchBucketProperties(bucket string) (BucketProperties, error)
	// SetBucketProperties changes the properties of a bucket.
	SetBucketProperties(bucket string, props BucketProperties) error

	// ListBuckets returns the names of all buckets.
	ListBuckets() ([]string, error)
	// ListKeys returns all keys of a bucket, collected from every streamed batch.
	ListKeys(bucket string) ([]string, error)
	// StreamKeys yields the keys of a bucket batch by batch as they arrive. The stream
	// ends after the last batch or the first error. Stopping early reads the remaining
	// batches so the connection can be used again. If reading these batches fails the
	// error is only logged and every later call returns a transport error.
	StreamKeys(bucket string) iter.Seq2[[]string, error]

	// ClientID returns the opaque client id of the connection.
	ClientID() ([]byte, error)
	// SetClientID sets the client id of the connection. The id must have 4 bytes,
	// they are sent as given.
	SetClientID(id []byte) error
	// ServerInfo returns the name and version of the node.
	ServerInfo() (ServerInfo, error)

	// Close closes the connection.
	Close() error
}
