// Package lstore implements the in-memory store.IStore used by the development server.
// Data is not persisted between process restarts.
//
// Implementation Details:
//
//   - Buckets are kept in an xsync.MapOf, every bucket guards its keys with its own
//     RWMutex, so writes to different buckets never contend.
//
//   - Write Index: an atomic counter incremented by every write. The index of the last
//     write is the vclock of a key (8 bytes, big endian). It also provides the vtag of
//     the written content and the names of generated keys.
//
//   - Siblings: if the bucket allows multiple values, a write whose vclock differs from
//     the current one is appended as sibling. A write carrying the current vclock
//     replaces all siblings, which is how a client resolves a conflict.
//
// Usage Example:
//
//	s := lstore.NewLocalStore(riak.BucketProperties{NValue: 3})
//	entry, err := s.Put("users", "alice", nil, riak.Content{Value: []byte("v1")})
//	entry, found, err := s.Get("users", "alice")
package lstore
