// Package riak defines the domain model of the PBC client: keys, opaque versions, the contents
// of stored values with their metadata, and the fetch result that carries zero, one or several
// sibling contents of a key.
//
// The package focuses on:
//   - Value types owned by the caller (Key, Version, Content, Object)
//   - Explicit conflict handling: a FetchResult is never resolved implicitly
//   - The IClient interface implemented by rpc/client
//
// Fetch Results:
//
//	A FetchResult reports its State():
//
//	  - NotFound: the key holds no content
//	  - Resolved: exactly one content, Resolve() returns it as an Object
//	  - Conflict: several siblings, Resolve() fails with ErrUnresolvedConflict and the
//	    caller picks one with Choose(i). The chosen Object carries the vclock of the
//	    fetch, so storing it back resolves the conflict on the server.
//
// Usage:
//
//	res, err := c.Fetch("users", "alice", riak.QuorumDefault, 0)
//	switch res.State() {
//	case riak.NotFound:
//	  obj = riak.NewObject("users", "alice", value)
//	case riak.Resolved:
//	  obj, _ = res.Resolve()
//	case riak.Conflict:
//	  obj, _ = res.Choose(pickNewest(res.Contents))
//	}
//	obj.SetValue(value)
//	_, err = c.Store(obj, riak.StoreParams{})
package riak
