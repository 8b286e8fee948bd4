// Package pb implements the payload schemas of the PBC protocol (the Rpb*
// messages of the store's riak.proto and riak_kv.proto) on the protobuf wire
// format. Messages are encoded with google.golang.org/protobuf/encoding/protowire
// directly, so no generated code is needed.
//
// Every message implements Message:
//
//   - Size reports the encoded length before serialization, which lets the
//     caller reserve the frame header and body in one allocation.
//   - AppendTo appends the encoding to a buffer.
//   - Unmarshal decodes a body, skipping unknown fields.
//
// Encoding conventions: optional scalar fields holding their zero value are
// omitted (the store treats an absent quorum as "use the bucket default"),
// required fields (bucket, key, value) are always written. Fields whose absence
// must be distinguishable from false/zero, such as the bucket properties, use
// pointers.
package pb
