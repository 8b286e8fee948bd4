// Package serializer converts the payloads of the PBC protocol into frame bodies and back.
//
// Key Components:
//
//   - IRPCSerializer: interface used by the client executor and the development server.
//
//   - protobufSerializerImpl: encodes the pb messages in the protobuf wire format spoken by
//     the store. Every message reports its size before encoding, so callers can reserve the
//     frame header in front of the body and write the frame with a single allocation:
//
//     buf := make([]byte, frame.HeaderSize, frame.HeaderSize+msg.Size())
//     buf, err := s.Serialize(buf, msg)
//     frame.PutHeader(buf, code, len(buf)-frame.HeaderSize)
//
// Thread Safety:
//
//	The serializer is stateless and safe for concurrent use across multiple goroutines.
//
// Usage:
//
//	s := serializer.NewProtobufSerializer()
//	body, err := s.Serialize(nil, &pb.RpbGetReq{Bucket: []byte("b"), Key: []byte("k")})
//	// ... send body, receive answer ...
//	var resp pb.RpbGetResp
//	err = s.Deserialize(answer, &resp)
package serializer
