package serializer

import "github.com/ValentinKolb/riakpbc/rpc/pb"

// IRPCSerializer converts payloads into frame bodies and back
type IRPCSerializer interface {
	// Serialize appends the body of msg to dst and returns the extended slice.
	// A nil msg produces an empty body.
	Serialize(dst []byte, msg pb.Message) ([]byte, error)
	// Deserialize decodes a frame body into msg.
	// A nil msg accepts an empty body or one whose fields are all ignored.
	Deserialize(b []byte, msg pb.Message) error
}
