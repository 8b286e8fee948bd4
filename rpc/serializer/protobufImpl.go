package serializer

import (
	"errors"
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
)

// ErrSizeMismatch is returned if a payload encodes to a different length than it announced
var ErrSizeMismatch = errors.New("serializer: encoded size does not match announced size")

// NewProtobufSerializer creates a new serializer using the protobuf wire format of the store
func NewProtobufSerializer() IRPCSerializer {
	return &protobufSerializerImpl{}
}

// protobufSerializerImpl implements IRPCSerializer with the pb message codecs
type protobufSerializerImpl struct {
}

// --------------------------------------------------------------------------
// Interface Methods (docu see serializer.IRPCSerializer)
// --------------------------------------------------------------------------

func (s protobufSerializerImpl) Serialize(dst []byte, msg pb.Message) ([]byte, error) {
	if msg == nil {
		return dst, nil
	}

	size := msg.Size()
	start := len(dst)

	// grow once so the append below never reallocates
	if cap(dst)-start < size {
		grown := make([]byte, start, start+size)
		copy(grown, dst)
		dst = grown
	}

	dst = msg.AppendTo(dst)
	if n := len(dst) - start; n != size {
		return nil, fmt.Errorf("%w: %T announced %d bytes, wrote %d", ErrSizeMismatch, msg, size, n)
	}
	return dst, nil
}

func (s protobufSerializerImpl) Deserialize(b []byte, msg pb.Message) error {
	if msg == nil {
		msg = pb.Empty{}
	}
	if err := msg.Unmarshal(b); err != nil {
		return fmt.Errorf("serializer: decoding %T: %w", msg, err)
	}
	return nil
}
