package common

import (
	"encoding/json"
	"fmt"
)

// --------------------------------------------------------------------------
// Message Code Definition
// --------------------------------------------------------------------------

// MessageCode is the one byte tag that follows the length prefix of every frame.
// It tells the receiver which payload schema the frame body is encoded with.
type MessageCode uint8

// --------------------------------------------------------------------------
// Message Code Constants
// --------------------------------------------------------------------------

const (
	// Error response (reserved, valid as answer to every request)

	MsgErrorResp MessageCode = 0

	// Node operations

	MsgPingReq           MessageCode = 1
	MsgPingResp          MessageCode = 2
	MsgGetClientIdReq    MessageCode = 3
	MsgGetClientIdResp   MessageCode = 4
	MsgSetClientIdReq    MessageCode = 5
	MsgSetClientIdResp   MessageCode = 6
	MsgGetServerInfoReq  MessageCode = 7
	MsgGetServerInfoResp MessageCode = 8

	// Object operations

	MsgGetReq  MessageCode = 9
	MsgGetResp MessageCode = 10
	MsgPutReq  MessageCode = 11
	MsgPutResp MessageCode = 12
	MsgDelReq  MessageCode = 13
	MsgDelResp MessageCode = 14

	// Bucket operations

	MsgListBucketsReq  MessageCode = 15
	MsgListBucketsResp MessageCode = 16
	MsgListKeysReq     MessageCode = 17
	MsgListKeysResp    MessageCode = 18
	MsgGetBucketReq    MessageCode = 19
	MsgGetBucketResp   MessageCode = 20
	MsgSetBucketReq    MessageCode = 21
	MsgSetBucketResp   MessageCode = 22
)

var messageCodeNames = map[MessageCode]string{
	MsgErrorResp:         "RpbErrorResp",
	MsgPingReq:           "RpbPingReq",
	MsgPingResp:          "RpbPingResp",
	MsgGetClientIdReq:    "RpbGetClientIdReq",
	MsgGetClientIdResp:   "RpbGetClientIdResp",
	MsgSetClientIdReq:    "RpbSetClientIdReq",
	MsgSetClientIdResp:   "RpbSetClientIdResp",
	MsgGetServerInfoReq:  "RpbGetServerInfoReq",
	MsgGetServerInfoResp: "RpbGetServerInfoResp",
	MsgGetReq:            "RpbGetReq",
	MsgGetResp:           "RpbGetResp",
	MsgPutReq:            "RpbPutReq",
	MsgPutResp:           "RpbPutResp",
	MsgDelReq:            "RpbDelReq",
	MsgDelResp:           "RpbDelResp",
	MsgListBucketsReq:    "RpbListBucketsReq",
	MsgListBucketsResp:   "RpbListBucketsResp",
	MsgListKeysReq:       "RpbListKeysReq",
	MsgListKeysResp:      "RpbListKeysResp",
	MsgGetBucketReq:      "RpbGetBucketReq",
	MsgGetBucketResp:     "RpbGetBucketResp",
	MsgSetBucketReq:      "RpbSetBucketReq",
	MsgSetBucketResp:     "RpbSetBucketResp",
}

// String returns the schema name of a MessageCode.
func (c MessageCode) String() string {
	if name, ok := messageCodeNames[c]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(c))
}

// MarshalJSON implements the json.Marshaller interface for MessageCode.
// This allows MessageCode to be serialized as a string in JSON.
func (c MessageCode) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON implements the json.Unmarshaler interface for MessageCode.
func (c *MessageCode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for code, name := range messageCodeNames {
		if name == s {
			*c = code
			return nil
		}
	}
	return fmt.Errorf("unknown message code: %s", s)
}

// --------------------------------------------------------------------------
// Operation Table
// --------------------------------------------------------------------------

// Operation identifies one capability of the store reachable over the protocol.
type Operation uint8

const (
	OpPing Operation = iota
	OpGetClientID
	OpSetClientID
	OpGetServerInfo
	OpGet
	OpPut
	OpDelete
	OpListBuckets
	OpListKeys
	OpGetBucket
	OpSetBucket
)

// OperationSpec describes the frames exchanged for one operation.
type OperationSpec struct {
	Name      string
	Request   MessageCode
	Response  MessageCode
	Streaming bool // response arrives as a sequence of frames terminated by a done flag
}

// Operations maps every operation to its request and response message codes.
// Call sites resolve the codes through this table instead of inferring them from payload types.
var Operations = map[Operation]OperationSpec{
	OpPing:          {Name: "ping", Request: MsgPingReq, Response: MsgPingResp},
	OpGetClientID:   {Name: "get_client_id", Request: MsgGetClientIdReq, Response: MsgGetClientIdResp},
	OpSetClientID:   {Name: "set_client_id", Request: MsgSetClientIdReq, Response: MsgSetClientIdResp},
	OpGetServerInfo: {Name: "get_server_info", Request: MsgGetServerInfoReq, Response: MsgGetServerInfoResp},
	OpGet:           {Name: "get", Request: MsgGetReq, Response: MsgGetResp},
	OpPut:           {Name: "put", Request: MsgPutReq, Response: MsgPutResp},
	OpDelete:        {Name: "delete", Request: MsgDelReq, Response: MsgDelResp},
	OpListBuckets:   {Name: "list_buckets", Request: MsgListBucketsReq, Response: MsgListBucketsResp},
	OpListKeys:      {Name: "list_keys", Request: MsgListKeysReq, Response: MsgListKeysResp, Streaming: true},
	OpGetBucket:     {Name: "get_bucket", Request: MsgGetBucketReq, Response: MsgGetBucketResp},
	OpSetBucket:     {Name: "set_bucket", Request: MsgSetBucketReq, Response: MsgSetBucketResp},
}

// String returns the name of the operation.
func (o Operation) String() string {
	if spec, ok := Operations[o]; ok {
		return spec.Name
	}
	return fmt.Sprintf("unknown(%d)", uint8(o))
}

// OperationForRequest returns the operation whose request frames carry the given code.
// The server uses it to route incoming frames.
func OperationForRequest(code MessageCode) (Operation, OperationSpec, bool) {
	for op, spec := range Operations {
		if spec.Request == code {
			return op, spec, true
		}
	}
	return 0, OperationSpec{}, false
}
