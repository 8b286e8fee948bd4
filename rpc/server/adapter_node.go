package server

import (
	"encoding/binary"
	"fmt"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
	"github.com/puzpuzpuz/xsync/v3"
)

// NewNodeServerAdapter creates the adapter for the node level operations
// (ping, client ids and server info). Client ids are kept per connection.
func NewNodeServerAdapter(config common.ServerConfig, serializer serializer.IRPCSerializer) *NodeServerAdapter {
	return &NodeServerAdapter{
		config:     config,
		serializer: serializer,
		clientIDs:  xsync.NewMapOf[uint64, []byte](),
	}
}

// NodeServerAdapter answers the node level operations
type NodeServerAdapter struct {
	config     common.ServerConfig
	serializer serializer.IRPCSerializer
	clientIDs  *xsync.MapOf[uint64, []byte]
}

func (a *NodeServerAdapter) Operations() []common.Operation {
	return []common.Operation{common.OpPing, common.OpGetClientID, common.OpSetClientID, common.OpGetServerInfo}
}

func (a *NodeServerAdapter) Handle(req *Request, resp *Responder) error {
	switch req.Op {
	case common.OpPing:
		return resp.Send(nil)

	case common.OpGetClientID:
		id, _ := a.clientIDs.LoadOrCompute(req.ConnID, func() []byte {
			// connections start with an id derived from their number
			return binary.BigEndian.AppendUint32(nil, uint32(req.ConnID))
		})
		return resp.Send(&pb.RpbGetClientIdResp{ClientId: id})

	case common.OpSetClientID:
		var msg pb.RpbSetClientIdReq
		if err := req.Decode(a.serializer, &msg); err != nil {
			return resp.Error(errCodeInvalidRequest, fmt.Sprintf("invalid request: %v", err))
		}
		a.clientIDs.Store(req.ConnID, msg.ClientId)
		return resp.Send(nil)

	case common.OpGetServerInfo:
		return resp.Send(&pb.RpbGetServerInfoResp{
			Node:          []byte(a.config.NodeName),
			ServerVersion: []byte(a.config.ServerVersion),
		})

	default:
		return resp.Error(errCodeInvalidRequest, fmt.Sprintf("unsupported operation: %s", req.Op))
	}
}

// ConnectionClosed forgets the client id of a closed connection
func (a *NodeServerAdapter) ConnectionClosed(connID uint64) {
	a.clientIDs.Delete(connID)
}
