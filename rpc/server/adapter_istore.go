package server

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/ValentinKolb/riakpbc/lib/store"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
)

const (
	// DefaultListKeysBatchSize is used when the config does not set a batch size
	DefaultListKeysBatchSize = 1000

	errCodeNotFound       uint32 = 0
	errCodeInvalidRequest        = uint32(store.RetCInvalidOperation)
	errCodeInternal              = uint32(store.RetCInternalError)
)

// NewIStoreServerAdapter creates the adapter for the object and bucket operations backed by s
func NewIStoreServerAdapter(s store.IStore, serializer serializer.IRPCSerializer, batchSize int) IRPCServerAdapter {
	if batchSize <= 0 {
		batchSize = DefaultListKeysBatchSize
	}
	return &iStoreServerAdapterImpl{
		store:      s,
		serializer: serializer,
		batchSize:  batchSize,
	}
}

type iStoreServerAdapterImpl struct {
	store      store.IStore
	serializer serializer.IRPCSerializer
	batchSize  int
}

func (adapter *iStoreServerAdapterImpl) Operations() []common.Operation {
	return []common.Operation{
		common.OpGet, common.OpPut, common.OpDelete,
		common.OpListBuckets, common.OpListKeys,
		common.OpGetBucket, common.OpSetBucket,
	}
}

func (adapter *iStoreServerAdapterImpl) Handle(req *Request, resp *Responder) error {
	switch req.Op {
	case common.OpGet:
		var msg pb.RpbGetReq
		if err := req.Decode(adapter.serializer, &msg); err != nil {
			return invalidRequest(resp, err)
		}
		return adapter.get(&msg, resp)

	case common.OpPut:
		var msg pb.RpbPutReq
		if err := req.Decode(adapter.serializer, &msg); err != nil {
			return invalidRequest(resp, err)
		}
		return adapter.put(&msg, resp)

	case common.OpDelete:
		var msg pb.RpbDelReq
		if err := req.Decode(adapter.serializer, &msg); err != nil {
			return invalidRequest(resp, err)
		}
		return adapter.delete(&msg, resp)

	case common.OpListBuckets:
		buckets, err := adapter.store.ListBuckets()
		if err != nil {
			return storeError(resp, err)
		}
		return resp.Send(&pb.RpbListBucketsResp{Buckets: pb.Bytes(buckets)})

	case common.OpListKeys:
		var msg pb.RpbListKeysReq
		if err := req.Decode(adapter.serializer, &msg); err != nil {
			return invalidRequest(resp, err)
		}
		return adapter.listKeys(&msg, resp)

	case common.OpGetBucket:
		var msg pb.RpbGetBucketReq
		if err := req.Decode(adapter.serializer, &msg); err != nil {
			return invalidRequest(resp, err)
		}
		props, err := adapter.store.BucketProps(string(msg.Bucket))
		if err != nil {
			return storeError(resp, err)
		}
		return resp.Send(&pb.RpbGetBucketResp{Props: pb.NewRpbBucketProps(props)})

	case common.OpSetBucket:
		var msg pb.RpbSetBucketReq
		if err := req.Decode(adapter.serializer, &msg); err != nil {
			return invalidRequest(resp, err)
		}
		bucket := string(msg.Bucket)
		props, err := adapter.store.BucketProps(bucket)
		if err != nil {
			return storeError(resp, err)
		}
		if err := adapter.store.SetBucketProps(bucket, msg.Props.Merge(props)); err != nil {
			return storeError(resp, err)
		}
		return resp.Send(nil)

	default:
		return resp.Error(errCodeInvalidRequest, fmt.Sprintf("unsupported operation: %s", req.Op))
	}
}

// --------------------------------------------------------------------------
// Object operations
// --------------------------------------------------------------------------

func (adapter *iStoreServerAdapterImpl) get(msg *pb.RpbGetReq, resp *Responder) error {
	bucket, key := string(msg.Bucket), string(msg.Key)
	if err := adapter.checkQuorum(bucket, "r", msg.R); err != nil {
		return storeError(resp, err)
	}

	entry, found, err := adapter.store.Get(bucket, key)
	if err != nil {
		return storeError(resp, err)
	}
	if !found {
		return resp.Send(&pb.RpbGetResp{})
	}
	if len(msg.IfModified) > 0 && bytes.Equal(msg.IfModified, entry.VClock) {
		return resp.Send(&pb.RpbGetResp{Vclock: entry.VClock, Unchanged: true})
	}

	out := &pb.RpbGetResp{Vclock: entry.VClock, Content: toPbContents(entry.Contents)}
	if msg.Head {
		for _, c := range out.Content {
			c.Value = []byte{}
		}
	}
	return resp.Send(out)
}

func (adapter *iStoreServerAdapterImpl) put(msg *pb.RpbPutReq, resp *Responder) error {
	bucket, key := string(msg.Bucket), string(msg.Key)
	if msg.Content == nil {
		return resp.Error(errCodeInvalidRequest, "put request without content")
	}
	if err := adapter.checkQuorum(bucket, "w", msg.W); err != nil {
		return storeError(resp, err)
	}
	if err := adapter.checkQuorum(bucket, "dw", msg.DW); err != nil {
		return storeError(resp, err)
	}

	entry, err := adapter.store.Put(bucket, key, msg.Vclock, msg.Content.ToContent())
	if err != nil {
		return storeError(resp, err)
	}

	out := &pb.RpbPutResp{}
	if key == "" {
		out.Key = []byte(entry.Key)
	}
	if msg.ReturnBody {
		out.Vclock = entry.VClock
		out.Content = toPbContents(entry.Contents)
	}
	return resp.Send(out)
}

func (adapter *iStoreServerAdapterImpl) delete(msg *pb.RpbDelReq, resp *Responder) error {
	bucket := string(msg.Bucket)
	if err := adapter.checkQuorum(bucket, "rw", msg.RW); err != nil {
		return storeError(resp, err)
	}
	found, err := adapter.store.Delete(bucket, string(msg.Key))
	if err != nil {
		return storeError(resp, err)
	}
	if !found {
		return resp.Error(errCodeNotFound, "not found")
	}
	return resp.Send(nil)
}

// --------------------------------------------------------------------------
// Bucket operations
// --------------------------------------------------------------------------

// listKeys streams the keys of a bucket in batches. The last frame carries the done flag
// and no keys if the key count is a multiple of the batch size.
func (adapter *iStoreServerAdapterImpl) listKeys(msg *pb.RpbListKeysReq, resp *Responder) error {
	keys, err := adapter.store.ListKeys(string(msg.Bucket))
	if err != nil {
		return storeError(resp, err)
	}

	for len(keys) > adapter.batchSize {
		if err := resp.Send(&pb.RpbListKeysResp{Keys: pb.Bytes(keys[:adapter.batchSize])}); err != nil {
			return err
		}
		keys = keys[adapter.batchSize:]
	}
	return resp.Send(&pb.RpbListKeysResp{Keys: pb.Bytes(keys), Done: true})
}

// checkQuorum rejects a numeric quorum larger than the n_val of the bucket
func (adapter *iStoreServerAdapterImpl) checkQuorum(bucket, name string, value uint32) error {
	q := riak.Quorum(value)
	if q == 0 || q >= riak.QuorumDefault {
		return nil
	}
	props, err := adapter.store.BucketProps(bucket)
	if err != nil {
		return err
	}
	if uint32(q) > props.NValue {
		return store.NewError(store.RetCInvalidOperation,
			fmt.Sprintf("%s-value unsatisfiable: %d > n_val %d", name, q, props.NValue))
	}
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func toPbContents(contents []riak.Content) []*pb.RpbContent {
	out := make([]*pb.RpbContent, 0, len(contents))
	for _, c := range contents {
		out = append(out, pb.NewRpbContent(c))
	}
	return out
}

func invalidRequest(resp *Responder, err error) error {
	return resp.Error(errCodeInvalidRequest, fmt.Sprintf("invalid request: %v", err))
}

// storeError answers a failed store call. Store errors keep their return code.
func storeError(resp *Responder, err error) error {
	var serr *store.Error
	if errors.As(err, &serr) {
		return resp.Error(uint32(serr.Code), serr.Msg)
	}
	return resp.Error(errCodeInternal, err.Error())
}
