package client

import (
	"fmt"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
	"github.com/ValentinKolb/riakpbc/rpc/transport"
	"iter"
)

// clientIDLen is the length of a client id
const clientIDLen = 4

// NewRPCClient connects the transport and returns a client for the node.
// The client owns the transport, Close closes it.
func NewRPCClient(
	config common.ClientConfig,
	transport transport.IRPCClientTransport,
	serializer serializer.IRPCSerializer,
) (riak.IClient, error) {

	// Connect the transport
	if err := transport.Connect(config); err != nil {
		return nil, err
	}

	return &rpcClient{
		rpcClientAdapter: newRPCClientAdapter(config, transport, serializer),
	}, nil
}

type rpcClient struct {
	rpcClientAdapter
	clientID []byte // last id set on this connection
}

// --------------------------------------------------------------------------
// Interface Methods (docu see the riak package in interface.go)
// --------------------------------------------------------------------------

func (c *rpcClient) Ping() error {
	return c.execute(common.OpPing, nil, nil)
}

func (c *rpcClient) Fetch(bucket, key string, r, pr riak.Quorum) (*riak.FetchResult, error) {
	if err := validateKey(bucket, key); err != nil {
		return nil, err
	}

	req := &pb.RpbGetReq{
		Bucket: []byte(bucket),
		Key:    []byte(key),
		R:      uint32(r),
		PR:     uint32(pr),
	}
	var resp pb.RpbGetResp
	if err := c.execute(common.OpGet, req, &resp); err != nil {
		return nil, err
	}
	return fromPbContents(riak.Key{Bucket: bucket, Key: key}, resp.Vclock, resp.Content), nil
}

func (c *rpcClient) Store(obj *riak.Object, params riak.StoreParams) (*riak.FetchResult, error) {
	if obj == nil {
		return nil, fmt.Errorf("%w: nil object", riak.ErrInvalidArgument)
	}
	// an empty key lets the server generate one
	if err := validateBucket(obj.Bucket()); err != nil {
		return nil, err
	}

	req := &pb.RpbPutReq{
		Bucket:     []byte(obj.Bucket()),
		Key:        []byte(obj.Key()),
		Vclock:     obj.VClock(),
		Content:    pb.NewRpbContent(obj.Content),
		W:          uint32(params.W),
		DW:         uint32(params.DW),
		ReturnBody: params.ReturnBody,
	}
	var resp pb.RpbPutResp
	if err := c.execute(common.OpPut, req, &resp); err != nil {
		return nil, err
	}

	if !params.ReturnBody {
		return nil, nil
	}
	key := obj.Version.Key
	if len(resp.Key) > 0 {
		key.Key = string(resp.Key)
	}
	return fromPbContents(key, resp.Vclock, resp.Content), nil
}

func (c *rpcClient) Delete(bucket, key string, rw riak.Quorum) error {
	return c.DeleteVClock(riak.Version{Key: riak.Key{Bucket: bucket, Key: key}}, rw)
}

func (c *rpcClient) DeleteVClock(version riak.Version, rw riak.Quorum) error {
	if err := validateKey(version.Key.Bucket, version.Key.Key); err != nil {
		return err
	}

	req := &pb.RpbDelReq{
		Bucket: []byte(version.Key.Bucket),
		Key:    []byte(version.Key.Key),
		RW:     uint32(rw),
		Vclock: version.VClock,
	}
	return c.execute(common.OpDelete, req, nil)
}

func (c *rpcClient) FetchBucketProperties(bucket string) (riak.BucketProperties, error) {
	if err := validateBucket(bucket); err != nil {
		return riak.BucketProperties{}, err
	}

	var resp pb.RpbGetBucketResp
	if err := c.execute(common.OpGetBucket, &pb.RpbGetBucketReq{Bucket: []byte(bucket)}, &resp); err != nil {
		return riak.BucketProperties{}, err
	}
	return resp.Props.Merge(riak.BucketProperties{}), nil
}

func (c *rpcClient) SetBucketProperties(bucket string, props riak.BucketProperties) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}

	req := &pb.RpbSetBucketReq{
		Bucket: []byte(bucket),
		Props:  pb.NewRpbBucketProps(props),
	}
	return c.execute(common.OpSetBucket, req, nil)
}

func (c *rpcClient) ListBuckets() ([]string, error) {
	var resp pb.RpbListBucketsResp
	if err := c.execute(common.OpListBuckets, nil, &resp); err != nil {
		return nil, err
	}
	return pb.Strings(resp.Buckets), nil
}

func (c *rpcClient) ListKeys(bucket string) ([]string, error) {
	keys := make([]string, 0)
	for batch, err := range c.StreamKeys(bucket) {
		if err != nil {
			return nil, err
		}
		keys = append(keys, batch...)
	}
	return keys, nil
}

func (c *rpcClient) StreamKeys(bucket string) iter.Seq2[[]string, error] {
	return func(yield func([]string, error) bool) {
		if err := validateBucket(bucket); err != nil {
			yield(nil, err)
			return
		}

		s, err := openStream(&c.rpcClientAdapter, common.OpListKeys, &pb.RpbListKeysReq{Bucket: []byte(bucket)},
			func() *pb.RpbListKeysResp { return &pb.RpbListKeysResp{} })
		if err != nil {
			yield(nil, err)
			return
		}

		for {
			resp, ok, err := s.next()
			if err != nil {
				yield(nil, err)
				return
			}
			if !ok {
				return
			}
			if len(resp.Keys) == 0 {
				continue
			}
			if !yield(pb.Strings(resp.Keys), nil) {
				// consumer stopped, read the rest so the next request gets its own answer
				if err := s.drain(); err != nil {
					Logger.Warningf("Failed to drain key stream of bucket %s, connection is unusable: %v", bucket, err)
				}
				return
			}
		}
	}
}

func (c *rpcClient) ClientID() ([]byte, error) {
	var resp pb.RpbGetClientIdResp
	if err := c.execute(common.OpGetClientID, nil, &resp); err != nil {
		return nil, err
	}
	return resp.ClientId, nil
}

func (c *rpcClient) SetClientID(id []byte) error {
	if len(id) != clientIDLen {
		return fmt.Errorf("%w: client id must have %d bytes, got %d", riak.ErrInvalidArgument, clientIDLen, len(id))
	}

	// keep a private copy, the caller may reuse its slice
	c.clientID = append(c.clientID[:0], id...)
	return c.execute(common.OpSetClientID, &pb.RpbSetClientIdReq{ClientId: c.clientID}, nil)
}

func (c *rpcClient) ServerInfo() (riak.ServerInfo, error) {
	var resp pb.RpbGetServerInfoResp
	if err := c.execute(common.OpGetServerInfo, nil, &resp); err != nil {
		return riak.ServerInfo{}, err
	}
	return riak.ServerInfo{
		Node:          string(resp.Node),
		ServerVersion: string(resp.ServerVersion),
	}, nil
}

func (c *rpcClient) Close() error {
	return c.transport.Close()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func validateBucket(bucket string) error {
	if bucket == "" {
		return fmt.Errorf("%w: empty bucket", riak.ErrInvalidArgument)
	}
	return nil
}

func validateKey(bucket, key string) error {
	if err := validateBucket(bucket); err != nil {
		return err
	}
	if key == "" {
		return fmt.Errorf("%w: empty key", riak.ErrInvalidArgument)
	}
	return nil
}
