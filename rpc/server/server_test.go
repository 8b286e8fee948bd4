package server

import (
	"bytes"
	"errors"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/ValentinKolb/riakpbc/rpc/client"
	"github.com/ValentinKolb/riakpbc/rpc/common"
	"github.com/ValentinKolb/riakpbc/rpc/frame"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
	"github.com/ValentinKolb/riakpbc/rpc/serializer"
	"github.com/ValentinKolb/riakpbc/rpc/transport/unix"
	"net"
	"path/filepath"
	"reflect"
	"strconv"
	"testing"
	"time"
)

// --------------------------------------------------------------------------
// Test Helper
// --------------------------------------------------------------------------

// startServer starts a server on a unix socket in a temp dir and returns its endpoint
func startServer(t *testing.T, config common.ServerConfig) string {
	t.Helper()
	config.Endpoint = filepath.Join(t.TempDir(), "pbc.sock")
	config.TimeoutSecond = 5
	if config.NodeName == "" {
		config.NodeName = "dev@127.0.0.1"
	}
	if config.ServerVersion == "" {
		config.ServerVersion = "test"
	}

	s := NewRPCServer(config, unix.NewUnixDefaultServerTransport(), serializer.NewProtobufSerializer())
	done := make(chan error, 1)
	go func() { done <- s.Serve() }()

	t.Cleanup(func() {
		_ = s.Close()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("serve returned error: %v", err)
			}
		case <-time.After(5 * time.Second):
			t.Errorf("server did not stop")
		}
	})
	return config.Endpoint
}

// newClient connects a client, retrying until the server listens
func newClient(t *testing.T, endpoint string) riak.IClient {
	t.Helper()
	config := common.ClientConfig{TimeoutSecond: 5, Transport: common.ClientTransportConfig{Endpoint: endpoint}}

	var lastErr error
	for i := 0; i < 100; i++ {
		c, err := client.NewRPCClient(config, unix.NewUnixClientTransport(), serializer.NewProtobufSerializer())
		if err == nil {
			t.Cleanup(func() { _ = c.Close() })
			return c
		}
		lastErr = err
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatalf("failed to connect to %s: %v", endpoint, lastErr)
	return nil
}

// dial opens a raw connection for frame level tests
func dial(t *testing.T, endpoint string) net.Conn {
	t.Helper()
	// a client connection proves the server is listening
	newClient(t, endpoint)
	conn, err := net.Dial("unix", endpoint)
	if err != nil {
		t.Fatalf("failed to dial: %v", err)
	}
	_ = conn.SetDeadline(time.Now().Add(5 * time.Second))
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func storeValue(t *testing.T, c riak.IClient, bucket, key, value string) {
	t.Helper()
	if _, err := c.Store(riak.NewObject(bucket, key, []byte(value)), riak.StoreParams{}); err != nil {
		t.Fatalf("store %s/%s: %v", bucket, key, err)
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

// TestObjectLifecycle tests store, fetch and delete of a single key
func TestObjectLifecycle(t *testing.T) {
	c := newClient(t, startServer(t, common.ServerConfig{}))

	obj := riak.NewObject("users", "alice", []byte(`{"age":30}`))
	obj.Content.Metadata.ContentType = "application/json"
	obj.Content.Metadata.UserMeta = map[string]string{"b": "2", "a": "1"}

	stored, err := c.Store(obj, riak.StoreParams{ReturnBody: true})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if stored.State() != riak.Resolved || len(stored.Version.VClock) == 0 {
		t.Fatalf("unexpected store result: %+v", stored)
	}

	res, err := c.Fetch("users", "alice", 0, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.State() != riak.Resolved {
		t.Fatalf("expected resolved, got %s", res.State())
	}
	got := res.Contents[0]
	if string(got.Value) != `{"age":30}` || got.Metadata.ContentType != "application/json" {
		t.Errorf("unexpected content: %+v", got)
	}
	if !reflect.DeepEqual(got.Metadata.UserMeta, obj.Content.Metadata.UserMeta) {
		t.Errorf("user meta mismatch: %v", got.Metadata.UserMeta)
	}
	if got.Metadata.VTag == "" || got.Metadata.LastModified().IsZero() {
		t.Errorf("server did not stamp the content: %+v", got.Metadata)
	}
	if !bytes.Equal(res.Version.VClock, stored.Version.VClock) {
		t.Errorf("vclock changed without a write")
	}

	if err := c.Delete("users", "alice", 0); err != nil {
		t.Fatalf("delete: %v", err)
	}
	res, err = c.Fetch("users", "alice", 0, 0)
	if err != nil {
		t.Fatalf("fetch after delete: %v", err)
	}
	if res.State() != riak.NotFound {
		t.Errorf("expected not found, got %s", res.State())
	}

	// deleting a missing key is reported by the server
	err = c.Delete("users", "alice", 0)
	serr, ok := common.IsServerError(err)
	if !ok || serr.Code != 0 || serr.Message != "not found" {
		t.Errorf("expected not found server error, got %v", err)
	}

	// the connection is still usable after a server error
	if err := c.Ping(); err != nil {
		t.Errorf("ping after server error: %v", err)
	}
}

// TestSiblings tests that concurrent writes are kept when the bucket allows multiple values
func TestSiblings(t *testing.T) {
	c := newClient(t, startServer(t, common.ServerConfig{}))

	if err := c.SetBucketProperties("carts", riak.BucketProperties{NValue: 3, AllowMultiple: true}); err != nil {
		t.Fatalf("set bucket: %v", err)
	}

	storeValue(t, c, "carts", "bob", "apple")
	storeValue(t, c, "carts", "bob", "pear")

	res, err := c.Fetch("carts", "bob", 0, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.State() != riak.Conflict || res.SiblingCount() != 2 {
		t.Fatalf("expected two siblings, got %d", res.SiblingCount())
	}
	if _, err := res.Resolve(); !errors.Is(err, riak.ErrUnresolvedConflict) {
		t.Errorf("expected ErrUnresolvedConflict, got %v", err)
	}

	// writing with the fetched vclock replaces all siblings
	merged, err := res.Choose(1)
	if err != nil {
		t.Fatalf("choose: %v", err)
	}
	merged.SetValue([]byte("apple,pear"))
	after, err := c.Store(merged, riak.StoreParams{ReturnBody: true})
	if err != nil {
		t.Fatalf("store merged: %v", err)
	}
	if after.SiblingCount() != 1 || string(after.Contents[0].Value) != "apple,pear" {
		t.Errorf("siblings not resolved: %+v", after.Contents)
	}
}

// TestLastWriteWins tests that buckets without allow_mult keep only the latest write
func TestLastWriteWins(t *testing.T) {
	c := newClient(t, startServer(t, common.ServerConfig{}))

	storeValue(t, c, "plain", "k", "one")
	storeValue(t, c, "plain", "k", "two")

	res, err := c.Fetch("plain", "k", 0, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if res.SiblingCount() != 1 || string(res.Contents[0].Value) != "two" {
		t.Errorf("unexpected contents: %+v", res.Contents)
	}
}

// TestGeneratedKey tests that the server generates a key for an empty key
func TestGeneratedKey(t *testing.T) {
	c := newClient(t, startServer(t, common.ServerConfig{}))

	res, err := c.Store(riak.NewObject("events", "", []byte("e1")), riak.StoreParams{ReturnBody: true})
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	key := res.Version.Key.Key
	if key == "" {
		t.Fatalf("server did not return a key")
	}

	fetched, err := c.Fetch("events", key, 0, 0)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if fetched.Empty() || string(fetched.Contents[0].Value) != "e1" {
		t.Errorf("generated key not readable: %+v", fetched)
	}
}

// TestListKeysBatches tests that keys are streamed in batches with done on the last frame
func TestListKeysBatches(t *testing.T) {
	testCases := []struct {
		name     string
		keys     int
		expected []int
	}{
		{name: "Partial last batch", keys: 5, expected: []int{2, 2, 1}},
		{name: "Exact multiple", keys: 4, expected: []int{2, 2}},
		{name: "Empty bucket", keys: 0, expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			c := newClient(t, startServer(t, common.ServerConfig{ListKeysBatchSize: 2}))

			var all []string
			for i := 0; i < tc.keys; i++ {
				key := "key" + strconv.Itoa(i)
				storeValue(t, c, "items", key, "v")
				all = append(all, key)
			}

			var sizes []int
			for batch, err := range c.StreamKeys("items") {
				if err != nil {
					t.Fatalf("stream keys: %v", err)
				}
				sizes = append(sizes, len(batch))
			}
			if !reflect.DeepEqual(sizes, tc.expected) {
				t.Errorf("batch sizes: got %v, expected %v", sizes, tc.expected)
			}

			keys, err := c.ListKeys("items")
			if err != nil {
				t.Fatalf("list keys: %v", err)
			}
			if len(keys) != len(all) || (len(all) > 0 && !reflect.DeepEqual(keys, all)) {
				t.Errorf("keys: got %v, expected %v", keys, all)
			}
		})
	}
}

// TestStreamKeysEarlyStop tests that the connection stays in sync when the caller stops early
func TestStreamKeysEarlyStop(t *testing.T) {
	c := newClient(t, startServer(t, common.ServerConfig{ListKeysBatchSize: 1}))
	for i := 0; i < 4; i++ {
		storeValue(t, c, "items", "key"+strconv.Itoa(i), "v")
	}

	for _, err := range c.StreamKeys("items") {
		if err != nil {
			t.Fatalf("stream keys: %v", err)
		}
		break
	}

	buckets, err := c.ListBuckets()
	if err != nil {
		t.Fatalf("list buckets after early stop: %v", err)
	}
	if !reflect.DeepEqual(buckets, []string{"items"}) {
		t.Errorf("unexpected buckets: %v", buckets)
	}
}

// TestBucketProperties tests the defaults and a partial update of bucket properties
func TestBucketProperties(t *testing.T) {
	c := newClient(t, startServer(t, common.ServerConfig{DefaultNVal: 5}))

	props, err := c.FetchBucketProperties("fresh")
	if err != nil {
		t.Fatalf("fetch bucket: %v", err)
	}
	if !reflect.DeepEqual(props, riak.BucketProperties{NValue: 5}) {
		t.Errorf("unexpected defaults: %+v", props)
	}

	if err := c.SetBucketProperties("fresh", riak.BucketProperties{NValue: 2, AllowMultiple: true}); err != nil {
		t.Fatalf("set bucket: %v", err)
	}
	props, err = c.FetchBucketProperties("fresh")
	if err != nil {
		t.Fatalf("fetch bucket: %v", err)
	}
	if !reflect.DeepEqual(props, riak.BucketProperties{NValue: 2, AllowMultiple: true}) {
		t.Errorf("unexpected props: %+v", props)
	}

	// quorum larger than n_val is rejected
	_, err = c.Fetch("fresh", "k", 3, 0)
	if serr, ok := common.IsServerError(err); !ok || serr.Code != errCodeInvalidRequest {
		t.Errorf("expected unsatisfiable quorum error, got %v", err)
	}
	// symbolic quorums are always accepted
	if _, err := c.Fetch("fresh", "k", riak.QuorumAll, 0); err != nil {
		t.Errorf("fetch with symbolic quorum: %v", err)
	}

	// n_val 0 is invalid
	err = c.SetBucketProperties("fresh", riak.BucketProperties{NValue: 0})
	if _, ok := common.IsServerError(err); !ok {
		t.Errorf("expected server error for n_val 0, got %v", err)
	}
}

// TestClientIDPerConnection tests that every connection has its own client id
func TestClientIDPerConnection(t *testing.T) {
	endpoint := startServer(t, common.ServerConfig{})
	c1 := newClient(t, endpoint)
	c2 := newClient(t, endpoint)

	id1, err := c1.ClientID()
	if err != nil {
		t.Fatalf("client id: %v", err)
	}
	id2, err := c2.ClientID()
	if err != nil {
		t.Fatalf("client id: %v", err)
	}
	if len(id1) != 4 || bytes.Equal(id1, id2) {
		t.Errorf("expected distinct 4 byte ids, got %x and %x", id1, id2)
	}

	if err := c1.SetClientID([]byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("set client id: %v", err)
	}
	id1, _ = c1.ClientID()
	id2b, _ := c2.ClientID()
	if !bytes.Equal(id1, []byte{1, 2, 3, 4}) || !bytes.Equal(id2, id2b) {
		t.Errorf("client id not per connection: %x %x", id1, id2b)
	}
}

// TestServerInfo tests the node identity
func TestServerInfo(t *testing.T) {
	c := newClient(t, startServer(t, common.ServerConfig{NodeName: "riak@10.0.0.1", ServerVersion: "2.9.0"}))

	info, err := c.ServerInfo()
	if err != nil {
		t.Fatalf("server info: %v", err)
	}
	if !reflect.DeepEqual(info, riak.ServerInfo{Node: "riak@10.0.0.1", ServerVersion: "2.9.0"}) {
		t.Errorf("unexpected server info: %+v", info)
	}
}

// TestRawFrames tests unknown codes and malformed bodies on the frame level
func TestRawFrames(t *testing.T) {
	conn := dial(t, startServer(t, common.ServerConfig{}))

	testCases := []struct {
		name     string
		code     common.MessageCode
		body     []byte
		expected common.MessageCode
	}{
		{name: "Unknown code", code: 99, expected: common.MsgErrorResp},
		{name: "Response code as request", code: common.MsgGetResp, expected: common.MsgErrorResp},
		{name: "Corrupted body", code: common.MsgGetReq, body: []byte{0x0a, 0xff}, expected: common.MsgErrorResp},
		{name: "Ping", code: common.MsgPingReq, expected: common.MsgPingResp},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if err := frame.WriteFrame(conn, tc.code, tc.body); err != nil {
				t.Fatalf("write: %v", err)
			}
			f, err := frame.ReadFrame(conn, frame.DefaultLimits())
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if f.Code != tc.expected {
				t.Fatalf("got code %s, expected %s", f.Code, tc.expected)
			}
			if f.Code == common.MsgErrorResp {
				var e pb.RpbErrorResp
				if err := e.Unmarshal(f.Body); err != nil || len(e.Errmsg) == 0 {
					t.Errorf("invalid error response: %v %q", err, e.Errmsg)
				}
			}
		})
	}
}
