package lstore

import (
	"bytes"
	"errors"
	"fmt"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/ValentinKolb/riakpbc/lib/store"
	"reflect"
	"sync"
	"testing"
	"time"
)

func newTestStore(allowMult bool) *storeImpl {
	s := NewLocalStore(riak.BucketProperties{NValue: 3, AllowMultiple: allowMult}).(*storeImpl)
	s.now = func() time.Time { return time.Unix(1700000000, 5000) }
	return s
}

func content(v string) riak.Content {
	return riak.Content{Value: []byte(v)}
}

func values(e store.Entry) []string {
	out := make([]string, len(e.Contents))
	for i, c := range e.Contents {
		out[i] = string(c.Value)
	}
	return out
}

// TestPutGet tests a simple write and read
func TestPutGet(t *testing.T) {
	s := newTestStore(false)

	written, err := s.Put("b", "k", nil, content("v1"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if len(written.VClock) != 8 || written.Key != "k" {
		t.Errorf("unexpected entry: %+v", written)
	}

	e, found, err := s.Get("b", "k")
	if err != nil || !found {
		t.Fatalf("get returned found=%v err=%v", found, err)
	}
	if !reflect.DeepEqual(values(e), []string{"v1"}) || !bytes.Equal(e.VClock, written.VClock) {
		t.Errorf("unexpected entry: %+v", e)
	}

	md := e.Contents[0].Metadata
	if md.VTag == "" || md.LastMod != 1700000000 || md.LastModUsecs != 5 {
		t.Errorf("write was not stamped: %+v", md)
	}

	if _, found, _ := s.Get("b", "missing"); found {
		t.Error("missing key was found")
	}
	if _, found, _ := s.Get("unknown", "k"); found {
		t.Error("key of unknown bucket was found")
	}
}

// TestSiblings tests the write semantics with and without allow_mult
func TestSiblings(t *testing.T) {
	testCases := []struct {
		name      string
		allowMult bool
		expected  []string
	}{
		{name: "Last write wins", allowMult: false, expected: []string{"b"}},
		{name: "Allow multiple", allowMult: true, expected: []string{"a", "b"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestStore(tc.allowMult)

			first, _ := s.Put("bucket", "key", nil, content("a"))
			// a second blind write has not seen the first one
			second, _ := s.Put("bucket", "key", nil, content("b"))

			if !reflect.DeepEqual(values(second), tc.expected) {
				t.Errorf("got %v, expected %v", values(second), tc.expected)
			}
			if bytes.Equal(first.VClock, second.VClock) {
				t.Error("vclock did not change")
			}
		})
	}
}

// TestResolveSiblings tests that a write with the current vclock replaces all siblings
func TestResolveSiblings(t *testing.T) {
	s := newTestStore(true)

	s.Put("bucket", "key", nil, content("a"))
	s.Put("bucket", "key", nil, content("b"))
	conflict, _, _ := s.Get("bucket", "key")
	if len(conflict.Contents) != 2 {
		t.Fatalf("expected 2 siblings, got %d", len(conflict.Contents))
	}

	// stale vclock adds a third sibling
	stale := []byte{0, 0, 0, 0, 0, 0, 0, 1}
	e, _ := s.Put("bucket", "key", stale, content("c"))
	if len(e.Contents) != 3 {
		t.Fatalf("expected 3 siblings, got %d", len(e.Contents))
	}

	resolved, _ := s.Put("bucket", "key", e.VClock, content("merged"))
	if !reflect.DeepEqual(values(resolved), []string{"merged"}) {
		t.Errorf("resolution did not replace siblings: %v", values(resolved))
	}
}

// TestSnapshotIsolation tests that returned entries do not change with later writes
func TestSnapshotIsolation(t *testing.T) {
	s := newTestStore(true)

	e1, _ := s.Put("b", "k", nil, content("a"))
	s.Put("b", "k", nil, content("b"))

	if len(e1.Contents) != 1 {
		t.Errorf("earlier snapshot changed: %v", values(e1))
	}
}

// TestGeneratedKey tests writes without key
func TestGeneratedKey(t *testing.T) {
	s := newTestStore(false)

	e1, _ := s.Put("b", "", nil, content("a"))
	e2, _ := s.Put("b", "", nil, content("b"))
	if e1.Key == "" || e1.Key == e2.Key {
		t.Errorf("generated keys are not unique: %q %q", e1.Key, e2.Key)
	}
	if _, found, _ := s.Get("b", e1.Key); !found {
		t.Error("generated key was not stored")
	}
}

// TestGeneratedKeyAvoidsStoredKeys tests that a write without key never replaces a stored key
func TestGeneratedKeyAvoidsStoredKeys(t *testing.T) {
	s := newTestStore(false)

	if _, err := s.Put("b", "k2", nil, content("user data")); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if _, err := s.Put("b", "k3", nil, content("more user data")); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	e, err := s.Put("b", "", nil, content("anonymous"))
	if err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if e.Key == "k2" || e.Key == "k3" {
		t.Errorf("generated key %q collides with a stored key", e.Key)
	}

	for key, expected := range map[string]string{"k2": "user data", "k3": "more user data", e.Key: "anonymous"} {
		got, found, _ := s.Get("b", key)
		if !found || !reflect.DeepEqual(values(got), []string{expected}) {
			t.Errorf("key %s holds %v, expected %q", key, values(got), expected)
		}
	}
}

// TestDelete tests removing keys
func TestDelete(t *testing.T) {
	s := newTestStore(false)
	s.Put("b", "k", nil, content("a"))

	found, err := s.Delete("b", "k")
	if err != nil || !found {
		t.Fatalf("delete returned found=%v err=%v", found, err)
	}
	if found, _ := s.Delete("b", "k"); found {
		t.Error("second delete reported an existing key")
	}
	if found, _ := s.Delete("other", "k"); found {
		t.Error("delete in unknown bucket reported an existing key")
	}
}

// TestListing tests bucket and key listing
func TestListing(t *testing.T) {
	s := newTestStore(false)
	for _, k := range []string{"c", "a", "b"} {
		s.Put("users", k, nil, content(k))
	}
	s.Put("orders", "1", nil, content("x"))
	s.Put("empty", "gone", nil, content("x"))
	s.Delete("empty", "gone")

	keys, _ := s.ListKeys("users")
	if !reflect.DeepEqual(keys, []string{"a", "b", "c"}) {
		t.Errorf("unexpected keys: %v", keys)
	}

	keys, _ = s.ListKeys("unknown")
	if keys == nil || len(keys) != 0 {
		t.Errorf("expected empty key list, got %#v", keys)
	}

	buckets, _ := s.ListBuckets()
	if !reflect.DeepEqual(buckets, []string{"orders", "users"}) {
		t.Errorf("unexpected buckets: %v", buckets)
	}
}

// TestBucketProps tests defaults and updates of bucket properties
func TestBucketProps(t *testing.T) {
	s := newTestStore(false)

	props, _ := s.BucketProps("fresh")
	if props != (riak.BucketProperties{NValue: 3}) {
		t.Errorf("unexpected defaults: %+v", props)
	}

	if err := s.SetBucketProps("fresh", riak.BucketProperties{NValue: 1, AllowMultiple: true}); err != nil {
		t.Fatalf("set props failed: %v", err)
	}
	props, _ = s.BucketProps("fresh")
	if !props.AllowMultiple || props.NValue != 1 {
		t.Errorf("props were not updated: %+v", props)
	}

	var serr *store.Error
	if err := s.SetBucketProps("fresh", riak.BucketProperties{}); !errors.As(err, &serr) || serr.Code != store.RetCInvalidOperation {
		t.Errorf("expected invalid operation for n_val 0, got %v", err)
	}
}

// TestInvalidArguments tests that empty names are rejected
func TestInvalidArguments(t *testing.T) {
	s := newTestStore(false)

	calls := map[string]func() error{
		"Get":       func() error { _, _, err := s.Get("", "k"); return err },
		"Get key":   func() error { _, _, err := s.Get("b", ""); return err },
		"Put":       func() error { _, err := s.Put("", "k", nil, content("v")); return err },
		"Delete":    func() error { _, err := s.Delete("b", ""); return err },
		"ListKeys":  func() error { _, err := s.ListKeys(""); return err },
		"Props":     func() error { _, err := s.BucketProps(""); return err },
		"Set props": func() error { return s.SetBucketProps("", riak.BucketProperties{NValue: 1}) },
	}

	for name, call := range calls {
		t.Run(name, func(t *testing.T) {
			var serr *store.Error
			if err := call(); !errors.As(err, &serr) || serr.Code != store.RetCInvalidOperation {
				t.Errorf("expected invalid operation, got %v", err)
			}
		})
	}
}

// TestConcurrentWrites tests that concurrent writers to one bucket do not lose writes
func TestConcurrentWrites(t *testing.T) {
	s := newTestStore(true)
	const writers, writes = 8, 50

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < writes; i++ {
				s.Put("b", fmt.Sprintf("key-%d", w), nil, content(fmt.Sprint(i)))
				s.Put("b", "shared", nil, content(fmt.Sprint(w)))
			}
		}(w)
	}
	wg.Wait()

	e, _, _ := s.Get("b", "shared")
	if len(e.Contents) != writers*writes {
		t.Errorf("expected %d siblings, got %d", writers*writes, len(e.Contents))
	}
	keys, _ := s.ListKeys("b")
	if len(keys) != writers+1 {
		t.Errorf("expected %d keys, got %d", writers+1, len(keys))
	}
}
