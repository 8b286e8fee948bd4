package lstore

import (
	"bytes"
	"encoding/binary"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/ValentinKolb/riakpbc/lib/store"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/puzpuzpuz/xsync/v3"
	"slices"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

var Logger = logger.GetLogger("store")

// entry is the stored state of one key
type entry struct {
	vclock   []byte
	contents []riak.Content
}

// bucket holds the keys of one bucket, guarded by its own lock
type bucket struct {
	mu      sync.RWMutex
	props   riak.BucketProperties
	entries map[string]*entry
}

type storeImpl struct {
	buckets  *xsync.MapOf[string, *bucket]
	defaults riak.BucketProperties
	index    atomic.Uint64
	now      func() time.Time
}

// NewLocalStore creates a new in-memory store instance.
// Buckets that were never configured use the given default properties.
func NewLocalStore(defaults riak.BucketProperties) store.IStore {
	return &storeImpl{
		buckets:  xsync.NewMapOf[string, *bucket](),
		defaults: defaults,
		now:      time.Now,
	}
}

// incAndGetIndex increments the write index and returns the new value.
// Every write gets a unique index, it is the source of vclocks, vtags and generated keys.
//
// Thread-safety: This method is thread-safe since it uses atomic operations.
func (s *storeImpl) incAndGetIndex() uint64 {
	return s.index.Add(1)
}

// bucket returns the bucket with the given name, creating it if needed
func (s *storeImpl) bucket(name string) *bucket {
	b, _ := s.buckets.LoadOrCompute(name, func() *bucket {
		return &bucket{props: s.defaults, entries: make(map[string]*entry)}
	})
	return b
}

// --------------------------------------------------------------------------
// Interface Methods (docu see store/interface.go)
// --------------------------------------------------------------------------

func (s *storeImpl) Get(bucketName, key string) (store.Entry, bool, error) {
	if err := validate(bucketName, key); err != nil {
		return store.Entry{}, false, err
	}

	b, ok := s.buckets.Load(bucketName)
	if !ok {
		return store.Entry{}, false, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	e, ok := b.entries[key]
	if !ok {
		return store.Entry{}, false, nil
	}
	return e.snapshot(key), true, nil
}

func (s *storeImpl) Put(bucketName, key string, vclock []byte, content riak.Content) (store.Entry, error) {
	if bucketName == "" {
		return store.Entry{}, store.NewError(store.RetCInvalidOperation, "bucket must not be empty")
	}

	index := s.incAndGetIndex()

	// stamp the content like the server does on every write
	now := s.now()
	content.Metadata.VTag = strconv.FormatUint(index, 36)
	content.Metadata.LastMod = uint32(now.Unix())
	content.Metadata.LastModUsecs = uint32(now.Nanosecond() / int(time.Microsecond))

	b := s.bucket(bucketName)
	b.mu.Lock()
	defer b.mu.Unlock()

	// generated keys skip names already taken by callers
	if key == "" {
		for n := index; ; n = s.incAndGetIndex() {
			key = "k" + strconv.FormatUint(n, 36)
			if _, taken := b.entries[key]; !taken {
				break
			}
		}
	}

	e, exists := b.entries[key]
	switch {
	case !exists:
		e = &entry{contents: []riak.Content{content}}
		b.entries[key] = e
	case b.props.AllowMultiple && !bytes.Equal(vclock, e.vclock):
		// the writer has not seen the current state, keep both
		e.contents = append(e.contents, content)
		Logger.Debugf("Added sibling %d to %s/%s", len(e.contents), bucketName, key)
	default:
		e.contents = []riak.Content{content}
	}
	e.vclock = encodeVClock(index)

	return e.snapshot(key), nil
}

func (s *storeImpl) Delete(bucketName, key string) (bool, error) {
	if err := validate(bucketName, key); err != nil {
		return false, err
	}

	b, ok := s.buckets.Load(bucketName)
	if !ok {
		return false, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	_, found := b.entries[key]
	delete(b.entries, key)
	return found, nil
}

func (s *storeImpl) ListBuckets() ([]string, error) {
	names := make([]string, 0)
	s.buckets.Range(func(name string, b *bucket) bool {
		b.mu.RLock()
		if len(b.entries) > 0 {
			names = append(names, name)
		}
		b.mu.RUnlock()
		return true
	})
	slices.Sort(names)
	return names, nil
}

func (s *storeImpl) ListKeys(bucketName string) ([]string, error) {
	if bucketName == "" {
		return nil, store.NewError(store.RetCInvalidOperation, "bucket must not be empty")
	}

	keys := make([]string, 0)
	b, ok := s.buckets.Load(bucketName)
	if !ok {
		return keys, nil
	}

	b.mu.RLock()
	for k := range b.entries {
		keys = append(keys, k)
	}
	b.mu.RUnlock()

	slices.Sort(keys)
	return keys, nil
}

func (s *storeImpl) BucketProps(bucketName string) (riak.BucketProperties, error) {
	if bucketName == "" {
		return riak.BucketProperties{}, store.NewError(store.RetCInvalidOperation, "bucket must not be empty")
	}

	b, ok := s.buckets.Load(bucketName)
	if !ok {
		return s.defaults, nil
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.props, nil
}

func (s *storeImpl) SetBucketProps(bucketName string, props riak.BucketProperties) error {
	if bucketName == "" {
		return store.NewError(store.RetCInvalidOperation, "bucket must not be empty")
	}
	if props.NValue == 0 {
		return store.NewError(store.RetCInvalidOperation, "n_val must be at least 1")
	}

	b := s.bucket(bucketName)
	b.mu.Lock()
	b.props = props
	b.mu.Unlock()

	Logger.Infof("Bucket %s: n_val=%d allow_mult=%v", bucketName, props.NValue, props.AllowMultiple)
	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func validate(bucketName, key string) error {
	if bucketName == "" {
		return store.NewError(store.RetCInvalidOperation, "bucket must not be empty")
	}
	if key == "" {
		return store.NewError(store.RetCInvalidOperation, "key must not be empty")
	}
	return nil
}

// snapshot copies the entry so callers never see later writes
func (e *entry) snapshot(key string) store.Entry {
	return store.Entry{
		Key:      key,
		VClock:   slices.Clone(e.vclock),
		Contents: slices.Clone(e.contents),
	}
}

// encodeVClock encodes a write index as opaque vclock
func encodeVClock(index uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, index)
}
