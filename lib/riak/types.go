package riak

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Keys and versions
// --------------------------------------------------------------------------

// Key addresses a value in the store
type Key struct {
	Bucket string
	Key    string
}

func (k Key) String() string {
	return k.Bucket + "/" + k.Key
}

// Version identifies a state of a key. The vclock is an opaque causality token
// issued by the server and must be sent back unchanged when writing.
type Version struct {
	Key    Key
	VClock []byte
}

// --------------------------------------------------------------------------
// Content
// --------------------------------------------------------------------------

// Metadata describes one content of a key
type Metadata struct {
	ContentType  string
	Charset      string
	Encoding     string
	VTag         string
	LastMod      uint32 // seconds since the epoch
	LastModUsecs uint32
	// UserMeta is encoded in ascending key order
	UserMeta map[string]string
}

// LastModified returns the modification time set by the server
func (m Metadata) LastModified() time.Time {
	if m.LastMod == 0 && m.LastModUsecs == 0 {
		return time.Time{}
	}
	return time.Unix(int64(m.LastMod), int64(m.LastModUsecs)*int64(time.Microsecond))
}

// UserMetaKeys returns the keys of the user metadata in encoding order
func (m Metadata) UserMetaKeys() []string {
	return slices.Sorted(maps.Keys(m.UserMeta))
}

// Content is one version of the value of a key
type Content struct {
	Metadata Metadata
	Value    []byte
}

// --------------------------------------------------------------------------
// Request parameters
// --------------------------------------------------------------------------

// Quorum is the number of replicas that must answer a request.
// Zero is not sent, the server then applies the bucket default.
type Quorum uint32

// Symbolic quorum values understood by the server
const (
	QuorumOne      Quorum = 0xfffffffe
	QuorumMajority Quorum = 0xfffffffd
	QuorumAll      Quorum = 0xfffffffc
	QuorumDefault  Quorum = 0xfffffffb
)

var quorumNames = map[Quorum]string{
	QuorumOne:      "one",
	QuorumMajority: "quorum",
	QuorumAll:      "all",
	QuorumDefault:  "default",
}

func (q Quorum) String() string {
	if q == 0 {
		return "unset"
	}
	if name, ok := quorumNames[q]; ok {
		return name
	}
	return strconv.FormatUint(uint64(q), 10)
}

// ParseQuorum parses a quorum given as symbolic name or replica count. The empty string is unset.
func ParseQuorum(s string) (Quorum, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == "unset" {
		return 0, nil
	}
	for q, name := range quorumNames {
		if name == s {
			return q, nil
		}
	}
	n, err := strconv.ParseUint(s, 10, 32)
	if err != nil || Quorum(n) >= QuorumDefault {
		return 0, fmt.Errorf("%w: quorum %q is neither one, quorum, all, default nor a replica count", ErrInvalidArgument, s)
	}
	return Quorum(n), nil
}

// StoreParams controls the durability of a write and whether the stored value is returned
type StoreParams struct {
	W          Quorum
	DW         Quorum
	ReturnBody bool
}

// BucketProperties holds the settings of a bucket
type BucketProperties struct {
	// AllowMultiple keeps concurrent writes as siblings instead of letting the last write win
	AllowMultiple bool
	// NValue is the number of replicas of every key
	NValue uint32
}

// ServerInfo identifies the node the client is connected to
type ServerInfo struct {
	Node          string
	ServerVersion string
}
