package pb

import (
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"reflect"
	"testing"
)

// TestContentConversion tests that a content survives the payload form unchanged
func TestContentConversion(t *testing.T) {
	c := riak.Content{
		Value: []byte("v"),
		Metadata: riak.Metadata{
			ContentType:  "text/plain",
			Charset:      "utf-8",
			Encoding:     "gzip",
			VTag:         "1a",
			LastMod:      1700000000,
			LastModUsecs: 42,
			UserMeta:     map[string]string{"z": "26", "a": "1", "m": "13"},
		},
	}

	p := NewRpbContent(c)

	// user metadata is sent in ascending key order
	var keys []string
	for _, pair := range p.Usermeta {
		keys = append(keys, string(pair.Key))
	}
	if !reflect.DeepEqual(keys, []string{"a", "m", "z"}) {
		t.Errorf("unexpected user meta order: %v", keys)
	}

	if got := p.ToContent(); !reflect.DeepEqual(got, c) {
		t.Errorf("content mismatch:\n got %+v\nwant %+v", got, c)
	}
}

// TestNilValueIsSentEmpty tests that the required value field is always present
func TestNilValueIsSentEmpty(t *testing.T) {
	p := NewRpbContent(riak.Content{})
	if p.Value == nil || len(p.Value) != 0 {
		t.Errorf("expected empty non nil value, got %v", p.Value)
	}

	var decoded RpbContent
	if err := decoded.Unmarshal(p.AppendTo(nil)); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Value) != 0 || decoded.Usermeta != nil {
		t.Errorf("unexpected decoded content: %+v", decoded)
	}
}

// TestBucketPropsMerge tests that only set fields override the base
func TestBucketPropsMerge(t *testing.T) {
	nVal := uint32(5)
	allowMult := true
	base := riak.BucketProperties{NValue: 3}

	testCases := []struct {
		name     string
		props    *RpbBucketProps
		expected riak.BucketProperties
	}{
		{name: "Nil", props: nil, expected: base},
		{name: "Empty", props: &RpbBucketProps{}, expected: base},
		{name: "NVal only", props: &RpbBucketProps{NVal: &nVal}, expected: riak.BucketProperties{NValue: 5}},
		{name: "AllowMult only", props: &RpbBucketProps{AllowMult: &allowMult}, expected: riak.BucketProperties{NValue: 3, AllowMultiple: true}},
		{name: "Both", props: NewRpbBucketProps(riak.BucketProperties{NValue: 1}), expected: riak.BucketProperties{NValue: 1}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.props.Merge(base); !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %+v, expected %+v", got, tc.expected)
			}
		})
	}
}

// TestStringsBytes tests the repeated field helpers
func TestStringsBytes(t *testing.T) {
	in := []string{"a", "", "bucket"}
	if got := Strings(Bytes(in)); !reflect.DeepEqual(got, in) {
		t.Errorf("got %q", got)
	}
	if got := Strings(nil); len(got) != 0 {
		t.Errorf("expected empty slice, got %q", got)
	}
}
