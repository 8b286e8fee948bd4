package pb

import (
	"github.com/ValentinKolb/riakpbc/lib/riak"
)

// --------------------------------------------------------------------------
// Domain -> payload
// --------------------------------------------------------------------------

// NewRpbContent converts a content into its payload form. User metadata is encoded in ascending key order.
func NewRpbContent(c riak.Content) *RpbContent {
	out := &RpbContent{
		Value:           c.Value,
		ContentType:     []byte(c.Metadata.ContentType),
		Charset:         []byte(c.Metadata.Charset),
		ContentEncoding: []byte(c.Metadata.Encoding),
		Vtag:            []byte(c.Metadata.VTag),
		LastMod:         c.Metadata.LastMod,
		LastModUsecs:    c.Metadata.LastModUsecs,
	}
	if out.Value == nil {
		out.Value = []byte{}
	}
	for _, k := range c.Metadata.UserMetaKeys() {
		out.Usermeta = append(out.Usermeta, &RpbPair{Key: []byte(k), Value: []byte(c.Metadata.UserMeta[k])})
	}
	return out
}

// NewRpbBucketProps converts bucket properties with both fields set
func NewRpbBucketProps(p riak.BucketProperties) *RpbBucketProps {
	nVal := p.NValue
	allowMult := p.AllowMultiple
	return &RpbBucketProps{NVal: &nVal, AllowMult: &allowMult}
}

// --------------------------------------------------------------------------
// Payload -> domain
// --------------------------------------------------------------------------

// ToContent converts the payload form back into a content
func (c *RpbContent) ToContent() riak.Content {
	out := riak.Content{
		Value: c.Value,
		Metadata: riak.Metadata{
			ContentType:  string(c.ContentType),
			Charset:      string(c.Charset),
			Encoding:     string(c.ContentEncoding),
			VTag:         string(c.Vtag),
			LastMod:      c.LastMod,
			LastModUsecs: c.LastModUsecs,
		},
	}
	if len(c.Usermeta) > 0 {
		out.Metadata.UserMeta = make(map[string]string, len(c.Usermeta))
		for _, p := range c.Usermeta {
			out.Metadata.UserMeta[string(p.Key)] = string(p.Value)
		}
	}
	return out
}

// Merge returns base with every field that is set in p applied on top
func (p *RpbBucketProps) Merge(base riak.BucketProperties) riak.BucketProperties {
	if p == nil {
		return base
	}
	if p.NVal != nil {
		base.NValue = *p.NVal
	}
	if p.AllowMult != nil {
		base.AllowMultiple = *p.AllowMult
	}
	return base
}

// Strings converts repeated bytes fields to strings
func Strings(values [][]byte) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}

// Bytes converts strings to repeated bytes fields
func Bytes(values []string) [][]byte {
	out := make([][]byte, len(values))
	for i, v := range values {
		out[i] = []byte(v)
	}
	return out
}
