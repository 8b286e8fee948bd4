package client

import (
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/ValentinKolb/riakpbc/rpc/pb"
)

// fromPbContents builds a fetch result for key from the contents and vclock of a response
func fromPbContents(key riak.Key, vclock []byte, contents []*pb.RpbContent) *riak.FetchResult {
	res := &riak.FetchResult{
		Version: riak.Version{Key: key, VClock: vclock},
	}
	if len(contents) > 0 {
		res.Contents = make([]riak.Content, 0, len(contents))
		for _, c := range contents {
			res.Contents = append(res.Contents, c.ToContent())
		}
	}
	return res
}
