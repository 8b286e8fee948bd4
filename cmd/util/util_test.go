package util

import (
	"errors"
	"github.com/ValentinKolb/riakpbc/lib/riak"
	"github.com/spf13/viper"
	"reflect"
	"strings"
	"testing"
)

func TestWrapString(t *testing.T) {
	text := strings.Repeat("word ", 30)
	for _, line := range strings.Split(WrapString(text), "\n") {
		if len(line) > Wrap {
			t.Errorf("line longer than %d: %q", Wrap, line)
		}
	}
	if WrapString("") != "" {
		t.Errorf("expected empty string")
	}
}

func TestParsePairs(t *testing.T) {
	testCases := []struct {
		name     string
		in       []string
		expected map[string]string
		fails    bool
	}{
		{name: "None", in: nil, expected: nil},
		{name: "Pairs", in: []string{"a=1", "b=x=y", "c="}, expected: map[string]string{"a": "1", "b": "x=y", "c": ""}},
		{name: "Missing separator", in: []string{"a"}, fails: true},
		{name: "Empty key", in: []string{"=1"}, fails: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePairs(tc.in)
			if tc.fails {
				if err == nil {
					t.Errorf("expected error")
				}
				return
			}
			if err != nil || !reflect.DeepEqual(got, tc.expected) {
				t.Errorf("got %v (%v), expected %v", got, err, tc.expected)
			}
		})
	}
}

func TestParseHex(t *testing.T) {
	if b, err := ParseHex("vclock", ""); err != nil || b != nil {
		t.Errorf("empty string: %v %v", b, err)
	}
	if b, err := ParseHex("vclock", "00ff"); err != nil || !reflect.DeepEqual(b, []byte{0, 0xff}) {
		t.Errorf("valid hex: %v %v", b, err)
	}
	if _, err := ParseHex("vclock", "xyz"); err == nil {
		t.Errorf("expected error for invalid hex")
	}
}

func TestGetQuorum(t *testing.T) {
	testCases := []struct {
		value    string
		expected riak.Quorum
		fails    bool
	}{
		{value: "", expected: 0},
		{value: "all", expected: riak.QuorumAll},
		{value: "2", expected: 2},
		{value: "many", fails: true},
	}

	for _, tc := range testCases {
		t.Run(tc.value, func(t *testing.T) {
			viper.Set("test-quorum", tc.value)
			q, err := GetQuorum("test-quorum")
			if tc.fails {
				if !errors.Is(err, riak.ErrInvalidArgument) {
					t.Errorf("expected ErrInvalidArgument, got %v", err)
				}
				return
			}
			if err != nil || q != tc.expected {
				t.Errorf("got %v (%v), expected %v", q, err, tc.expected)
			}
		})
	}
}
