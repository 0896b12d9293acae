package api

import (
	"encoding/json"
	"testing"
)

func TestIDUnmarshal(t *testing.T) {
	cases := []struct {
		raw  string
		want ID
	}{
		{`42`, "42"},
		{`"abc-123"`, "abc-123"},
	}
	for _, tc := range cases {
		var id ID
		if err := json.Unmarshal([]byte(tc.raw), &id); err != nil {
			t.Fatalf("unmarshal %s err: %v", tc.raw, err)
		}
		if id != tc.want {
			t.Fatalf("unmarshal %s = %q want %q", tc.raw, id, tc.want)
		}
	}
}

func TestTimestampUnmarshal(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want int64
	}{
		{"epoch seconds", `1760000000`, 1760000000000},
		{"epoch millis", `1760000000000`, 1760000000000},
		{"rfc3339", `"2026-02-11T09:30:00Z"`, 1770802200000},
		{"null", `null`, 0},
		{"unknown layout", `"yesterday"`, 0},
	}
	for _, tc := range cases {
		var ts Timestamp
		if err := json.Unmarshal([]byte(tc.raw), &ts); err != nil {
			t.Fatalf("%s: unmarshal err: %v", tc.name, err)
		}
		if ts.Millis() != tc.want {
			t.Fatalf("%s: got %d want %d", tc.name, ts.Millis(), tc.want)
		}
	}
}
