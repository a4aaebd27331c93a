//go:build fuzz
// +build fuzz

package codec

import (
	"bytes"
	"io"
	"testing"
)

// FuzzString_RoundTrip tests write/read round-trip with random inputs
func FuzzString_RoundTrip(f *testing.F) {
	f.Add("")
	f.Add("purchase")
	f.Add(string([]byte{0x00, 0x01, 0xff}))

	f.Fuzz(func(t *testing.T, s string) {
		if len(s) > 100000 {
			t.Skip("Input too large for fuzz test")
		}

		var buf bytes.Buffer
		if _, err := WriteString(&buf, s); err != nil {
			t.Fatalf("WriteString failed: %v", err)
		}

		got, err := ReadString(bytes.NewReader(buf.Bytes()))
		if err != nil {
			t.Fatalf("ReadString failed: %v", err)
		}
		if got != s {
			t.Errorf("Value mismatch: got %q, want %q", got, s)
		}
	})
}

// FuzzInt_RoundTrip tests integer encoding across the full int64 range
func FuzzInt_RoundTrip(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(-33))
	f.Add(int64(1 << 40))

	f.Fuzz(func(t *testing.T, v int64) {
		var buf bytes.Buffer
		n, err := WriteInt(&buf, v)
		if err != nil {
			t.Fatalf("WriteInt failed: %v", err)
		}

		got, m, err := ReadInt(&buf)
		if err != nil {
			t.Fatalf("ReadInt failed: %v", err)
		}
		if got != v || m != n {
			t.Errorf("ReadInt = (%d, %d), want (%d, %d)", got, m, v, n)
		}
	})
}

// FuzzReadString_Garbage ensures arbitrary input never panics and failed
// reads leave the stream at its starting offset.
func FuzzReadString_Garbage(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0xa5, 'a'})
	f.Add([]byte{0xdb, 0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		r := bytes.NewReader(data)
		if _, err := ReadString(r); err != nil {
			pos, _ := r.Seek(0, io.SeekCurrent)
			if pos != 0 {
				t.Errorf("Stream not restored after failure: pos=%d", pos)
			}
		}
	})
}
