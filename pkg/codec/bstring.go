package codec

import (
	"errors"
	"fmt"
	"io"
)

// MaxRawLength bounds the payload size of a raw string. ReadString refuses to
// allocate more and WriteString refuses to emit more, so anything written can
// be read back.
const MaxRawLength = 64 << 20

var ErrRawTooLarge = errors.New("msgpack raw payload too large")

// ReadString reads a raw byte string, header and payload, as a Go string.
// On any failure the stream is restored to the offset it had on entry.
func ReadString(r io.ReadSeeker) (string, error) {
	pos, err := r.Seek(0, io.SeekCurrent)
	if err != nil {
		return "", fmt.Errorf("checkpoint stream: %w", err)
	}

	s, err := readString(r)
	if err != nil {
		if _, seekErr := r.Seek(pos, io.SeekStart); seekErr != nil {
			return "", errors.Join(err, fmt.Errorf("restore stream to %d: %w", pos, seekErr))
		}
		return "", err
	}
	return s, nil
}

func readString(r io.Reader) (string, error) {
	length, _, err := ReadRawHeader(r)
	if err != nil {
		return "", fmt.Errorf("read raw header: %w", err)
	}
	if length > MaxRawLength {
		return "", fmt.Errorf("%w: %d bytes", ErrRawTooLarge, length)
	}

	buf := make([]byte, length)
	if n, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return "", fmt.Errorf("expected %d bytes, received %d bytes: %w", length, n, err)
	}
	return string(buf), nil
}

// WriteString writes s as a raw byte string. The header is always written,
// the payload only when s is non-empty. Strings longer than MaxRawLength are
// rejected before anything is written.
func WriteString(w io.Writer, s string) (int, error) {
	if len(s) > MaxRawLength {
		return 0, fmt.Errorf("%w: %d bytes", ErrRawTooLarge, len(s))
	}

	n, err := WriteRawHeader(w, uint32(len(s)))
	if err != nil {
		return n, fmt.Errorf("write raw header: %w", err)
	}
	if len(s) == 0 {
		return n, nil
	}

	m, err := io.WriteString(w, s)
	n += m
	if err != nil {
		return n, fmt.Errorf("attempted to write %d bytes, only wrote %d bytes: %w", len(s), m, err)
	}
	return n, nil
}
