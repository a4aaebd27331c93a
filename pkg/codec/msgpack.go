package codec

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// MessagePack tags used by the codec.
const (
	tagFixArray    = 0x90
	tagFixArrayMax = 0x9f
	tagArray16     = 0xdc
	tagArray32     = 0xdd

	tagPositiveFixMax = 0x7f
	tagNegativeFixMin = 0xe0
	tagUint8          = 0xcc
	tagUint16         = 0xcd
	tagUint32         = 0xce
	tagUint64         = 0xcf
	tagInt8           = 0xd0
	tagInt16          = 0xd1
	tagInt32          = 0xd2
	tagInt64          = 0xd3

	tagFixRaw    = 0xa0
	tagFixRawMax = 0xbf
	tagStr8      = 0xd9
	tagRaw16     = 0xda
	tagRaw32     = 0xdb
	tagBin8      = 0xc4
	tagBin16     = 0xc5
	tagBin32     = 0xc6
)

// Errors
var (
	ErrInvalidTag  = errors.New("invalid msgpack tag")
	ErrIntOverflow = errors.New("msgpack integer overflows int64")
)

// TagError reports a tag byte that does not start the expected kind of value.
type TagError struct {
	Tag  byte
	Kind string
}

func (e *TagError) Error() string {
	return fmt.Sprintf("invalid msgpack tag 0x%02x for %s", e.Tag, e.Kind)
}

// Is makes TagError match ErrInvalidTag.
func (e *TagError) Is(target error) bool {
	return target == ErrInvalidTag
}

// ReadArrayHeader decodes an array header and returns the element count.
func ReadArrayHeader(r io.Reader) (uint32, int, error) {
	var buf [5]byte
	tag, err := readTag(r, buf[:1])
	if err != nil {
		return 0, 0, err
	}

	switch {
	case tag >= tagFixArray && tag <= tagFixArrayMax:
		return uint32(tag & 0x0f), 1, nil
	case tag == tagArray16:
		if err := readFull(r, buf[1:3]); err != nil {
			return 0, 0, err
		}
		return uint32(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case tag == tagArray32:
		if err := readFull(r, buf[1:5]); err != nil {
			return 0, 0, err
		}
		return binary.BigEndian.Uint32(buf[1:5]), 5, nil
	}

	return 0, 0, &TagError{Tag: tag, Kind: "array"}
}

// WriteArrayHeader encodes an array header for count elements.
func WriteArrayHeader(w io.Writer, count uint32) (int, error) {
	var buf [5]byte
	switch {
	case count < 16:
		buf[0] = tagFixArray | byte(count)
		return w.Write(buf[:1])
	case count <= math.MaxUint16:
		buf[0] = tagArray16
		binary.BigEndian.PutUint16(buf[1:], uint16(count))
		return w.Write(buf[:3])
	default:
		buf[0] = tagArray32
		binary.BigEndian.PutUint32(buf[1:], count)
		return w.Write(buf[:5])
	}
}

// ReadInt decodes a signed 64-bit integer. Unsigned encodings are accepted as
// long as the value fits in an int64.
func ReadInt(r io.Reader) (int64, int, error) {
	var buf [9]byte
	tag, err := readTag(r, buf[:1])
	if err != nil {
		return 0, 0, err
	}

	if tag <= tagPositiveFixMax {
		return int64(tag), 1, nil
	}
	if tag >= tagNegativeFixMin {
		return int64(int8(tag)), 1, nil
	}

	var size int
	switch tag {
	case tagInt8, tagUint8:
		size = 1
	case tagInt16, tagUint16:
		size = 2
	case tagInt32, tagUint32:
		size = 4
	case tagInt64, tagUint64:
		size = 8
	default:
		return 0, 0, &TagError{Tag: tag, Kind: "int"}
	}

	body := buf[1 : 1+size]
	if err := readFull(r, body); err != nil {
		return 0, 0, err
	}

	n := 1 + size
	switch tag {
	case tagInt8:
		return int64(int8(body[0])), n, nil
	case tagInt16:
		return int64(int16(binary.BigEndian.Uint16(body))), n, nil
	case tagInt32:
		return int64(int32(binary.BigEndian.Uint32(body))), n, nil
	case tagInt64:
		return int64(binary.BigEndian.Uint64(body)), n, nil
	case tagUint8:
		return int64(body[0]), n, nil
	case tagUint16:
		return int64(binary.BigEndian.Uint16(body)), n, nil
	case tagUint32:
		return int64(binary.BigEndian.Uint32(body)), n, nil
	default:
		v := binary.BigEndian.Uint64(body)
		if v > math.MaxInt64 {
			return 0, 0, ErrIntOverflow
		}
		return int64(v), n, nil
	}
}

// WriteInt encodes v using the smallest signed representation.
func WriteInt(w io.Writer, v int64) (int, error) {
	var buf [9]byte
	switch {
	case v >= 0 && v <= tagPositiveFixMax:
		buf[0] = byte(v)
		return w.Write(buf[:1])
	case v < 0 && v >= -32:
		buf[0] = byte(int8(v))
		return w.Write(buf[:1])
	case v >= math.MinInt8 && v <= math.MaxInt8:
		buf[0] = tagInt8
		buf[1] = byte(int8(v))
		return w.Write(buf[:2])
	case v >= math.MinInt16 && v <= math.MaxInt16:
		buf[0] = tagInt16
		binary.BigEndian.PutUint16(buf[1:], uint16(int16(v)))
		return w.Write(buf[:3])
	case v >= math.MinInt32 && v <= math.MaxInt32:
		buf[0] = tagInt32
		binary.BigEndian.PutUint32(buf[1:], uint32(int32(v)))
		return w.Write(buf[:5])
	default:
		buf[0] = tagInt64
		binary.BigEndian.PutUint64(buf[1:], uint64(v))
		return w.Write(buf[:9])
	}
}

// ReadRawHeader decodes the header of a raw byte string and returns the
// payload length. The payload itself is left on the stream.
func ReadRawHeader(r io.Reader) (uint32, int, error) {
	var buf [5]byte
	tag, err := readTag(r, buf[:1])
	if err != nil {
		return 0, 0, err
	}

	switch {
	case tag >= tagFixRaw && tag <= tagFixRawMax:
		return uint32(tag & 0x1f), 1, nil
	case tag == tagStr8 || tag == tagBin8:
		if err := readFull(r, buf[1:2]); err != nil {
			return 0, 0, err
		}
		return uint32(buf[1]), 2, nil
	case tag == tagRaw16 || tag == tagBin16:
		if err := readFull(r, buf[1:3]); err != nil {
			return 0, 0, err
		}
		return uint32(binary.BigEndian.Uint16(buf[1:3])), 3, nil
	case tag == tagRaw32 || tag == tagBin32:
		if err := readFull(r, buf[1:5]); err != nil {
			return 0, 0, err
		}
		return binary.BigEndian.Uint32(buf[1:5]), 5, nil
	}

	return 0, 0, &TagError{Tag: tag, Kind: "raw"}
}

// WriteRawHeader encodes the header for a raw byte string of length bytes.
func WriteRawHeader(w io.Writer, length uint32) (int, error) {
	var buf [5]byte
	switch {
	case length < 32:
		buf[0] = tagFixRaw | byte(length)
		return w.Write(buf[:1])
	case length <= math.MaxUint16:
		buf[0] = tagRaw16
		binary.BigEndian.PutUint16(buf[1:], uint16(length))
		return w.Write(buf[:3])
	default:
		buf[0] = tagRaw32
		binary.BigEndian.PutUint32(buf[1:], length)
		return w.Write(buf[:5])
	}
}

// readTag reads a single tag byte into buf.
func readTag(r io.Reader, buf []byte) (byte, error) {
	if err := readFull(r, buf[:1]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

// readFull is io.ReadFull that reports any short read, including a clean
// EOF, as io.ErrUnexpectedEOF.
func readFull(r io.Reader, buf []byte) error {
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.EOF {
			return io.ErrUnexpectedEOF
		}
		return err
	}
	return nil
}
