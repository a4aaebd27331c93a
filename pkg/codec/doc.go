// Package codec provides the MessagePack primitives used by skyactions files.
//
// The codec package implements the small subset of MessagePack needed to
// persist an action registry: array headers, signed integers and
// length-prefixed raw byte strings. It operates directly on io.Reader and
// io.Writer streams rather than on whole buffers.
//
// # Wire Format
//
// Values are framed with a one byte tag. Small values fit inside the tag,
// larger values use an extended tag followed by a big-endian length or value:
//
//	Array header:  0x90-0x9f (fixarray)  0xdc u16  0xdd u32
//	Integer:       0x00-0x7f (positive)  0xe0-0xff (negative)
//	               0xd0 i8   0xd1 i16   0xd2 i32   0xd3 i64
//	Raw header:    0xa0-0xbf (fixraw)    0xda u16  0xdb u32
//
// Writers always emit the smallest signed integer encoding. Readers also
// accept the unsigned integer tags (0xcc-0xcf), str8 (0xd9) and the bin
// family (0xc4-0xc6) so that files produced by other MessagePack encoders
// can be read back.
//
// # Usage
//
//	var buf bytes.Buffer
//	codec.WriteArrayHeader(&buf, 1)
//	codec.WriteInt(&buf, 1)
//	codec.WriteString(&buf, "purchase")
//
//	r := bytes.NewReader(buf.Bytes())
//	count, _, err := codec.ReadArrayHeader(r)
//	id, _, err := codec.ReadInt(r)
//	name, err := codec.ReadString(r)
//
// # Error Handling
//
// Every read returns the number of bytes consumed alongside an error. A
// consumed count of zero always signals failure, so callers can treat
// n == 0 and err != nil interchangeably. Malformed tags are reported as
// *TagError values matching ErrInvalidTag, truncated input as
// io.ErrUnexpectedEOF. Nothing in this package panics on bad input.
//
// ReadString checkpoints the stream before reading and seeks back to that
// offset on any failure, so a failed string read never leaves the stream
// positioned in the middle of a field.
//
// # Thread Safety
//
// The functions are stateless. Concurrent use of a single stream must be
// serialized by the caller.
package codec
