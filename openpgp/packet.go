package openpgp

import (
	"encoding/binary"
	"io"
)

// LengthType distinguishes how a packet's length was encoded on the
// wire, needed later for canonical round-trip serialization.
type LengthType int

const (
	LengthOneByte LengthType = iota
	LengthTwoByte
	LengthFourByte
	LengthIndeterminate
	LengthPartial
)

// RawPacket is the original bytes of one packet (header plus body)
// alongside its decoded framing, required because signatures hash the
// raw serialization of the signed-over entity, not its decoded form.
type RawPacket struct {
	Tag        Tag
	OldFormat  bool
	LengthType LengthType
	Header     []byte // the tag + length-encoding bytes, as read
	Body       []byte // fully materialized body (partial chunks concatenated)
}

// Raw returns the packet's bytes exactly as they appeared on the wire
// (header followed by body), the form signature hashing needs.
func (p *RawPacket) Raw() []byte {
	return append(append([]byte{}, p.Header...), p.Body...)
}

const partialMinFirstChunk = 512

// ReadRawPacket reads exactly one packet (old or new format, any length
// encoding) from src, fully materializing its body, including
// reassembling new-format partial-length chunks into one contiguous
// slice so the content decoder never has to know about chunking.
//
// A read that crosses a packet boundary is impossible by construction:
// ReadRawPacket always consumes precisely one packet's header and body.
func ReadRawPacket(src Source) (*RawPacket, error) {
	var ptagBuf [1]byte
	if _, err := io.ReadFull(src, ptagBuf[:]); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, newErr(RReadFailed, "ReadRawPacket", "reading tag byte", err)
	}
	ptag := ptagBuf[0]
	if ptag&0x80 == 0 {
		return nil, newErr(RBadFormat, "ReadRawPacket", "tag byte missing high bit", nil)
	}

	newFormat := ptag&0x40 != 0
	p := &RawPacket{Header: []byte{ptag}}

	if newFormat {
		p.OldFormat = false
		p.Tag = Tag(ptag & 0x3f)
		return readNewFormatBody(src, p)
	}

	p.OldFormat = true
	p.Tag = Tag((ptag >> 2) & 0x0f)
	lengthType := ptag & 0x03
	switch lengthType {
	case 0:
		p.LengthType = LengthOneByte
		var b [1]byte
		if _, err := io.ReadFull(src, b[:]); err != nil {
			return nil, newErr(RPrematureEOF, "ReadRawPacket", "1-byte length", err)
		}
		p.Header = append(p.Header, b[:]...)
		return readFixedBody(src, p, int(b[0]))
	case 1:
		p.LengthType = LengthTwoByte
		var b [2]byte
		if _, err := io.ReadFull(src, b[:]); err != nil {
			return nil, newErr(RPrematureEOF, "ReadRawPacket", "2-byte length", err)
		}
		p.Header = append(p.Header, b[:]...)
		return readFixedBody(src, p, int(binary.BigEndian.Uint16(b[:])))
	case 2:
		p.LengthType = LengthFourByte
		var b [4]byte
		if _, err := io.ReadFull(src, b[:]); err != nil {
			return nil, newErr(RPrematureEOF, "ReadRawPacket", "4-byte length", err)
		}
		p.Header = append(p.Header, b[:]...)
		return readFixedBody(src, p, int(binary.BigEndian.Uint32(b[:])))
	default:
		p.LengthType = LengthIndeterminate
		body, err := io.ReadAll(src)
		if err != nil {
			return nil, newErr(RReadFailed, "ReadRawPacket", "indeterminate length body", err)
		}
		p.Body = body
		return p, nil
	}
}

func readFixedBody(src Source, p *RawPacket, n int) (*RawPacket, error) {
	body := make([]byte, n)
	if _, err := io.ReadFull(src, body); err != nil {
		return nil, newErr(RPrematureEOF, "ReadRawPacket", "truncated packet body", err)
	}
	p.Body = body
	return p, nil
}

// readNewFormatBody decodes the new-format length encoding (1/2/5-byte
// fixed, or a chain of partial-length chunks) and materializes the body.
func readNewFormatBody(src Source, p *RawPacket) (*RawPacket, error) {
	first, err := readOctet(src)
	if err != nil {
		return nil, newErr(RPrematureEOF, "ReadRawPacket", "new-format length octet", err)
	}
	p.Header = append(p.Header, first)

	switch {
	case first < 192:
		p.LengthType = LengthOneByte
		return readFixedBody(src, p, int(first))

	case first < 224:
		second, err := readOctet(src)
		if err != nil {
			return nil, newErr(RPrematureEOF, "ReadRawPacket", "2-byte new-format length", err)
		}
		p.Header = append(p.Header, second)
		p.LengthType = LengthTwoByte
		n := (int(first)-192)<<8 + int(second) + 192
		return readFixedBody(src, p, n)

	case first == 255:
		var rest [4]byte
		if _, err := io.ReadFull(src, rest[:]); err != nil {
			return nil, newErr(RPrematureEOF, "ReadRawPacket", "5-byte new-format length", err)
		}
		p.Header = append(p.Header, rest[:]...)
		p.LengthType = LengthFourByte
		return readFixedBody(src, p, int(binary.BigEndian.Uint32(rest[:])))

	default: // 224..254: partial body length
		chunkLen := 1 << (first & 0x1f)
		if chunkLen < partialMinFirstChunk {
			return nil, newErr(RBadFormat, "ReadRawPacket", "initial partial chunk below 512 bytes", nil)
		}
		p.LengthType = LengthPartial
		body, err := readPartialChunks(src, chunkLen)
		if err != nil {
			return nil, err
		}
		p.Body = body
		return p, nil
	}
}

// readPartialChunks concatenates partial-body chunks, starting with one
// already known to be firstChunkLen bytes, until a final chunk encoded
// with fixed-length encoding terminates the sequence.
func readPartialChunks(src Source, firstChunkLen int) ([]byte, error) {
	var body []byte
	chunkLen := firstChunkLen
	final := false
	for {
		buf := make([]byte, chunkLen)
		if _, err := io.ReadFull(src, buf); err != nil {
			return nil, newErr(RPrematureEOF, "readPartialChunks", "truncated partial chunk", err)
		}
		body = append(body, buf...)
		if final {
			return body, nil
		}

		octet, err := readOctet(src)
		if err != nil {
			return nil, newErr(RPrematureEOF, "readPartialChunks", "next chunk header", err)
		}
		switch {
		case octet < 192:
			chunkLen = int(octet)
			final = true
		case octet < 224:
			second, err := readOctet(src)
			if err != nil {
				return nil, newErr(RPrematureEOF, "readPartialChunks", "2-byte final chunk length", err)
			}
			chunkLen = (int(octet)-192)<<8 + int(second) + 192
			final = true
		case octet == 255:
			var rest [4]byte
			if _, err := io.ReadFull(src, rest[:]); err != nil {
				return nil, newErr(RPrematureEOF, "readPartialChunks", "4-byte final chunk length", err)
			}
			chunkLen = int(binary.BigEndian.Uint32(rest[:]))
			final = true
		default:
			chunkLen = 1 << (octet & 0x1f)
		}
	}
}

// oldFormatHeader builds an old-format packet header for tag with a
// body of length n, choosing the smallest fixed-length encoding that
// fits, matching the style of the teacher's inline packet-header
// construction in SignKey.Packet/PubPacket.
func oldFormatHeader(tag Tag, n int) []byte {
	switch {
	case n < 1<<8:
		return []byte{0x80 | byte(tag)<<2 | 0, byte(n)}
	case n < 1<<16:
		return []byte{0x80 | byte(tag)<<2 | 1, byte(n >> 8), byte(n)}
	default:
		return append([]byte{0x80 | byte(tag)<<2 | 2}, marshal32be(uint32(n))...)
	}
}

func readOctet(src Source) (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(src, b[:])
	return b[0], err
}

// decodeNewFormatLength reads one new-format length field from src,
// used by the streaming PartialBodyReader layer that some callers push
// onto the reader stack instead of calling ReadRawPacket directly.
func decodeNewFormatLength(src Source) (length int, partial bool, err error) {
	first, err := readOctet(src)
	if err != nil {
		return 0, false, newErr(RPrematureEOF, "decodeNewFormatLength", "length octet", err)
	}
	switch {
	case first < 192:
		return int(first), false, nil
	case first < 224:
		second, err := readOctet(src)
		if err != nil {
			return 0, false, newErr(RPrematureEOF, "decodeNewFormatLength", "2-byte length", err)
		}
		return (int(first)-192)<<8 + int(second) + 192, false, nil
	case first == 255:
		var rest [4]byte
		if _, err := io.ReadFull(src, rest[:]); err != nil {
			return 0, false, newErr(RPrematureEOF, "decodeNewFormatLength", "5-byte length", err)
		}
		return int(binary.BigEndian.Uint32(rest[:])), false, nil
	default:
		return 1 << (first & 0x1f), true, nil
	}
}
