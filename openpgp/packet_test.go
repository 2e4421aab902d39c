package openpgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRawPacketOldFormatOneByteLength(t *testing.T) {
	body := []byte("hello")
	wire := oldFormatHeader(TagUserID, len(body))
	wire = append(wire, body...)

	raw, err := ReadRawPacket(NewMemorySource(wire))
	require.NoError(t, err)
	assert.Equal(t, TagUserID, raw.Tag)
	assert.True(t, raw.OldFormat)
	assert.Equal(t, LengthOneByte, raw.LengthType)
	assert.Equal(t, body, raw.Body)
}

func TestReadRawPacketOldFormatTwoByteLength(t *testing.T) {
	body := make([]byte, 300)
	for i := range body {
		body[i] = byte(i)
	}
	wire := oldFormatHeader(TagUserID, len(body))
	wire = append(wire, body...)

	raw, err := ReadRawPacket(NewMemorySource(wire))
	require.NoError(t, err)
	assert.Equal(t, LengthTwoByte, raw.LengthType)
	assert.Equal(t, body, raw.Body)
}

func TestReadRawPacketOldFormatFourByteLength(t *testing.T) {
	body := make([]byte, 70000)
	wire := oldFormatHeader(TagUserID, len(body))
	wire = append(wire, body...)

	raw, err := ReadRawPacket(NewMemorySource(wire))
	require.NoError(t, err)
	assert.Equal(t, LengthFourByte, raw.LengthType)
	assert.Len(t, raw.Body, 70000)
}

func TestReadRawPacketRejectsMissingHighBit(t *testing.T) {
	_, err := ReadRawPacket(NewMemorySource([]byte{0x01, 0x00}))
	assert.Error(t, err)
}

func TestReadRawPacketNewFormatOneByteLength(t *testing.T) {
	wire := []byte{0xc0 | byte(TagUserID), 5, 'h', 'e', 'l', 'l', 'o'}
	raw, err := ReadRawPacket(NewMemorySource(wire))
	require.NoError(t, err)
	assert.False(t, raw.OldFormat)
	assert.Equal(t, TagUserID, raw.Tag)
	assert.Equal(t, "hello", string(raw.Body))
}

func TestReadRawPacketNewFormatTwoByteLength(t *testing.T) {
	body := make([]byte, 1000)
	header := []byte{0xc0 | byte(TagUserID)}
	n := len(body) - 192
	header = append(header, byte(192+(n>>8)), byte(n))
	wire := append(header, body...)

	raw, err := ReadRawPacket(NewMemorySource(wire))
	require.NoError(t, err)
	assert.Equal(t, LengthTwoByte, raw.LengthType)
	assert.Len(t, raw.Body, 1000)
}

func TestReadRawPacketPartialLengthRejectsShortFirstChunk(t *testing.T) {
	// 224..254 octet encodes a partial chunk length 1<<(octet&0x1f); 0xe0 -> 1<<0 = 1 byte,
	// below the 512-byte floor spec §3 requires for a non-final chunk.
	wire := []byte{0xc0 | byte(TagLiteralData), 0xe0, 0x00}
	_, err := ReadRawPacket(NewMemorySource(wire))
	assert.Error(t, err)
}

func TestReadRawPacketPartialLengthAssemblesChunks(t *testing.T) {
	first := make([]byte, 512)
	for i := range first {
		first[i] = byte(i)
	}
	final := []byte("tail")

	wire := []byte{0xc0 | byte(TagLiteralData), 0xe9} // 1<<9 = 512
	wire = append(wire, first...)
	wire = append(wire, byte(len(final))) // final chunk, fixed one-byte length
	wire = append(wire, final...)

	raw, err := ReadRawPacket(NewMemorySource(wire))
	require.NoError(t, err)
	assert.Equal(t, LengthPartial, raw.LengthType)
	assert.Len(t, raw.Body, 512+len(final))
	assert.Equal(t, final, raw.Body[512:])
}

func TestRawPacketRawReturnsHeaderPlusBody(t *testing.T) {
	wire := []byte{0xc0 | byte(TagUserID), 3, 'a', 'b', 'c'}
	raw, err := ReadRawPacket(NewMemorySource(wire))
	require.NoError(t, err)
	assert.Equal(t, wire, raw.Raw())
}
