package openpgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubpacketRoundTrip(t *testing.T) {
	subs := []Subpacket{
		{Type: SSCreationTime, Data: []byte{0, 0, 0, 1}},
		{Type: SSIssuer, Data: []byte{1, 2, 3, 4, 5, 6, 7, 8}},
		{Type: SSKeyFlags, Data: []byte{0x03}, Critical: true},
	}
	wire := EncodeSubpackets(subs)

	decoded, criticalUnknown, err := DecodeSubpackets(wire)
	require.NoError(t, err)
	assert.False(t, criticalUnknown)
	require.Len(t, decoded, 3)
	for i, sp := range subs {
		assert.Equal(t, sp.Type, decoded[i].Type)
		assert.Equal(t, sp.Data, decoded[i].Data)
		assert.Equal(t, sp.Critical, decoded[i].Critical)
	}
}

func TestDecodeSubpacketsFlagsUnknownCritical(t *testing.T) {
	sp := Subpacket{Type: SubpacketType(99), Data: []byte{1}, Critical: true}
	wire := EncodeSubpacket(sp)

	_, criticalUnknown, err := DecodeSubpackets(wire)
	require.NoError(t, err)
	assert.True(t, criticalUnknown)
}

func TestDecodeSubpacketsNonCriticalUnknownIsFine(t *testing.T) {
	sp := Subpacket{Type: SubpacketType(99), Data: []byte{1}, Critical: false}
	wire := EncodeSubpacket(sp)

	_, criticalUnknown, err := DecodeSubpackets(wire)
	require.NoError(t, err)
	assert.False(t, criticalUnknown)
}

func TestFindSubpacket(t *testing.T) {
	subs := []Subpacket{{Type: SSIssuer, Data: []byte{1}}}
	sp, ok := FindSubpacket(subs, SSIssuer)
	assert.True(t, ok)
	assert.Equal(t, []byte{1}, sp.Data)

	_, ok = FindSubpacket(subs, SSKeyFlags)
	assert.False(t, ok)
}

func TestEncodeSubpacketLengthForms(t *testing.T) {
	// Exercise all three RFC 4880 §4.2.2 length encodings.
	small := EncodeSubpacket(Subpacket{Type: SSIssuer, Data: make([]byte, 10)})
	assert.Less(t, int(small[0]), 192)

	medium := EncodeSubpacket(Subpacket{Type: SSIssuer, Data: make([]byte, 300)})
	assert.GreaterOrEqual(t, int(medium[0]), 192)
	assert.Less(t, int(medium[0]), 255)

	large := EncodeSubpacket(Subpacket{Type: SSIssuer, Data: make([]byte, 9000)})
	assert.Equal(t, byte(255), large[0])
}
