package openpgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArmorRoundTrip(t *testing.T) {
	data := []byte("the quick brown fox jumps over the lazy dog, 0123456789")
	armoured := Armor(data, "SIGNATURE")

	block, err := NewDearmour(NewMemorySource(armoured))
	require.NoError(t, err)
	assert.Equal(t, "SIGNATURE", block.Block.Type)
	assert.Equal(t, data, block.Block.Body)
}

func TestArmorWithHeaders(t *testing.T) {
	data := []byte("hello")
	armoured := ArmorWithHeaders(data, "MESSAGE", map[string]string{"Version": "pgpcore"})

	block, err := NewDearmour(NewMemorySource(armoured))
	require.NoError(t, err)
	assert.Equal(t, "pgpcore", block.Block.Headers["Version"])
	assert.Equal(t, data, block.Block.Body)
}

func TestDearmourRejectsBadCRC(t *testing.T) {
	armoured := Armor([]byte("payload"), "SIGNATURE")
	corrupted := append([]byte{}, armoured...)
	idx := -1
	for i, b := range corrupted {
		if b == '=' && i > 0 && corrupted[i-1] == '\n' {
			idx = i + 1 // first base64 digit of the CRC24 line
			break
		}
	}
	require.NotEqual(t, -1, idx)
	if corrupted[idx] == 'A' {
		corrupted[idx] = 'B'
	} else {
		corrupted[idx] = 'A'
	}
	_, err := NewDearmour(NewMemorySource(corrupted))
	assert.Error(t, err)
}

func TestDearmourMissingMarker(t *testing.T) {
	_, err := NewDearmour(NewMemorySource([]byte("not armour at all")))
	assert.Error(t, err)
}

func TestCRC24KnownValue(t *testing.T) {
	// RFC 4880 §6.1 worked example: CRC24("") == 0xB704CE.
	assert.Equal(t, uint32(0xB704CE), crc24(nil))
}
