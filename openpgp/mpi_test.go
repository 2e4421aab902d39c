package openpgp

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMPIRoundTrip(t *testing.T) {
	for _, n := range []int64{0, 1, 255, 256, 65535, 1 << 20} {
		v := big.NewInt(n)
		wire := NewMPI(v).Encode()
		decoded, rest, err := DecodeMPI(wire)
		require.NoError(t, err)
		assert.Empty(t, rest)
		assert.Equal(t, 0, v.Cmp(decoded.Int()))
	}
}

func TestDecodeMPIRejectsOverlongBitLength(t *testing.T) {
	// Declares 16 bits but supplies only one content byte.
	wire := []byte{0x00, 0x10, 0xff}
	_, _, err := DecodeMPI(wire)
	assert.Error(t, err)
}

func TestDecodeMPIRejectsLeadingZeroByte(t *testing.T) {
	wire := []byte{0x00, 0x08, 0x00}
	_, _, err := DecodeMPI(wire)
	assert.Error(t, err)
}

func TestDecodeMPIRejectsMismatchedBitLength(t *testing.T) {
	// 0x01 only needs 1 bit, but the header claims 8.
	wire := []byte{0x00, 0x08, 0x01}
	_, _, err := DecodeMPI(wire)
	assert.Error(t, err)
}

func TestChecksum(t *testing.T) {
	assert.Equal(t, uint16(0), checksum(nil))
	assert.Equal(t, uint16(3), checksum([]byte{1, 2}))
	assert.Equal(t, uint16(0x1ff), checksum([]byte{0xff, 0xff, 1}))
}

func TestMPIDecodeFixedWidth(t *testing.T) {
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 1)
	}
	wire := mpi(seed)
	out, rest := mpiDecode(wire, 32)
	require.NotNil(t, out)
	assert.Empty(t, rest)
	assert.Equal(t, seed, out)
}

func TestMPIDecodeFixedWidthLeftPads(t *testing.T) {
	// A value with a short leading byte still decodes to the full width.
	short := []byte{0x01}
	wire := mpi(short)
	out, _ := mpiDecode(wire, 4)
	assert.Equal(t, []byte{0, 0, 0, 1}, out)
}
