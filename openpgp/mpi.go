package openpgp

import (
	"encoding/binary"
	"math/big"
)

// MPI is a multiprecision integer in OpenPGP wire form: a 16-bit bit
// count followed by the big-endian bytes of the value. The top bit of
// the leading byte must be set unless the value is zero.
type MPI struct {
	bits  int
	bytes []byte
}

// NewMPI wraps a big.Int as an MPI, computing its minimal byte form.
func NewMPI(v *big.Int) MPI {
	if v.Sign() == 0 {
		return MPI{bits: 0, bytes: nil}
	}
	b := v.Bytes()
	return MPI{bits: v.BitLen(), bytes: b}
}

// Int returns the MPI's value as a big.Int.
func (m MPI) Int() *big.Int {
	return new(big.Int).SetBytes(m.bytes)
}

// Bytes returns the big-endian magnitude bytes (no length prefix).
func (m MPI) Bytes() []byte { return m.bytes }

// BitLen returns the MPI's declared bit length.
func (m MPI) BitLen() int { return m.bits }

// Encode serializes the MPI in OpenPGP wire form.
func (m MPI) Encode() []byte {
	out := make([]byte, 2+len(m.bytes))
	binary.BigEndian.PutUint16(out, uint16(m.bits))
	copy(out[2:], m.bytes)
	return out
}

// mpi serializes a minimal big-endian byte slice as an OpenPGP MPI,
// matching the teacher's mpi() helper referenced throughout signkey.go.
func mpi(b []byte) []byte {
	v := new(big.Int).SetBytes(b)
	return NewMPI(v).Encode()
}

// DecodeMPI reads one MPI from the front of data, returning the
// remaining bytes. It enforces the bit-length-vs-remaining-bytes
// invariant spec'd for the content decoder.
func DecodeMPI(data []byte) (MPI, []byte, error) {
	if len(data) < 2 {
		return MPI{}, nil, newErr(PNotEnoughData, "DecodeMPI", "truncated MPI header", nil)
	}
	bits := int(binary.BigEndian.Uint16(data))
	byteLen := (bits + 7) / 8
	if byteLen > len(data)-2 {
		return MPI{}, nil, newErr(PMPIFormatError, "DecodeMPI", "bit length exceeds remaining bytes", nil)
	}
	val := data[2 : 2+byteLen]
	if byteLen > 0 {
		// Top bit of the leading byte must be set unless the value is zero,
		// and the declared bit length must match the leading byte exactly.
		lead := val[0]
		if lead == 0 {
			return MPI{}, nil, newErr(PMPIFormatError, "DecodeMPI", "leading MPI byte is zero", nil)
		}
		wantBits := (byteLen-1)*8 + bitLen8(lead)
		if wantBits != bits {
			return MPI{}, nil, newErr(PMPIFormatError, "DecodeMPI", "declared bit length mismatch", nil)
		}
	} else if bits != 0 {
		return MPI{}, nil, newErr(PMPIFormatError, "DecodeMPI", "zero-length MPI with nonzero bit count", nil)
	}
	return MPI{bits: bits, bytes: val}, data[2+byteLen:], nil
}

// mpiDecode reads a single MPI expected to unpack to exactly n bytes of
// big-endian magnitude (left-padded with zeros), matching the teacher's
// mpiDecode(data, n) used to recover a fixed-width Ed25519 scalar. It
// returns the n-byte value and the remaining input.
func mpiDecode(data []byte, n int) ([]byte, []byte) {
	m, rest, err := DecodeMPI(data)
	if err != nil {
		return nil, nil
	}
	if len(m.bytes) > n {
		return nil, nil
	}
	out := make([]byte, n)
	copy(out[n-len(m.bytes):], m.bytes)
	return out, rest
}

func bitLen8(b byte) int {
	n := 0
	for b != 0 {
		n++
		b >>= 1
	}
	return n
}

// checksum computes the 16-bit arithmetic checksum OpenPGP uses to
// protect unencrypted (or legacy-encrypted) secret key material: the
// sum of all octets, mod 65536.
func checksum(data []byte) uint16 {
	var sum uint16
	for _, b := range data {
		sum += uint16(b)
	}
	return sum
}

func marshal32be(v uint32) []byte {
	b := make([]byte, 4)
	binary.BigEndian.PutUint32(b, v)
	return b
}
