package openpgp

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"hash"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/ripemd160"
)

// S2KType identifies the string-to-key algorithm, per RFC 4880 §3.7.1,
// plus the Argon2 variant from the GnuPG/RFC 9580 lineage that
// original_source/ still parses for backward compatibility (see
// DESIGN.md's Open Question decision).
type S2KType byte

const (
	S2KSimple         S2KType = 0
	S2KSalted         S2KType = 1
	S2KIteratedSalted S2KType = 3
	S2KArgon2         S2KType = 4
)

// S2K describes how a passphrase is stretched into a symmetric key,
// grounded on the teacher's hardcoded AES-256/iterated-salted/SHA-256
// layout in openpgp/signkey.go (Load/EncPacket), generalized to the
// algorithm IDs a descriptor actually names.
type S2K struct {
	Type  S2KType
	Hash  HashAlgorithm
	Salt  [8]byte
	Count byte // encoded iteration count octet, meaningful for S2KIteratedSalted

	// Argon2Salt/Argon2T/Argon2P/Argon2M hold the S2KArgon2 parameters:
	// a 16-byte salt, iteration count, parallelism, and encoded memory
	// (actual memory in KiB is 1<<Argon2M), per RFC 9580 §3.7.1.4.
	Argon2Salt [16]byte
	Argon2T    byte
	Argon2P    byte
	Argon2M    byte
}

// newHash returns a fresh hash.Hash for the given algorithm, or an
// *Error with AlgUnsupportedHash if unrecognized.
func newHash(alg HashAlgorithm) (hash.Hash, error) {
	switch alg {
	case HashMD5:
		return md5.New(), nil
	case HashSHA1:
		return sha1.New(), nil
	case HashRIPEMD160:
		return ripemd160.New(), nil
	case HashSHA256:
		return sha256.New(), nil
	case HashSHA384:
		return sha512.New384(), nil
	case HashSHA512:
		return sha512.New(), nil
	case HashSHA224:
		return sha256.New224(), nil
	default:
		return nil, newErr(AlgUnsupportedHash, "newHash", alg.String(), nil)
	}
}

// decodeS2KCount expands the encoded iteration-count octet into an
// actual byte count, matching the teacher's decodeS2K().
func decodeS2KCount(c byte) int {
	return (16 + int(c&15)) << (uint(c>>4) + 6)
}

// DeriveKey runs the S2K function over passphrase, producing keyLen
// bytes of symmetric key material. For hash digests shorter than
// keyLen, RFC 4880 §3.7.1 prepends an increasing run of zero octets to
// the hash preimage for each additional digest produced; single-digest
// derivation (the common case, and the only one the teacher needs) is
// implemented directly.
func (s S2K) DeriveKey(passphrase []byte, keyLen int) ([]byte, error) {
	if s.Type == S2KArgon2 {
		memKiB := uint32(1) << s.Argon2M
		return argon2.IDKey(passphrase, s.Argon2Salt[:], uint32(s.Argon2T), memKiB, s.Argon2P, uint32(keyLen)), nil
	}

	h, err := newHash(s.Hash)
	if err != nil {
		return nil, err
	}

	var preimage []byte
	switch s.Type {
	case S2KSimple:
		preimage = passphrase
	case S2KSalted:
		preimage = append(append([]byte{}, s.Salt[:]...), passphrase...)
	case S2KIteratedSalted:
		full := append(append([]byte{}, s.Salt[:]...), passphrase...)
		count := decodeS2KCount(s.Count)
		if count < len(full) {
			count = len(full)
		}
		iterations := count / len(full)
		out := make([]byte, 0, count)
		for i := 0; i < iterations; i++ {
			out = append(out, full...)
		}
		out = append(out, full[:count-iterations*len(full)]...)
		preimage = out
	default:
		return nil, newErr(ProtoBadVersion, "S2K.DeriveKey", "unsupported S2K type", nil)
	}

	h.Write(preimage)
	sum := h.Sum(nil)
	if len(sum) < keyLen {
		return nil, newErr(ProtoWrongDecryptedLength, "S2K.DeriveKey", "hash too short for requested key length", nil)
	}
	return sum[:keyLen], nil
}

// s2k reproduces the teacher's own deterministic, SHA-256-based,
// iterated-salted key stretch used to encrypt a generated secret key
// packet with a user passphrase (openpgp/signkey.go s2k()). It is kept
// distinct from S2K.DeriveKey because OpenPGP's S2K preimage construction
// happens to coincide with a manual loop in the original, and callers
// that only ever use SHA-256/iterated-salted keep using this simpler path.
func s2k(passphrase, salt []byte, count int) []byte {
	h := sha256.New()
	full := make([]byte, 8+len(passphrase))
	copy(full[0:], salt)
	copy(full[8:], passphrase)
	iterations := count / len(full)
	for i := 0; i < iterations; i++ {
		h.Write(full)
	}
	tail := count - iterations*len(full)
	h.Write(full[:tail])
	return h.Sum(nil)
}
