package openpgp

import (
	"encoding/binary"
	"hash"
	"time"
)

// SignatureBuilder stages a v4 signature's fields before its hashed
// subpacket area is closed off, mirroring spec §4.7's named steps
// (`Start`, `AddCreationTime`, `AddIssuerKeyID`, `AddPrimaryUserID`,
// `HashedSubpacketsEnd`, `WriteSignature`). It directly generalizes
// the teacher's SignKey.sign(sigInput), which already assembles
// exactly this trailer inline for a single Ed25519 call path, into a
// reusable staged builder any algorithm's signer can drive.
type SignatureBuilder struct {
	sigType  SignatureType
	pubAlg   PublicKeyAlgorithm
	hashAlg  HashAlgorithm
	hashed   []Subpacket
	unhashed []Subpacket
}

// Start begins a new v4 signature of the given type, to be produced
// with pubAlg/hashAlg.
func Start(sigType SignatureType, pubAlg PublicKeyAlgorithm, hashAlg HashAlgorithm) *SignatureBuilder {
	return &SignatureBuilder{sigType: sigType, pubAlg: pubAlg, hashAlg: hashAlg}
}

// AddCreationTime adds a Signature Creation Time hashed subpacket.
func (b *SignatureBuilder) AddCreationTime(t time.Time) *SignatureBuilder {
	data := make([]byte, 4)
	binary.BigEndian.PutUint32(data, uint32(t.Unix()))
	b.hashed = append(b.hashed, Subpacket{Type: SSCreationTime, Data: data})
	return b
}

// AddIssuerKeyID adds an Issuer hashed subpacket.
func (b *SignatureBuilder) AddIssuerKeyID(id [8]byte) *SignatureBuilder {
	b.hashed = append(b.hashed, Subpacket{Type: SSIssuer, Data: append([]byte{}, id[:]...)})
	return b
}

// AddPrimaryUserID marks the certified identity as primary.
func (b *SignatureBuilder) AddPrimaryUserID() *SignatureBuilder {
	b.hashed = append(b.hashed, Subpacket{Type: SSPrimaryUserID, Data: []byte{1}})
	return b
}

// AddHashedSubpacket adds an arbitrary hashed subpacket, for callers
// that need one spec §4.7's named steps don't cover directly (e.g.
// Key Flags, Key Expiration Time, Features).
func (b *SignatureBuilder) AddHashedSubpacket(sp Subpacket) *SignatureBuilder {
	b.hashed = append(b.hashed, sp)
	return b
}

// AddUnhashedSubpacket adds a subpacket outside the hashed area.
func (b *SignatureBuilder) AddUnhashedSubpacket(sp Subpacket) *SignatureBuilder {
	b.unhashed = append(b.unhashed, sp)
	return b
}

// HashedSubpacketsEnd closes the hashed subpacket area and returns the
// Signature shell: every field needed to compute the trailer, but with
// HashPrefix and the MPI signature values still unset. Subpacket
// ordering on re-serialization is fixed as creation order (SPEC_FULL.md
// §18's Open Question decision), so callers should add subpackets in the
// order they want them to appear on the wire.
func (b *SignatureBuilder) HashedSubpacketsEnd() *Signature {
	return &Signature{
		Version:            4,
		Type:               b.sigType,
		PubKeyAlgorithm:    b.pubAlg,
		HashAlgorithm:      b.hashAlg,
		HashedSubpackets:   b.hashed,
		UnhashedSubpackets: b.unhashed,
		HashedAreaBytes:    EncodeSubpackets(b.hashed),
	}
}

// Signer produces a signature's algorithm-specific MPI values over a
// finished digest, populating sig.RSA/DSA/EdDSA as appropriate.
type Signer func(digest []byte, sig *Signature) error

// WriteSignature computes sig's digest (feeding fillContent with the
// signed-over bytes, then the v3/v4 trailer, per spec §4.6 steps 1–4
// run in the creation direction), sets the hash-prefix fast-reject
// bytes, invokes sign to produce the MPI values, and returns the
// finished signature alongside its wire encoding.
func WriteSignature(sig *Signature, fillContent func(h hash.Hash), sign Signer) ([]byte, error) {
	digest, err := signedDigest(sig, fillContent)
	if err != nil {
		return nil, err
	}
	sig.HashPrefix = [2]byte{digest[0], digest[1]}
	if err := sign(digest, sig); err != nil {
		return nil, err
	}
	return sig.Encode(), nil
}

// Encode serializes sig as a complete Signature packet (old-format
// header, matching the fixed-length style the teacher's own packet
// encoders use throughout).
func (s *Signature) Encode() []byte {
	var body []byte
	if s.Version == 3 {
		body = append(body, 3, 5, byte(s.Type))
		body = binary.BigEndian.AppendUint32(body, uint32(s.CreationTimeV3.Unix()))
		body = append(body, s.SignerKeyIDV3[:]...)
		body = append(body, byte(s.PubKeyAlgorithm), byte(s.HashAlgorithm))
		body = append(body, s.HashPrefix[:]...)
	} else {
		body = append(body, 4, byte(s.Type), byte(s.PubKeyAlgorithm), byte(s.HashAlgorithm))
		body = binary.BigEndian.AppendUint16(body, uint16(len(s.HashedAreaBytes)))
		body = append(body, s.HashedAreaBytes...)
		unhashedBytes := EncodeSubpackets(s.UnhashedSubpackets)
		body = binary.BigEndian.AppendUint16(body, uint16(len(unhashedBytes)))
		body = append(body, unhashedBytes...)
		body = append(body, s.HashPrefix[:]...)
	}

	switch s.PubKeyAlgorithm {
	case PKAlgRSAEncryptSign, PKAlgRSASignOnly:
		body = append(body, NewMPI(s.RSA).Encode()...)
	case PKAlgDSA:
		body = append(body, NewMPI(s.DSA.R).Encode()...)
		body = append(body, NewMPI(s.DSA.S).Encode()...)
	case PKAlgEdDSA:
		body = append(body, mpi(s.EdDSA.R)...)
		body = append(body, mpi(s.EdDSA.S)...)
	}

	header := oldFormatHeader(TagSignature, len(body))
	return append(header, body...)
}
