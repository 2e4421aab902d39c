package openpgp

import (
	"encoding/binary"
	"math/big"
	"time"
)

// DSASignatureValue is the (r, s) pair of a DSA signature.
type DSASignatureValue struct {
	R, S *big.Int
}

// EdDSASignatureValue is the (R, S) pair of an EdDSA signature, each
// encoded as an OpenPGP MPI wrapping a fixed-width scalar (32 bytes for
// Ed25519), matching the teacher's mpi(sig[:32])/mpi(sig[32:]) split.
type EdDSASignatureValue struct {
	R, S []byte
}

// Signature is the decoded content of a Signature packet (spec §3).
// v3 signatures carry creation time and signer key ID inline; v4 carry
// them as subpackets, recovered via CreationTime/SignerKeyID.
type Signature struct {
	Version         byte
	Type            SignatureType
	PubKeyAlgorithm PublicKeyAlgorithm
	HashAlgorithm   HashAlgorithm
	HashPrefix      [2]byte

	HashedSubpackets   []Subpacket
	UnhashedSubpackets []Subpacket
	HashedAreaBytes    []byte // raw hashed-subpacket-area bytes, needed verbatim for the v4 trailer
	CriticalUnknown    bool

	CreationTimeV3 time.Time
	SignerKeyIDV3  [8]byte

	RSA   *big.Int
	DSA   *DSASignatureValue
	EdDSA *EdDSASignatureValue
}

// SignerKeyID returns the issuing key's ID, from the Issuer subpacket
// (v4, preferring the hashed area) or the inline field (v3).
func (s *Signature) SignerKeyID() [8]byte {
	if s.Version == 3 {
		return s.SignerKeyIDV3
	}
	if sp, ok := FindSubpacket(s.HashedSubpackets, SSIssuer); ok && len(sp.Data) == 8 {
		var id [8]byte
		copy(id[:], sp.Data)
		return id
	}
	if sp, ok := FindSubpacket(s.UnhashedSubpackets, SSIssuer); ok && len(sp.Data) == 8 {
		var id [8]byte
		copy(id[:], sp.Data)
		return id
	}
	return [8]byte{}
}

// CreationTime returns when the signature was made, from the
// Signature Creation Time subpacket (v4) or the inline field (v3).
func (s *Signature) CreationTime() time.Time {
	if s.Version == 3 {
		return s.CreationTimeV3
	}
	if sp, ok := FindSubpacket(s.HashedSubpackets, SSCreationTime); ok && len(sp.Data) == 4 {
		return time.Unix(int64(binary.BigEndian.Uint32(sp.Data)), 0).UTC()
	}
	return time.Time{}
}

// Trailer reconstructs the suffix mixed into a v4 signature hash:
// version||type||pk_alg||hash_alg||hashed_len16||hashed_bytes, followed
// by the final 4||0xFF||total_length_u32, per spec §4.6 step 3. This
// generalizes the teacher's inline `h.Write(packet[2:hashedLen+8]);
// h.Write([]byte{4,0xff,0,0,0,byte(hashedLen+6)})` into a function that
// works from decoded fields instead of the packet being constructed.
func (s *Signature) Trailer() []byte {
	prefix := []byte{s.Version, byte(s.Type), byte(s.PubKeyAlgorithm), byte(s.HashAlgorithm)}
	prefix = binary.BigEndian.AppendUint16(prefix, uint16(len(s.HashedAreaBytes)))
	prefix = append(prefix, s.HashedAreaBytes...)
	final := []byte{4, 0xff, 0, 0, 0, 0}
	binary.BigEndian.PutUint32(final[2:], uint32(len(prefix)))
	return append(prefix, final...)
}

// V3Trailer reconstructs the suffix mixed into a v3 signature hash:
// type || 4-byte creation_time, per spec §4.6 step 3 (v3 branch).
func (s *Signature) V3Trailer() []byte {
	out := []byte{byte(s.Type)}
	return binary.BigEndian.AppendUint32(out, uint32(s.CreationTimeV3.Unix()))
}

func decodeSignatureBody(body []byte) (*Signature, error) {
	if len(body) < 1 {
		return nil, newErr(PNotEnoughData, "decodeSignatureBody", "empty signature body", nil)
	}
	switch body[0] {
	case 3:
		return decodeSignatureV3(body)
	case 4:
		return decodeSignatureV4(body)
	default:
		return nil, newErr(ProtoBadVersion, "decodeSignatureBody", "unsupported signature version", nil)
	}
}

func decodeSignatureV3(body []byte) (*Signature, error) {
	if len(body) < 19 {
		return nil, newErr(PNotEnoughData, "decodeSignatureV3", "truncated v3 header", nil)
	}
	if body[1] != 5 {
		return nil, newErr(RBadFormat, "decodeSignatureV3", "hashed-material length must be 5", nil)
	}
	s := &Signature{Version: 3}
	s.Type = SignatureType(body[2])
	s.CreationTimeV3 = time.Unix(int64(binary.BigEndian.Uint32(body[3:7])), 0).UTC()
	copy(s.SignerKeyIDV3[:], body[7:15])
	s.PubKeyAlgorithm = PublicKeyAlgorithm(body[15])
	s.HashAlgorithm = HashAlgorithm(body[16])
	s.HashPrefix = [2]byte{body[17], body[18]}
	return decodeSignatureMPIs(s, body[19:])
}

func decodeSignatureV4(body []byte) (*Signature, error) {
	if len(body) < 6 {
		return nil, newErr(PNotEnoughData, "decodeSignatureV4", "truncated v4 header", nil)
	}
	s := &Signature{Version: 4}
	s.Type = SignatureType(body[1])
	s.PubKeyAlgorithm = PublicKeyAlgorithm(body[2])
	s.HashAlgorithm = HashAlgorithm(body[3])

	hlen := int(binary.BigEndian.Uint16(body[4:6]))
	rest := body[6:]
	if hlen > len(rest) {
		return nil, newErr(PNotEnoughData, "decodeSignatureV4", "hashed subpacket area overruns body", nil)
	}
	s.HashedAreaBytes = append([]byte{}, rest[:hlen]...)
	hashedSubs, criticalUnknown, err := DecodeSubpackets(s.HashedAreaBytes)
	if err != nil {
		return nil, err
	}
	s.HashedSubpackets = hashedSubs
	s.CriticalUnknown = s.CriticalUnknown || criticalUnknown
	rest = rest[hlen:]

	if len(rest) < 2 {
		return nil, newErr(PNotEnoughData, "decodeSignatureV4", "missing unhashed subpacket length", nil)
	}
	ulen := int(binary.BigEndian.Uint16(rest[:2]))
	rest = rest[2:]
	if ulen > len(rest) {
		return nil, newErr(PNotEnoughData, "decodeSignatureV4", "unhashed subpacket area overruns body", nil)
	}
	unhashedSubs, criticalUnknown, err := DecodeSubpackets(rest[:ulen])
	if err != nil {
		return nil, err
	}
	s.UnhashedSubpackets = unhashedSubs
	s.CriticalUnknown = s.CriticalUnknown || criticalUnknown
	rest = rest[ulen:]

	if len(rest) < 2 {
		return nil, newErr(PNotEnoughData, "decodeSignatureV4", "missing hash prefix", nil)
	}
	s.HashPrefix = [2]byte{rest[0], rest[1]}
	rest = rest[2:]

	return decodeSignatureMPIs(s, rest)
}

func decodeSignatureMPIs(s *Signature, rest []byte) (*Signature, error) {
	switch s.PubKeyAlgorithm {
	case PKAlgRSAEncryptSign, PKAlgRSAEncryptOnly, PKAlgRSASignOnly:
		m, _, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		s.RSA = m.Int()
	case PKAlgDSA:
		r, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		sv, _, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		s.DSA = &DSASignatureValue{R: r.Int(), S: sv.Int()}
	case PKAlgEdDSA:
		r, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		sv, _, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		s.EdDSA = &EdDSASignatureValue{R: r.Bytes(), S: sv.Bytes()}
	default:
		return nil, newErr(AlgUnsupportedPublicKey, "decodeSignatureMPIs", s.PubKeyAlgorithm.String(), nil)
	}
	return s, nil
}
