package openpgp

import (
	"crypto/sha1"
	"encoding/binary"
	"math/big"
	"time"
)

// RSAParams holds an RSA public key's algorithm-specific fields.
type RSAParams struct {
	N, E *big.Int
}

// DSAParams holds a DSA public key's algorithm-specific fields.
type DSAParams struct {
	P, Q, G, Y *big.Int
}

// ElgamalParams holds an Elgamal public key's algorithm-specific fields.
type ElgamalParams struct {
	P, G, Y *big.Int
}

// EdDSAParams holds an EdDSA public key's curve OID and encoded point,
// matching the teacher's hardcoded Ed25519 OID/MPI layout in
// openpgp/signkey.go, generalized to keep the OID rather than assume it.
type EdDSAParams struct {
	OID   []byte
	Point []byte // uncompressed MPI point bytes, 0x40-prefixed native point for Ed25519
}

// ECDHParams holds an ECDH (encryption) public key's curve OID,
// encoded point, and KDF parameters, per RFC 4880bis §13.5. This
// package does not perform ECDH session-key wrap/unwrap (spec.md §1
// excludes message encryption); the fields exist so a complete
// encryption subkey can be parsed and its binding signature checked.
type ECDHParams struct {
	OID        []byte
	Point      []byte
	KDFHash    HashAlgorithm
	KDFSymAlgo byte
}

// PublicKey is the decoded content of a Public-Key or Public-Subkey
// packet (spec §3 "Public key").
type PublicKey struct {
	Version      byte
	Created      time.Time
	ValidityDays uint16 // v3 only
	Algorithm    PublicKeyAlgorithm

	RSA     *RSAParams
	DSA     *DSAParams
	Elgamal *ElgamalParams
	EdDSA   *EdDSAParams
	ECDH    *ECDHParams

	bodyBytes []byte // raw packet body, snapshotted for v4 fingerprinting
}

// Fingerprint returns the key fingerprint: SHA1(0x99 || len16 || body)
// for v4 keys, as spec §4.3 requires snapshotting at decode time since
// subpacket/MPI ordering isn't recoverable from decoded fields alone.
// v3 fingerprints (MD5 over the raw MPI bytes) are not computed here;
// v3 key IDs come directly from the RSA modulus per spec §3.
func (pk *PublicKey) Fingerprint() ([]byte, error) {
	if pk.Version != 4 {
		return nil, newErr(ProtoBadVersion, "PublicKey.Fingerprint", "fingerprint requires a v4 key", nil)
	}
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(pk.bodyBytes) >> 8), byte(len(pk.bodyBytes))})
	h.Write(pk.bodyBytes)
	return h.Sum(nil), nil
}

// KeyID returns the low 64 bits of the v4 fingerprint, or the low 64
// bits of the RSA modulus for a v3 key, per spec §3.
func (pk *PublicKey) KeyID() ([8]byte, error) {
	var id [8]byte
	if pk.Version == 4 {
		fp, err := pk.Fingerprint()
		if err != nil {
			return id, err
		}
		copy(id[:], fp[12:20])
		return id, nil
	}
	if pk.RSA == nil {
		return id, newErr(AlgUnsupportedPublicKey, "PublicKey.KeyID", "v3 key ID requires RSA", nil)
	}
	nBytes := pk.RSA.N.Bytes()
	if len(nBytes) < 8 {
		return id, newErr(PMPIFormatError, "PublicKey.KeyID", "RSA modulus too short", nil)
	}
	copy(id[:], nBytes[len(nBytes)-8:])
	return id, nil
}

// BodyBytes returns the raw, undecoded packet body this key was parsed
// from, the form certification/binding signatures hash.
func (pk *PublicKey) BodyBytes() []byte { return pk.bodyBytes }

func decodePublicKeyBody(body []byte) (*PublicKey, error) {
	if len(body) < 5 {
		return nil, newErr(PNotEnoughData, "decodePublicKeyBody", "truncated header", nil)
	}
	pk := &PublicKey{bodyBytes: append([]byte{}, body...)}
	pk.Version = body[0]
	switch pk.Version {
	case 4:
		pk.Created = time.Unix(int64(binary.BigEndian.Uint32(body[1:5])), 0).UTC()
		pk.Algorithm = PublicKeyAlgorithm(body[5])
		rest := body[6:]
		return decodeAlgorithmParams(pk, rest)
	case 3:
		if len(body) < 8 {
			return nil, newErr(PNotEnoughData, "decodePublicKeyBody", "truncated v3 header", nil)
		}
		pk.Created = time.Unix(int64(binary.BigEndian.Uint32(body[1:5])), 0).UTC()
		pk.ValidityDays = binary.BigEndian.Uint16(body[5:7])
		pk.Algorithm = PublicKeyAlgorithm(body[7])
		rest := body[8:]
		return decodeAlgorithmParams(pk, rest)
	default:
		return nil, newErr(ProtoBadVersion, "decodePublicKeyBody", "unsupported public key version", nil)
	}
}

func decodeAlgorithmParams(pk *PublicKey, rest []byte) (*PublicKey, error) {
	switch pk.Algorithm {
	case PKAlgRSAEncryptSign, PKAlgRSAEncryptOnly, PKAlgRSASignOnly:
		n, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		e, _, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		pk.RSA = &RSAParams{N: n.Int(), E: e.Int()}
	case PKAlgDSA:
		p, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		q, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		g, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		y, _, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		pk.DSA = &DSAParams{P: p.Int(), Q: q.Int(), G: g.Int(), Y: y.Int()}
	case PKAlgElgamal:
		p, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		g, rest, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		y, _, err := DecodeMPI(rest)
		if err != nil {
			return nil, err
		}
		pk.Elgamal = &ElgamalParams{P: p.Int(), G: g.Int(), Y: y.Int()}
	case PKAlgEdDSA:
		if len(rest) == 0 {
			return nil, newErr(PNotEnoughData, "decodeAlgorithmParams", "missing OID length", nil)
		}
		oidLen := int(rest[0])
		if len(rest) < 1+oidLen {
			return nil, newErr(PNotEnoughData, "decodeAlgorithmParams", "truncated OID", nil)
		}
		oid := rest[1 : 1+oidLen]
		point, _, err := DecodeMPI(rest[1+oidLen:])
		if err != nil {
			return nil, err
		}
		pk.EdDSA = &EdDSAParams{OID: append([]byte{}, oid...), Point: point.Bytes()}
	case PKAlgECDH:
		if len(rest) == 0 {
			return nil, newErr(PNotEnoughData, "decodeAlgorithmParams", "missing OID length", nil)
		}
		oidLen := int(rest[0])
		if len(rest) < 1+oidLen {
			return nil, newErr(PNotEnoughData, "decodeAlgorithmParams", "truncated OID", nil)
		}
		oid := rest[1 : 1+oidLen]
		point, rest2, err := DecodeMPI(rest[1+oidLen:])
		if err != nil {
			return nil, err
		}
		if len(rest2) < 4 {
			return nil, newErr(PNotEnoughData, "decodeAlgorithmParams", "truncated ECDH KDF params", nil)
		}
		// rest2[0] is the KDF parameter field length (always 3).
		pk.ECDH = &ECDHParams{
			OID:        append([]byte{}, oid...),
			Point:      point.Bytes(),
			KDFHash:    HashAlgorithm(rest2[2]),
			KDFSymAlgo: rest2[3],
		}
	default:
		return nil, newErr(AlgUnsupportedPublicKey, "decodeAlgorithmParams", pk.Algorithm.String(), nil)
	}
	return pk, nil
}

// SecretKey is the decoded content of a Secret-Key or Secret-Subkey
// packet: a public key plus encrypted secret material (spec §3).
type SecretKey struct {
	Public PublicKey

	S2KUsage     byte // 0 = plain, 254 = SHA1-checked, 255/legacy = checksum-checked
	SymAlgorithm byte
	S2K          S2K
	IV           []byte
	secretData   []byte // ciphertext (or plaintext if S2KUsage == 0)

	decrypted []byte // plaintext secret-key MPI material, once Decrypt succeeds
}

func decodeSecretKeyBody(body []byte) (*SecretKey, error) {
	// RFC 4880 concatenates "public key fields" directly followed by
	// "secret key fields" with no length prefix between them, so the
	// split point has to be recomputed by walking the public key's own
	// fixed header plus algorithm-specific MPIs.
	pubLen := publicKeyFieldLength(body)
	pub, err := decodePublicKeyBody(body[:pubLen])
	if err != nil {
		return nil, err
	}
	rest := body[pubLen:]
	if len(rest) < 1 {
		return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "missing S2K usage octet", nil)
	}
	sk := &SecretKey{Public: *pub}
	sk.S2KUsage = rest[0]
	rest = rest[1:]

	switch sk.S2KUsage {
	case 0:
		sk.secretData = rest
	case 254, 255:
		if len(rest) < 1 {
			return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "missing symmetric algorithm", nil)
		}
		sk.SymAlgorithm = rest[0]
		rest = rest[1:]
		if len(rest) < 1 {
			return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "missing S2K type", nil)
		}
		sk.S2K.Type = S2KType(rest[0])
		rest = rest[1:]
		switch sk.S2K.Type {
		case S2KSimple:
			if len(rest) < 1 {
				return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "missing S2K hash", nil)
			}
			sk.S2K.Hash = HashAlgorithm(rest[0])
			rest = rest[1:]
		case S2KSalted:
			if len(rest) < 9 {
				return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "truncated salted S2K", nil)
			}
			sk.S2K.Hash = HashAlgorithm(rest[0])
			copy(sk.S2K.Salt[:], rest[1:9])
			rest = rest[9:]
		case S2KIteratedSalted:
			if len(rest) < 10 {
				return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "truncated iterated S2K", nil)
			}
			sk.S2K.Hash = HashAlgorithm(rest[0])
			copy(sk.S2K.Salt[:], rest[1:9])
			sk.S2K.Count = rest[9]
			rest = rest[10:]
		case S2KArgon2:
			if len(rest) < 19 {
				return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "truncated Argon2 S2K", nil)
			}
			copy(sk.S2K.Argon2Salt[:], rest[0:16])
			sk.S2K.Argon2T = rest[16]
			sk.S2K.Argon2P = rest[17]
			sk.S2K.Argon2M = rest[18]
			rest = rest[19:]
		default:
			return nil, newErr(ProtoBadVersion, "decodeSecretKeyBody", "unsupported S2K type", nil)
		}
		ivLen := cipherBlockSize(sk.SymAlgorithm)
		if len(rest) < ivLen {
			return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "truncated IV", nil)
		}
		sk.IV = append([]byte{}, rest[:ivLen]...)
		sk.secretData = rest[ivLen:]
	default:
		// Legacy: S2KUsage names a symmetric algorithm directly, no S2K.
		sk.SymAlgorithm = sk.S2KUsage
		ivLen := cipherBlockSize(sk.SymAlgorithm)
		if len(rest) < ivLen {
			return nil, newErr(PNotEnoughData, "decodeSecretKeyBody", "truncated legacy IV", nil)
		}
		sk.IV = append([]byte{}, rest[:ivLen]...)
		sk.secretData = rest[ivLen:]
	}
	return sk, nil
}

func cipherBlockSize(alg byte) int {
	switch alg {
	case 7, 8, 9: // AES-128/192/256
		return 16
	case 2, 3: // 3DES, CAST5
		return 8
	default:
		return 16
	}
}

// publicKeyFieldLength reports how many leading bytes of body belong to
// the public-key portion of a secret-key packet (fixed header plus
// algorithm-specific MPIs), so secret key fields can be split off.
func publicKeyFieldLength(body []byte) int {
	if len(body) == 0 {
		return 0
	}
	var off int
	switch body[0] {
	case 4:
		off = 6
	case 3:
		off = 8
	default:
		return len(body)
	}
	if off > len(body) {
		return len(body)
	}
	alg := PublicKeyAlgorithm(body[off-1])
	rest := body[off:]
	consumed := off
	mpiLen := func(d []byte) (int, error) {
		if len(d) < 2 {
			return 0, newErr(PNotEnoughData, "publicKeyFieldLength", "truncated MPI", nil)
		}
		bits := int(binary.BigEndian.Uint16(d))
		n := (bits + 7) / 8
		if 2+n > len(d) {
			return 0, newErr(PMPIFormatError, "publicKeyFieldLength", "MPI overruns body", nil)
		}
		return 2 + n, nil
	}
	switch alg {
	case PKAlgRSAEncryptSign, PKAlgRSAEncryptOnly, PKAlgRSASignOnly:
		for i := 0; i < 2; i++ {
			n, err := mpiLen(rest)
			if err != nil {
				return consumed
			}
			rest = rest[n:]
			consumed += n
		}
	case PKAlgDSA:
		for i := 0; i < 4; i++ {
			n, err := mpiLen(rest)
			if err != nil {
				return consumed
			}
			rest = rest[n:]
			consumed += n
		}
	case PKAlgElgamal:
		for i := 0; i < 3; i++ {
			n, err := mpiLen(rest)
			if err != nil {
				return consumed
			}
			rest = rest[n:]
			consumed += n
		}
	case PKAlgEdDSA:
		if len(rest) == 0 {
			return consumed
		}
		oidLen := int(rest[0])
		if 1+oidLen > len(rest) {
			return consumed
		}
		consumed += 1 + oidLen
		rest = rest[1+oidLen:]
		n, err := mpiLen(rest)
		if err != nil {
			return consumed
		}
		consumed += n
	case PKAlgECDH:
		if len(rest) == 0 {
			return consumed
		}
		oidLen := int(rest[0])
		if 1+oidLen > len(rest) {
			return consumed
		}
		consumed += 1 + oidLen
		rest = rest[1+oidLen:]
		n, err := mpiLen(rest)
		if err != nil {
			return consumed
		}
		consumed += n
		rest = rest[n:]
		if len(rest) == 0 {
			return consumed
		}
		kdfLen := int(rest[0])
		if 1+kdfLen > len(rest) {
			return consumed
		}
		consumed += 1 + kdfLen
	}
	return consumed
}

// UserAttribute is the decoded content of a User Attribute packet: an
// opaque sequence of image/other subpackets, spec'd only as "an opaque
// subpacket blob" since this implementation does not interpret images.
type UserAttribute struct {
	Data []byte
}

// OnePassSignature is the decoded content of a One-Pass Signature
// packet, the forward-declaration that precedes a signed document in
// "sign and then send" streams.
type OnePassSignature struct {
	Version         byte
	Type            SignatureType
	HashAlgorithm   HashAlgorithm
	PubKeyAlgorithm PublicKeyAlgorithm
	SignerKeyID     [8]byte
	Nested          bool
}

func decodeOnePassSignature(body []byte) (*OnePassSignature, error) {
	if len(body) != 13 {
		return nil, newErr(PNotEnoughData, "decodeOnePassSignature", "wrong length", nil)
	}
	ops := &OnePassSignature{
		Version:         body[0],
		Type:            SignatureType(body[1]),
		HashAlgorithm:   HashAlgorithm(body[2]),
		PubKeyAlgorithm: PublicKeyAlgorithm(body[3]),
		Nested:          body[12] == 0,
	}
	copy(ops.SignerKeyID[:], body[4:12])
	if ops.Version != 3 {
		return nil, newErr(ProtoBadVersion, "decodeOnePassSignature", "unsupported one-pass version", nil)
	}
	return ops, nil
}

// LiteralData is the decoded content of a Literal Data packet.
type LiteralData struct {
	Format    byte
	Filename  string
	Timestamp time.Time
	Data      []byte
}

func decodeLiteralData(body []byte) (*LiteralData, error) {
	if len(body) < 6 {
		return nil, newErr(PNotEnoughData, "decodeLiteralData", "truncated header", nil)
	}
	ld := &LiteralData{Format: body[0]}
	nameLen := int(body[1])
	if len(body) < 2+nameLen+4 {
		return nil, newErr(PNotEnoughData, "decodeLiteralData", "truncated filename/timestamp", nil)
	}
	ld.Filename = string(body[2 : 2+nameLen])
	tsOff := 2 + nameLen
	ld.Timestamp = time.Unix(int64(binary.BigEndian.Uint32(body[tsOff:tsOff+4])), 0).UTC()
	ld.Data = body[tsOff+4:]
	return ld, nil
}

// CompressedData is the decoded header of a Compressed Data packet.
// Decompression is out of scope (spec §1 Non-goals); Data is the raw,
// still-compressed payload.
type CompressedData struct {
	Algorithm byte
	Data      []byte
}

func decodeCompressedData(body []byte) (*CompressedData, error) {
	if len(body) < 1 {
		return nil, newErr(PNotEnoughData, "decodeCompressedData", "missing algorithm byte", nil)
	}
	return &CompressedData{Algorithm: body[0], Data: body[1:]}, nil
}

// SymEncryptedData is the decoded header of a Symmetrically Encrypted
// Data packet (tag 9) or its MDC-protected variant (tag 18).
// Decryption is out of scope; Data is the raw ciphertext.
type SymEncryptedData struct {
	MDC     bool
	Version byte // MDC variant only
	Data    []byte
}

func decodeSymEncryptedData(body []byte, mdc bool) (*SymEncryptedData, error) {
	s := &SymEncryptedData{MDC: mdc}
	if mdc {
		if len(body) < 1 {
			return nil, newErr(PNotEnoughData, "decodeSymEncryptedData", "missing version", nil)
		}
		s.Version = body[0]
		s.Data = body[1:]
	} else {
		s.Data = body
	}
	return s, nil
}

// PKESK is the decoded content of a Public-Key Encrypted Session Key
// packet.
type PKESK struct {
	Version     byte
	KeyID       [8]byte
	Algorithm   PublicKeyAlgorithm
	SessionData []byte
}

func decodePKESK(body []byte) (*PKESK, error) {
	if len(body) < 10 {
		return nil, newErr(PNotEnoughData, "decodePKESK", "truncated header", nil)
	}
	p := &PKESK{Version: body[0], Algorithm: PublicKeyAlgorithm(body[9])}
	copy(p.KeyID[:], body[1:9])
	p.SessionData = body[10:]
	if p.Version != 3 {
		return nil, newErr(ProtoBadVersion, "decodePKESK", "unsupported PKESK version", nil)
	}
	return p, nil
}

// Trust is the decoded content of a Trust packet: opaque,
// implementation-defined data that this package does not interpret
// (spec §1 excludes trust policy).
type Trust struct {
	Data []byte
}
