package openpgp

import (
	"crypto"
	"crypto/dsa"
	"crypto/rsa"
	"hash"
	"math/big"

	"golang.org/x/crypto/ed25519"
)

// keyPrefixBytes returns the "0x99 || len16 || body" prefix spec §4.6
// mixes in ahead of a key's own body whenever that key is the subject
// of a certification, binding, or direct-key signature.
func keyPrefixBytes(pk *PublicKey) []byte {
	body := pk.BodyBytes()
	return append([]byte{0x99, byte(len(body) >> 8), byte(len(body))}, body...)
}

func userAttributeSignData(ua *UserAttribute) []byte {
	out := append([]byte{0xd1}, marshal32be(uint32(len(ua.Data)))...)
	return append(out, ua.Data...)
}

var hashToCrypto = map[HashAlgorithm]crypto.Hash{
	HashMD5:       crypto.MD5,
	HashSHA1:      crypto.SHA1,
	HashRIPEMD160: crypto.RIPEMD160,
	HashSHA256:    crypto.SHA256,
	HashSHA384:    crypto.SHA384,
	HashSHA512:    crypto.SHA512,
	HashSHA224:    crypto.SHA224,
}

// signedDigest feeds fillContent with the signature's subject bytes,
// then appends the v3 or v4 trailer (spec §4.6 step 3) and returns the
// finished digest (step 4).
func signedDigest(sig *Signature, fillContent func(h hash.Hash)) ([]byte, error) {
	h, err := newHash(sig.HashAlgorithm)
	if err != nil {
		return nil, err
	}
	fillContent(h)
	if sig.Version == 3 {
		h.Write(sig.V3Trailer())
	} else {
		h.Write(sig.Trailer())
	}
	return h.Sum(nil), nil
}

// CheckHashSignature verifies a finished digest against sig's MPI
// values and signer's public key: fast-reject on the 2-byte hash
// prefix (spec §4.6 step 5, matching the teacher's sigsum[:2] preview
// placement), then dispatch to the algorithm-specific primitive (step
// 6). A critical-unknown subpacket fails verification unconditionally,
// per spec §8, checked before any cryptography runs.
func CheckHashSignature(digest []byte, sig *Signature, signer *PublicKey) error {
	if sig.CriticalUnknown {
		return newErr(ProtoCriticalSSIgnored, "CheckHashSignature", "signature carries an unrecognized critical subpacket", nil)
	}
	if len(digest) < 2 || digest[0] != sig.HashPrefix[0] || digest[1] != sig.HashPrefix[1] {
		return newErr(VBadSignature, "CheckHashSignature", "hash prefix mismatch", nil)
	}

	switch sig.PubKeyAlgorithm {
	case PKAlgRSAEncryptSign, PKAlgRSASignOnly:
		if signer.RSA == nil || sig.RSA == nil {
			return newErr(AlgUnsupportedPublicKey, "CheckHashSignature", "RSA signature over non-RSA key", nil)
		}
		cryptoHash, ok := hashToCrypto[sig.HashAlgorithm]
		if !ok {
			return newErr(AlgUnsupportedHash, "CheckHashSignature", sig.HashAlgorithm.String(), nil)
		}
		pub := &rsa.PublicKey{N: signer.RSA.N, E: int(signer.RSA.E.Int64())}
		sigBytes := NewMPI(sig.RSA).Bytes()
		modLen := (pub.N.BitLen() + 7) / 8
		if len(sigBytes) < modLen {
			padded := make([]byte, modLen)
			copy(padded[modLen-len(sigBytes):], sigBytes)
			sigBytes = padded
		}
		if err := rsa.VerifyPKCS1v15(pub, cryptoHash, digest, sigBytes); err != nil {
			return newErr(VBadSignature, "CheckHashSignature", "RSA verification failed", err)
		}
		return nil

	case PKAlgDSA:
		if signer.DSA == nil || sig.DSA == nil {
			return newErr(AlgUnsupportedPublicKey, "CheckHashSignature", "DSA signature over non-DSA key", nil)
		}
		pub := dsa.PublicKey{
			Parameters: dsa.Parameters{P: signer.DSA.P, Q: signer.DSA.Q, G: signer.DSA.G},
			Y:          signer.DSA.Y,
		}
		truncated := truncateToBits(digest, signer.DSA.Q.BitLen())
		if !dsa.Verify(&pub, truncated, sig.DSA.R, sig.DSA.S) {
			return newErr(VBadSignature, "CheckHashSignature", "DSA verification failed", nil)
		}
		return nil

	case PKAlgEdDSA:
		if signer.EdDSA == nil || sig.EdDSA == nil {
			return newErr(AlgUnsupportedPublicKey, "CheckHashSignature", "EdDSA signature over non-EdDSA key", nil)
		}
		if len(signer.EdDSA.Point) != 33 || signer.EdDSA.Point[0] != 0x40 {
			return newErr(ProtoBadVersion, "CheckHashSignature", "unsupported EdDSA point encoding", nil)
		}
		pub := ed25519.PublicKey(signer.EdDSA.Point[1:])
		r := leftPad(sig.EdDSA.R, 32)
		s := leftPad(sig.EdDSA.S, 32)
		if r == nil || s == nil {
			return newErr(PMPIFormatError, "CheckHashSignature", "EdDSA scalar too large", nil)
		}
		sigBytes := append(append([]byte{}, r...), s...)
		if !ed25519.Verify(pub, digest, sigBytes) {
			return newErr(VBadSignature, "CheckHashSignature", "EdDSA verification failed", nil)
		}
		return nil

	default:
		return newErr(AlgUnsupportedPublicKey, "CheckHashSignature", sig.PubKeyAlgorithm.String(), nil)
	}
}

func truncateToBits(digest []byte, bits int) *big.Int {
	n := new(big.Int).SetBytes(digest)
	if excess := n.BitLen() - bits; excess > 0 {
		n.Rsh(n, uint(excess))
	}
	return n
}

func leftPad(b []byte, n int) []byte {
	if len(b) > n {
		return nil
	}
	out := make([]byte, n)
	copy(out[n-len(b):], b)
	return out
}

// CheckDocumentSignature verifies a binary- or text-document signature
// over data (already CRLF-normalized by the caller for text documents,
// e.g. CleartextMessage.HashInput), per spec §4.6's document case.
func CheckDocumentSignature(data []byte, sig *Signature, signer *PublicKey) error {
	digest, err := signedDigest(sig, func(h hash.Hash) { h.Write(data) })
	if err != nil {
		return err
	}
	return CheckHashSignature(digest, sig, signer)
}

// CheckCertificationSignature verifies a signature binding id to
// primary (a self-certification or third-party certification), per
// spec §4.6's certification case: the primary key's body, then the
// identity's own sign-data (0xB4 for a User ID, 0xD1 for a User
// Attribute), then the trailer.
func CheckCertificationSignature(primary *PublicKey, id *Identity, sig *Signature, signer *PublicKey) error {
	digest, err := signedDigest(sig, func(h hash.Hash) {
		h.Write(keyPrefixBytes(primary))
		if id.UserID != nil {
			h.Write(id.UserID.SignData())
		} else if id.UserAttribute != nil {
			h.Write(userAttributeSignData(id.UserAttribute))
		}
	})
	if err != nil {
		return err
	}
	return CheckHashSignature(digest, sig, signer)
}

// CheckSubkeySignature verifies a binding or revocation signature over
// subkey made by primary's corresponding private key, per spec §4.6's
// subkey-binding case: both keys' 0x99-prefixed bodies, then the
// trailer.
func CheckSubkeySignature(primary, subkey *PublicKey, sig *Signature, signer *PublicKey) error {
	digest, err := signedDigest(sig, func(h hash.Hash) {
		h.Write(keyPrefixBytes(primary))
		h.Write(keyPrefixBytes(subkey))
	})
	if err != nil {
		return err
	}
	return CheckHashSignature(digest, sig, signer)
}

// CheckDirectKeySignature verifies a direct-key or key-revocation
// signature, which covers only the primary key's own body.
func CheckDirectKeySignature(primary *PublicKey, sig *Signature, signer *PublicKey) error {
	digest, err := signedDigest(sig, func(h hash.Hash) { h.Write(keyPrefixBytes(primary)) })
	if err != nil {
		return err
	}
	return CheckHashSignature(digest, sig, signer)
}

// SignatureVerification is one ValidateAllSignatures result: which
// entry/identity/subkey the signature applies to, and the outcome.
type SignatureVerification struct {
	Entry     *KeyEntry
	Identity  *Identity
	Subkey    *Subkey
	Signature *Signature
	Err       error
}

// ValidateAllSignatures checks every signature found while walking kr,
// resolving each signer via kr.FindByID and recording VUnknownSigner
// when the issuing key isn't present, per spec §4.6's keyring-wide
// sweep and the "no trust-graph policy" Non-goal: the caller decides
// what to do with conflicting or unknown-signer results.
func ValidateAllSignatures(kr *Keyring) []SignatureVerification {
	var out []SignatureVerification

	resolve := func(sig *Signature) (*PublicKey, error) {
		e, ok := kr.FindByID(sig.SignerKeyID())
		if !ok {
			return nil, newErr(VUnknownSigner, "ValidateAllSignatures", "issuing key not found in keyring", nil)
		}
		return e.PrimaryPublicKey, nil
	}

	for _, e := range kr.Entries {
		for _, sig := range e.DirectSignatures {
			signer, err := resolve(sig)
			if err == nil {
				err = CheckDirectKeySignature(e.PrimaryPublicKey, sig, signer)
			}
			out = append(out, SignatureVerification{Entry: e, Signature: sig, Err: err})
		}
		for _, id := range e.Identities {
			for _, sig := range id.Signatures {
				signer, err := resolve(sig)
				if err == nil {
					err = CheckCertificationSignature(e.PrimaryPublicKey, id, sig, signer)
				}
				out = append(out, SignatureVerification{Entry: e, Identity: id, Signature: sig, Err: err})
			}
		}
		for _, sub := range e.Subkeys {
			for _, sig := range sub.Signatures {
				signer, err := resolve(sig)
				if err == nil {
					err = CheckSubkeySignature(e.PrimaryPublicKey, sub.PublicKey, sig, signer)
				}
				out = append(out, SignatureVerification{Entry: e, Subkey: sub, Signature: sig, Err: err})
			}
		}
	}
	return out
}
