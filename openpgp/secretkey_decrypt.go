package openpgp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha1"
	"crypto/subtle"
)

// Decrypt recovers the plaintext secret-key MPI material, populating
// Decrypted and returning it. For S2KUsage == 0 the material is
// already plaintext and passphrase is ignored. Grounded on the
// teacher's SignKey.Load (iterated-salted S2K, AES-CFB, SHA-1
// integrity check), generalized from its hardcoded AES-256 EdDSA
// layout to whatever symmetric algorithm and S2K type the packet
// actually declares, and to the legacy 2-byte checksum variant
// (S2KUsage 255 and the bare symmetric-algorithm-ID form) spec.md §3
// also lists.
func (sk *SecretKey) Decrypt(passphrase []byte) ([]byte, error) {
	if sk.S2KUsage == 0 {
		data := sk.secretData
		if len(data) < 2 {
			return nil, newErr(ProtoBadSecretKeyChecksum, "SecretKey.Decrypt", "truncated checksum", nil)
		}
		material := data[:len(data)-2]
		got := uint16(data[len(data)-2])<<8 | uint16(data[len(data)-1])
		if checksum(material) != got {
			return nil, newErr(ProtoBadSecretKeyChecksum, "SecretKey.Decrypt", "arithmetic checksum mismatch", nil)
		}
		sk.decrypted = material
		return sk.decrypted, nil
	}

	key, err := sk.S2K.DeriveKey(passphrase, cipherKeySize(sk.SymAlgorithm))
	if err != nil {
		return nil, err
	}

	block, err := aesCipher(sk.SymAlgorithm, key)
	if err != nil {
		return nil, err
	}
	data := append([]byte{}, sk.secretData...)
	stream := cipher.NewCFBDecrypter(block, sk.IV)
	stream.XORKeyStream(data, data)

	switch sk.S2KUsage {
	case 254:
		if len(data) < sha1.Size {
			return nil, newErr(ProtoBadSecretKeyChecksum, "SecretKey.Decrypt", "truncated SHA-1 check", nil)
		}
		material := data[:len(data)-sha1.Size]
		want := data[len(data)-sha1.Size:]
		got := sha1.Sum(material)
		if subtle.ConstantTimeCompare(got[:], want) == 0 {
			return nil, newErr(ProtoBadSecretKeyChecksum, "SecretKey.Decrypt", "SHA-1 integrity check failed", nil)
		}
		sk.decrypted = material
	default:
		if len(data) < 2 {
			return nil, newErr(ProtoBadSecretKeyChecksum, "SecretKey.Decrypt", "truncated checksum", nil)
		}
		material := data[:len(data)-2]
		want := checksum(material)
		got := uint16(data[len(data)-2])<<8 | uint16(data[len(data)-1])
		if want != got {
			return nil, newErr(ProtoBadSecretKeyChecksum, "SecretKey.Decrypt", "arithmetic checksum mismatch", nil)
		}
		sk.decrypted = material
	}
	return sk.decrypted, nil
}

// Decrypted returns the plaintext secret material from the most recent
// successful Decrypt call, or nil if none has succeeded yet.
func (sk *SecretKey) Decrypted() []byte { return sk.decrypted }

func cipherKeySize(alg byte) int {
	switch alg {
	case 7:
		return 16 // AES-128
	case 8:
		return 24 // AES-192
	case 9:
		return 32 // AES-256
	default:
		return 32
	}
}

func aesCipher(alg byte, key []byte) (cipher.Block, error) {
	switch alg {
	case 7, 8, 9:
		return aes.NewCipher(key)
	default:
		return nil, newErr(AlgUnsupportedSymmetric, "aesCipher", "unsupported secret-key symmetric algorithm", nil)
	}
}
