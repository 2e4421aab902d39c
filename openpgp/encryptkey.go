// This is free and unencumbered software released into the public domain.

package openpgp

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"

	"golang.org/x/crypto/curve25519"
)

// cv25519OID is the registered curve OID for Curve25519 in ECDH mode
// (1.3.6.1.4.1.3029.1.5.1).
var cv25519OID = []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0x97, 0x55, 0x01, 0x05, 0x01}

// EncryptKey represents a Curve25519 ECDH encryption subkey, built the
// same way SignKey builds an Ed25519 signing key: fixed fields, a
// single hardcoded OID, and direct packet byte assembly rather than a
// generic MPI-field encoder. Actual ECDH session-key wrap/unwrap is out
// of scope (spec.md's Non-goals exclude message encryption); this type
// only carries key material and produces the packets a binding
// signature needs (SignKey.Bind).
type EncryptKey struct {
	Key     [32]byte // X25519 private scalar
	pub     [32]byte
	created int64
	expires int64
	pubBody []byte // cached public-key packet body (no header)
}

// Seed derives an encryption key from a 32-byte seed, clamping it into
// a valid X25519 scalar.
func (k *EncryptKey) Seed(seed []byte) {
	copy(k.Key[:], seed)
	k.Key[0] &= 248
	k.Key[31] &= 127
	k.Key[31] |= 64
	curve25519.ScalarBaseMult(&k.pub, &k.Key)
	k.pubBody = nil
}

// Generate picks a fresh random encryption key.
func (k *EncryptKey) Generate() error {
	var seed [32]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return err
	}
	k.Seed(seed[:])
	return nil
}

// Created returns the key's creation date in unix epoch seconds.
func (k *EncryptKey) Created() int64 { return k.created }

// SetCreated sets the creation date in unix epoch seconds.
func (k *EncryptKey) SetCreated(t int64) {
	k.created = t
	k.pubBody = nil
}

// Expires returns the key's expiration time in unix epoch seconds. A
// value of zero means the key doesn't expire.
func (k *EncryptKey) Expires() int64 { return k.expires }

// SetExpires sets the key's expiration time in unix epoch seconds.
func (k *EncryptKey) SetExpires(t int64) { k.expires = t }

// Pubkey returns the raw 32-byte X25519 public point.
func (k *EncryptKey) Pubkey() []byte {
	return k.pub[:]
}

// publicBody returns the v4 public-key body (version through KDF
// params), shared by both the Public-Subkey packet and the leading
// portion of the Secret-Subkey packet.
func (k *EncryptKey) publicBody() []byte {
	if k.pubBody != nil {
		return k.pubBody
	}
	body := []byte{0x04}
	body = append(body, marshal32be(uint32(k.created))...)
	body = append(body, byte(PKAlgECDH))
	body = append(body, byte(len(cv25519OID)))
	body = append(body, cv25519OID...)
	point := append([]byte{0x40}, k.Pubkey()...)
	body = append(body, mpi(point)...)
	body = append(body, 3, 1, byte(HashSHA256), 7) // KDF params: len=3, reserved=1, SHA-256, AES-128
	k.pubBody = body
	return body
}

// PubPacket returns a Public-Subkey packet for this key.
func (k *EncryptKey) PubPacket() []byte {
	body := k.publicBody()
	packet := []byte{0xc0 | byte(TagPublicSubkey), byte(len(body))}
	return append(packet, body...)
}

// Packet returns an OpenPGP Secret-Subkey packet for this key,
// unencrypted.
func (k *EncryptKey) Packet() []byte {
	body := append([]byte{}, k.publicBody()...)
	body = append(body, 0) // string-to-key, unencrypted
	mpikey := mpi(k.Key[:])
	body = append(body, mpikey...)
	sum := checksum(mpikey)
	body = append(body, byte(sum>>8), byte(sum))

	header := []byte{0xc0 | byte(TagSecretSubkey), byte(len(body))}
	return append(header, body...)
}

// EncPacket returns an OpenPGP Secret-Subkey packet with the secret
// material encrypted under passphrase, matching SignKey.EncPacket's
// scheme (AES-256-CFB, iterated-salted SHA-256 S2K, SHA-1 check).
func (k *EncryptKey) EncPacket(passphrase []byte) []byte {
	var saltIV [24]byte
	if _, err := rand.Read(saltIV[:]); err != nil {
		panic(err)
	}
	salt := saltIV[:8]
	iv := saltIV[8:]

	key := s2k(passphrase, salt, decodeS2KCount(s2kCount))

	mpikey := mpi(k.Key[:])
	mac := sha1.New()
	mac.Write(mpikey)
	seckey := mac.Sum(mpikey)
	block, _ := aes.NewCipher(key)
	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(seckey, seckey)

	body := append([]byte{}, k.publicBody()...)
	body = append(body, 254, 9, 3, 8) // S2K usage 254, AES-256, Iterated+Salted, SHA-256
	body = append(body, salt...)
	body = append(body, s2kCount)
	body = append(body, iv...)
	body = append(body, seckey...)

	packet := []byte{0xc0 | byte(TagSecretSubkey), byte(len(body))}
	return append(packet, body...)
}

// KeyID returns the 20-byte v4 fingerprint of this subkey; the 8-byte
// OpenPGP key ID is its last 8 bytes.
func (k *EncryptKey) KeyID() []byte {
	body := k.publicBody()
	h := sha1.New()
	h.Write([]byte{0x99, byte(len(body) >> 8), byte(len(body))})
	h.Write(body)
	return h.Sum(nil)
}
