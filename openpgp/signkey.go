// This is free and unencumbered software released into the public domain.

package openpgp

import (
	"bufio"
	"bytes"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha1"
	"errors"
	"hash"
	"io"
	"time"

	"golang.org/x/crypto/ed25519"
)

const (
	// SignKeyPubLen is the size of the public part of an OpenPGP packet.
	SignKeyPubLen = 53
	signKeySecLen = 3 + 32 + 2

	// Encoded S2K octet count.
	s2kCount = 0xff // maximum strength
)

// FlagMDC indicates that the identity making a self-signature prefers
// to receive a Modification Detection Code (MDC).
const FlagMDC = 1

// ed25519OID is the registered curve OID for Ed25519 (1.3.6.1.4.1.11591.15.1).
var ed25519OID = []byte{0x2b, 0x06, 0x01, 0x04, 0x01, 0xda, 0x47, 0x0f, 0x01}

var (
	// DecryptKeyErr indicates the wrong key was given.
	DecryptKeyErr = errors.New("wrong encryption key")

	// UnsupportedPacketErr indicates the input packet type is unsupported.
	UnsupportedPacketErr = errors.New("input packet unsupported")

	// InvalidPacketErr indicates the input packet was malformed.
	InvalidPacketErr = errors.New("invalid packet")
)

// SignKey represents an Ed25519 sign key (EdDSA), the only algorithm
// the CLI generates keys for (SPEC_FULL.md §1: key generation
// policy beyond this is out of scope, even though Signature
// verification elsewhere in this package supports RSA/DSA/EdDSA
// generally for keys loaded from a keyring).
type SignKey struct {
	Key     ed25519.PrivateKey
	created int64
	expires int64
	packet  []byte
}

// Seed sets the 32-byte seed for a sign key.
func (k *SignKey) Seed(seed []byte) {
	k.Key = ed25519.NewKeyFromSeed(seed)
	k.packet = nil
}

// Created returns the key's creation date in unix epoch seconds.
func (k *SignKey) Created() int64 {
	return k.created
}

// SetCreated sets the creation date in unix epoch seconds.
func (k *SignKey) SetCreated(t int64) {
	k.created = t
	k.packet = nil
}

// Expires returns the key's expiration time in unix epoch seconds. A
// value of zero means the key doesn't expire.
func (k *SignKey) Expires() int64 {
	return k.expires
}

// SetExpires sets the key's expiration time in unix epoch seconds.
func (k *SignKey) SetExpires(t int64) {
	k.expires = t
}

// Load reads a Secret-Key packet from r, decrypting it with passphrase
// if it's protected. If the error is DecryptKeyErr, the passphrase was
// wrong; a nil passphrase is treated the same as an empty one.
// Generalizes the teacher's Load (which took an already-parsed Packet
// and duplicated SecretKey decode/decrypt logic inline) to build on
// decodeSecretKeyBody/SecretKey.Decrypt instead.
func (k *SignKey) Load(r io.Reader, passphrase []byte) error {
	raw, err := ReadRawPacket(r)
	if err != nil {
		return InvalidPacketErr
	}
	if raw.Tag != TagSecretKey {
		if raw.Tag == TagPublicKey {
			return UnsupportedPacketErr
		}
		return InvalidPacketErr
	}

	sk, err := decodeSecretKeyBody(raw.Body)
	if err != nil {
		return InvalidPacketErr
	}
	if sk.Public.Algorithm != PKAlgEdDSA || sk.Public.EdDSA == nil ||
		len(sk.Public.EdDSA.OID) != len(ed25519OID) || !bytes.Equal(sk.Public.EdDSA.OID, ed25519OID) {
		return UnsupportedPacketErr
	}

	material, err := sk.Decrypt(passphrase)
	if err != nil {
		if sk.S2KUsage != 0 && IsCode(err, ProtoBadSecretKeyChecksum) {
			return DecryptKeyErr
		}
		return InvalidPacketErr
	}
	seed, _ := mpiDecode(material, 32)
	if seed == nil {
		return InvalidPacketErr
	}

	k.SetCreated(sk.Public.Created.Unix())
	k.Seed(seed)
	if !bytes.Equal(k.Pubkey(), sk.Public.EdDSA.Point[1:]) {
		return InvalidPacketErr
	}
	return nil
}

// Seckey returns the private scalar part of a sign key.
func (k *SignKey) Seckey() []byte {
	return k.Key[:32]
}

// Pubkey returns the public key part of a sign key.
func (k *SignKey) Pubkey() []byte {
	return k.Key[32:]
}

// Packet returns an OpenPGP Secret-Key packet for this key,
// unencrypted.
func (k *SignKey) Packet() []byte {
	be := marshal32be

	if k.packet != nil {
		return k.packet
	}

	packet := make([]byte, SignKeyPubLen+1, SignKeyPubLen+signKeySecLen)
	packet[0] = 0xc0 | byte(TagSecretKey) // packet header, Secret-Key Packet (5)
	packet[2] = 0x04                      // packet version, new (4)

	copy(packet[3:7], be(uint32(k.created))) // creation date
	packet[7] = byte(PKAlgEdDSA)             // algorithm, EdDSA
	packet[8] = byte(len(ed25519OID))        // OID length
	copy(packet[9:], ed25519OID)
	packet[18] = 0x01                // public key length high byte (263 bits)
	packet[19] = 0x07                // public key length low byte
	packet[20] = 0x40                // MPI prefix
	copy(packet[21:53], k.Pubkey())  // public key (32 bytes)

	// Secret Key
	packet[53] = 0 // string-to-key, unencrypted
	mpikey := mpi(k.Seckey())
	packet = append(packet, mpikey...)
	packet = packet[:len(packet)+2]
	sum := checksum(mpikey)
	packet[len(packet)-2] = byte(sum >> 8)
	packet[len(packet)-1] = byte(sum)

	packet[1] = byte(len(packet) - 2) // packet length
	k.packet = packet
	return packet
}

// PubPacket returns a Public-Key packet for this key.
func (k *SignKey) PubPacket() []byte {
	packet := make([]byte, SignKeyPubLen)
	packet[0] = 0xc0 | byte(TagPublicKey) // packet header, Public-Key packet (6)
	packet[1] = SignKeyPubLen - 2
	copy(packet[2:], k.Packet()[2:])
	return packet
}

// EncPacket returns an OpenPGP Secret-Key packet with the secret
// material encrypted under passphrase (AES-256-CFB, iterated-salted
// SHA-256 S2K at maximum strength, SHA-1 integrity check).
func (k *SignKey) EncPacket(passphrase []byte) []byte {
	var saltIV [24]byte
	if _, err := rand.Read(saltIV[:]); err != nil {
		panic(err) // should never happen
	}
	salt := saltIV[:8]
	iv := saltIV[8:]

	key := s2k(passphrase, salt, decodeS2KCount(s2kCount))

	mpikey := mpi(k.Seckey())
	mac := sha1.New()
	mac.Write(mpikey)
	seckey := mac.Sum(mpikey)
	block, _ := aes.NewCipher(key)
	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(seckey, seckey)

	packet := append([]byte{}, k.Packet()[:57]...)
	packet[53] = 254 // encrypted with S2K
	packet[54] = 9   // AES-256
	packet[55] = 3   // Iterated and Salted S2K
	packet[56] = 8   // SHA-256
	packet = append(packet, salt...)
	packet = append(packet, s2kCount)
	packet = append(packet, iv...)
	packet = append(packet, seckey...)
	packet[1] = byte(len(packet) - 2)
	return packet
}

// KeyID returns the 20-byte v4 fingerprint of a sign key; the 8-byte
// OpenPGP key ID is its last 8 bytes (see keyID8).
func (k *SignKey) KeyID() []byte {
	h := sha1.New()
	h.Write([]byte{0x99, 0, 51})         // "packet" length = 51
	h.Write(k.Packet()[2:SignKeyPubLen]) // public key portion
	return h.Sum(nil)
}

func (k *SignKey) keyID8() [8]byte {
	id := k.KeyID()
	var out [8]byte
	copy(out[:], id[12:20])
	return out
}

func (k *SignKey) signDigest(digest []byte, sig *Signature) error {
	s := ed25519.Sign(k.Key, digest)
	sig.EdDSA = &EdDSASignatureValue{R: append([]byte{}, s[:32]...), S: append([]byte{}, s[32:]...)}
	return nil
}

// Bind a subkey to this signing key, returning the signature packet.
func (k *SignKey) Bind(subkey *EncryptKey, when int64) []byte {
	pubkey := k.PubPacket()
	pubsubkey := subkey.PubPacket()

	b := Start(SigSubkeyBinding, PKAlgEdDSA, HashSHA256).
		AddCreationTime(time.Unix(when, 0).UTC()).
		AddIssuerKeyID(k.keyID8()).
		AddHashedSubpacket(Subpacket{Type: SSKeyFlags, Data: []byte{0x0c}})
	if subkey.expires != 0 {
		delta := uint32(subkey.expires - subkey.created)
		b = b.AddHashedSubpacket(Subpacket{Type: SSKeyExpiration, Data: marshal32be(delta)})
	}
	sig := b.HashedSubpacketsEnd()

	out, err := WriteSignature(sig, func(h hash.Hash) {
		h.Write([]byte{0x99, 0, byte(len(pubkey) - 2)})
		h.Write(pubkey[2:])
		h.Write([]byte{0x99, 0, byte(len(pubsubkey) - 2)})
		h.Write(pubsubkey[2:])
	}, k.signDigest)
	if err != nil {
		panic(err) // hash.Hash/ed25519 never fail for this input shape
	}
	return out
}

// SelfSign certifies userid with this key, returning the signature packet.
func (k *SignKey) SelfSign(userid *UserID, when int64, flags int) []byte {
	key := k.PubPacket()

	b := Start(SigCertPositive, PKAlgEdDSA, HashSHA256).
		AddCreationTime(time.Unix(when, 0).UTC()).
		AddIssuerKeyID(k.keyID8()).
		// Key Flags subpacket (sign and certify); some implementations
		// (GitHub) treat all flags as zero if the subpacket is absent.
		AddHashedSubpacket(Subpacket{Type: SSKeyFlags, Data: []byte{0x03}})
	if k.expires != 0 {
		b = b.AddHashedSubpacket(Subpacket{Type: SSKeyExpiration, Data: marshal32be(uint32(k.expires - k.created))})
	}
	if flags&FlagMDC != 0 {
		b = b.AddHashedSubpacket(Subpacket{Type: SSFeatures, Data: []byte{0x01}})
	}
	sig := b.HashedSubpacketsEnd()

	out, err := WriteSignature(sig, func(h hash.Hash) {
		h.Write([]byte{0x99, 0, byte(len(key) - 2)})
		h.Write(key[2:])
		h.Write(userid.SignData())
	}, k.signDigest)
	if err != nil {
		panic(err)
	}
	return out
}

// Certify a pairing of public key and user ID packet, returning the
// signature packet. This accepts raw packet bytes so that arbitrary
// packets can be certified, not just formats this package generates.
func (k *SignKey) Certify(key, uid []byte, when int64) []byte {
	keypkt, err := ReadRawPacket(bytes.NewReader(key))
	if err != nil {
		panic(err)
	}
	uidpkt, err := ReadRawPacket(bytes.NewReader(uid))
	if err != nil {
		panic(err)
	}

	b := Start(SigCertGeneric, PKAlgEdDSA, HashSHA256).
		AddCreationTime(time.Unix(when, 0).UTC()).
		AddHashedSubpacket(fingerprintSubpacket(k.KeyID()))
	sig := b.HashedSubpacketsEnd()

	uidBody := uidpkt.Body
	out, err := WriteSignature(sig, func(h hash.Hash) {
		h.Write([]byte{0x99, byte(len(keypkt.Body) >> 8), byte(len(keypkt.Body))})
		h.Write(keypkt.Body)
		h.Write(append([]byte{0xb4}, marshal32be(uint32(len(uidBody)))...))
		h.Write(uidBody)
	}, k.signDigest)
	if err != nil {
		panic(err)
	}
	return out
}

// Sign binary data with this key using an OpenPGP signature packet.
func (k *SignKey) Sign(src io.Reader) ([]byte, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}

	b := Start(SigBinaryDocument, PKAlgEdDSA, HashSHA256).
		AddCreationTime(time.Now().UTC()).
		AddHashedSubpacket(fingerprintSubpacket(k.KeyID()))
	sig := b.HashedSubpacketsEnd()

	return WriteSignature(sig, func(h hash.Hash) {
		h.Write(data)
	}, k.signDigest)
}

// Clearsign returns a new cleartext stream signer: data from src is
// cleartext-signed and written into the returned reader, which must
// be read to completion (or closed) by the caller.
func (k *SignKey) Clearsign(src io.Reader) io.ReadCloser {
	r, w := io.Pipe()
	go func() {
		open := []byte("-----BEGIN PGP SIGNED MESSAGE-----\nHash: SHA256\n\n")
		crlf := []byte("\r\n")
		tmp := make([]byte, 128)
		if _, err := w.Write(open); err != nil {
			return
		}
		s := bufio.NewScanner(src)
		var hashInput bytes.Buffer
		first := true
		for s.Scan() {
			line := s.Bytes()

			for i := len(line) - 1; i >= 0; i-- {
				if line[i] == 0x20 || line[i] == 0x09 {
					line = line[:i]
				} else {
					break
				}
			}

			if !first {
				hashInput.Write(crlf)
			}
			first = false
			hashInput.Write(line)

			if len(line) > 0 && line[0] == 0x2d {
				tmp = tmp[:2]
				tmp[0] = 0x2d
				tmp[1] = 0x20
			} else {
				tmp = tmp[:0]
			}
			tmp = append(tmp, line...)
			tmp = append(tmp, 0x0a)
			if _, err := w.Write(tmp); err != nil {
				return
			}
		}
		if err := s.Err(); err != nil {
			w.CloseWithError(err)
			return
		}

		b := Start(SigTextDocument, PKAlgEdDSA, HashSHA256).
			AddCreationTime(time.Now().UTC()).
			AddHashedSubpacket(fingerprintSubpacket(k.KeyID()))
		sig := b.HashedSubpacketsEnd()
		data := hashInput.Bytes()
		out, err := WriteSignature(sig, func(h hash.Hash) {
			h.Write(data)
		}, k.signDigest)
		if err != nil {
			w.CloseWithError(err)
			return
		}
		if _, err := w.Write(Armor(out, "SIGNATURE")); err != nil {
			return
		}
		w.Close()
	}()
	return r
}

func fingerprintSubpacket(keyid []byte) Subpacket {
	// Issuer Fingerprint subpacket (length=22, type=33)
	return Subpacket{Type: SSIssuerFingerprint, Data: append([]byte{0x04}, keyid...)}
}
