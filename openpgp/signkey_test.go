package openpgp

import (
	"bytes"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSignKey(t *testing.T, created int64) *SignKey {
	t.Helper()
	k := &SignKey{}
	seed := make([]byte, 32)
	for i := range seed {
		seed[i] = byte(i + 7)
	}
	k.Seed(seed)
	k.SetCreated(created)
	return k
}

func TestSignKeyPacketRoundTrip(t *testing.T) {
	k := newTestSignKey(t, 1700000000)

	raw, err := ReadRawPacket(NewMemorySource(k.Packet()))
	require.NoError(t, err)
	assert.Equal(t, TagSecretKey, raw.Tag)

	sk, err := decodeSecretKeyBody(raw.Body)
	require.NoError(t, err)
	assert.Equal(t, PKAlgEdDSA, sk.Public.Algorithm)
	assert.Equal(t, k.Created(), sk.Public.Created.Unix())

	material, err := sk.Decrypt(nil)
	require.NoError(t, err)
	seed, rest := mpiDecode(material, 32)
	require.NotNil(t, seed)
	assert.Empty(t, rest)
	assert.Equal(t, k.Seckey(), seed)
}

func TestSignKeyLoadRoundTrip(t *testing.T) {
	k := newTestSignKey(t, 1700000000)

	loaded := &SignKey{}
	err := loaded.Load(bytes.NewReader(k.Packet()), nil)
	require.NoError(t, err)
	assert.Equal(t, k.Pubkey(), loaded.Pubkey())
	assert.Equal(t, k.Created(), loaded.Created())
}

func TestSignKeyLoadEncryptedWrongPassphrase(t *testing.T) {
	k := newTestSignKey(t, 1700000000)
	enc := k.EncPacket([]byte("correct horse"))

	loaded := &SignKey{}
	err := loaded.Load(bytes.NewReader(enc), []byte("wrong password"))
	assert.ErrorIs(t, err, DecryptKeyErr)
}

func TestSignKeyLoadEncryptedCorrectPassphrase(t *testing.T) {
	k := newTestSignKey(t, 1700000000)
	enc := k.EncPacket([]byte("correct horse"))

	loaded := &SignKey{}
	err := loaded.Load(bytes.NewReader(enc), []byte("correct horse"))
	require.NoError(t, err)
	assert.Equal(t, k.Pubkey(), loaded.Pubkey())
}

func TestSignAndVerifyDocument(t *testing.T) {
	k := newTestSignKey(t, 1700000000)

	sigPacket, err := k.Sign(bytes.NewReader([]byte("hello, world")))
	require.NoError(t, err)

	raw, err := ReadRawPacket(NewMemorySource(sigPacket))
	require.NoError(t, err)
	assert.Equal(t, TagSignature, raw.Tag)

	sig, err := decodeSignatureBody(raw.Body)
	require.NoError(t, err)
	assert.Equal(t, SigBinaryDocument, sig.Type)

	pub, err := decodePublicKeyBody(k.PubPacket()[2:])
	require.NoError(t, err)
	err = CheckDocumentSignature([]byte("hello, world"), sig, pub)
	assert.NoError(t, err)

	err = CheckDocumentSignature([]byte("tampered"), sig, pub)
	assert.Error(t, err)
}

func TestSelfSignAndBindThroughKeyring(t *testing.T) {
	primary := newTestSignKey(t, 1700000000)
	sub := &EncryptKey{}
	subSeed := make([]byte, 32)
	for i := range subSeed {
		subSeed[i] = byte(i + 99)
	}
	sub.Seed(subSeed)
	sub.SetCreated(1700000000)

	uid := &UserID{ID: []byte("Ada Lovelace <ada@example.com>")}

	var buf bytes.Buffer
	buf.Write(primary.PubPacket())
	buf.Write(uid.Packet())
	buf.Write(primary.SelfSign(uid, 1700000000, FlagMDC))
	buf.Write(sub.PubPacket())
	buf.Write(primary.Bind(sub, 1700000000))

	kr, err := ReadKeyring(NewMemorySource(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, kr.Entries, 1)

	entry := kr.Entries[0]
	require.Len(t, entry.Identities, 1)
	require.Len(t, entry.Identities[0].Signatures, 1)
	require.Len(t, entry.Subkeys, 1)
	require.Len(t, entry.Subkeys[0].Signatures, 1)

	id, err := primary.KeyID()
	_ = id
	_ = err

	results := ValidateAllSignatures(kr)
	require.Len(t, results, 2)
	for _, r := range results {
		assert.NoError(t, r.Err)
	}
}

func TestValidateAllSignaturesUnknownSigner(t *testing.T) {
	a := newTestSignKey(t, 1700000000)
	b := newTestSignKey(t, 1700000000)
	b.Seed([]byte("different seed value for subkey!"))

	uid := &UserID{ID: []byte("Eve <eve@example.com>")}

	// a's public key and user ID, but a bogus certification issuer ID
	// forged to point at b: FindByID should fail to resolve it within
	// a single-entry keyring built only from a's packets.
	var buf bytes.Buffer
	buf.Write(a.PubPacket())
	buf.Write(uid.Packet())
	buf.Write(b.SelfSign(uid, 1700000000, 0))

	kr, err := ReadKeyring(NewMemorySource(buf.Bytes()))
	require.NoError(t, err)
	results := ValidateAllSignatures(kr)
	require.Len(t, results, 1)
	assert.True(t, IsCode(results[0].Err, VUnknownSigner))
}

func TestClearsignRoundTrip(t *testing.T) {
	k := newTestSignKey(t, 1700000000)
	src := bytes.NewReader([]byte("line one\nline two with trailing space  \n-dash start\n"))

	out, err := io.ReadAll(k.Clearsign(src))
	require.NoError(t, err)

	msg, remainder, err := DecodeCleartext(out)
	require.NoError(t, err)
	assert.Contains(t, string(msg.Body), "line one")
	assert.Contains(t, string(msg.Body), "dash start")

	block, err := NewDearmour(NewMemorySource(remainder))
	require.NoError(t, err)
	raw, err := ReadRawPacket(NewMemorySource(block.Block.Body))
	require.NoError(t, err)
	sig, err := decodeSignatureBody(raw.Body)
	require.NoError(t, err)
	assert.Equal(t, SigTextDocument, sig.Type)

	pub, err := decodePublicKeyBody(k.PubPacket()[2:])
	require.NoError(t, err)
	err = CheckDocumentSignature(msg.HashInput, sig, pub)
	assert.NoError(t, err)
}

func TestSignatureCreationTimeRoundTrip(t *testing.T) {
	k := newTestSignKey(t, 1700000000)
	sigPacket, err := k.Sign(bytes.NewReader([]byte("x")))
	require.NoError(t, err)
	raw, err := ReadRawPacket(NewMemorySource(sigPacket))
	require.NoError(t, err)
	sig, err := decodeSignatureBody(raw.Body)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), sig.CreationTime(), 5*time.Second)
}
