package openpgp

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/binary"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rsaPublicKeyBody(t *testing.T, created time.Time, n, e *big.Int) []byte {
	t.Helper()
	body := []byte{4}
	ts := make([]byte, 4)
	binary.BigEndian.PutUint32(ts, uint32(created.Unix()))
	body = append(body, ts...)
	body = append(body, byte(PKAlgRSAEncryptSign))
	body = append(body, NewMPI(n).Encode()...)
	body = append(body, NewMPI(e).Encode()...)
	return body
}

func TestDecodePublicKeyBodyRSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 512)
	require.NoError(t, err)
	created := time.Unix(1700000000, 0).UTC()
	body := rsaPublicKeyBody(t, created, priv.N, big.NewInt(int64(priv.E)))

	pk, err := decodePublicKeyBody(body)
	require.NoError(t, err)
	assert.Equal(t, byte(4), pk.Version)
	assert.Equal(t, created, pk.Created)
	assert.Equal(t, PKAlgRSAEncryptSign, pk.Algorithm)
	require.NotNil(t, pk.RSA)
	assert.Equal(t, 0, pk.RSA.N.Cmp(priv.N))
}

func TestPublicKeyFingerprintAndKeyID(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 512)
	require.NoError(t, err)
	body := rsaPublicKeyBody(t, time.Unix(1700000000, 0).UTC(), priv.N, big.NewInt(int64(priv.E)))
	pk, err := decodePublicKeyBody(body)
	require.NoError(t, err)

	fp, err := pk.Fingerprint()
	require.NoError(t, err)
	assert.Len(t, fp, 20)

	id, err := pk.KeyID()
	require.NoError(t, err)
	assert.Equal(t, fp[12:20], id[:])
}

func TestPublicKeyFingerprintRejectsV3(t *testing.T) {
	pk := &PublicKey{Version: 3}
	_, err := pk.Fingerprint()
	assert.True(t, IsCode(err, ProtoBadVersion))
}

func TestDecodeSecretKeyBodyPublicKeyFieldLengthRSA(t *testing.T) {
	priv, err := rsa.GenerateKey(rand.Reader, 512)
	require.NoError(t, err)
	pub := rsaPublicKeyBody(t, time.Unix(1700000000, 0).UTC(), priv.N, big.NewInt(int64(priv.E)))

	body := append([]byte{}, pub...)
	body = append(body, 0) // S2K usage: plaintext
	d := NewMPI(priv.D).Encode()
	p := NewMPI(priv.Primes[0]).Encode()
	q := NewMPI(priv.Primes[1]).Encode()
	u := NewMPI(new(big.Int).ModInverse(priv.Primes[0], priv.Primes[1])).Encode()
	secret := append(append(append(d, p...), q...), u...)
	sum := checksum(secret)
	body = append(body, secret...)
	body = append(body, byte(sum>>8), byte(sum))

	sk, err := decodeSecretKeyBody(body)
	require.NoError(t, err)
	assert.Equal(t, byte(0), sk.S2KUsage)

	material, err := sk.Decrypt(nil)
	require.NoError(t, err)
	assert.Equal(t, secret, material)
}

func TestDecodeAlgorithmParamsRejectsUnknownAlgorithm(t *testing.T) {
	body := []byte{4, 0, 0, 0, 0, 99}
	_, err := decodePublicKeyBody(body)
	assert.True(t, IsCode(err, AlgUnsupportedPublicKey))
}

func TestDecodeLiteralDataRoundTrip(t *testing.T) {
	body := []byte{'b', 4, 't', 'e', 's', 't'}
	ts := make([]byte, 4)
	binary.BigEndian.PutUint32(ts, 1700000000)
	body = append(body, ts...)
	body = append(body, []byte("payload")...)

	ld, err := decodeLiteralData(body)
	require.NoError(t, err)
	assert.Equal(t, "test", ld.Filename)
	assert.Equal(t, "payload", string(ld.Data))
	assert.Equal(t, int64(1700000000), ld.Timestamp.Unix())
}
