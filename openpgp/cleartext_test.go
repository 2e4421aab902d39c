package openpgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCleartextMissingBeginMarker(t *testing.T) {
	_, _, err := DecodeCleartext([]byte("not a cleartext message\n"))
	assert.True(t, IsCode(err, RBadFormat))
}

func TestDecodeCleartextDefaultsToSHA256(t *testing.T) {
	data := "-----BEGIN PGP SIGNED MESSAGE-----\n\nhello\n-----BEGIN PGP SIGNATURE-----\nrest\n"
	msg, remainder, err := DecodeCleartext([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []HashAlgorithm{HashSHA256}, msg.HashAlgorithms)
	assert.Equal(t, "hello\n", string(msg.Body))
	assert.Equal(t, "-----BEGIN PGP SIGNATURE-----\nrest\n", string(remainder))
}

func TestDecodeCleartextParsesHashHeader(t *testing.T) {
	data := "-----BEGIN PGP SIGNED MESSAGE-----\nHash: SHA512\n\nbody\n-----BEGIN PGP SIGNATURE-----\n"
	msg, _, err := DecodeCleartext([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []HashAlgorithm{HashSHA512}, msg.HashAlgorithms)
}

func TestDecodeCleartextUnescapesDashLines(t *testing.T) {
	data := "-----BEGIN PGP SIGNED MESSAGE-----\n\n- -dashed line\nplain\n-----BEGIN PGP SIGNATURE-----\n"
	msg, _, err := DecodeCleartext([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "-dashed line\nplain\n", string(msg.Body))
}

func TestDecodeCleartextHashInputStripsTrailingWhitespaceAndUsesCRLF(t *testing.T) {
	data := "-----BEGIN PGP SIGNED MESSAGE-----\n\nfirst line   \nsecond line\n-----BEGIN PGP SIGNATURE-----\n"
	msg, _, err := DecodeCleartext([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, "first line\r\nsecond line", string(msg.HashInput))
}

func TestDecodeCleartextMissingSignatureMarker(t *testing.T) {
	data := "-----BEGIN PGP SIGNED MESSAGE-----\n\nbody with no signature block\n"
	_, _, err := DecodeCleartext([]byte(data))
	assert.Error(t, err)
}

func TestHashByName(t *testing.T) {
	alg, ok := hashByName("sha256")
	assert.True(t, ok)
	assert.Equal(t, HashSHA256, alg)

	_, ok = hashByName("not-a-hash")
	assert.False(t, ok)
}
