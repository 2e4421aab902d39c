package openpgp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestS2KDeriveKeySimple(t *testing.T) {
	s := S2K{Type: S2KSimple, Hash: HashSHA256}
	key, err := s.DeriveKey([]byte("hunter2"), 32)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := s.DeriveKey([]byte("hunter2"), 32)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestS2KDeriveKeySaltChangesOutput(t *testing.T) {
	a := S2K{Type: S2KSalted, Hash: HashSHA256, Salt: [8]byte{1, 2, 3, 4, 5, 6, 7, 8}}
	b := S2K{Type: S2KSalted, Hash: HashSHA256, Salt: [8]byte{8, 7, 6, 5, 4, 3, 2, 1}}

	ka, err := a.DeriveKey([]byte("hunter2"), 32)
	require.NoError(t, err)
	kb, err := b.DeriveKey([]byte("hunter2"), 32)
	require.NoError(t, err)
	assert.NotEqual(t, ka, kb)
}

func TestS2KDeriveKeyIteratedSaltedMatchesHelper(t *testing.T) {
	salt := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	count := byte(0x10)
	s := S2K{Type: S2KIteratedSalted, Hash: HashSHA256, Count: count}
	copy(s.Salt[:], salt)

	key, err := s.DeriveKey([]byte("hunter2"), 32)
	require.NoError(t, err)
	assert.Len(t, key, 32)
	assert.Equal(t, s2k([]byte("hunter2"), salt, decodeS2KCount(count)), key)
}

func TestS2KDeriveKeyArgon2(t *testing.T) {
	s := S2K{Type: S2KArgon2, Argon2T: 1, Argon2P: 1, Argon2M: 10}
	copy(s.Argon2Salt[:], []byte("0123456789abcdef"))

	key, err := s.DeriveKey([]byte("hunter2"), 32)
	require.NoError(t, err)
	assert.Len(t, key, 32)

	again, err := s.DeriveKey([]byte("hunter2"), 32)
	require.NoError(t, err)
	assert.Equal(t, key, again)
}

func TestDecodeS2KCount(t *testing.T) {
	// RFC 4880 §3.7.1.3 worked values.
	assert.Equal(t, 1024, decodeS2KCount(0))
	assert.Equal(t, 65011712, decodeS2KCount(255))
}

func TestInternalS2KDeterministic(t *testing.T) {
	salt := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	a := s2k([]byte("hunter2"), salt, decodeS2KCount(s2kCount))
	b := s2k([]byte("hunter2"), salt, decodeS2KCount(s2kCount))
	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
}
