package security_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/angelmondragon/bazaar-backend/pkg/config"
	"github.com/angelmondragon/bazaar-backend/pkg/security"
)

func testPasswordConfig() config.PasswordConfig {
	return config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestHashAndVerify(t *testing.T) {
	h := security.NewHasher(testPasswordConfig())
	hash, err := h.Hash("very-secure-password")
	require.NoError(t, err)
	assert.Contains(t, hash, "$argon2id$v=19$m=8192,t=1,p=1$")
	assert.False(t, h.NeedsRehash(hash))

	ok, err := h.Verify("very-secure-password", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("bogus-password", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashRejectsEmpty(t *testing.T) {
	_, err := security.NewHasher(testPasswordConfig()).Hash("")
	assert.ErrorIs(t, err, security.ErrEmptyPassword)
}

func TestCostChangeNeedsRehash(t *testing.T) {
	old := security.NewHasher(testPasswordConfig())
	hash, err := old.Hash("hunter2222")
	require.NoError(t, err)

	stronger := testPasswordConfig()
	stronger.ArgonTime = 3
	h := security.NewHasher(stronger)
	assert.True(t, h.NeedsRehash(hash))

	ok, err := h.Verify("hunter2222", hash)
	require.NoError(t, err)
	assert.True(t, ok, "hashes keep verifying with the cost they were made with")
}

func TestVerifyLegacyBcryptHash(t *testing.T) {
	h := security.NewHasher(testPasswordConfig())
	legacy, err := bcrypt.GenerateFromPassword([]byte("hunter22"), bcrypt.MinCost)
	require.NoError(t, err)
	assert.True(t, h.NeedsRehash(string(legacy)))

	ok, err := h.Verify("hunter22", string(legacy))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify("nope", string(legacy))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestVerifyBadHash(t *testing.T) {
	h := security.NewHasher(testPasswordConfig())
	for _, encoded := range []string{
		"not-a-hash",
		"$argon2id$v=18$m=8192,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x,t=1,p=1$c2FsdA$a2V5",
	} {
		_, err := h.Verify("irrelevant", encoded)
		assert.ErrorIs(t, err, security.ErrInvalidHash, encoded)
	}
}
