package session_test

import (
	"testing"

	session "github.com/goliatone/go-session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := session.HashPassword("secret-pw")
	require.NoError(t, err)
	require.NotEmpty(t, hash)
	assert.NotEqual(t, "secret-pw", hash)

	assert.NoError(t, session.ComparePasswordAndHash("secret-pw", hash))
	assert.Equal(t, session.ErrMismatchedHashAndPassword, session.ComparePasswordAndHash("wrong-pw", hash))
}

func TestHashPasswordRejectsEmpty(t *testing.T) {
	_, err := session.HashPassword("")
	assert.Equal(t, session.ErrNoEmptyString, err)
}

func TestComparePasswordAndHashGarbage(t *testing.T) {
	err := session.ComparePasswordAndHash("secret-pw", "not-a-bcrypt-hash")
	require.Error(t, err)
	assert.NotEqual(t, session.ErrMismatchedHashAndPassword, err)
}

func TestRandomPasswordHash(t *testing.T) {
	hash := session.RandomPasswordHash()
	assert.NotEmpty(t, hash)
}
