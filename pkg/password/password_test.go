package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerifyBcrypt(t *testing.T) {
	hashed, err := Hash("s3cret!")
	require.NoError(t, err)

	assert.True(t, Verify("s3cret!", hashed))
	assert.False(t, Verify("wrong", hashed))
}

func TestVerifyLegacyFormat(t *testing.T) {
	stored, err := HashLegacy("kuya123")
	require.NoError(t, err)
	assert.Contains(t, stored, ":")

	assert.True(t, Verify("kuya123", stored))
	assert.False(t, Verify("kuya124", stored))
}

func TestVerifyMalformedStoredHash(t *testing.T) {
	assert.False(t, Verify("anything", ""))
	assert.False(t, Verify("anything", "no-separator"))
	assert.False(t, Verify("anything", ":"))
	assert.False(t, Verify("anything", "salt:"))
}
