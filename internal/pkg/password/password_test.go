package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	hash, err := Hash("s3cret-pass")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, Verify("s3cret-pass", hash))
	assert.False(t, Verify("wrong-pass", hash))
}

func TestValidatePassword(t *testing.T) {
	assert.True(t, ValidatePassword("longenough"))
	assert.False(t, ValidatePassword("short"))
}
