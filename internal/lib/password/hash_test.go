package password

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHashAndCompareHash(t *testing.T) {
	hash, err := GetHash("silne-heslo-123")
	require.NoError(t, err)
	assert.NotEqual(t, "silne-heslo-123", hash)

	assert.NoError(t, CompareHash(hash, "silne-heslo-123"))
	assert.Error(t, CompareHash(hash, "jine-heslo"))
}

func TestGetHash_UniqueSalts(t *testing.T) {
	first, err := GetHash("stejne-heslo")
	require.NoError(t, err)
	second, err := GetHash("stejne-heslo")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
