package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateHandle(t *testing.T) {
	assert.NoError(t, ValidateHandle("alice"))
	assert.NoError(t, ValidateHandle("  阿明  "))
	assert.NoError(t, ValidateHandle(strings.Repeat("字", MaxHandleLength)))

	assert.Error(t, ValidateHandle(""))
	assert.Error(t, ValidateHandle("   "))
	assert.Error(t, ValidateHandle(strings.Repeat("a", MaxHandleLength+1)))
	assert.Error(t, ValidateHandle("ali\x00ce"))
}

func TestValidateProofImage(t *testing.T) {
	assert.NoError(t, ValidateProofImage("", 10))
	assert.NoError(t, ValidateProofImage("data:image/png;base64,aGVsbG8=", 10))

	assert.Error(t, ValidateProofImage("data:image/png;base64,aGVsbG8=", 3), "too large")
	assert.Error(t, ValidateProofImage("data:text/plain;base64,aGVsbG8=", 10), "not an image")
	assert.Error(t, ValidateProofImage("https://cdn.example.com/slip.png", 10))
}

func TestValidateLimit(t *testing.T) {
	got, err := ValidateLimit(0, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	got, err = ValidateLimit(20, 100)
	require.NoError(t, err)
	assert.Equal(t, 20, got)

	got, err = ValidateLimit(500, 100)
	require.NoError(t, err)
	assert.Equal(t, 100, got)

	_, err = ValidateLimit(-1, 100)
	assert.Error(t, err)
}
