package pskuri

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildParse_RoundTrip(t *testing.T) {
	var key [32]byte
	for i := range key {
		key[i] = byte(i)
	}

	uri := Build("ALGO123ADDRESS", key, "Alice")
	parsed, err := Parse(uri)
	require.NoError(t, err)
	assert.Equal(t, "ALGO123ADDRESS", parsed.Address)
	assert.Equal(t, key, parsed.Key)
	assert.Equal(t, "Alice", parsed.Label)
}

func TestBuildParse_NoLabel(t *testing.T) {
	var key [32]byte
	uri := Build("ADDR", key, "")
	parsed, err := Parse(uri)
	require.NoError(t, err)
	assert.Empty(t, parsed.Label)
}

func TestParse_WrongScheme(t *testing.T) {
	_, err := Parse("https://v1?addr=X&psk=AAAA")
	assert.Error(t, err)
}

func TestParse_WrongVersionHost(t *testing.T) {
	_, err := Parse("algochat-psk://v2?addr=X&psk=AAAA")
	assert.Error(t, err)
}

func TestParse_MissingAddr(t *testing.T) {
	var key [32]byte
	uri := Build("", key, "")
	_, err := Parse(uri)
	assert.Error(t, err)
}

func TestParse_MissingPsk(t *testing.T) {
	_, err := Parse("algochat-psk://v1?addr=X")
	assert.Error(t, err)
}

func TestParse_PskWrongLength(t *testing.T) {
	_, err := Parse("algochat-psk://v1?addr=X&psk=QUJD") // "ABC" -> 3 bytes
	assert.Error(t, err)
}
