package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	s := NewSealer("0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef")
	plaintext := []byte("hello")

	envelope, err := s.Seal("0xA:0xB", plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, envelope)

	opened, err := s.Open("0xA:0xB", envelope)
	require.NoError(t, err)
	assert.Equal(t, plaintext, opened)
}

func TestOpenFailsForForeignConversation(t *testing.T) {
	s := NewSealer("a-non-hex-master-key-for-local-dev")
	envelope, err := s.Seal("0xA:0xB", []byte("hello"))
	require.NoError(t, err)

	_, err = s.Open("0xC:0xD", envelope)
	assert.Error(t, err)
}

func TestDeriveMasterBytesPadsShortKeys(t *testing.T) {
	b := deriveMasterBytes("short")
	assert.Len(t, b, keySize)
}

func TestDeriveMasterBytesDecodesHex(t *testing.T) {
	hexKey := "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef"
	b := deriveMasterBytes(hexKey)
	assert.Len(t, b, keySize)
	assert.Equal(t, []byte{0x01, 0x23, 0x45, 0x67}, b[:4])
}
