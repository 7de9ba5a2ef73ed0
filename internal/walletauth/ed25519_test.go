package walletauth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEd25519VerifierAcceptsValidSignature(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	message := "Sign in to MySocial Relay"
	sig := ed25519.Sign(priv, []byte(message))

	verifier := NewEd25519Verifier()
	ok, err := verifier.Verify(context.Background(), message, base64.StdEncoding.EncodeToString(sig), hex.EncodeToString(pub))
	require.NoError(t, err)
	require.True(t, ok)
}

func TestEd25519VerifierRejectsTamperedMessage(t *testing.T) {
	pub, priv, err := ed25519.GenerateKey(nil)
	require.NoError(t, err)

	sig := ed25519.Sign(priv, []byte("original"))

	verifier := NewEd25519Verifier()
	ok, err := verifier.Verify(context.Background(), "tampered", base64.StdEncoding.EncodeToString(sig), hex.EncodeToString(pub))
	require.NoError(t, err)
	require.False(t, ok)
}
