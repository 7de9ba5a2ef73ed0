package walletauth

import (
	"context"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"strings"
)

// Ed25519Verifier is the default SignatureVerifier implementation.
// original_source/relay-core/src/signature.rs delegates to a
// MySocial-specific `mys-sdk` client with no Go equivalent anywhere in
// the retrieval pack (see DESIGN.md); ed25519 is the underlying
// primitive such wallet-signature schemes typically wrap, so this
// verifies a base64 signature against a hex-encoded public wallet
// address using stdlib crypto/ed25519 directly.
type Ed25519Verifier struct{}

func NewEd25519Verifier() *Ed25519Verifier {
	return &Ed25519Verifier{}
}

func (Ed25519Verifier) Verify(_ context.Context, message, signature, walletAddress string) (bool, error) {
	pubKeyHex := strings.TrimPrefix(walletAddress, "0x")
	pubKeyBytes, err := hex.DecodeString(pubKeyHex)
	if err != nil {
		return false, fmt.Errorf("decode wallet address: %w", err)
	}
	if len(pubKeyBytes) != ed25519.PublicKeySize {
		return false, fmt.Errorf("wallet address is not a valid ed25519 public key")
	}

	sigBytes, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("decode signature: %w", err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return false, fmt.Errorf("signature has unexpected length")
	}

	return ed25519.Verify(ed25519.PublicKey(pubKeyBytes), []byte(message), sigBytes), nil
}
