// Package walletauth validates the wallet-signature login message and
// delegates signature verification to an opaque SignatureVerifier
// (the platform's blockchain signature scheme is explicitly out of
// scope, §1). Grounded on relay-core/src/signature.rs, translated
// into idiomatic Go error returns instead of anyhow::Result.
package walletauth

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mysocial/relay/internal/relayerr"
)

const (
	signInPrefix   = "Sign in to MySocial Relay"
	maxMessageAge  = 300 * time.Second
)

// SignatureVerifier is the narrow collaborator interface the spec
// calls out as opaque: it knows how to verify a platform signature
// envelope against a message for a claimed wallet address, but this
// package never inspects the signature scheme itself.
type SignatureVerifier interface {
	Verify(ctx context.Context, message, signature, walletAddress string) (bool, error)
}

// ValidateMessage checks the literal structural requirements of
// §4.6 step 2 / §6's auth message format. It does not verify the
// cryptographic signature — that's SignatureVerifier's job.
func ValidateMessage(log zerolog.Logger, message, walletAddress string) error {
	if !strings.Contains(message, signInPrefix) {
		return relayerr.New(relayerr.BadRequest, "invalid message format: missing expected prefix")
	}
	if !strings.Contains(message, fmt.Sprintf("Wallet: %s", walletAddress)) {
		return relayerr.New(relayerr.BadRequest, "message does not contain expected wallet address")
	}

	var timestampLine string
	for _, line := range strings.Split(message, "\n") {
		if strings.HasPrefix(line, "Timestamp:") {
			timestampLine = strings.TrimSpace(strings.TrimPrefix(line, "Timestamp:"))
			break
		}
	}
	if timestampLine == "" {
		return relayerr.New(relayerr.BadRequest, "missing timestamp in message")
	}
	timestamp, err := strconv.ParseInt(timestampLine, 10, 64)
	if err != nil {
		return relayerr.New(relayerr.BadRequest, "invalid timestamp format")
	}

	now := time.Now().Unix()
	if timestamp > now {
		return relayerr.New(relayerr.BadRequest, "timestamp is in the future")
	}
	if now-timestamp > int64(maxMessageAge.Seconds()) {
		return relayerr.New(relayerr.BadRequest, "message is too old")
	}

	if !strings.Contains(message, "Nonce:") {
		log.Warn().Str("wallet_address", walletAddress).Msg("auth message missing nonce - replay protection may be limited")
	}

	return nil
}

// Authenticate runs the full §4.6 login flow: structural validation,
// then signature verification, returning a BadRequest/Unauthorized
// relayerr.Error on any failure.
func Authenticate(ctx context.Context, log zerolog.Logger, verifier SignatureVerifier, walletAddress, signature, message string) error {
	if err := ValidateMessage(log, message, walletAddress); err != nil {
		return err
	}
	ok, err := verifier.Verify(ctx, message, signature, walletAddress)
	if err != nil {
		return relayerr.Wrap(relayerr.Unauthorized, "signature verification failed", err)
	}
	if !ok {
		return relayerr.New(relayerr.Unauthorized, "signature does not match wallet address")
	}
	return nil
}
