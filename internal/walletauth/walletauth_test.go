package walletauth

import (
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/mysocial/relay/internal/relayerr"
)

func validMessage(wallet string, age time.Duration) string {
	ts := time.Now().Add(-age).Unix()
	return fmt.Sprintf("Sign in to MySocial Relay\n\nWallet: %s\nNonce: abc123\nTimestamp: %d", wallet, ts)
}

func TestValidateMessageAcceptsWellFormedMessage(t *testing.T) {
	log := zerolog.Nop()
	err := ValidateMessage(log, validMessage("0xA", 10*time.Second), "0xA")
	assert.NoError(t, err)
}

func TestValidateMessageRejectsMissingPrefix(t *testing.T) {
	log := zerolog.Nop()
	err := ValidateMessage(log, "Wallet: 0xA\nTimestamp: 123", "0xA")
	assert.Equal(t, relayerr.BadRequest, relayerr.As(err))
}

func TestValidateMessageRejectsFutureTimestamp(t *testing.T) {
	log := zerolog.Nop()
	err := ValidateMessage(log, validMessage("0xA", -10*time.Second), "0xA")
	assert.Equal(t, relayerr.BadRequest, relayerr.As(err))
}

// §8 property 5: timestamps outside [now-300s, now] are rejected.
func TestValidateMessageRejectsReplayWindow(t *testing.T) {
	log := zerolog.Nop()
	err := ValidateMessage(log, validMessage("0xA", 400*time.Second), "0xA")
	assert.Equal(t, relayerr.BadRequest, relayerr.As(err))

	err = ValidateMessage(log, validMessage("0xA", 100*time.Second), "0xA")
	assert.NoError(t, err)
}

func TestValidateMessageRejectsWrongWallet(t *testing.T) {
	log := zerolog.Nop()
	err := ValidateMessage(log, validMessage("0xA", 10*time.Second), "0xB")
	assert.Equal(t, relayerr.BadRequest, relayerr.As(err))
}

func TestValidateMessageWarnsButAcceptsMissingNonce(t *testing.T) {
	log := zerolog.Nop()
	ts := time.Now().Add(-10 * time.Second).Unix()
	message := fmt.Sprintf("Sign in to MySocial Relay\n\nWallet: 0xA\nTimestamp: %d", ts)
	assert.NoError(t, ValidateMessage(log, message, "0xA"))
}
