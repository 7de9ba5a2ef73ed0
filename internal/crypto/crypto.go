// Package crypto implements per-conversation envelope encryption: an
// HKDF-SHA256 subkey derived from a server master key and the
// conversation id, sealed with AES-256-GCM. Grounded on
// relay-core/src/encryption.rs, translated into the Go stdlib +
// golang.org/x/crypto/hkdf idiom.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

// Sealer derives per-conversation subkeys from one server-wide master
// key and uses them to seal/open message envelopes.
type Sealer struct {
	masterKey []byte
}

// NewSealer decodes the configured master key per §6: 64 hex chars
// decode as 32 raw bytes; anything else is treated as UTF-8 bytes,
// zero-padded or truncated to 32 bytes.
func NewSealer(masterKey string) *Sealer {
	return &Sealer{masterKey: deriveMasterBytes(masterKey)}
}

func deriveMasterBytes(masterKey string) []byte {
	if len(masterKey) == 64 {
		if decoded, err := hex.DecodeString(masterKey); err == nil {
			return decoded
		}
	}
	raw := []byte(masterKey)
	out := make([]byte, keySize)
	copy(out, raw)
	return out
}

// conversationKey runs HKDF-SHA256 with an empty salt and
// info=conversationID, producing a 32-byte subkey.
func (s *Sealer) conversationKey(conversationID string) ([]byte, error) {
	r := hkdf.New(sha256.New, s.masterKey, nil, []byte(conversationID))
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("derive conversation key: %w", err)
	}
	return key, nil
}

// Seal encrypts plaintext under the conversationID subkey, returning
// the raw envelope bytes nonce(12) || ciphertext || tag(16) suitable
// for storing at rest.
func (s *Sealer) Seal(conversationID string, plaintext []byte) ([]byte, error) {
	key, err := s.conversationKey(conversationID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("read nonce: %w", err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, nil)
	return append(nonce, sealed...), nil
}

// Open decrypts an envelope produced by Seal for the same
// conversationID. It fails for any other conversationID — the subkey
// derivation binds ciphertext to its conversation.
func (s *Sealer) Open(conversationID string, envelope []byte) ([]byte, error) {
	key, err := s.conversationKey(conversationID)
	if err != nil {
		return nil, err
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("new gcm: %w", err)
	}
	if len(envelope) < gcm.NonceSize() {
		return nil, fmt.Errorf("envelope too short")
	}
	nonce, ciphertext := envelope[:gcm.NonceSize()], envelope[gcm.NonceSize():]
	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypt: %w", err)
	}
	return plaintext, nil
}

// EncodeWire base64-encodes a raw envelope for in-transit use (§6).
func EncodeWire(envelope []byte) string {
	return base64.StdEncoding.EncodeToString(envelope)
}

// DecodeWire reverses EncodeWire.
func DecodeWire(s string) ([]byte, error) {
	return base64.StdEncoding.DecodeString(s)
}
