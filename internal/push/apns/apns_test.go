package apns

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"testing"

	"github.com/stretchr/testify/require"
)

func testKeyPEM(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	return string(pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der}))
}

func TestNewSelectsSandboxEndpointForSandboxBundle(t *testing.T) {
	c, err := New(Credentials{BundleID: "com.example.app.sandbox", KeyID: "k", TeamID: "t", KeyPEM: testKeyPEM(t)})
	require.NoError(t, err)
	require.Equal(t, sandboxEndpoint, c.endpoint)
}

func TestNewSelectsSandboxEndpointForDevBundle(t *testing.T) {
	c, err := New(Credentials{BundleID: "com.example.dev", KeyID: "k", TeamID: "t", KeyPEM: testKeyPEM(t)})
	require.NoError(t, err)
	require.Equal(t, sandboxEndpoint, c.endpoint)
}

func TestNewSelectsProductionEndpointOtherwise(t *testing.T) {
	c, err := New(Credentials{BundleID: "com.example.app", KeyID: "k", TeamID: "t", KeyPEM: testKeyPEM(t)})
	require.NoError(t, err)
	require.Equal(t, productionEndpoint, c.endpoint)
}

func TestNewRejectsInvalidPEM(t *testing.T) {
	_, err := New(Credentials{BundleID: "com.example.app", KeyID: "k", TeamID: "t", KeyPEM: "not a pem"})
	require.Error(t, err)
}

func TestProviderTokenCachesUntilExpiry(t *testing.T) {
	c, err := New(Credentials{BundleID: "com.example.app", KeyID: "k", TeamID: "t", KeyPEM: testKeyPEM(t)})
	require.NoError(t, err)

	first, err := c.providerToken()
	require.NoError(t, err)
	require.NotEmpty(t, first)

	second, err := c.providerToken()
	require.NoError(t, err)
	require.Equal(t, first, second)
}
