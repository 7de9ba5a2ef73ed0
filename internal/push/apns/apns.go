// Package apns dispatches iOS push notifications via Apple's HTTP/2
// provider API, using a short-lived ES256 provider token instead of a
// certificate. Grounded on original_source/relay-delivery/src/apns.rs
// for the payload shape and sandbox/production endpoint selection;
// the original uses the Rust `a2` crate (no Go equivalent appears in
// the retrieval pack), so the token-signing concern is served by
// golang-jwt/jwt/v5 (already wired for C6 bearer tokens) against
// stdlib net/http instead of introducing an unwired new dependency.
package apns

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	sandboxEndpoint    = "https://api.sandbox.push.apple.com"
	productionEndpoint = "https://api.push.apple.com"
	tokenTTL           = 55 * time.Minute
)

// Credentials are the per-tenant (or global default) APNs settings
// resolved by internal/platformcfg.
type Credentials struct {
	BundleID  string
	KeyID     string
	TeamID    string
	KeyPEM    string // decoded .p8 key content
}

// Client dispatches notifications to APNs, caching its signed
// provider token until near expiry (§9: "cache tenant clients keyed
// by platform_id" — here scoped to one resolved credential set).
type Client struct {
	httpClient *http.Client
	creds      Credentials
	key        *ecdsa.PrivateKey
	endpoint   string

	mu        sync.Mutex
	token     string
	tokenExp  time.Time
}

func New(creds Credentials) (*Client, error) {
	block, _ := pem.Decode([]byte(creds.KeyPEM))
	if block == nil {
		return nil, fmt.Errorf("apns: invalid key PEM")
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("apns: parse EC private key: %w", err)
	}

	endpoint := productionEndpoint
	if strings.Contains(creds.BundleID, "sandbox") || strings.Contains(creds.BundleID, "dev") {
		endpoint = sandboxEndpoint
	}

	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		creds:      creds,
		key:        key,
		endpoint:   endpoint,
	}, nil
}

func (c *Client) providerToken() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Now().Before(c.tokenExp) {
		return c.token, nil
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.creds.TeamID,
		"iat": now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodES256, claims)
	token.Header["kid"] = c.creds.KeyID

	signed, err := token.SignedString(c.key)
	if err != nil {
		return "", fmt.Errorf("sign apns provider token: %w", err)
	}
	c.token = signed
	c.tokenExp = now.Add(tokenTTL)
	return signed, nil
}

// Payload is the APNs aps dictionary built per §4.4's dispatch rule.
type Payload struct {
	Alert    string `json:"alert"`
	Badge    *int   `json:"badge,omitempty"`
	Sound    string `json:"sound,omitempty"`
	Category string `json:"category,omitempty"`
}

type apnsBody struct {
	APS Payload `json:"aps"`
}

// Send dispatches body as {aps: {alert, badge?, sound?, category?}}
// to deviceToken, with the bundle id as the apns-topic header.
func (c *Client) Send(ctx context.Context, deviceToken string, payload Payload) error {
	token, err := c.providerToken()
	if err != nil {
		return err
	}

	body, err := json.Marshal(apnsBody{APS: payload})
	if err != nil {
		return fmt.Errorf("marshal apns payload: %w", err)
	}

	url := fmt.Sprintf("%s/3/device/%s", c.endpoint, deviceToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build apns request: %w", err)
	}
	req.Header.Set("authorization", "bearer "+token)
	req.Header.Set("apns-topic", c.creds.BundleID)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send apns notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("apns returned status %d", resp.StatusCode)
	}
	return nil
}
