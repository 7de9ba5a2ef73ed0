// Package fcm dispatches Android push notifications through Firebase
// Cloud Messaging's legacy HTTP API. The original left this channel as
// a TODO stub (original_source/relay-delivery/src/delivery.rs), but
// §4.4 of the spec promotes it to a required channel with "standard
// notification payload with title and body", so this is a real
// implementation rather than a no-op, built the same way apns/email
// are: a narrow stdlib net/http client, since no FCM library appears
// anywhere in the retrieval pack.
package fcm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const legacyEndpoint = "https://fcm.googleapis.com/fcm/send"

// Client dispatches messages to FCM using a server key (legacy HTTP
// API key, not the newer OAuth2 v1 API) resolved per-tenant by
// internal/platformcfg.
type Client struct {
	httpClient *http.Client
	serverKey  string
}

func New(serverKey string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		serverKey:  serverKey,
	}
}

type notificationPayload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

type sendRequest struct {
	To           string              `json:"to"`
	Notification notificationPayload `json:"notification"`
}

type sendResponse struct {
	Success int `json:"success"`
	Failure int `json:"failure"`
}

// Send dispatches a standard title/body notification payload to
// deviceToken per §4.4's Android dispatch rule.
func (c *Client) Send(ctx context.Context, deviceToken, title, body string) error {
	reqBody, err := json.Marshal(sendRequest{
		To: deviceToken,
		Notification: notificationPayload{
			Title: title,
			Body:  body,
		},
	})
	if err != nil {
		return fmt.Errorf("marshal fcm payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, legacyEndpoint, bytes.NewReader(reqBody))
	if err != nil {
		return fmt.Errorf("build fcm request: %w", err)
	}
	req.Header.Set("authorization", "key="+c.serverKey)
	req.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("send fcm notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fcm returned status %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("decode fcm response: %w", err)
	}
	if result.Success == 0 {
		return fmt.Errorf("fcm rejected notification")
	}
	return nil
}
