// Package email dispatches notification emails through the Resend
// API. Grounded on original_source/relay-delivery/src/email.rs: same
// request/response shapes, same html_escape rules, same template.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const resendAPIURL = "https://api.resend.com/emails"

// Client dispatches notification emails via Resend.
type Client struct {
	httpClient *http.Client
	apiKey     string
	fromEmail  string
}

func New(apiKey, fromEmail string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		apiKey:     apiKey,
		fromEmail:  fromEmail,
	}
}

type sendRequest struct {
	From    string `json:"from"`
	To      []string `json:"to"`
	Subject string `json:"subject"`
	HTML    string `json:"html"`
	Text    string `json:"text"`
}

type sendResponse struct {
	ID string `json:"id"`
}

// Send dispatches title/body as an HTML + plaintext email to
// toAddress. Returns the Resend message id on success.
func (c *Client) Send(ctx context.Context, toAddress, title, body string) (string, error) {
	req := sendRequest{
		From:    c.fromEmail,
		To:      []string{toAddress},
		Subject: title,
		HTML:    renderHTML(title, body),
		Text:    body,
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal resend payload: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, resendAPIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build resend request: %w", err)
	}
	httpReq.Header.Set("authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("content-type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send resend email: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("resend returned status %d", resp.StatusCode)
	}

	var result sendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("decode resend response: %w", err)
	}
	return result.ID, nil
}

func renderHTML(title, body string) string {
	escapedTitle := htmlEscape(title)
	escapedBody := htmlEscape(body)
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="margin:0;padding:0;background-color:#f4f4f4;">
  <div style="max-width:600px;margin:40px auto;padding:32px;background-color:#ffffff;border-radius:8px;font-family:sans-serif;">
    <h2 style="color:#111111;margin-top:0;">%s</h2>
    <p style="color:#444444;line-height:1.5;">%s</p>
  </div>
</body>
</html>`, escapedTitle, escapedBody)
}

// htmlEscape escapes the five characters the original's html_escape
// function escapes, in the same order.
func htmlEscape(s string) string {
	s = strings.ReplaceAll(s, "&", "&amp;")
	s = strings.ReplaceAll(s, "<", "&lt;")
	s = strings.ReplaceAll(s, ">", "&gt;")
	s = strings.ReplaceAll(s, "\"", "&quot;")
	s = strings.ReplaceAll(s, "'", "&#39;")
	return s
}
