// Package alert delivers takeover notifications over a webhook.
package alert

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"
)

const (
	webhookTimeout     = 30 * time.Second
	webhookMaxRespBody = 4 * 1024
)

// Webhook implements engine.Notifier against a Discord-compatible webhook
// endpoint: one multipart POST per detection with a JSON text part and the
// screenshot attached as a PNG file part.
type Webhook struct {
	URL    string
	Client *http.Client
}

// NewWebhook builds a webhook sink for endpoint. Returns an error for a
// non-http(s) endpoint so the caller can disable alerting instead of
// failing every delivery.
func NewWebhook(endpoint string) (*Webhook, error) {
	u, err := url.Parse(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid webhook URL %q", endpoint)
	}
	return &Webhook{
		URL:    endpoint,
		Client: &http.Client{Timeout: webhookTimeout},
	}, nil
}

type webhookPayload struct {
	Content string `json:"content"`
}

// Notify posts the detection message and screenshot. Any transport error
// or non-2xx response is returned; the caller logs it and moves on, so a
// broken sink never stalls the scan.
func (w *Webhook) Notify(ctx context.Context, pageURL string, screenshot []byte) error {
	body, contentType, err := buildMessage(pageURL, screenshot)
	if err != nil {
		return fmt.Errorf("building webhook message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, body)
	if err != nil {
		return fmt.Errorf("building webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.Client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, webhookMaxRespBody))
		return fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}
	return nil
}

// buildMessage assembles the multipart body: a payload_json field naming
// the URL and the detected condition, plus the image as file1. The field
// names are what Discord-style webhooks expect for file uploads.
func buildMessage(pageURL string, screenshot []byte) (*bytes.Buffer, string, error) {
	payload, err := json.Marshal(webhookPayload{
		Content: fmt.Sprintf("Potential Subdomain Takeover Detected (404): `%s`", pageURL),
	})
	if err != nil {
		return nil, "", err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if err := mw.WriteField("payload_json", string(payload)); err != nil {
		return nil, "", err
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file1"; filename="screenshot.png"`)
	header.Set("Content-Type", "image/png")
	part, err := mw.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(screenshot); err != nil {
		return nil, "", err
	}

	if err := mw.Close(); err != nil {
		return nil, "", err
	}
	return &buf, mw.FormDataContentType(), nil
}
