// Package relay forwards lead and telemetry events to the configured
// automation webhook. Forwarding is best-effort: an unconfigured webhook is
// a successful no-op, and a single POST is made with no retry.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"
)

const (
	headerTimestamp = "X-Odiadev-Ts"
	headerSignature = "X-Odiadev-Signature"
	contentTypeJSON = "application/json"
	userAgent       = "voicegate/0.1"
)

// ErrForwardFailed indicates the webhook rejected or never received the event.
var ErrForwardFailed = errors.New("event forward failed")

// Relay posts signed events to a webhook endpoint.
type Relay struct {
	webhookURL string
	signer     *Signer
	client     *http.Client
	now        func() time.Time
}

// New constructs a relay. An empty webhookURL disables forwarding; Forward
// then reports success without network I/O. An empty secret disables
// signing but not forwarding.
func New(webhookURL, secret string, client *http.Client) *Relay {
	if client == nil {
		client = http.DefaultClient
	}
	return &Relay{
		webhookURL: webhookURL,
		signer:     NewSigner(secret),
		client:     client,
		now:        time.Now,
	}
}

// Configured reports whether a webhook URL is set.
func (r *Relay) Configured() bool {
	return r.webhookURL != ""
}

// Forward sends one event to the webhook. The payload is marshalled once;
// the signature covers the exact bytes sent on the wire.
func (r *Relay) Forward(ctx context.Context, payload map[string]any) error {
	if !r.Configured() {
		return nil
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("construct webhook request: %w", err)
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("User-Agent", userAgent)

	if r.signer.Enabled() {
		ts := strconv.FormatInt(r.now().Unix(), 10)
		req.Header.Set(headerTimestamp, ts)
		req.Header.Set(headerSignature, r.signer.Sign(ts, body))
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrForwardFailed, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4*1024))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: webhook status %d", ErrForwardFailed, resp.StatusCode)
	}
	return nil
}
