// Package sms is the outbound SMS gateway boundary. Dispatch is best-effort:
// one attempt, bounded timeout, no retry.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gharkaam/authcore/core"
)

// dispatchTimeout bounds the whole send; there is no retry behind it.
const dispatchTimeout = 30 * time.Second

// GatewayClient sends OTP texts through the provider's JSON API.
type GatewayClient struct {
	URL        string
	APIKey     string
	Sender     string
	HTTPClient *http.Client
}

func NewGatewayClient(url, apiKey, sender string) *GatewayClient {
	return &GatewayClient{
		URL:        url,
		APIKey:     apiKey,
		Sender:     sender,
		HTTPClient: &http.Client{Timeout: dispatchTimeout},
	}
}

type gatewayRequest struct {
	Sender      string `json:"sender"`
	Recipient   string `json:"recipient"`
	Text        string `json:"text"`
	MessageType string `json:"messageType"`
}

type gatewayResponse struct {
	Status    string `json:"status"`
	MessageID string `json:"messageId"`
	Message   string `json:"message"`
}

// SendOTP posts the rendered OTP text to the gateway and reports the outcome
// as a tagged core.Delivery. Transport errors are returned as errors; a
// well-formed rejection comes back as Delivery{Accepted: false}.
func (c *GatewayClient) SendOTP(ctx context.Context, phone, code string) (core.Delivery, error) {
	if c.APIKey == "" {
		return core.Delivery{}, fmt.Errorf("sms: API key not configured")
	}
	text := fmt.Sprintf("%s is your verification code. Valid for 10 minutes. Do not share it with anyone.", code)
	raw, err := json.Marshal(gatewayRequest{
		Sender:      c.Sender,
		Recipient:   phone,
		Text:        text,
		MessageType: "otp",
	})
	if err != nil {
		return core.Delivery{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL, bytes.NewReader(raw))
	if err != nil {
		return core.Delivery{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", c.APIKey)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return core.Delivery{}, err
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return core.Delivery{
			Reason: fmt.Sprintf("gateway status %d", resp.StatusCode),
			Raw:    body,
		}, nil
	}

	var parsed gatewayResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return core.Delivery{Reason: "unparseable gateway response", Raw: body}, nil
	}
	if !strings.EqualFold(parsed.Status, "success") {
		reason := parsed.Message
		if reason == "" {
			reason = fmt.Sprintf("gateway reported status %q", parsed.Status)
		}
		return core.Delivery{Reason: reason, Raw: body}, nil
	}
	return core.Delivery{Accepted: true, MessageID: parsed.MessageID, Raw: body}, nil
}
