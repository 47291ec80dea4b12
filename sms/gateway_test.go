package sms_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/gharkaam/authcore/sms"
)

func TestSendOTPAccepted(t *testing.T) {
	var got struct {
		Sender      string `json:"sender"`
		Recipient   string `json:"recipient"`
		Text        string `json:"text"`
		MessageType string `json:"messageType"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "test-key", r.Header.Get("Authorization"))
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","messageId":"abc-123"}`))
	}))
	defer srv.Close()

	c := sms.NewGatewayClient(srv.URL, "test-key", "GHRKAM")
	d, err := c.SendOTP(context.Background(), "919876543210", "4321")
	require.NoError(t, err)
	require.True(t, d.Accepted)
	require.Equal(t, "abc-123", d.MessageID)

	require.Equal(t, "GHRKAM", got.Sender)
	require.Equal(t, "919876543210", got.Recipient)
	require.Equal(t, "otp", got.MessageType)
	require.Contains(t, got.Text, "4321")
}

func TestSendOTPGatewayRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"status":"error","message":"invalid sender id"}`))
	}))
	defer srv.Close()

	c := sms.NewGatewayClient(srv.URL, "test-key", "GHRKAM")
	d, err := c.SendOTP(context.Background(), "919876543210", "4321")
	require.NoError(t, err)
	require.False(t, d.Accepted)
	require.Equal(t, "invalid sender id", d.Reason)
	require.NotEmpty(t, d.Raw)
}

func TestSendOTPNon200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := sms.NewGatewayClient(srv.URL, "test-key", "GHRKAM")
	d, err := c.SendOTP(context.Background(), "919876543210", "4321")
	require.NoError(t, err)
	require.False(t, d.Accepted)
	require.Equal(t, "gateway status 502", d.Reason)
}

func TestSendOTPUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	c := sms.NewGatewayClient(srv.URL, "test-key", "GHRKAM")
	d, err := c.SendOTP(context.Background(), "919876543210", "4321")
	require.NoError(t, err)
	require.False(t, d.Accepted)
	require.Equal(t, "unparseable gateway response", d.Reason)
}

func TestSendOTPTransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close() // connection refused from here on

	c := sms.NewGatewayClient(srv.URL, "test-key", "GHRKAM")
	_, err := c.SendOTP(context.Background(), "919876543210", "4321")
	require.Error(t, err)
}

func TestSendOTPMissingKey(t *testing.T) {
	c := sms.NewGatewayClient("http://example.invalid", "", "GHRKAM")
	_, err := c.SendOTP(context.Background(), "919876543210", "4321")
	require.Error(t, err)
}
