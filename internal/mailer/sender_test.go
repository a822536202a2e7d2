package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/birthday-bot/internal/config"
	"gopkg.in/gomail.v2"
)

var testEmail = Email{
	From:    "Bot <bot@example.com>",
	To:      []string{"a@example.com", "b@example.com"},
	Subject: "Upcoming Birthday: Ben",
	HTML:    "<p>Hi</p>",
}

func TestSMTPSender_Send(t *testing.T) {
	var captured []*gomail.Message
	s := &SMTPSender{
		host: "smtp.example.com",
		send: func(m ...*gomail.Message) error {
			captured = append(captured, m...)
			return nil
		},
	}

	id, err := s.Send(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, "smtp.example.com", id)
	require.Len(t, captured, 1)

	msg := captured[0]
	assert.Equal(t, []string{testEmail.From}, msg.GetHeader("From"))
	assert.Equal(t, testEmail.To, msg.GetHeader("To"))
	assert.Equal(t, []string{testEmail.Subject}, msg.GetHeader("Subject"))

	var body strings.Builder
	_, err = msg.WriteTo(&body)
	require.NoError(t, err)
	assert.Contains(t, body.String(), "Content-Type: "+config.MimeTextHTML)
	assert.Contains(t, body.String(), "<p>Hi</p>")
}

func TestSMTPSender_Errors(t *testing.T) {
	s := &SMTPSender{
		host: "smtp.example.com",
		send: func(...*gomail.Message) error { return errors.New("connection refused") },
	}

	_, err := s.Send(context.Background(), testEmail)
	assert.ErrorContains(t, err, "connection refused")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Send(ctx, testEmail)
	assert.ErrorIs(t, err, context.Canceled)
}

func newTestResendSender(t *testing.T, handler http.HandlerFunc) *ResendSender {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	s := NewResendSender("re_test")
	base, err := url.Parse(ts.URL + "/")
	require.NoError(t, err)
	s.client.BaseURL = base
	return s
}

func TestResendSender_Send(t *testing.T) {
	var payload map[string]any
	s := newTestResendSender(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"4ef9a417-02e9-4d39-ad75-9611e0fcc33c"}`)
	})

	id, err := s.Send(context.Background(), testEmail)
	require.NoError(t, err)
	assert.Equal(t, "4ef9a417-02e9-4d39-ad75-9611e0fcc33c", id)

	assert.Equal(t, testEmail.Subject, payload["subject"])
	assert.Equal(t, testEmail.HTML, payload["html"])
	assert.Equal(t, config.ProviderResend, s.Provider())
}

func TestResendSender_Rejected(t *testing.T) {
	s := newTestResendSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = io.WriteString(w, `{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`)
	})

	_, err := s.Send(context.Background(), testEmail)
	assert.Error(t, err)
}
