package mailer

import (
	"bytes"
	"context"
	"net"
	"strings"
	"testing"

	"github.com/dmitrijs2005/storefront/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResetLink(t *testing.T) {
	link, err := ResetLink("http://localhost:8080/reset-password", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/reset-password?token=abc123", link)

	link, err = ResetLink("https://shop.example/reset?lang=en", "t")
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example/reset?lang=en&token=t", link)

	_, err = ResetLink("://bad", "t")
	assert.Error(t, err)
}

func TestLogMailer(t *testing.T) {
	var buf bytes.Buffer
	l, err := logging.New(&buf, "info", "json")
	require.NoError(t, err)

	m := NewLogMailer(l)
	require.NoError(t, m.SendPasswordReset(context.Background(), "a@x.com", "http://x/reset?token=1"))

	out := buf.String()
	assert.Contains(t, out, "password reset link")
	assert.Contains(t, out, "a@x.com")
	assert.Contains(t, out, `"module":"mailer"`)
}

func TestNewSMTPMailer_Validation(t *testing.T) {
	tests := []struct {
		name    string
		config  SMTPConfig
		wantErr string
	}{
		{"missing host", SMTPConfig{From: "shop@example.com"}, "host is required"},
		{"missing from", SMTPConfig{Host: "smtp.example.com"}, "from address is required"},
		{"valid", SMTPConfig{Host: "smtp.example.com", From: "shop@example.com"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := NewSMTPMailer(tt.config)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, 587, m.config.Port)
			assert.Nil(t, m.auth)
		})
	}
}

func TestNewSMTPMailer_Auth(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", Port: 25, User: "u", Password: "p", From: "x@y"})
	require.NoError(t, err)
	assert.NotNil(t, m.auth)
	assert.Equal(t, 25, m.config.Port)
}

func TestBuildMessage(t *testing.T) {
	m, err := NewSMTPMailer(SMTPConfig{Host: "smtp.example.com", From: "Shop <shop@example.com>"})
	require.NoError(t, err)

	msg := string(m.buildMessage("a@x.com", resetSubject, resetBody("http://x/reset?token=1")))

	assert.True(t, strings.HasPrefix(msg, "From: Shop <shop@example.com>\r\nTo: a@x.com\r\nSubject: Password reset\r\n"))
	assert.Contains(t, msg, "\r\n\r\nA password reset was requested")
	assert.Contains(t, msg, "http://x/reset?token=1")
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "shop@example.com", extractEmail("Shop <shop@example.com>"))
	assert.Equal(t, "shop@example.com", extractEmail("shop@example.com"))
	assert.Equal(t, "broken <x", extractEmail("broken <x"))
}

func TestSend_DialFailure(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	m, err := NewSMTPMailer(SMTPConfig{Host: "127.0.0.1", Port: addr.Port, From: "x@y"})
	require.NoError(t, err)

	err = m.SendPasswordReset(context.Background(), "a@x.com", "link")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dial smtp")
}
