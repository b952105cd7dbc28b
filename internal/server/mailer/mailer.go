// Package mailer delivers password reset links out-of-band.
package mailer

import (
	"context"
	"fmt"
	"net/url"

	"github.com/dmitrijs2005/storefront/internal/logging"
)

const resetSubject = "Password reset"

type Mailer interface {
	SendPasswordReset(ctx context.Context, to, link string) error
}

// ResetLink appends the token to base as the "token" query parameter.
func ResetLink(base, token string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse reset url: %w", err)
	}
	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

func resetBody(link string) string {
	return "A password reset was requested for your account.\r\n\r\n" +
		"Open the link below to choose a new password:\r\n" + link + "\r\n\r\n" +
		"If you did not request this, ignore this message.\r\n"
}

// LogMailer writes reset links to the log instead of sending mail. Used when
// no SMTP host is configured.
type LogMailer struct {
	logger logging.Logger
}

func NewLogMailer(l logging.Logger) *LogMailer {
	return &LogMailer{logger: l.With("module", "mailer")}
}

func (m *LogMailer) SendPasswordReset(ctx context.Context, to, link string) error {
	m.logger.Info(ctx, "password reset link", "to", to, "link", link)
	return nil
}
