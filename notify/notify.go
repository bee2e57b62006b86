// Package notify delivers rendered reports over authenticated SMTP.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"homereport/logger"
	"homereport/models"
)

// Sentinel errors surfaced to the caller. Both abort the run; the daily
// scheduler is the retry policy.
var (
	ErrAuthentication = fmt.Errorf("smtp authentication rejected")
	ErrDelivery       = fmt.Errorf("mail delivery failed")
	ErrInvalidInput   = fmt.Errorf("invalid mail input")
)

// Mailer sends report mail through a fixed SMTP endpoint.
type Mailer struct {
	host       string
	port       int
	recipients []string
}

// NewMailer creates a mailer for the given SMTPS endpoint and recipient
// list.
func NewMailer(host string, port int, recipients []string) *Mailer {
	logger.Info("Initializing mailer",
		zap.String("host", host),
		zap.Int("port", port),
		zap.Strings("recipients", recipients))
	return &Mailer{host: host, port: port, recipients: recipients}
}

// Send delivers one message. Credentials are validated before any
// connection is opened, so a rejected credential never results in a
// partial send.
func (m *Mailer) Send(ctx context.Context, cred models.EmailCredential, subject, body string) error {
	if cred.Username == "" || cred.AppPassword == "" {
		return fmt.Errorf("%w: username and app password are required", ErrAuthentication)
	}
	if len(m.recipients) == 0 {
		return fmt.Errorf("%w: no recipients configured", ErrInvalidInput)
	}

	from := cred.Address()

	msg := mail.NewMsg()
	if err := msg.From(from); err != nil {
		return fmt.Errorf("%w: invalid sender %s: %v", ErrInvalidInput, from, err)
	}
	if err := msg.To(m.recipients...); err != nil {
		return fmt.Errorf("%w: invalid recipients: %v", ErrInvalidInput, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	client, err := mail.NewClient(m.host,
		mail.WithPort(m.port),
		mail.WithSSL(),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(from),
		mail.WithPassword(cred.AppPassword),
	)
	if err != nil {
		return fmt.Errorf("%w: failed to create smtp client: %v", ErrDelivery, err)
	}

	logger.Info("Sending report mail",
		zap.String("subject", subject),
		zap.String("host", m.host),
		zap.Int("recipients", len(m.recipients)))

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		classified := classify(err)
		logger.Error("Failed to send report mail",
			zap.String("subject", subject),
			zap.Error(err))
		return fmt.Errorf("%w: %v", classified, err)
	}

	logger.Info("Report mail sent", zap.String("subject", subject))
	return nil
}

// classify maps a transport error onto the sentinel errors. SMTP 534 and
// 535 replies mean the provider rejected the credential; everything else
// is a delivery problem.
func classify(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "535 "),
		strings.Contains(msg, "534 "),
		strings.Contains(msg, "username and password not accepted"),
		strings.Contains(msg, "auth"):
		return ErrAuthentication
	default:
		return ErrDelivery
	}
}
