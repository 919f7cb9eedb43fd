package mailer

//go:generate go run go.uber.org/mock/mockgen -source=./mailer.go -destination=./mocks/mailer_mock.go -package=mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/mailersend/mailersend-go"
	"github.com/rs/zerolog/log"

	"rally/config"
)

const sendTimeout = 5 * time.Second

// Mailer sends transactional emails to booking participants.
type Mailer interface {
	Send(ctx context.Context, to, toName, subject, body string) error
}

type mailerImpl struct {
	client    *mailersend.Mailersend
	fromName  string
	fromEmail string
}

func New(config *config.Config) Mailer {
	return &mailerImpl{
		client:    mailersend.NewMailersend(config.Mail.APIKey),
		fromName:  config.Mail.FromName,
		fromEmail: config.Mail.FromEmail,
	}
}

func (m *mailerImpl) Send(ctx context.Context, to, toName, subject, body string) error {
	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	from := mailersend.From{
		Name:  m.fromName,
		Email: m.fromEmail,
	}

	recipients := []mailersend.Recipient{
		{
			Name:  toName,
			Email: to,
		},
	}

	message := m.client.Email.NewMessage()
	message.SetFrom(from)
	message.SetRecipients(recipients)
	message.SetSubject(subject)
	message.SetText(body)

	res, err := m.client.Email.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	log.Info().
		Str("to", to).
		Str("messageID", res.Header.Get("X-Message-Id")).
		Msg("Email sent successfully")

	return nil
}
