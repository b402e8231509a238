package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/constants"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// ErrEmailDisabled means no email provider is configured. Callers treat it
// as a soft success, never as a delivery failure.
var ErrEmailDisabled = errors.New("email_disabled")

type EmailAttachment struct {
	Filename    string
	ContentType string
	Content     []byte
}

type EmailMessage struct {
	ToEmail     string
	ToName      string
	Subject     string
	PlainText   string
	HTML        string
	Attachments []EmailAttachment
}

// Mailer delivers one message and returns the provider message id.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) (string, error)
}

// NewMailer returns a SendGrid mailer, or a disabled one when no API key is set.
func NewMailer(cfg *config.Config) Mailer {
	if cfg.SendGridAPIKey == "" {
		return disabledMailer{}
	}
	return &sendgridMailer{
		client:      sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName:    constants.MailerFromName,
		fromEmail:   cfg.SendGridFromEmail,
		sandboxMode: cfg.LDFlag_SendgridSandboxMode,
	}
}

type disabledMailer struct{}

func (disabledMailer) Send(context.Context, EmailMessage) (string, error) {
	return "", ErrEmailDisabled
}

type sendgridMailer struct {
	client      *sendgrid.Client
	fromName    string
	fromEmail   string
	sandboxMode bool
}

func (m *sendgridMailer) Send(ctx context.Context, in EmailMessage) (string, error) {
	from := mail.NewEmail(m.fromName, m.fromEmail)
	to := mail.NewEmail(in.ToName, in.ToEmail)

	msg := mail.NewSingleEmail(from, in.Subject, to, in.PlainText, in.HTML)
	for _, a := range in.Attachments {
		att := mail.NewAttachment()
		att.SetContent(base64.StdEncoding.EncodeToString(a.Content))
		att.SetType(a.ContentType)
		att.SetFilename(a.Filename)
		att.SetDisposition("attachment")
		msg.AddAttachment(att)
	}
	if m.sandboxMode {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := m.client.SendWithContext(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("%w: sendgrid: %v", utils.ErrExternalServiceFailure, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("%w: sendgrid status %d: %s", utils.ErrExternalServiceFailure, resp.StatusCode, resp.Body)
	}

	var id string
	if v := resp.Headers["X-Message-Id"]; len(v) > 0 {
		id = v[0]
	}
	utils.Logger.WithField("message_id", id).Debugf("Email %q sent to %s", in.Subject, in.ToEmail)
	return id, nil
}
