package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/matthieuT78/mt-courtage-sub002/backend/services/receipts-service/internal/config"
	"github.com/matthieuT78/mt-courtage-sub002/backend/shared/go-utils"
	twilio "github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"
)

var ErrSMSDisabled = errors.New("sms_disabled")

type SMSSender interface {
	SendSMS(ctx context.Context, to, body string) error
}

// NewSMSSender returns a Twilio sender when credentials and the sms_reminders
// flag are present.
func NewSMSSender(cfg *config.Config) SMSSender {
	if !cfg.LDFlag_SMSReminders || cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" || cfg.TwilioFromPhone == "" {
		return disabledSMS{}
	}
	return &twilioSender{
		client: twilio.NewRestClientWithParams(twilio.ClientParams{
			Username: cfg.TwilioAccountSID,
			Password: cfg.TwilioAuthToken,
		}),
		from: cfg.TwilioFromPhone,
	}
}

type disabledSMS struct{}

func (disabledSMS) SendSMS(context.Context, string, string) error { return ErrSMSDisabled }

type twilioSender struct {
	client *twilio.RestClient
	from   string
}

func (s *twilioSender) SendSMS(_ context.Context, to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(s.from)
	params.SetBody(body)

	if _, err := s.client.Api.CreateMessage(params); err != nil {
		utils.Logger.WithError(err).Errorf("Failed to send SMS to %s via Twilio", to)
		return fmt.Errorf("%w: failed to send sms via twilio: %v", utils.ErrExternalServiceFailure, err)
	}
	return nil
}
