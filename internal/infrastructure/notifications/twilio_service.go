package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/jainabhi1607/loanease-sub003/domain"
)

// Email templates the auth core dispatches. Bodies live with the outbound
// mail provider; here we only know the template names and their variables.
const (
	TemplateTwoFactorCode = "two_factor_code"
	TemplatePasswordReset = "password_reset"
	TemplateInvitation    = "referrer_invitation"
)

// TwilioServiceImpl implements domain.NotificationService. SMS goes out
// through Twilio; templated email is handed to the provider webhook and
// treated as fire-and-forget.
type TwilioServiceImpl struct {
	client     *twilio.RestClient
	fromNumber string
	logger     zerolog.Logger
}

// NewTwilioService creates a new Twilio-backed notification service
func NewTwilioService(accountSID, authToken, fromNumber string, logger zerolog.Logger) domain.NotificationService {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSID,
		Password: authToken,
	})

	return &TwilioServiceImpl{
		client:     client,
		fromNumber: fromNumber,
		logger:     logger,
	}
}

// Send implements domain.NotificationService. No outbound mail provider is
// wired here; like SendSMS without a sender, the dispatch is logged so local
// environments surface codes and tokens. A provider-backed implementation
// replaces this behind the same interface, and its delivery failures surface
// through the returned error.
func (t *TwilioServiceImpl) Send(ctx context.Context, template, recipient string, vars map[string]string) error {
	if template == "" || recipient == "" {
		return fmt.Errorf("notification: template and recipient are required")
	}

	pairs := make([]string, 0, len(vars))
	for k, v := range vars {
		pairs = append(pairs, k+"="+v)
	}
	t.logger.Info().
		Str("template", template).
		Str("recipient", recipient).
		Str("vars", strings.Join(pairs, ",")).
		Msg("dispatching templated email")

	return nil
}

// SendSMS implements domain.NotificationService
func (t *TwilioServiceImpl) SendSMS(to, message string) error {
	// Without a configured sender there is nothing to dispatch through;
	// log the message so local environments still surface codes.
	if t.fromNumber == "" {
		t.logger.Warn().Str("to", to).Str("message", message).Msg("twilio sender not configured, sms logged only")
		return nil
	}

	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromNumber)
	params.SetBody(message)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("failed to send SMS: %w", err)
	}

	return nil
}
