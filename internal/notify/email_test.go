package notify

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSendGridSender_NilWithoutAPIKey(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{FromEmail: "care@tujali.health"}, nil)
	assert.Nil(t, sender)
}

func TestNewSendGridSender_DefaultFromName(t *testing.T) {
	sender := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "care@tujali.health"}, nil)
	require.NotNil(t, sender)
	assert.Equal(t, "Tujali Telehealth", sender.fromName)

	custom := NewSendGridSender(SendGridConfig{APIKey: "test-key", FromEmail: "care@tujali.health", FromName: "Tujali Nairobi"}, nil)
	assert.Equal(t, "Tujali Nairobi", custom.fromName)
}

func TestSendGridSender_Send_NilClient(t *testing.T) {
	sender := &SendGridSender{}
	err := sender.Send(context.Background(), EmailMessage{To: "john.doe@tujali.health", Subject: "Test", Body: "Test body"})
	assert.Error(t, err)
}

func TestStubEmailSender_Send(t *testing.T) {
	err := NewStubEmailSender(nil).Send(context.Background(), EmailMessage{To: "john.doe@tujali.health", Subject: "Test"})
	assert.NoError(t, err)
}

type mockSES struct {
	input *sesv2.SendEmailInput
	err   error
}

func (m *mockSES) SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error) {
	m.input = params
	if m.err != nil {
		return nil, m.err
	}
	return &sesv2.SendEmailOutput{MessageId: aws.String("ses-1")}, nil
}

func TestSESSender_Send(t *testing.T) {
	client := &mockSES{}
	sender := NewSESSender(client, SESConfig{FromEmail: "care@tujali.health"}, nil)
	require.NotNil(t, sender)

	err := sender.Send(context.Background(), EmailMessage{
		To:      "john.doe@tujali.health",
		Subject: "Appointment request",
		Body:    "plain",
		HTML:    "<p>html</p>",
	})
	require.NoError(t, err)
	assert.Equal(t, "Tujali Telehealth <care@tujali.health>", aws.ToString(client.input.FromEmailAddress))
	assert.Equal(t, []string{"john.doe@tujali.health"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "plain", aws.ToString(client.input.Content.Simple.Body.Text.Data))
	assert.Equal(t, "<p>html</p>", aws.ToString(client.input.Content.Simple.Body.Html.Data))

	client.err = errors.New("throttled")
	assert.ErrorContains(t, sender.Send(context.Background(), EmailMessage{To: "x@y.z"}), "throttled")
}

func TestNewEmailSenderSelection(t *testing.T) {
	sender, kind := NewEmailSender(SenderConfig{SendGridAPIKey: "k", SendGridFromEmail: "care@tujali.health"}, &mockSES{}, nil)
	assert.Equal(t, "sendgrid", kind)
	assert.IsType(t, &SendGridSender{}, sender)

	sender, kind = NewEmailSender(SenderConfig{SESFromEmail: "care@tujali.health"}, &mockSES{}, nil)
	assert.Equal(t, "ses", kind)
	assert.IsType(t, &SESSender{}, sender)

	sender, kind = NewEmailSender(SenderConfig{SESFromEmail: "care@tujali.health"}, nil, nil)
	assert.Equal(t, "stub", kind)
	assert.IsType(t, &StubEmailSender{}, sender)
}
