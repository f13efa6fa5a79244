package utils

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSES struct {
	in  *ses.SendEmailInput
	err error
}

func (f *fakeSES) SendEmail(_ context.Context, in *ses.SendEmailInput, _ ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.in = in
	return &ses.SendEmailOutput{}, f.err
}

func TestMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &Mailer{client: client, from: "noreply@example.com"}

	require.NoError(t, m.Send(context.Background(), "parent@example.com", "Reminder", "Offer peanut this week"))
	assert.Equal(t, "noreply@example.com", aws.ToString(client.in.Source))
	assert.Equal(t, []string{"parent@example.com"}, client.in.Destination.ToAddresses)
	assert.Equal(t, "Reminder", aws.ToString(client.in.Message.Subject.Data))
	assert.Equal(t, "Offer peanut this week", aws.ToString(client.in.Message.Body.Text.Data))

	client.err = errors.New("throttled")
	assert.ErrorContains(t, m.Send(context.Background(), "a@b.c", "s", "b"), "throttled")
}
