package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"pricedigest/internal/notify"
)

func sampleMessage() notify.Message {
	return notify.Message{
		ID:      "id@pricedigest",
		From:    "digest@example.com",
		To:      []string{"ops@example.com"},
		Subject: "digest",
		Body:    "segue",
		Date:    time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
		Attachments: []notify.Attachment{
			{Filename: "r.csv", ContentType: "text/csv", Data: []byte("keyword;title;price;currency;url\r\n")},
		},
	}
}

func TestSESTransport_Send(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock SES client
	client := NewMockSESAPI(ctrl)

	// Assert: stub the SendRawEmail method
	client.EXPECT().
		SendRawEmail(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, in *ses.SendRawEmailInput, _ ...func(*ses.Options)) (*ses.SendRawEmailOutput, error) {
			require.Equal(t, "digest@example.com", aws.ToString(in.Source))
			require.Equal(t, []string{"ops@example.com"}, in.Destinations)
			require.Equal(t, "weekly", aws.ToString(in.ConfigurationSetName))
			raw := string(in.RawMessage.Data)
			require.True(t, strings.HasPrefix(raw, "Message-ID: <id@pricedigest>\r\n"))
			require.Contains(t, raw, "multipart/mixed")
			return &ses.SendRawEmailOutput{MessageId: aws.String("ses-1")}, nil
		}).
		Times(1)

	tr := &notify.SESTransport{Client: client, ConfigurationSet: "weekly"}

	// Act
	err := tr.Send(context.Background(), sampleMessage())

	// Assert
	require.NoError(t, err)
}

func TestSESTransport_Error(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock controller
	ctrl := gomock.NewController(t)

	// Arrange: create a mock SES client
	client := NewMockSESAPI(ctrl)

	// Assert: stub the SendRawEmail method with a failure
	client.EXPECT().
		SendRawEmail(gomock.Any(), gomock.Any()).
		Return(nil, errors.New("MessageRejected: Email address is not verified")).
		Times(1)

	tr := &notify.SESTransport{Client: client}

	// Act
	err := tr.Send(context.Background(), sampleMessage())

	// Assert
	require.ErrorContains(t, err, "ses send raw email")
	require.ErrorContains(t, err, "not verified")
}
