package notify

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
)

// SESAPI is the part of the SES client used for delivery.
//
//go:generate mockgen -package=notify_test -destination=mock_ses_api_test.go -source=ses.go SESAPI
type SESAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// SESTransport sends messages as raw MIME through Amazon SES.
type SESTransport struct {
	Client           SESAPI
	ConfigurationSet string
}

// NewSESTransport loads the default AWS configuration for region.
func NewSESTransport(ctx context.Context, region string) (*SESTransport, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SESTransport{Client: ses.NewFromConfig(cfg)}, nil
}

func (t *SESTransport) Send(ctx context.Context, msg Message) error {
	raw, err := msg.Bytes()
	if err != nil {
		return fmt.Errorf("building message: %w", err)
	}
	in := &ses.SendRawEmailInput{
		RawMessage:   &types.RawMessage{Data: raw},
		Source:       aws.String(msg.From),
		Destinations: msg.To,
	}
	if t.ConfigurationSet != "" {
		in.ConfigurationSetName = aws.String(t.ConfigurationSet)
	}
	if _, err := t.Client.SendRawEmail(ctx, in); err != nil {
		return fmt.Errorf("ses send raw email: %w", err)
	}
	return nil
}
