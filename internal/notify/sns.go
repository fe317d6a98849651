package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

const maxSubjectLen = 99

// SNSAPI is the part of the SNS client used for alerts.
//
//go:generate mockgen -package=notify_test -destination=mock_sns_api_test.go -source=sns.go SNSAPI
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSAlerter publishes operator alerts to an SNS topic.
type SNSAlerter struct {
	Client   SNSAPI
	TopicARN string
}

// NewSNSAlerter loads the default AWS configuration for region.
func NewSNSAlerter(ctx context.Context, region, topicARN string) (*SNSAlerter, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &SNSAlerter{Client: sns.NewFromConfig(cfg), TopicARN: topicARN}, nil
}

// Alert publishes message. The subject is reduced to printable ASCII
// below the SNS length limit.
func (a *SNSAlerter) Alert(ctx context.Context, subject, message string) error {
	_, err := a.Client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(a.TopicARN),
		Subject:  aws.String(snsSubject(subject)),
		Message:  aws.String(message),
	})
	if err != nil {
		return fmt.Errorf("sns publish: %w", err)
	}
	return nil
}

func snsSubject(s string) string {
	var b strings.Builder
	for _, r := range s {
		if b.Len() >= maxSubjectLen {
			break
		}
		switch {
		case r == '\r' || r == '\n' || r == '\t':
			b.WriteByte(' ')
		case r < 0x20 || r > 0x7e:
			b.WriteByte('?')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}
