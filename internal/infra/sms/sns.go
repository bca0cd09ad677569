package sms

import (
	"context"
	"fmt"

	"groomly/internal/domain/notification"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

var _ notification.Provider = (*SNSProvider)(nil)

// SNSProvider sends SMS messages through AWS SNS. Credentials come from
// the default AWS chain (env, shared config, instance role).
type SNSProvider struct {
	client *sns.Client
}

// NewSNSProvider creates a new SNS SMS provider for the given region.
func NewSNSProvider(ctx context.Context, region string) (*SNSProvider, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return &SNSProvider{client: sns.NewFromConfig(cfg)}, nil
}

// Channel returns the SMS channel identifier.
func (p *SNSProvider) Channel() notification.Channel {
	return notification.ChannelSMS
}

// Send publishes an SMS via SNS and returns the SNS message ID plus the
// segment count of the delivered body.
func (p *SNSProvider) Send(ctx context.Context, msg *notification.Message) (*notification.ProviderResult, error) {
	out, err := p.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber: aws.String(msg.To),
		Message:     aws.String(msg.Body),
	})
	if err != nil {
		return nil, fmt.Errorf("sns: %w", err)
	}

	return &notification.ProviderResult{
		MessageID:    aws.ToString(out.MessageId),
		SegmentCount: segmentCount(msg.Body),
	}, nil
}
