package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/nitinder-api/internal/config"
	"github.com/nitinder-api/internal/domain"
	"github.com/nitinder-api/internal/infrastructure/awsconf"
)

// Publisher fans domain events out to subscribers (push gateways, email digests).
type Publisher interface {
	Publish(ctx context.Context, e domain.Event) error
}

type publisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher returns an SNS topic publisher, or a no-op publisher when SNS_TOPIC_ARN is empty.
func NewPublisher(ctx context.Context, cfg *config.Config) (Publisher, error) {
	if cfg.SNSTopicARN == "" {
		return Nop{}, nil
	}
	awsCfg, err := awsconf.Load(ctx, cfg, cfg.SNSRegion)
	if err != nil {
		return nil, err
	}
	client := sns.NewFromConfig(awsCfg, func(o *sns.Options) {
		o.BaseEndpoint = awsconf.Endpoint(cfg)
	})
	return &publisher{client: client, topicARN: cfg.SNSTopicARN}, nil
}

func (p *publisher) Publish(ctx context.Context, e domain.Event) error {
	input, err := publishInput(p.topicARN, e)
	if err != nil {
		return err
	}
	if _, err := p.client.Publish(ctx, input); err != nil {
		return fmt.Errorf("sns publish %s: %w", e.Type, err)
	}
	return nil
}

func publishInput(topicARN string, e domain.Event) (*sns.PublishInput, error) {
	body, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return &sns.PublishInput{
		TopicArn: aws.String(topicARN),
		Message:  aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event_type": {DataType: aws.String("String"), StringValue: aws.String(e.Type)},
		},
	}, nil
}

// Nop drops events. Used when no topic is configured.
type Nop struct{}

func (Nop) Publish(_ context.Context, e domain.Event) error {
	slog.Debug("event not published, no topic configured", "type", e.Type)
	return nil
}
