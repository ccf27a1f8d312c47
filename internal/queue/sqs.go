package queue

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/Cadenviv07/NASA-Asteroid-Tracker/internal/config"
)

// SQSAPI is the subset of the SQS client used for publishing.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends each message to a fixed SQS queue.
type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

// NewSQSPublisher wraps an existing SQS client.
func NewSQSPublisher(client SQSAPI, queueURL string) (*SQSPublisher, error) {
	if client == nil {
		return nil, fmt.Errorf("sqs client is required")
	}
	if strings.TrimSpace(queueURL) == "" {
		return nil, fmt.Errorf("sqs queue url is required")
	}
	return &SQSPublisher{client: client, queueURL: queueURL}, nil
}

// DialSQS loads the default AWS credential chain for the configured region
// and returns a publisher for the configured queue.
func DialSQS(ctx context.Context, cfg config.SQSConfig) (*SQSPublisher, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	log.Infof("Publishing to SQS queue %s (%s)", cfg.QueueURL, awsCfg.Region)
	return NewSQSPublisher(sqs.NewFromConfig(awsCfg), cfg.QueueURL)
}

// Publish sends msg.Body as the message body.
func (p *SQSPublisher) Publish(ctx context.Context, msg Message) error {
	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(msg.Body)),
	}
	if len(msg.Attributes) > 0 {
		input.MessageAttributes = make(map[string]types.MessageAttributeValue, len(msg.Attributes))
		for k, v := range msg.Attributes {
			input.MessageAttributes[k] = types.MessageAttributeValue{
				DataType:    aws.String("String"),
				StringValue: aws.String(v),
			}
		}
	}

	out, err := p.client.SendMessage(ctx, input)
	if err != nil {
		return fmt.Errorf("sqs send %s: %w", msg.Key, err)
	}
	if out != nil {
		log.Debugf("SQS accepted %s as %s", msg.Key, aws.ToString(out.MessageId))
	}
	return nil
}

// Close is a no-op; the SDK client holds no resources that need release.
func (p *SQSPublisher) Close() error {
	return nil
}
