package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSClient hands notification messages to the dispatcher's SQS queue.
type SQSClient struct {
	client   *sqs.Client
	queueURL string
}

// NewSQSClient constructs an SQS-backed notification client.
func NewSQSClient(ctx context.Context, region, queueURL string) (*SQSClient, error) {
	if strings.TrimSpace(queueURL) == "" {
		return nil, fmt.Errorf("NOTIFY_QUEUE_URL is required")
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return &SQSClient{
		client:   sqs.NewFromConfig(cfg),
		queueURL: queueURL,
	}, nil
}

// Notify delivers a message to the dispatcher queue.
func (s *SQSClient) Notify(ctx context.Context, recipients []string, template string, data map[string]any) error {
	payload, err := EncodeMessage(NewMessage(recipients, template, data))
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	_, err = s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(payload)),
	})
	if err != nil {
		return fmt.Errorf("sqs send notification: %w", err)
	}
	return nil
}

var _ Client = (*SQSClient)(nil)
