package notify

import (
	"context"
	"encoding/json"
	"fmt"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type SNSPublisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSNotifier publishes notifications to a topic that fans out to email/SMS.
type SNSNotifier struct {
	client   SNSPublisher
	topicArn string
}

func NewSNSNotifier(client SNSPublisher, topicArn string) *SNSNotifier {
	return &SNSNotifier{client: client, topicArn: topicArn}
}

func NewSNSClient(cfg sdkaws.Config, endpoint string) *sns.Client {
	return sns.NewFromConfig(cfg, func(o *sns.Options) {
		if endpoint != "" {
			o.BaseEndpoint = sdkaws.String(endpoint)
		}
	})
}

func (s *SNSNotifier) Notify(ctx context.Context, n Notification) error {
	if s.topicArn == "" {
		return fmt.Errorf("empty topicArn")
	}

	body, err := json.Marshal(n)
	if err != nil {
		return err
	}

	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: sdkaws.String(s.topicArn),
		Subject:  sdkaws.String(fmt.Sprintf("Payment %s", n.Status)),
		Message:  sdkaws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("sns publish failed for topic %s: %w", s.topicArn, err)
	}
	return nil
}
