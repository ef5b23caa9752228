package notify

import (
	"context"
	"errors"
	"testing"

	"pxv-pay/internal/model"

	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type mockSNS struct {
	mock.Mock
}

func (m *mockSNS) Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

func TestSNSNotifier_Notify(t *testing.T) {
	client := new(mockSNS)
	client.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return *in.TopicArn == "arn:aws:sns:us-east-1:000000000000:payments" &&
			*in.Subject == "Payment approved"
	})).Return(&sns.PublishOutput{}, nil).Once()

	err := NewSNSNotifier(client, "arn:aws:sns:us-east-1:000000000000:payments").
		Notify(context.Background(), Notification{PaymentID: uuid.New(), Status: model.PaymentApproved})

	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSNSNotifier_Errors(t *testing.T) {
	err := NewSNSNotifier(new(mockSNS), "").Notify(context.Background(), Notification{})
	assert.Error(t, err)

	client := new(mockSNS)
	client.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled")).Once()
	err = NewSNSNotifier(client, "arn:topic").Notify(context.Background(), Notification{Status: model.PaymentRejected})
	assert.ErrorContains(t, err, "throttled")
}
