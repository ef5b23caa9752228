package verification

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/db"
	"pxv-pay/internal/message"
	"pxv-pay/internal/model"
	"pxv-pay/internal/notify"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPayments struct{ mock.Mock }

func (m *mockPayments) SelectByID(ctx context.Context, id uuid.UUID) (*model.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

func (m *mockPayments) UpdateStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus, note *string,
	verifiedBy uuid.UUID, verifiedAt time.Time) (*model.Payment, error) {
	args := m.Called(ctx, id, status, note, verifiedBy, verifiedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

type mockEvents struct{ mock.Mock }

func (m *mockEvents) Publish(ctx context.Context, eventType message.EventType, payment *model.Payment) {
	m.Called(ctx, eventType, payment)
}

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) Notify(ctx context.Context, n notify.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func pendingPayment(merchantID uuid.UUID) *model.Payment {
	return &model.Payment{
		ID:            uuid.New(),
		MerchantID:    merchantID,
		CustomerEmail: "jane@example.com",
		Amount:        decimal.RequireFromString("99.99"),
		Currency:      "USD",
		Status:        model.PaymentPendingVerification,
	}
}

func verified(p *model.Payment, status model.PaymentStatus) *model.Payment {
	out := *p
	out.Status = status
	return &out
}

func TestVerify_OwnerApproves(t *testing.T) {
	merchantID := uuid.New()
	payment := pendingPayment(merchantID)
	caller := auth.Caller{UserID: merchantID, Role: auth.RoleMerchant}

	payments := new(mockPayments)
	events := new(mockEvents)
	payments.On("SelectByID", mock.Anything, payment.ID).Return(payment, nil).Once()
	payments.On("UpdateStatus", mock.Anything, payment.ID, model.PaymentApproved,
		mock.MatchedBy(func(note *string) bool { return note != nil && *note == "ok" }),
		merchantID, mock.Anything).Return(verified(payment, model.PaymentApproved), nil).Once()
	events.On("Publish", mock.Anything, message.EventUpdate, mock.Anything).Once()

	sut := NewService(payments, events, nil, slog.Default())
	result, err := sut.Verify(context.Background(), caller, payment.ID, Decision{Status: model.PaymentApproved, Note: " ok "})

	require.NoError(t, err)
	assert.Equal(t, model.PaymentApproved, result.Payment.Status)
	assert.False(t, result.Reverified)
	assert.False(t, result.Notified)
	payments.AssertExpectations(t)
	events.AssertExpectations(t)
}

func TestVerify_NonOwnerGetsNotFound(t *testing.T) {
	payment := pendingPayment(uuid.New())

	for _, role := range []auth.Role{auth.RoleMerchant, auth.RoleAdmin} {
		t.Run(string(role), func(t *testing.T) {
			payments := new(mockPayments)
			events := new(mockEvents)
			payments.On("SelectByID", mock.Anything, payment.ID).Return(payment, nil).Once()

			sut := NewService(payments, events, nil, slog.Default())
			_, err := sut.Verify(context.Background(), auth.Caller{UserID: uuid.New(), Role: role}, payment.ID,
				Decision{Status: model.PaymentRejected})

			assert.ErrorIs(t, err, db.ErrNotFound)
			payments.AssertNotCalled(t, "UpdateStatus")
			events.AssertNotCalled(t, "Publish")
		})
	}
}

func TestVerify_SuperAdminMayVerifyAnyPayment(t *testing.T) {
	payment := pendingPayment(uuid.New())
	admin := auth.Caller{UserID: uuid.New(), Role: auth.RoleSuperAdmin}

	payments := new(mockPayments)
	events := new(mockEvents)
	payments.On("SelectByID", mock.Anything, payment.ID).Return(payment, nil).Once()
	payments.On("UpdateStatus", mock.Anything, payment.ID, model.PaymentRejected, (*string)(nil), admin.UserID, mock.Anything).
		Return(verified(payment, model.PaymentRejected), nil).Once()
	events.On("Publish", mock.Anything, message.EventUpdate, mock.Anything).Once()

	sut := NewService(payments, events, nil, slog.Default())
	result, err := sut.Verify(context.Background(), admin, payment.ID, Decision{Status: model.PaymentRejected})

	require.NoError(t, err)
	assert.Equal(t, model.PaymentRejected, result.Payment.Status)
	payments.AssertExpectations(t)
}

func TestVerify_InvalidStatus(t *testing.T) {
	payments := new(mockPayments)
	sut := NewService(payments, new(mockEvents), nil, slog.Default())

	for _, status := range []model.PaymentStatus{model.PaymentPendingVerification, model.PaymentExpired, "paid"} {
		_, err := sut.Verify(context.Background(), auth.Caller{UserID: uuid.New(), Role: auth.RoleMerchant}, uuid.New(),
			Decision{Status: status})
		assert.True(t, model.IsValidation(err), status)
	}
	payments.AssertNotCalled(t, "SelectByID")
}

func TestVerify_ReverificationIsFlagged(t *testing.T) {
	merchantID := uuid.New()
	payment := verified(pendingPayment(merchantID), model.PaymentApproved)

	payments := new(mockPayments)
	events := new(mockEvents)
	payments.On("SelectByID", mock.Anything, payment.ID).Return(payment, nil).Once()
	payments.On("UpdateStatus", mock.Anything, payment.ID, model.PaymentRejected, mock.Anything, merchantID, mock.Anything).
		Return(verified(payment, model.PaymentRejected), nil).Once()
	events.On("Publish", mock.Anything, message.EventUpdate, mock.Anything).Once()

	sut := NewService(payments, events, nil, slog.Default())
	result, err := sut.Verify(context.Background(), auth.Caller{UserID: merchantID, Role: auth.RoleMerchant}, payment.ID,
		Decision{Status: model.PaymentRejected})

	require.NoError(t, err)
	assert.True(t, result.Reverified)
}

func TestVerify_NotifiesCustomer(t *testing.T) {
	merchantID := uuid.New()
	payment := pendingPayment(merchantID)

	payments := new(mockPayments)
	events := new(mockEvents)
	notifier := new(mockNotifier)
	payments.On("SelectByID", mock.Anything, payment.ID).Return(payment, nil).Once()
	payments.On("UpdateStatus", mock.Anything, payment.ID, model.PaymentApproved, mock.Anything, merchantID, mock.Anything).
		Return(verified(payment, model.PaymentApproved), nil).Once()
	events.On("Publish", mock.Anything, message.EventUpdate, mock.Anything).Once()
	notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n notify.Notification) bool {
		return n.PaymentID == payment.ID && n.Status == model.PaymentApproved && n.Email == "jane@example.com"
	})).Return(nil).Once()

	sut := NewService(payments, events, notifier, slog.Default())
	result, err := sut.Verify(context.Background(), auth.Caller{UserID: merchantID, Role: auth.RoleMerchant}, payment.ID,
		Decision{Status: model.PaymentApproved, Notify: true})

	require.NoError(t, err)
	assert.True(t, result.Notified)
	notifier.AssertExpectations(t)
}

func TestVerify_NotificationFailureDoesNotFail(t *testing.T) {
	merchantID := uuid.New()
	payment := pendingPayment(merchantID)

	payments := new(mockPayments)
	events := new(mockEvents)
	notifier := new(mockNotifier)
	payments.On("SelectByID", mock.Anything, payment.ID).Return(payment, nil).Once()
	payments.On("UpdateStatus", mock.Anything, payment.ID, model.PaymentApproved, mock.Anything, merchantID, mock.Anything).
		Return(verified(payment, model.PaymentApproved), nil).Once()
	events.On("Publish", mock.Anything, message.EventUpdate, mock.Anything).Once()
	notifier.On("Notify", mock.Anything, mock.Anything).Return(errors.New("relay down")).Once()

	sut := NewService(payments, events, notifier, slog.Default())
	result, err := sut.Verify(context.Background(), auth.Caller{UserID: merchantID, Role: auth.RoleMerchant}, payment.ID,
		Decision{Status: model.PaymentApproved, Notify: true})

	require.NoError(t, err)
	assert.False(t, result.Notified)
	assert.Equal(t, model.PaymentApproved, result.Payment.Status)
}

func TestVerify_UnknownPayment(t *testing.T) {
	payments := new(mockPayments)
	id := uuid.New()
	payments.On("SelectByID", mock.Anything, id).Return(nil, db.ErrNotFound).Once()

	sut := NewService(payments, new(mockEvents), nil, slog.Default())
	_, err := sut.Verify(context.Background(), auth.Caller{UserID: uuid.New(), Role: auth.RoleSuperAdmin}, id,
		Decision{Status: model.PaymentApproved})

	assert.ErrorIs(t, err, db.ErrNotFound)
}
