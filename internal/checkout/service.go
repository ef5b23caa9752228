package checkout

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"pxv-pay/internal/db"
	"pxv-pay/internal/logcontext"
	"pxv-pay/internal/message"
	"pxv-pay/internal/model"
	"pxv-pay/internal/storage"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCountryNotAllowed = errors.New("country is not available for this checkout")
	ErrMethodNotAllowed  = errors.New("payment method is not available for this country")
	ErrProofMissing      = errors.New("proof of payment is required")
	ErrProofTooLarge     = errors.New("proof of payment is too large")
	ErrProofType         = errors.New("proof of payment must be an image or PDF")
)

var (
	submissionAcceptedCounter      = metrics.GetOrCreateCounter(`checkout_submissions_total{result="accepted"}`)
	submissionInvalidCounter       = metrics.GetOrCreateCounter(`checkout_submissions_total{result="invalid"}`)
	submissionStorageFailedCounter = metrics.GetOrCreateCounter(`checkout_submissions_total{result="storage_failed"}`)
	submissionDBFailedCounter      = metrics.GetOrCreateCounter(`checkout_submissions_total{result="db_failed"}`)
	submissionDuplicateCounter     = metrics.GetOrCreateCounter(`checkout_submissions_total{result="possible_duplicate"}`)

	submissionDurationHistogram = metrics.GetOrCreateHistogram(`checkout_submission_duration_milliseconds`)
)

type LinkStore interface {
	SelectBySlug(ctx context.Context, slug string) (*model.CheckoutLink, error)
}

type MethodStore interface {
	ListActiveForCountry(ctx context.Context, merchantID uuid.UUID, country string) ([]*model.PaymentMethod, error)
}

type PaymentStore interface {
	Create(ctx context.Context, p *model.Payment) (*model.Payment, error)
	CountRecent(ctx context.Context, linkID uuid.UUID, email string, amount decimal.Decimal, since time.Time) (int, error)
}

type EventPublisher interface {
	Publish(ctx context.Context, eventType message.EventType, payment *model.Payment)
}

type Options struct {
	MaxProofBytes       int64
	AllowedContentTypes []string
	DuplicateWindow     time.Duration
}

type Proof struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type Submission struct {
	CustomerName    string
	CustomerEmail   string
	Amount          decimal.Decimal
	Country         string
	PaymentMethodID uuid.UUID
	Proof           *Proof
}

type Receipt struct {
	Payment           *model.Payment
	PossibleDuplicate bool
}

// Service resolves public checkout links and accepts payment submissions.
type Service struct {
	links    LinkStore
	methods  MethodStore
	payments PaymentStore
	objects  storage.ObjectStore
	events   EventPublisher
	opts     Options
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(links LinkStore, methods MethodStore, payments PaymentStore, objects storage.ObjectStore,
	events EventPublisher, opts Options, logger *slog.Logger) *Service {
	return &Service{
		links:    links,
		methods:  methods,
		payments: payments,
		objects:  objects,
		events:   events,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
	}
}

// Resolve returns the open checkout link for slug. Inactive, expired and
// unknown links are indistinguishable to the caller.
func (s *Service) Resolve(ctx context.Context, slug string) (*model.CheckoutLink, error) {
	link, err := s.links.SelectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	if !link.IsOpen(s.now()) {
		return nil, fmt.Errorf("checkout link %q: %w", slug, db.ErrNotFound)
	}
	return link, nil
}

// Methods returns the merchant's active methods for country, in display order.
func (s *Service) Methods(ctx context.Context, link *model.CheckoutLink, country string) ([]*model.PaymentMethod, error) {
	country = strings.ToUpper(strings.TrimSpace(country))
	if !link.AllowsCountry(country) {
		return nil, model.Invalid(ErrCountryNotAllowed)
	}
	return s.methods.ListActiveForCountry(ctx, link.MerchantID, country)
}

// Submit validates a customer submission against the link, stores the proof
// and records a payment awaiting verification. The proof is stored first so a
// storage failure leaves no row behind.
func (s *Service) Submit(ctx context.Context, slug string, sub Submission) (*Receipt, error) {
	startTime := s.now()
	defer func() {
		submissionDurationHistogram.Update(float64(time.Since(startTime).Milliseconds()))
	}()

	ctx = logcontext.AppendCtx(ctx, slog.String("slug", slug))

	link, err := s.Resolve(ctx, slug)
	if err != nil {
		return nil, err
	}
	ctx = logcontext.AppendCtx(ctx, slog.String("merchantId", link.MerchantID.String()))

	sub.Country = strings.ToUpper(strings.TrimSpace(sub.Country))
	sub.CustomerName = strings.TrimSpace(sub.CustomerName)
	sub.CustomerEmail = strings.TrimSpace(sub.CustomerEmail)

	if err := s.validate(link, sub); err != nil {
		submissionInvalidCounter.Inc()
		return nil, err
	}

	methods, err := s.Methods(ctx, link, sub.Country)
	if err != nil {
		return nil, err
	}
	method := findMethod(methods, sub.PaymentMethodID)
	if method == nil {
		submissionInvalidCounter.Inc()
		return nil, model.Invalid(ErrMethodNotAllowed)
	}

	possibleDuplicate := s.flagDuplicate(ctx, link, sub)

	key := storage.ProofKey(link.MerchantID, sub.Proof.Filename, sub.Proof.ContentType)
	if err := s.objects.Put(ctx, key, sub.Proof.ContentType, sub.Proof.Body, sub.Proof.Size); err != nil {
		s.logger.ErrorContext(ctx, "Error storing proof of payment", "error", err)
		submissionStorageFailedCounter.Inc()
		return nil, fmt.Errorf("store proof: %w", err)
	}

	payment, err := s.payments.Create(ctx, &model.Payment{
		CheckoutLinkID:  link.ID,
		MerchantID:      link.MerchantID,
		CustomerName:    sub.CustomerName,
		CustomerEmail:   sub.CustomerEmail,
		Amount:          sub.Amount,
		Currency:        link.Currency,
		Country:         sub.Country,
		PaymentMethodID: method.ID,
		PaymentMethod:   method.Name,
		PaymentProofURL: key,
		Status:          model.PaymentPendingVerification,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "Error creating payment", "error", err, "proofKey", key)
		submissionDBFailedCounter.Inc()
		return nil, fmt.Errorf("create payment: %w", err)
	}

	s.events.Publish(ctx, message.EventInsert, payment)

	submissionAcceptedCounter.Inc()
	s.logger.InfoContext(ctx, "Payment submitted", "paymentId", payment.ID, "possibleDuplicate", possibleDuplicate)

	return &Receipt{Payment: payment, PossibleDuplicate: possibleDuplicate}, nil
}

func (s *Service) validate(link *model.CheckoutLink, sub Submission) error {
	if sub.CustomerName == "" {
		return model.Invalidf("customer name is required")
	}
	if err := model.ValidateEmail(sub.CustomerEmail); err != nil {
		return model.Invalid(err)
	}
	if err := link.CheckAmount(sub.Amount); err != nil {
		return model.Invalid(err)
	}
	if !link.AllowsCountry(sub.Country) {
		return model.Invalid(ErrCountryNotAllowed)
	}
	return s.validateProof(sub.Proof)
}

func (s *Service) validateProof(proof *Proof) error {
	if proof == nil || proof.Body == nil || proof.Size == 0 {
		return model.Invalid(ErrProofMissing)
	}
	if s.opts.MaxProofBytes > 0 && proof.Size > s.opts.MaxProofBytes {
		return model.Invalid(ErrProofTooLarge)
	}
	if len(s.opts.AllowedContentTypes) == 0 {
		return nil
	}
	for _, ct := range s.opts.AllowedContentTypes {
		if strings.EqualFold(ct, proof.ContentType) {
			return nil
		}
	}
	return model.Invalid(ErrProofType)
}

// flagDuplicate reports whether an identical submission arrived recently.
// Duplicates are still accepted; the flag is informational.
func (s *Service) flagDuplicate(ctx context.Context, link *model.CheckoutLink, sub Submission) bool {
	if s.opts.DuplicateWindow <= 0 {
		return false
	}

	n, err := s.payments.CountRecent(ctx, link.ID, sub.CustomerEmail, sub.Amount, s.now().Add(-s.opts.DuplicateWindow))
	if err != nil {
		s.logger.WarnContext(ctx, "Duplicate check failed", "error", err)
		return false
	}
	if n == 0 {
		return false
	}

	s.logger.WarnContext(ctx, "Possible duplicate payment submission", "previous", n)
	submissionDuplicateCounter.Inc()
	return true
}

func findMethod(methods []*model.PaymentMethod, id uuid.UUID) *model.PaymentMethod {
	for _, m := range methods {
		if m.ID == id {
			return m
		}
	}
	return nil
}
