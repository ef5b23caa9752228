package api

import (
	"context"
	"log/slog"
	"net/http"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/checkout"
	"pxv-pay/internal/merchant"
	"pxv-pay/internal/message"
	"pxv-pay/internal/metrics"
	"pxv-pay/internal/model"
	"pxv-pay/internal/verification"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type CheckoutService interface {
	Resolve(ctx context.Context, slug string) (*model.CheckoutLink, error)
	Methods(ctx context.Context, link *model.CheckoutLink, country string) ([]*model.PaymentMethod, error)
	Submit(ctx context.Context, slug string, sub checkout.Submission) (*checkout.Receipt, error)
}

type Verifier interface {
	Verify(ctx context.Context, caller auth.Caller, paymentID uuid.UUID, d verification.Decision) (*verification.Result, error)
}

type MerchantService interface {
	CreateLink(ctx context.Context, caller auth.Caller, l *model.CheckoutLink) (*model.CheckoutLink, error)
	ListLinks(ctx context.Context, caller auth.Caller) ([]*model.CheckoutLink, error)
	SetLinkStatus(ctx context.Context, caller auth.Caller, id uuid.UUID, status model.LinkStatus) (*model.CheckoutLink, error)

	CreateMethod(ctx context.Context, caller auth.Caller, m *model.PaymentMethod) (*model.PaymentMethod, error)
	ListMethods(ctx context.Context, caller auth.Caller) ([]*model.PaymentMethod, error)
	SetMethodStatus(ctx context.Context, caller auth.Caller, id uuid.UUID, status model.MethodStatus) (*model.PaymentMethod, error)

	CreateCountry(ctx context.Context, caller auth.Caller, c *model.Country) (*model.Country, error)
	ListCountries(ctx context.Context, caller auth.Caller) ([]*model.Country, error)
	DeleteCountry(ctx context.Context, caller auth.Caller, id uuid.UUID) error
	CreateCurrency(ctx context.Context, caller auth.Caller, c *model.Currency) (*model.Currency, error)
	ListCurrencies(ctx context.Context, caller auth.Caller) ([]*model.Currency, error)
	DeleteCurrency(ctx context.Context, caller auth.Caller, id uuid.UUID) error

	ListPayments(ctx context.Context, caller auth.Caller, filter model.PaymentFilter) ([]*model.Payment, error)
	GetPayment(ctx context.Context, caller auth.Caller, id uuid.UUID) (*model.Payment, error)
	ProofURL(ctx context.Context, caller auth.Caller, id uuid.UUID) (*merchant.ProofLink, error)
}

// EventSubscriber streams payment events until ctx ends.
type EventSubscriber interface {
	Subscribe(ctx context.Context, visible func(message.PaymentEvent) bool, deliver func(message.PaymentEvent) error) error
}

type TokenParser interface {
	Parse(token string) (auth.Caller, error)
}

type Deps struct {
	Checkout    CheckoutService
	Verifier    Verifier
	Merchant    MerchantService
	Events      EventSubscriber
	Tokens      TokenParser
	CorsOrigins []string
	// MaxUploadBytes caps the whole multipart body of a submission.
	MaxUploadBytes int64
}

func NewRouter(deps Deps, logger *slog.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), requestContext(logger))

	if len(deps.CorsOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     deps.CorsOrigins,
			AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodDelete, http.MethodOptions},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", requestIDHeader},
			ExposeHeaders:    []string{requestIDHeader},
			AllowCredentials: true,
		}))
	}

	router.GET("/liveness", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	public := &checkoutHandler{service: deps.Checkout, maxUploadBytes: deps.MaxUploadBytes, logger: logger}
	checkoutGroup := router.Group("/api/checkout/:slug")
	checkoutGroup.GET("/validate", public.validate)
	checkoutGroup.GET("/methods", public.methods)
	checkoutGroup.POST("/submit", public.submit)

	admin := &merchantHandler{service: deps.Merchant, verifier: deps.Verifier, events: deps.Events, logger: logger}
	api := router.Group("/api", authenticate(deps.Tokens, logger))

	api.POST("/checkout-links", admin.createLink)
	api.GET("/checkout-links", admin.listLinks)
	api.PATCH("/checkout-links/:id/status", admin.setLinkStatus)

	api.POST("/payment-methods", admin.createMethod)
	api.GET("/payment-methods", admin.listMethods)
	api.PATCH("/payment-methods/:id/status", admin.setMethodStatus)

	api.POST("/countries", admin.createCountry)
	api.GET("/countries", admin.listCountries)
	api.DELETE("/countries/:id", admin.deleteCountry)

	api.POST("/currencies", admin.createCurrency)
	api.GET("/currencies", admin.listCurrencies)
	api.DELETE("/currencies/:id", admin.deleteCurrency)

	api.GET("/payments", admin.listPayments)
	api.GET("/payments/stream", admin.stream)
	api.GET("/payments/:id", admin.getPayment)
	api.GET("/payments/:id/proof", admin.proof)
	api.POST("/payments/:id/verify", admin.verify)

	return router
}
