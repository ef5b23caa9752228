package api

import (
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"pxv-pay/internal/checkout"
	"pxv-pay/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const multipartMemory = 8 << 20

type checkoutHandler struct {
	service        CheckoutService
	maxUploadBytes int64
	logger         *slog.Logger
}

// linkView is the public face of a checkout link. Owner and lifecycle fields
// stay private.
type linkView struct {
	ID                 uuid.UUID           `json:"id"`
	Slug               string              `json:"slug"`
	Title              string              `json:"title"`
	Description        string              `json:"description,omitempty"`
	AmountType         model.AmountType    `json:"amountType"`
	Amount             decimal.NullDecimal `json:"amount"`
	MinAmount          decimal.NullDecimal `json:"minAmount"`
	MaxAmount          decimal.NullDecimal `json:"maxAmount"`
	Currency           string              `json:"currency"`
	ActiveCountryCodes []string            `json:"activeCountryCodes"`
	ExpiresAt          *time.Time          `json:"expiresAt,omitempty"`
}

func newLinkView(l *model.CheckoutLink) linkView {
	return linkView{
		ID:                 l.ID,
		Slug:               l.Slug,
		Title:              l.Title,
		Description:        l.Description,
		AmountType:         l.AmountType,
		Amount:             l.Amount,
		MinAmount:          l.MinAmount,
		MaxAmount:          l.MaxAmount,
		Currency:           l.Currency,
		ActiveCountryCodes: l.ActiveCountryCodes,
		ExpiresAt:          l.ExpiresAt,
	}
}

type submitResponse struct {
	PaymentID         uuid.UUID           `json:"payment_id"`
	Status            model.PaymentStatus `json:"status"`
	PossibleDuplicate bool                `json:"possible_duplicate"`
}

// validate handles GET /api/checkout/:slug/validate
func (h *checkoutHandler) validate(c *gin.Context) {
	link, err := h.service.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, newLinkView(link))
}

// methods handles GET /api/checkout/:slug/methods?country=CC
func (h *checkoutHandler) methods(c *gin.Context) {
	country := c.Query("country")
	if country == "" {
		badRequest(c, "country is required")
		return
	}

	link, err := h.service.Resolve(c.Request.Context(), c.Param("slug"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	methods, err := h.service.Methods(c.Request.Context(), link, country)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

// submit handles POST /api/checkout/:slug/submit
func (h *checkoutHandler) submit(c *gin.Context) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}

	if err := c.Request.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respondError(c, h.logger, model.Invalid(checkout.ErrProofTooLarge))
			return
		}
		badRequest(c, "expected a multipart form")
		return
	}

	amount, err := decimal.NewFromString(strings.TrimSpace(c.PostForm("amount")))
	if err != nil {
		badRequest(c, "amount must be a decimal number")
		return
	}

	methodID, err := uuid.Parse(strings.TrimSpace(c.PostForm("payment_method_id")))
	if err != nil {
		badRequest(c, "payment_method_id must be a uuid")
		return
	}

	sub := checkout.Submission{
		CustomerName:    c.PostForm("customer_name"),
		CustomerEmail:   c.PostForm("customer_email"),
		Amount:          amount,
		Country:         c.PostForm("country"),
		PaymentMethodID: methodID,
	}

	fileHeader, err := c.FormFile("proof")
	switch {
	case errors.Is(err, http.ErrMissingFile):
	case err != nil:
		badRequest(c, "proof could not be read")
		return
	default:
		file, err := fileHeader.Open()
		if err != nil {
			respondError(c, h.logger, err)
			return
		}
		defer file.Close()

		sub.Proof = &checkout.Proof{
			Filename:    fileHeader.Filename,
			ContentType: proofContentType(fileHeader.Header.Get("Content-Type"), fileHeader.Filename),
			Size:        fileHeader.Size,
			Body:        file,
		}
	}

	receipt, err := h.service.Submit(c.Request.Context(), c.Param("slug"), sub)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, submitResponse{
		PaymentID:         receipt.Payment.ID,
		Status:            receipt.Payment.Status,
		PossibleDuplicate: receipt.PossibleDuplicate,
	})
}

func proofContentType(header, filename string) string {
	if mediaType, _, err := mime.ParseMediaType(header); err == nil && mediaType != "application/octet-stream" {
		return mediaType
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		mediaType, _, _ := mime.ParseMediaType(byExt)
		return mediaType
	}
	return header
}
