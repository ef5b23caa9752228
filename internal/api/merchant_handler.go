package api

import (
	"log/slog"
	"net/http"
	"strconv"

	"pxv-pay/internal/model"
	"pxv-pay/internal/verification"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type merchantHandler struct {
	service  MerchantService
	verifier Verifier
	events   EventSubscriber
	logger   *slog.Logger
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

type verifyRequest struct {
	Status model.PaymentStatus `json:"status" binding:"required"`
	Note   string              `json:"note"`
	Notify bool                `json:"notify"`
}

type verifyResponse struct {
	Payment    *model.Payment `json:"payment"`
	Reverified bool           `json:"reverified"`
	Notified   bool           `json:"notified"`
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		badRequest(c, "id must be a uuid")
		return uuid.Nil, false
	}
	return id, true
}

func (h *merchantHandler) createLink(c *gin.Context) {
	var link model.CheckoutLink
	if err := c.ShouldBindJSON(&link); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.service.CreateLink(c.Request.Context(), callerFrom(c), &link)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *merchantHandler) listLinks(c *gin.Context) {
	links, err := h.service.ListLinks(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, links)
}

func (h *merchantHandler) setLinkStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	link, err := h.service.SetLinkStatus(c.Request.Context(), callerFrom(c), id, model.LinkStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

func (h *merchantHandler) createMethod(c *gin.Context) {
	var method model.PaymentMethod
	if err := c.ShouldBindJSON(&method); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.service.CreateMethod(c.Request.Context(), callerFrom(c), &method)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *merchantHandler) listMethods(c *gin.Context) {
	methods, err := h.service.ListMethods(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, methods)
}

func (h *merchantHandler) setMethodStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	method, err := h.service.SetMethodStatus(c.Request.Context(), callerFrom(c), id, model.MethodStatus(req.Status))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, method)
}

func (h *merchantHandler) createCountry(c *gin.Context) {
	var country model.Country
	if err := c.ShouldBindJSON(&country); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.service.CreateCountry(c.Request.Context(), callerFrom(c), &country)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *merchantHandler) listCountries(c *gin.Context) {
	countries, err := h.service.ListCountries(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (h *merchantHandler) deleteCountry(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCountry(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *merchantHandler) createCurrency(c *gin.Context) {
	var currency model.Currency
	if err := c.ShouldBindJSON(&currency); err != nil {
		badRequest(c, "invalid request body")
		return
	}

	created, err := h.service.CreateCurrency(c.Request.Context(), callerFrom(c), &currency)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *merchantHandler) listCurrencies(c *gin.Context) {
	currencies, err := h.service.ListCurrencies(c.Request.Context(), callerFrom(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, currencies)
}

func (h *merchantHandler) deleteCurrency(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.service.DeleteCurrency(c.Request.Context(), callerFrom(c), id); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// listPayments handles GET /api/payments?status=&limit=&offset=
func (h *merchantHandler) listPayments(c *gin.Context) {
	filter := model.PaymentFilter{Status: model.PaymentStatus(c.Query("status"))}

	var err error
	if v := c.Query("limit"); v != "" {
		if filter.Limit, err = strconv.Atoi(v); err != nil {
			badRequest(c, "limit must be an integer")
			return
		}
	}
	if v := c.Query("offset"); v != "" {
		if filter.Offset, err = strconv.Atoi(v); err != nil {
			badRequest(c, "offset must be an integer")
			return
		}
	}

	payments, err := h.service.ListPayments(c.Request.Context(), callerFrom(c), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}

func (h *merchantHandler) getPayment(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	payment, err := h.service.GetPayment(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func (h *merchantHandler) proof(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	link, err := h.service.ProofURL(c.Request.Context(), callerFrom(c), id)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, link)
}

// verify handles POST /api/payments/:id/verify
func (h *merchantHandler) verify(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	result, err := h.verifier.Verify(c.Request.Context(), callerFrom(c), id, verification.Decision{
		Status: req.Status,
		Note:   req.Note,
		Notify: req.Notify,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, verifyResponse{
		Payment:    result.Payment,
		Reverified: result.Reverified,
		Notified:   result.Notified,
	})
}
