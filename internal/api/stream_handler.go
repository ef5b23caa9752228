package api

import (
	"context"
	"errors"

	"pxv-pay/internal/auth"
	"pxv-pay/internal/message"

	"github.com/gin-gonic/gin"
)

// stream handles GET /api/payments/stream. Each connection gets its own
// reader at the tail of the topic and stops when the client goes away.
// Delivery is at most once.
func (h *merchantHandler) stream(c *gin.Context) {
	caller := callerFrom(c)
	ctx := c.Request.Context()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.Flush()

	visible := func(e message.PaymentEvent) bool {
		return auth.CanAccess(caller, e.MerchantID)
	}
	deliver := func(e message.PaymentEvent) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		c.SSEvent(string(e.Type), e)
		c.Writer.Flush()
		return nil
	}

	err := h.events.Subscribe(ctx, visible, deliver)
	if err != nil && !errors.Is(err, context.Canceled) {
		h.logger.ErrorContext(ctx, "Payment stream ended", "error", err)
	}
}
