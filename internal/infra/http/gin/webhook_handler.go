package ginserver

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	bookingapp "retreat/internal/app/services/booking"
	"retreat/internal/infra/payments"
)

// signatureHeader carries the gateway's HMAC over the raw request body.
const signatureHeader = "X-Payment-Signature"

type WebhookHandler struct {
	Verifier *payments.Verifier
	Service  *bookingapp.Service
	Logger   *slog.Logger
}

// Payment verifies the notification signature before any state is touched,
// then dispatches by event type. Handler failures return 500 so the gateway
// retries; everything else is acknowledged to stop redelivery.
func (h WebhookHandler) Payment(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read body"})
		return
	}
	if err := h.Verifier.Verify(body, c.GetHeader(signatureHeader)); err != nil {
		if h.Logger != nil {
			h.Logger.Warn("rejected payment notification", "error", err)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid signature"})
		return
	}

	notification, err := payments.ParseNotification(body)
	if err != nil {
		if errors.Is(err, payments.ErrMalformedPayload) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch notification.Type {
	case payments.EventSucceeded:
		err = h.Service.HandlePaymentSucceeded(c.Request.Context(), notification.Reference)
	case payments.EventFailed:
		err = h.Service.HandlePaymentFailed(c.Request.Context(), notification.Reference)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process notification"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

var _ WebhookHTTP = WebhookHandler{}
