package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
)

// maxWebhookBytes bounds the raw payload read before verification.
const maxWebhookBytes = 1 << 20

// HandleWebhook ingests one raw provider delivery. Ignorable event types
// and redeliveries are acknowledged with 200 so the provider stops
// retrying; signature and payload problems are the caller's fault.
func (s *Server) HandleWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	err = s.paymentSvc.IngestWebhook(c.Request.Context(), payload, c.Request.Header)
	switch {
	case err == nil,
		errors.Is(err, paymentdomain.ErrEventIgnored),
		errors.Is(err, paymentdomain.ErrEventAlreadyProcessed),
		// Recorded with its outcome; retrying will not make the case appear.
		errors.Is(err, casedomain.ErrCaseNotFound):
		c.JSON(http.StatusOK, gin.H{"received": true})
	case errors.Is(err, paymentdomain.ErrAmountMismatch):
		// Recorded and alerted inside the service; the provider gets a hard
		// failure so the delivery stays visible on its side too.
		AbortWithError(c, err)
	default:
		AbortWithError(c, err)
	}
}
