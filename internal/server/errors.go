package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/casework/machine"
	"github.com/vdmx/riskintel/internal/catalog"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
	ticketdomain "github.com/vdmx/riskintel/internal/ticket/domain"
	"github.com/vdmx/riskintel/internal/upload"
	"gorm.io/gorm"
)

type errorPayload struct {
	Type          string   `json:"type"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missingFields,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

// ErrorHandlingMiddleware turns errors collected on the context into one
// JSON error response. Handlers that already wrote a body are left alone.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func mapError(err error) (int, errorPayload) {
	var vErr *casedomain.ValidationError
	if errors.As(err, &vErr) {
		return http.StatusBadRequest, errorPayload{
			Type:          "validation_error",
			Message:       vErr.Message,
			MissingFields: vErr.MissingFields,
		}
	}

	switch {
	case isBadRequestError(err):
		return http.StatusBadRequest, errorPayload{
			Type:    "invalid_request",
			Message: err.Error(),
		}
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func isBadRequestError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, ticketdomain.ErrInvalidRequest),
		errors.Is(err, ticketdomain.ErrInvalidStatus),
		errors.Is(err, casedomain.ErrInvalidStatus),
		errors.Is(err, machine.ErrInvalidTransition),
		errors.Is(err, upload.ErrFileTooLarge),
		errors.Is(err, upload.ErrTypeNotAllowed),
		errors.Is(err, upload.ErrInvalidFilename),
		errors.Is(err, paymentdomain.ErrInvalidSignature),
		errors.Is(err, paymentdomain.ErrInvalidPayload),
		errors.Is(err, paymentdomain.ErrInvalidEvent),
		errors.Is(err, paymentdomain.ErrMissingMetadata),
		errors.Is(err, paymentdomain.ErrAmountMismatch):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, casedomain.ErrCaseNotFound),
		errors.Is(err, catalog.ErrPackageNotFound),
		errors.Is(err, ticketdomain.ErrTicketNotFound),
		errors.Is(err, upload.ErrFileNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

// classifyErrorForLog feeds the request logger's error fields.
func classifyErrorForLog(err error) (string, string) {
	if err == nil {
		return "", ""
	}
	var vErr *casedomain.ValidationError
	if errors.As(err, &vErr) {
		return "validation_error", vErr.Code
	}
	_, payload := mapError(err)
	return payload.Type, err.Error()
}
