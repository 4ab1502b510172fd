package server

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

type createCheckoutRequest struct {
	PackageID string `json:"packageId"`
}

// ListPackages returns the public catalog (hidden tiers excluded).
func (s *Server) ListPackages(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": s.catalog.List()})
}

// CreateCheckoutSession opens a PAYMENT_PENDING case and the hosted
// checkout pointing back at it. A confirmation watch is started so payment
// application shows up in the logs even if the client never returns.
func (s *Server) CreateCheckoutSession(c *gin.Context) {
	var req createCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if strings.TrimSpace(req.PackageID) == "" {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	result, err := s.paymentSvc.CreateCheckout(c.Request.Context(), req.PackageID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.poller.Start(context.Background(), result.CaseID)

	c.JSON(http.StatusOK, result)
}
