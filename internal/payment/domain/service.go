package domain

import (
	"context"
	"net/http"
)

// CheckoutResult is returned to the client so it can redirect into the
// hosted checkout and later poll the new case.
type CheckoutResult struct {
	CaseID string `json:"caseId"`
	URL    string `json:"url"`
}

// Service owns the payment flow: opening checkouts and applying verified
// webhook events to cases.
type Service interface {
	// CreateCheckout opens a PAYMENT_PENDING case for the package and a
	// hosted checkout session pointing back at it.
	CreateCheckout(ctx context.Context, packageID string) (*CheckoutResult, error)
	// IngestWebhook verifies, records and applies one raw webhook delivery.
	// Redeliveries of settled events and ignorable event types return
	// ErrEventAlreadyProcessed and ErrEventIgnored respectively; both are
	// acknowledged upstream. A redelivery whose first attempt was recorded
	// but not settled resumes processing.
	IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error
}
