// Package domain defines the payment gateway contract and the webhook
// event ledger.
package domain

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

var (
	ErrInvalidSignature      = errors.New("invalid_signature")
	ErrInvalidPayload        = errors.New("invalid_payload")
	ErrInvalidEvent          = errors.New("invalid_event")
	ErrEventIgnored          = errors.New("event_ignored")
	ErrMissingMetadata       = errors.New("missing_metadata")
	ErrAmountMismatch        = errors.New("amount_mismatch")
	ErrEventAlreadyProcessed = errors.New("event_already_processed")
)

// Event is a canonical payment event parsed out of a provider webhook.
// Metadata ties it back to the case the checkout was opened for.
type Event struct {
	Provider        string
	ProviderEventID string
	PaymentID       string
	CaseID          string
	PackageID       string
	Amount          int64
	Currency        string
	OccurredAt      time.Time
	RawPayload      []byte
}

// Outcome of processing a webhook event, recorded in the ledger. An event
// is inserted as OutcomeReceived and only settles to one of the other
// outcomes once processing finished; a redelivery that finds a record
// still in OutcomeReceived resumes processing instead of being dropped.
const (
	OutcomeReceived       = "received"
	OutcomeApplied        = "applied"
	OutcomeAmountMismatch = "amount_mismatch"
	OutcomeCaseNotFound   = "case_not_found"
)

// EventRecord is the durable ledger row for one received webhook event.
// ProviderEventID is unique, which is what makes at-least-once delivery
// collapse to exactly-once processing.
type EventRecord struct {
	ID              snowflake.ID   `json:"id" gorm:"primaryKey"`
	Provider        string         `json:"provider" gorm:"type:text;not null"`
	ProviderEventID string         `json:"provider_event_id" gorm:"type:text;not null;uniqueIndex"`
	CaseID          string         `json:"case_id" gorm:"type:text;index"`
	PackageID       string         `json:"package_id" gorm:"type:text"`
	Amount          int64          `json:"amount" gorm:"not null"`
	Currency        string         `json:"currency" gorm:"type:text"`
	Outcome         string         `json:"outcome" gorm:"type:text;not null"`
	Payload         datatypes.JSON `json:"payload" gorm:"type:jsonb"`
	ReceivedAt      time.Time      `json:"received_at" gorm:"not null"`
}

func (EventRecord) TableName() string { return "payment_events" }

// CheckoutRequest carries everything the gateway needs to open a hosted
// checkout for a case.
type CheckoutRequest struct {
	CaseID      string
	PackageID   string
	PackageName string
	Amount      int64
}

// Gateway is the payment provider contract: open a hosted checkout and
// verify/parse its webhooks. Verification must happen before Parse is
// trusted.
type Gateway interface {
	CreateCheckoutSession(ctx context.Context, req CheckoutRequest) (string, error)
	Verify(ctx context.Context, payload []byte, headers http.Header) error
	Parse(ctx context.Context, payload []byte) (*Event, error)
}

// Repository is the webhook event ledger.
type Repository interface {
	// Insert stores a new event record; a duplicate ProviderEventID returns
	// ErrEventAlreadyProcessed.
	Insert(ctx context.Context, rec *EventRecord) error
	GetByProviderEventID(ctx context.Context, providerEventID string) (*EventRecord, error)
	SetOutcome(ctx context.Context, id snowflake.ID, outcome string) error
	List(ctx context.Context) ([]EventRecord, error)
}
