package domain

import (
	"context"
	"errors"
)

// ErrValidationFailed is the sentinel every guard rejection matches through
// errors.Is; the concrete *ValidationError carries the user-facing detail.
var ErrValidationFailed = errors.New("validation_failed")

// ValidationError is a guard rejection: the requested transition did not
// happen, the case is unchanged, and Message tells the client exactly what
// is missing.
type ValidationError struct {
	Code          string   `json:"code"`
	Message       string   `json:"message"`
	MissingFields []string `json:"missingFields,omitempty"`
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Is(target error) bool { return target == ErrValidationFailed }

// Service drives a case through its lifecycle. All mutations are atomic per
// case id.
type Service interface {
	// Create opens a new case in PAYMENT_PENDING for the given package and
	// assigns it a folio.
	Create(ctx context.Context, packageID string) (*Case, error)
	// CreateDebugCase opens an already-paid top-tier case for end-to-end
	// testing of the intake flow without a real payment.
	CreateDebugCase(ctx context.Context) (*Case, error)
	Get(ctx context.Context, id string) (*Case, error)
	List(ctx context.Context) ([]Case, error)
	// OpenForm moves a freshly paid case into FORM_PENDING when the client
	// first opens its dashboard. A case already past that point is returned
	// unchanged.
	OpenForm(ctx context.Context, id string) (*Case, error)
	// SubmitForm re-validates the form server-side and, when complete,
	// advances to DOCUMENTS_PENDING or straight to READY_FOR_ANALYSIS for
	// packages without an upload step.
	SubmitForm(ctx context.Context, id string, values map[string]any) (*Case, error)
	// ConfirmDocuments re-validates the uploaded set server-side and
	// advances to READY_FOR_ANALYSIS.
	ConfirmDocuments(ctx context.Context, id string, docs []Document) (*Case, error)
	// MarkPaid applies a verified payment. Idempotent: an already-paid case
	// is returned as-is.
	MarkPaid(ctx context.Context, id string) (*Case, error)
	// SetStatus is the analyst override; any known status is accepted.
	SetStatus(ctx context.Context, id string, status Status) (*Case, error)
	// AssignScore folds the analyst's per-factor ratings into the final
	// risk score and records it on the case.
	AssignScore(ctx context.Context, id string, ratings map[string]int) (*Case, error)
	Delete(ctx context.Context, id string) (bool, error)
}
