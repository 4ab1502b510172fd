package domain

import (
	"context"
	"errors"
)

var (
	ErrCaseNotFound  = errors.New("case_not_found")
	ErrCaseExists    = errors.New("case_exists")
	ErrInvalidStatus = errors.New("invalid_status")
)

// Patch is a partial update applied to a case. FormData is shallow-merged
// key by key; Status and Documents replace the current value when set.
type Patch struct {
	Status    *Status
	FormData  map[string]any
	Documents []Document
	RiskScore *int
}

// Apply mutates the case with a patch and bumps LastUpdated. nowMillis is
// the wall clock; when it does not beat the stored timestamp the bump still
// moves forward by one.
func (c *Case) Apply(p Patch, nowMillis int64) {
	if p.Status != nil {
		c.Status = *p.Status
	}
	if len(p.FormData) > 0 {
		if c.FormData == nil {
			c.FormData = map[string]any{}
		}
		for k, v := range p.FormData {
			c.FormData[k] = v
		}
	}
	if p.Documents != nil {
		c.Documents = p.Documents
	}
	if p.RiskScore != nil {
		c.RiskScore = p.RiskScore
	}
	if nowMillis <= c.LastUpdated {
		nowMillis = c.LastUpdated + 1
	}
	c.LastUpdated = nowMillis
}

// Store persists cases. Every mutation bumps LastUpdated to a value strictly
// greater than the previous one, even when two writes land in the same
// millisecond, so clients comparing timestamps always see progress.
type Store interface {
	Create(ctx context.Context, c *Case) error
	Get(ctx context.Context, id string) (*Case, error)
	List(ctx context.Context) ([]Case, error)
	Update(ctx context.Context, id string, patch Patch) (*Case, error)
	Delete(ctx context.Context, id string) (bool, error)
	Count(ctx context.Context) (int64, error)
}
