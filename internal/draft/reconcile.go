package draft

import (
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/clock"
	"go.uber.org/zap"
)

// Reconciler merges a fetched case with the local draft. The result is a
// view for the client only; nothing here writes server state.
type Reconciler struct {
	store Store
	clk   clock.Clock
	log   *zap.Logger
}

func NewReconciler(store Store, clk clock.Clock, log *zap.Logger) *Reconciler {
	return &Reconciler{store: store, clk: clk, log: log.Named("draft")}
}

// Reconcile returns the effective case view. Rules:
//
//   - a server-side PAYMENT_PENDING is final: the draft is not consulted,
//     so a stale "paid" draft can never skip payment confirmation;
//   - otherwise a draft may supply a more advanced main-path status and its
//     form data, on the assumption the client progressed through
//     client-only steps since the last fetch;
//   - a draft never moves a case into a side state or backwards.
func (r *Reconciler) Reconcile(c *casedomain.Case) (*casedomain.Case, error) {
	view := *c
	if c.Status == casedomain.StatusPaymentPending {
		return &view, nil
	}

	d, err := r.store.Get(c.ID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return &view, nil
	}

	if rank := d.Status.Rank(); rank > c.Status.Rank() && rank != -1 {
		r.log.Debug("draft advances status",
			zap.String("case_id", c.ID),
			zap.String("server", string(c.Status)),
			zap.String("draft", string(d.Status)),
		)
		view.Status = d.Status
	}
	if len(d.FormData) > 0 {
		view.FormData = d.FormData
	}
	return &view, nil
}

// Save persists the current client view. On terminal statuses, and on
// ARCHIVED, the draft is deleted instead: nothing left to survive a
// reload, and a stale draft must not resurrect a finished case.
// WAITING_INFO keeps its draft since the client is still expected to act.
func (r *Reconciler) Save(c *casedomain.Case) error {
	if c.Status.Terminal() || c.Status == casedomain.StatusArchived {
		return r.store.Clear(c.ID)
	}
	return r.store.Put(c.ID, Draft{
		Status:      c.Status,
		FormData:    c.FormData,
		LastUpdated: r.clk.Now().UnixMilli(),
	})
}

// Reset drops the draft on explicit user request.
func (r *Reconciler) Reset(caseID string) error {
	return r.store.Clear(caseID)
}
