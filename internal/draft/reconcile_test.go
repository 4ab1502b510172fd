package draft

import (
	"testing"
	"time"

	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/clock"
	"go.uber.org/zap"
)

func newTestReconciler(t *testing.T) (*Reconciler, Store) {
	t.Helper()
	store := NewMemoryStore()
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	return NewReconciler(store, clk, zap.NewNop()), store
}

func serverCase(id string, status casedomain.Status) *casedomain.Case {
	return &casedomain.Case{ID: id, PackageID: "auto-2", Status: status}
}

func TestReconcilePaymentPendingIgnoresDraft(t *testing.T) {
	r, store := newTestReconciler(t)

	// A stale draft claiming the case moved on must not be applied while
	// the server still says payment is unconfirmed.
	if err := store.Put("CASE-1001", Draft{Status: casedomain.StatusFormPending}); err != nil {
		t.Fatalf("put: %v", err)
	}

	view, err := r.Reconcile(serverCase("CASE-1001", casedomain.StatusPaymentPending))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if view.Status != casedomain.StatusPaymentPending {
		t.Fatalf("status = %s, want PAYMENT_PENDING", view.Status)
	}
}

func TestReconcileDraftAdvancesStatusAndFormData(t *testing.T) {
	r, store := newTestReconciler(t)

	form := map[string]any{"vin": "3T1K61AK5MU982101"}
	if err := store.Put("CASE-1002", Draft{Status: casedomain.StatusDocumentsPending, FormData: form}); err != nil {
		t.Fatalf("put: %v", err)
	}

	view, err := r.Reconcile(serverCase("CASE-1002", casedomain.StatusFormPending))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if view.Status != casedomain.StatusDocumentsPending {
		t.Fatalf("status = %s, want draft's DOCUMENTS_PENDING", view.Status)
	}
	if view.FormData["vin"] != "3T1K61AK5MU982101" {
		t.Fatalf("form data not restored: %v", view.FormData)
	}
}

func TestReconcileDraftNeverMovesBackwards(t *testing.T) {
	r, store := newTestReconciler(t)

	if err := store.Put("CASE-1003", Draft{Status: casedomain.StatusFormPending}); err != nil {
		t.Fatalf("put: %v", err)
	}

	view, err := r.Reconcile(serverCase("CASE-1003", casedomain.StatusInAnalysis))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if view.Status != casedomain.StatusInAnalysis {
		t.Fatalf("status = %s, draft must not regress the case", view.Status)
	}
}

func TestReconcileDraftNeverAppliesSideStates(t *testing.T) {
	r, store := newTestReconciler(t)

	if err := store.Put("CASE-1004", Draft{Status: casedomain.StatusArchived}); err != nil {
		t.Fatalf("put: %v", err)
	}

	view, err := r.Reconcile(serverCase("CASE-1004", casedomain.StatusFormPending))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if view.Status != casedomain.StatusFormPending {
		t.Fatalf("status = %s, side state came from a draft", view.Status)
	}
}

func TestReconcileWithoutDraft(t *testing.T) {
	r, _ := newTestReconciler(t)

	view, err := r.Reconcile(serverCase("CASE-1005", casedomain.StatusFormPending))
	if err != nil {
		t.Fatalf("reconcile: %v", err)
	}
	if view.Status != casedomain.StatusFormPending {
		t.Fatalf("status = %s", view.Status)
	}
}

func TestSaveClearsOnTerminalAndArchived(t *testing.T) {
	r, store := newTestReconciler(t)

	for _, status := range []casedomain.Status{
		casedomain.StatusReportReady,
		casedomain.StatusDelivered,
		casedomain.StatusClosed,
		casedomain.StatusArchived,
	} {
		if err := store.Put("CASE-1006", Draft{Status: casedomain.StatusFormPending}); err != nil {
			t.Fatalf("put: %v", err)
		}
		if err := r.Save(serverCase("CASE-1006", status)); err != nil {
			t.Fatalf("save %s: %v", status, err)
		}
		d, err := store.Get("CASE-1006")
		if err != nil {
			t.Fatalf("get: %v", err)
		}
		if d != nil {
			t.Fatalf("draft survived %s", status)
		}
	}
}

func TestSaveKeepsDraftOnWaitingInfo(t *testing.T) {
	r, store := newTestReconciler(t)

	c := serverCase("CASE-1007", casedomain.StatusWaitingInfo)
	c.FormData = map[string]any{"vin": "X"}
	if err := r.Save(c); err != nil {
		t.Fatalf("save: %v", err)
	}

	d, err := store.Get("CASE-1007")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if d == nil || d.Status != casedomain.StatusWaitingInfo {
		t.Fatalf("draft = %+v", d)
	}
	if d.LastUpdated == 0 {
		t.Fatalf("lastUpdated not stamped")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewFileStore(t.TempDir() + "/drafts.json")
	if err != nil {
		t.Fatalf("new file store: %v", err)
	}

	if d, err := store.Get("CASE-1"); err != nil || d != nil {
		t.Fatalf("empty get = (%+v, %v)", d, err)
	}
	if err := store.Put("CASE-1", Draft{Status: casedomain.StatusFormPending, LastUpdated: 42}); err != nil {
		t.Fatalf("put: %v", err)
	}
	d, err := store.Get("CASE-1")
	if err != nil || d == nil || d.Status != casedomain.StatusFormPending || d.LastUpdated != 42 {
		t.Fatalf("get = (%+v, %v)", d, err)
	}
	if err := store.Clear("CASE-1"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if d, err := store.Get("CASE-1"); err != nil || d != nil {
		t.Fatalf("get after clear = (%+v, %v)", d, err)
	}
}
