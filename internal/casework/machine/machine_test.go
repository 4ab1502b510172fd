package machine

import (
	"errors"
	"testing"

	"github.com/vdmx/riskintel/internal/casework/domain"
)

func TestNext(t *testing.T) {
	cases := []struct {
		from           domain.Status
		trigger        Trigger
		uploadRequired bool
		want           domain.Status
		valid          bool
	}{
		{domain.StatusPaymentPending, TriggerPaymentConfirmed, true, domain.StatusPaid, true},
		{domain.StatusPaid, TriggerPaymentConfirmed, true, "", false},
		{domain.StatusPaid, TriggerFormOpened, true, domain.StatusFormPending, true},
		{domain.StatusPaymentPending, TriggerFormOpened, true, "", false},
		{domain.StatusFormPending, TriggerFormSubmitted, true, domain.StatusDocumentsPending, true},
		{domain.StatusFormPending, TriggerFormSubmitted, false, domain.StatusReadyForAnalysis, true},
		{domain.StatusWaitingInfo, TriggerFormSubmitted, true, domain.StatusDocumentsPending, true},
		{domain.StatusPaymentPending, TriggerFormSubmitted, true, "", false},
		{domain.StatusDocumentsPending, TriggerDocumentsConfirmed, true, domain.StatusReadyForAnalysis, true},
		{domain.StatusWaitingInfo, TriggerDocumentsConfirmed, true, domain.StatusReadyForAnalysis, true},
		{domain.StatusFormPending, TriggerDocumentsConfirmed, true, "", false},
		{domain.StatusReadyForAnalysis, TriggerAnalysisStarted, true, domain.StatusInAnalysis, true},
		{domain.StatusInAnalysis, TriggerAnalysisStarted, true, "", false},
		{domain.StatusClosed, TriggerFormSubmitted, true, "", false},
		{domain.StatusArchived, TriggerDocumentsConfirmed, true, "", false},
		{domain.StatusFormPending, Trigger("unknown"), true, "", false},
	}

	for _, tt := range cases {
		got, err := Next(tt.from, tt.trigger, tt.uploadRequired)
		if tt.valid {
			if err != nil {
				t.Fatalf("Next(%q, %q)=%v, want %q", tt.from, tt.trigger, err, tt.want)
			}
			if got != tt.want {
				t.Fatalf("Next(%q, %q)=%q, want %q", tt.from, tt.trigger, got, tt.want)
			}
			continue
		}
		if err == nil {
			t.Fatalf("Next(%q, %q)=%q, want error", tt.from, tt.trigger, got)
		}
		if !errors.Is(err, ErrInvalidTransition) {
			t.Fatalf("Next(%q, %q) error %v does not match ErrInvalidTransition", tt.from, tt.trigger, err)
		}
	}
}

func TestTransitionErrorMessage(t *testing.T) {
	_, err := Next(domain.StatusClosed, TriggerFormSubmitted, false)
	var te *TransitionError
	if !errors.As(err, &te) {
		t.Fatalf("error %v is not a *TransitionError", err)
	}
	if te.From != domain.StatusClosed || te.Trigger != TriggerFormSubmitted {
		t.Fatalf("unexpected transition error: %+v", te)
	}
}
