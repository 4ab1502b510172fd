// Package machine holds the legal client-driven transitions of a case.
// Analyst overrides bypass it entirely; everything the client can trigger
// goes through Next.
package machine

import (
	"errors"
	"fmt"

	"github.com/vdmx/riskintel/internal/casework/domain"
)

// Trigger identifies a client-driven transition request.
type Trigger string

const (
	TriggerPaymentConfirmed   Trigger = "payment_confirmed"
	TriggerFormOpened         Trigger = "form_opened"
	TriggerFormSubmitted      Trigger = "form_submitted"
	TriggerDocumentsConfirmed Trigger = "documents_confirmed"
	TriggerAnalysisStarted    Trigger = "analysis_started"
)

// transitionMap lists the statuses each trigger may fire from. Submissions
// are also allowed from WAITING_INFO so a client can answer an analyst's
// request for more information.
var transitionMap = map[Trigger][]domain.Status{
	TriggerPaymentConfirmed:   {domain.StatusPaymentPending},
	TriggerFormOpened:         {domain.StatusPaid},
	TriggerFormSubmitted:      {domain.StatusFormPending, domain.StatusWaitingInfo},
	TriggerDocumentsConfirmed: {domain.StatusDocumentsPending, domain.StatusWaitingInfo},
	TriggerAnalysisStarted:    {domain.StatusReadyForAnalysis},
}

var ErrInvalidTransition = errors.New("invalid_transition")

// TransitionError reports a trigger fired from a status it is not legal in.
type TransitionError struct {
	From    domain.Status
	Trigger Trigger
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("transition %q not allowed from status %q", e.Trigger, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

// Next returns the status a trigger leads to from the given status.
// uploadRequired decides whether a submitted form goes through the document
// step or straight to analysis.
func Next(from domain.Status, trigger Trigger, uploadRequired bool) (domain.Status, error) {
	if !validFrom(trigger, from) {
		return "", &TransitionError{From: from, Trigger: trigger}
	}
	switch trigger {
	case TriggerPaymentConfirmed:
		return domain.StatusPaid, nil
	case TriggerFormOpened:
		return domain.StatusFormPending, nil
	case TriggerFormSubmitted:
		if uploadRequired {
			return domain.StatusDocumentsPending, nil
		}
		return domain.StatusReadyForAnalysis, nil
	case TriggerDocumentsConfirmed:
		return domain.StatusReadyForAnalysis, nil
	case TriggerAnalysisStarted:
		return domain.StatusInAnalysis, nil
	}
	return "", &TransitionError{From: from, Trigger: trigger}
}

func validFrom(trigger Trigger, from domain.Status) bool {
	allowed, ok := transitionMap[trigger]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == from {
			return true
		}
	}
	return false
}
