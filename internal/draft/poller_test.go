package draft

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/clock"
	"go.uber.org/zap"
)

// scriptedFetch returns one canned result per call, cycling on the last.
type scriptedFetch struct {
	mu      sync.Mutex
	calls   int
	results []fetchResult
}

type fetchResult struct {
	status casedomain.Status
	err    error
}

func (f *scriptedFetch) fetch(_ context.Context, caseID string) (*casedomain.Case, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.results[min(f.calls, len(f.results)-1)]
	f.calls++
	if r.err != nil {
		return nil, r.err
	}
	return &casedomain.Case{ID: caseID, Status: r.status}, nil
}

func (f *scriptedFetch) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func awaitDone(t *testing.T, p *Poll) {
	t.Helper()
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		t.Fatalf("poll never finished")
	}
}

func tick(clk *clock.FakeClock) {
	clk.BlockUntil(1)
	clk.Advance(defaultPollInterval)
}

func TestPollerConfirmsOnLaterAttempt(t *testing.T) {
	clk := clock.NewFakeClock(time.Unix(1700000000, 0))
	fetch := &scriptedFetch{results: []fetchResult{
		{status: casedomain.StatusPaymentPending},
		{status: casedomain.StatusPaymentPending},
		{status: casedomain.StatusPaid},
	}}
	poll := NewPaymentPoller(fetch.fetch, clk, zap.NewNop()).Start(context.Background(), "CASE-2001")

	for i := 0; i < 3; i++ {
		tick(clk)
	}
	awaitDone(t, poll)

	c := poll.Confirmed()
	if c == nil || c.Status != casedomain.StatusPaid {
		t.Fatalf("confirmed = %+v, want PAID", c)
	}
	if got := fetch.callCount(); got != 3 {
		t.Fatalf("fetch calls = %d, want 3", got)
	}
}

func TestPollerKeepsGoingAfterFetchError(t *testing.T) {
	clk := clock.NewFakeClock(time.Unix(1700000000, 0))
	fetch := &scriptedFetch{results: []fetchResult{
		{err: errors.New("network down")},
		{status: casedomain.StatusPaid},
	}}
	poll := NewPaymentPoller(fetch.fetch, clk, zap.NewNop()).Start(context.Background(), "CASE-2002")

	tick(clk)
	tick(clk)
	awaitDone(t, poll)

	if poll.Confirmed() == nil {
		t.Fatalf("transient error ended the poll")
	}
}

func TestPollerGivesUpSilently(t *testing.T) {
	clk := clock.NewFakeClock(time.Unix(1700000000, 0))
	fetch := &scriptedFetch{results: []fetchResult{
		{status: casedomain.StatusPaymentPending},
	}}
	poll := NewPaymentPoller(fetch.fetch, clk, zap.NewNop()).Start(context.Background(), "CASE-2003")

	for i := 0; i < defaultPollAttempts; i++ {
		tick(clk)
	}
	awaitDone(t, poll)

	if c := poll.Confirmed(); c != nil {
		t.Fatalf("confirmed = %+v after exhaustion", c)
	}
	if got := fetch.callCount(); got != defaultPollAttempts {
		t.Fatalf("fetch calls = %d, want %d", got, defaultPollAttempts)
	}
}

func TestPollerCancelStopsBeforeNextTick(t *testing.T) {
	clk := clock.NewFakeClock(time.Unix(1700000000, 0))
	fetch := &scriptedFetch{results: []fetchResult{
		{status: casedomain.StatusPaymentPending},
	}}
	poll := NewPaymentPoller(fetch.fetch, clk, zap.NewNop()).Start(context.Background(), "CASE-2004")

	clk.BlockUntil(1)
	poll.Cancel()
	awaitDone(t, poll)

	if poll.Confirmed() != nil {
		t.Fatalf("cancelled poll reported a confirmation")
	}
	if got := fetch.callCount(); got != 0 {
		t.Fatalf("fetch calls = %d, want 0", got)
	}
}
