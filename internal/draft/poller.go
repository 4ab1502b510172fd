package draft

import (
	"context"
	"sync"
	"time"

	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/clock"
	"go.uber.org/zap"
)

const (
	defaultPollAttempts = 8
	defaultPollInterval = 2 * time.Second
)

// FetchFunc retrieves the authoritative case.
type FetchFunc func(ctx context.Context, caseID string) (*casedomain.Case, error)

// PaymentPoller re-fetches a case on a fixed interval until payment is
// confirmed or the attempt budget runs out. Giving up is silent; the user
// can always trigger a manual re-check.
type PaymentPoller struct {
	fetch    FetchFunc
	clk      clock.Clock
	interval time.Duration
	attempts int
	log      *zap.Logger
}

func NewPaymentPoller(fetch FetchFunc, clk clock.Clock, log *zap.Logger) *PaymentPoller {
	return &PaymentPoller{
		fetch:    fetch,
		clk:      clk,
		interval: defaultPollInterval,
		attempts: defaultPollAttempts,
		log:      log.Named("payment.poller"),
	}
}

// Poll is one running confirmation watch.
type Poll struct {
	done   chan struct{}
	cancel context.CancelFunc

	mu        sync.Mutex
	confirmed *casedomain.Case
}

// Done closes when the poll finishes, by confirmation, exhaustion or
// cancellation.
func (p *Poll) Done() <-chan struct{} { return p.done }

// Confirmed returns the paid case, or nil when the poll gave up.
func (p *Poll) Confirmed() *casedomain.Case {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.confirmed
}

func (p *Poll) Cancel() { p.cancel() }

// Start begins polling the case. The returned Poll is cancellable and
// reports its outcome through Done/Confirmed.
func (pp *PaymentPoller) Start(ctx context.Context, caseID string) *Poll {
	ctx, cancel := context.WithCancel(ctx)
	poll := &Poll{done: make(chan struct{}), cancel: cancel}

	go func() {
		defer close(poll.done)
		defer cancel()

		for attempt := 1; attempt <= pp.attempts; attempt++ {
			select {
			case <-ctx.Done():
				return
			case <-pp.clk.After(pp.interval):
			}

			c, err := pp.fetch(ctx, caseID)
			if err != nil {
				// Transient failures do not consume the case; try again on
				// the next tick.
				pp.log.Debug("poll fetch failed",
					zap.String("case_id", caseID),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				continue
			}
			if c.Status != casedomain.StatusPaymentPending {
				pp.log.Info("payment confirmed",
					zap.String("case_id", caseID),
					zap.String("status", string(c.Status)),
				)
				poll.mu.Lock()
				poll.confirmed = c
				poll.mu.Unlock()
				return
			}
		}
		pp.log.Info("payment poll exhausted", zap.String("case_id", caseID))
	}()

	return poll
}
