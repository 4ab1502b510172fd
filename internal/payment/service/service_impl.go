package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/bwmarrin/snowflake"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/catalog"
	"github.com/vdmx/riskintel/internal/clock"
	"github.com/vdmx/riskintel/internal/observability/metrics"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type service struct {
	gateway paymentdomain.Gateway
	repo    paymentdomain.Repository
	cases   casedomain.Service
	catalog *catalog.Holder
	node    *snowflake.Node
	clk     clock.Clock
	metrics *metrics.Metrics
	log     *zap.Logger
}

type Params struct {
	fx.In

	Gateway paymentdomain.Gateway
	Repo    paymentdomain.Repository
	Cases   casedomain.Service
	Catalog *catalog.Holder
	Node    *snowflake.Node
	Clock   clock.Clock
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewService(p Params) paymentdomain.Service {
	return &service{
		gateway: p.Gateway,
		repo:    p.Repo,
		cases:   p.Cases,
		catalog: p.Catalog,
		node:    p.Node,
		clk:     p.Clock,
		metrics: p.Metrics,
		log:     p.Log.Named("payment.service"),
	}
}

func (s *service) CreateCheckout(ctx context.Context, packageID string) (*paymentdomain.CheckoutResult, error) {
	pkg, err := s.catalog.GetPackage(packageID)
	if err != nil {
		return nil, err
	}

	// The case exists before payment succeeds so every attempt is traceable
	// even when the customer abandons checkout.
	c, err := s.cases.Create(ctx, packageID)
	if err != nil {
		return nil, err
	}

	redirect, err := s.gateway.CreateCheckoutSession(ctx, paymentdomain.CheckoutRequest{
		CaseID:      c.ID,
		PackageID:   pkg.ID,
		PackageName: pkg.Name,
		Amount:      pkg.Price,
	})
	if err != nil {
		s.log.Error("checkout session creation failed",
			zap.String("case_id", c.ID),
			zap.String("package_id", packageID),
			zap.Error(err),
		)
		return nil, err
	}

	s.log.Info("checkout session created",
		zap.String("case_id", c.ID),
		zap.String("package_id", packageID),
		zap.Int64("amount", pkg.Price),
	)
	return &paymentdomain.CheckoutResult{CaseID: c.ID, URL: redirect}, nil
}

func (s *service) IngestWebhook(ctx context.Context, payload []byte, headers http.Header) error {
	if err := s.gateway.Verify(ctx, payload, headers); err != nil {
		s.log.Warn("webhook signature rejected", zap.Error(err))
		s.metrics.IncPaymentEvent("invalid_signature")
		return err
	}

	event, err := s.gateway.Parse(ctx, payload)
	if err != nil {
		if errors.Is(err, paymentdomain.ErrEventIgnored) {
			s.metrics.IncPaymentEvent("ignored")
			return err
		}
		s.metrics.IncPaymentEvent("invalid")
		return err
	}

	rec := &paymentdomain.EventRecord{
		ID:              s.node.Generate(),
		Provider:        event.Provider,
		ProviderEventID: event.ProviderEventID,
		CaseID:          event.CaseID,
		PackageID:       event.PackageID,
		Amount:          event.Amount,
		Currency:        event.Currency,
		Outcome:         paymentdomain.OutcomeReceived,
		Payload:         event.RawPayload,
		ReceivedAt:      s.clk.Now(),
	}
	if err := s.repo.Insert(ctx, rec); err != nil {
		if !errors.Is(err, paymentdomain.ErrEventAlreadyProcessed) {
			return err
		}
		prev, lookErr := s.repo.GetByProviderEventID(ctx, event.ProviderEventID)
		if lookErr != nil {
			return lookErr
		}
		if prev.Outcome != paymentdomain.OutcomeReceived {
			s.log.Debug("webhook event already processed",
				zap.String("provider_event_id", event.ProviderEventID),
				zap.String("outcome", prev.Outcome),
			)
			s.metrics.IncPaymentEvent("duplicate")
			return paymentdomain.ErrEventAlreadyProcessed
		}
		// A previous delivery was recorded but died before the case moved.
		// Delivery is at-least-once, so the retry finishes the job.
		s.log.Info("resuming interrupted webhook application",
			zap.String("provider_event_id", event.ProviderEventID),
			zap.String("case_id", prev.CaseID),
		)
		return s.apply(ctx, prev)
	}
	return s.apply(ctx, rec)
}

// apply settles one recorded event: price check, PAID transition, outcome
// flip. The ledger row stays in OutcomeReceived until the case has
// actually moved, so a crash between insert and transition leaves a row a
// later redelivery can pick up.
func (s *service) apply(ctx context.Context, rec *paymentdomain.EventRecord) error {
	expected, err := s.catalog.Price(rec.PackageID)
	if err != nil || rec.Amount != expected {
		s.log.Error("fraud alert: captured amount does not match catalog price",
			zap.String("case_id", rec.CaseID),
			zap.String("package_id", rec.PackageID),
			zap.Int64("expected", expected),
			zap.Int64("got", rec.Amount),
		)
		s.metrics.IncFraudAlert()
		if err := s.repo.SetOutcome(ctx, rec.ID, paymentdomain.OutcomeAmountMismatch); err != nil {
			s.log.Error("recording mismatch outcome failed", zap.Error(err))
		}
		return paymentdomain.ErrAmountMismatch
	}

	if _, err := s.cases.MarkPaid(ctx, rec.CaseID); err != nil {
		if errors.Is(err, casedomain.ErrCaseNotFound) {
			s.log.Warn("webhook for unknown case", zap.String("case_id", rec.CaseID))
			if err := s.repo.SetOutcome(ctx, rec.ID, paymentdomain.OutcomeCaseNotFound); err != nil {
				s.log.Error("recording outcome failed", zap.Error(err))
			}
		}
		return err
	}

	if err := s.repo.SetOutcome(ctx, rec.ID, paymentdomain.OutcomeApplied); err != nil {
		// The case is already PAID; surfacing the error makes the provider
		// redeliver, and MarkPaid tolerates that, so the ledger converges.
		s.log.Error("recording applied outcome failed", zap.Error(err))
		return err
	}

	s.log.Info("payment applied",
		zap.String("case_id", rec.CaseID),
		zap.String("package_id", rec.PackageID),
		zap.Int64("amount", rec.Amount),
	)
	s.metrics.IncPaymentEvent("applied")
	return nil
}
