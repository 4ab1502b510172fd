package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bwmarrin/snowflake"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/casework/machine"
	"github.com/vdmx/riskintel/internal/catalog"
	"github.com/vdmx/riskintel/internal/observability/metrics"
	"github.com/vdmx/riskintel/internal/scoring"
	"github.com/vdmx/riskintel/internal/validate"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// folioAttempts bounds the retry loop when two checkouts draw the same
// random folio.
const folioAttempts = 5

const debugPackageID = "auto-3"

// keyedMutex serializes work per case id so a form submit and a webhook for
// the same case never interleave their read-modify-write. Entries are
// refcounted and dropped when the last holder releases, so the map only
// grows with concurrently touched cases, not with every case id seen.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*caseLock
}

type caseLock struct {
	mu   sync.Mutex
	refs int
}

func (k *keyedMutex) lock(id string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*caseLock)
	}
	l, ok := k.locks[id]
	if !ok {
		l = &caseLock{}
		k.locks[id] = l
	}
	l.refs++
	k.mu.Unlock()

	l.mu.Lock()
	return func() {
		l.mu.Unlock()
		k.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

type service struct {
	store   casedomain.Store
	catalog *catalog.Holder
	node    *snowflake.Node
	metrics *metrics.Metrics
	log     *zap.Logger
	locks   keyedMutex
}

type Params struct {
	fx.In

	Store   casedomain.Store
	Catalog *catalog.Holder
	Node    *snowflake.Node
	Metrics *metrics.Metrics
	Log     *zap.Logger
}

func NewService(p Params) casedomain.Service {
	return &service{
		store:   p.Store,
		catalog: p.Catalog,
		node:    p.Node,
		metrics: p.Metrics,
		log:     p.Log.Named("case.service"),
	}
}

func (s *service) Create(ctx context.Context, packageID string) (*casedomain.Case, error) {
	if _, err := s.catalog.GetPackage(packageID); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < folioAttempts; attempt++ {
		c := &casedomain.Case{
			ID:        s.newFolio("CASE-%04d"),
			PackageID: packageID,
			Status:    casedomain.StatusPaymentPending,
			FormData:  map[string]any{},
		}
		err := s.store.Create(ctx, c)
		if errors.Is(err, casedomain.ErrCaseExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info("case created",
			zap.String("case_id", c.ID),
			zap.String("package_id", packageID),
		)
		return c, nil
	}
	return nil, fmt.Errorf("could not assign a folio after %d attempts", folioAttempts)
}

// newFolio draws a folio in the human range 1000-9999. Collisions are rare
// and handled by the caller's retry on ErrCaseExists.
func (s *service) newFolio(format string) string {
	return fmt.Sprintf(format, 1000+s.node.Generate().Int64()%9000)
}

func (s *service) CreateDebugCase(ctx context.Context) (*casedomain.Case, error) {
	for attempt := 0; attempt < folioAttempts; attempt++ {
		c := &casedomain.Case{
			ID:        s.newFolio("CASE-TEST-%04d"),
			PackageID: debugPackageID,
			Status:    casedomain.StatusPaid,
			FormData:  map[string]any{},
		}
		err := s.store.Create(ctx, c)
		if errors.Is(err, casedomain.ErrCaseExists) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.log.Info("debug case created", zap.String("case_id", c.ID))
		return c, nil
	}
	return nil, fmt.Errorf("could not assign a debug folio after %d attempts", folioAttempts)
}

func (s *service) Get(ctx context.Context, id string) (*casedomain.Case, error) {
	return s.store.Get(ctx, id)
}

func (s *service) List(ctx context.Context) ([]casedomain.Case, error) {
	return s.store.List(ctx)
}

func (s *service) OpenForm(ctx context.Context, id string) (*casedomain.Case, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status != casedomain.StatusPaid {
		return c, nil
	}

	next, err := machine.Next(c.Status, machine.TriggerFormOpened, false)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, c, casedomain.Patch{Status: &next})
}

func (s *service) SubmitForm(ctx context.Context, id string, values map[string]any) (*casedomain.Case, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reqs, err := s.catalog.GetRequirements(c.PackageID)
	if err != nil {
		return nil, err
	}

	if res := validate.Form(reqs, values); !res.Valid {
		return nil, &casedomain.ValidationError{
			Code:          "missing_fields",
			Message:       res.Message(),
			MissingFields: res.MissingFields,
		}
	}

	uploadRequired, err := s.catalog.IsUploadRequired(c.PackageID)
	if err != nil {
		return nil, err
	}
	next, err := machine.Next(c.Status, machine.TriggerFormSubmitted, uploadRequired)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, c, casedomain.Patch{Status: &next, FormData: values})
}

func (s *service) ConfirmDocuments(ctx context.Context, id string, docs []casedomain.Document) (*casedomain.Case, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reqs, err := s.catalog.GetRequirements(c.PackageID)
	if err != nil {
		return nil, err
	}

	files := make(map[string]string, len(docs))
	for _, d := range docs {
		files[d.ID] = d.Name
	}
	if res := validate.Documents(reqs, s.catalog.ExtraRequiredDocuments(c.PackageID), files); !res.Valid {
		if res.Code != validate.CodeMissingDocuments {
			s.log.Warn("document integrity violation",
				zap.String("case_id", id),
				zap.String("package_id", c.PackageID),
				zap.String("code", res.Code),
			)
		}
		return nil, &casedomain.ValidationError{Code: res.Code, Message: res.Message}
	}

	next, err := machine.Next(c.Status, machine.TriggerDocumentsConfirmed, true)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, c, casedomain.Patch{Status: &next, Documents: docs})
}

func (s *service) MarkPaid(ctx context.Context, id string) (*casedomain.Case, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	// Webhook delivery is at-least-once; a case already past payment is a
	// no-op, not an error.
	if c.Status.Rank() >= casedomain.StatusPaid.Rank() && c.Status.Rank() != -1 {
		s.log.Debug("payment already applied", zap.String("case_id", id))
		return c, nil
	}

	next, err := machine.Next(c.Status, machine.TriggerPaymentConfirmed, false)
	if err != nil {
		return nil, err
	}
	return s.transition(ctx, c, casedomain.Patch{Status: &next})
}

func (s *service) SetStatus(ctx context.Context, id string, status casedomain.Status) (*casedomain.Case, error) {
	if _, err := casedomain.ParseStatus(string(status)); err != nil {
		return nil, err
	}

	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.log.Info("status override",
		zap.String("case_id", id),
		zap.String("from", string(c.Status)),
		zap.String("to", string(status)),
	)
	return s.transition(ctx, c, casedomain.Patch{Status: &status})
}

func (s *service) AssignScore(ctx context.Context, id string, ratings map[string]int) (*casedomain.Case, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	pkg, err := s.catalog.GetPackage(c.PackageID)
	if err != nil {
		return nil, err
	}
	score, err := scoring.Score(pkg.Category, ratings)
	if err != nil {
		return nil, &casedomain.ValidationError{Code: "invalid_ratings", Message: err.Error()}
	}
	s.log.Info("risk score assigned",
		zap.String("case_id", id),
		zap.Int("score", score),
		zap.String("band", scoring.Band(score)),
	)
	return s.transition(ctx, c, casedomain.Patch{RiskScore: &score})
}

func (s *service) Delete(ctx context.Context, id string) (bool, error) {
	unlock := s.locks.lock(id)
	defer unlock()

	deleted, err := s.store.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.log.Info("case deleted", zap.String("case_id", id))
	}
	return deleted, nil
}

func (s *service) transition(ctx context.Context, c *casedomain.Case, patch casedomain.Patch) (*casedomain.Case, error) {
	updated, err := s.store.Update(ctx, c.ID, patch)
	if err != nil {
		return nil, err
	}
	if patch.Status != nil && *patch.Status != c.Status {
		s.metrics.IncCaseTransition(string(c.Status), string(*patch.Status))
	}
	return updated, nil
}
