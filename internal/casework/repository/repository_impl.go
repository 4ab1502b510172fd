package repository

import (
	"context"
	"errors"

	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/clock"
	"github.com/vdmx/riskintel/internal/config"
	"github.com/vdmx/riskintel/pkg/db"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type gormStore struct {
	db  *gorm.DB
	clk clock.Clock
}

// NewGormStore persists cases in the relational database.
func NewGormStore(gdb *gorm.DB, clk clock.Clock) casedomain.Store {
	return &gormStore{db: gdb, clk: clk}
}

func (s *gormStore) Create(ctx context.Context, c *casedomain.Case) error {
	now := s.clk.Now()
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	if c.LastUpdated == 0 {
		c.LastUpdated = now.UnixMilli()
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return casedomain.ErrCaseExists
		}
		return err
	}
	return nil
}

func (s *gormStore) Get(ctx context.Context, id string) (*casedomain.Case, error) {
	var c casedomain.Case
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, casedomain.ErrCaseNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (s *gormStore) List(ctx context.Context) ([]casedomain.Case, error) {
	var cases []casedomain.Case
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

func (s *gormStore) Update(ctx context.Context, id string, patch casedomain.Patch) (*casedomain.Case, error) {
	var updated *casedomain.Case
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var c casedomain.Case
		if err := tx.First(&c, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return casedomain.ErrCaseNotFound
			}
			return err
		}
		c.Apply(patch, s.clk.Now().UnixMilli())
		if err := tx.Save(&c).Error; err != nil {
			return err
		}
		updated = &c
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *gormStore) Delete(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&casedomain.Case{}, "id = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (s *gormStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.WithContext(ctx).Model(&casedomain.Case{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// Params selects the store backend at startup.
type Params struct {
	fx.In

	Cfg   config.Config
	DB    *gorm.DB
	Clock clock.Clock
	Log   *zap.Logger
}

func Provide(p Params) (casedomain.Store, error) {
	if p.Cfg.CaseStoreBackend == config.StoreBackendFile {
		p.Log.Info("using flat-file case store", zap.String("path", p.Cfg.CaseFilePath))
		return NewFileStore(p.Cfg.CaseFilePath, p.Clock)
	}
	return NewGormStore(p.DB, p.Clock), nil
}
