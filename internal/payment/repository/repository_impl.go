package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	paymentdomain "github.com/vdmx/riskintel/internal/payment/domain"
	"github.com/vdmx/riskintel/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(gdb *gorm.DB) paymentdomain.Repository {
	return &repo{db: gdb}
}

func (r *repo) Insert(ctx context.Context, rec *paymentdomain.EventRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		if db.IsDuplicateKeyErr(err) {
			return paymentdomain.ErrEventAlreadyProcessed
		}
		return err
	}
	return nil
}

func (r *repo) GetByProviderEventID(ctx context.Context, providerEventID string) (*paymentdomain.EventRecord, error) {
	var rec paymentdomain.EventRecord
	if err := r.db.WithContext(ctx).
		Where("provider_event_id = ?", providerEventID).
		First(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repo) SetOutcome(ctx context.Context, id snowflake.ID, outcome string) error {
	return r.db.WithContext(ctx).
		Model(&paymentdomain.EventRecord{}).
		Where("id = ?", id).
		Update("outcome", outcome).Error
}

func (r *repo) List(ctx context.Context) ([]paymentdomain.EventRecord, error) {
	var records []paymentdomain.EventRecord
	if err := r.db.WithContext(ctx).Order("received_at DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
