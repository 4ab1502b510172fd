package repository

import (
	"context"
	"errors"

	ticketdomain "github.com/vdmx/riskintel/internal/ticket/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func Provide(gdb *gorm.DB) ticketdomain.Repository {
	return &repo{db: gdb}
}

func (r *repo) Insert(ctx context.Context, t *ticketdomain.Ticket) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *repo) List(ctx context.Context) ([]ticketdomain.Ticket, error) {
	var tickets []ticketdomain.Ticket
	if err := r.db.WithContext(ctx).Order("created_at DESC").Find(&tickets).Error; err != nil {
		return nil, err
	}
	return tickets, nil
}

func (r *repo) UpdateStatus(ctx context.Context, ticketID string, status ticketdomain.Status) (*ticketdomain.Ticket, error) {
	var t ticketdomain.Ticket
	if err := r.db.WithContext(ctx).First(&t, "ticket_id = ?", ticketID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ticketdomain.ErrTicketNotFound
		}
		return nil, err
	}
	t.Status = status
	if err := r.db.WithContext(ctx).Save(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}
