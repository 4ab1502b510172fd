// Package domain contains the support ticket model and contracts.
package domain

import (
	"context"
	"errors"
	"time"
)

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusClosed     Status = "CLOSED"
)

var (
	ErrTicketNotFound = errors.New("ticket_not_found")
	ErrInvalidStatus  = errors.New("invalid_ticket_status")
	ErrInvalidRequest = errors.New("invalid_ticket_request")
)

func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusOpen, StatusInProgress, StatusClosed:
		return Status(raw), nil
	}
	return "", ErrInvalidStatus
}

// Ticket is one support request from a client. CaseID is a weak reference:
// the ticket outlives the case it mentions.
type Ticket struct {
	TicketID  string    `json:"ticket_id" gorm:"primaryKey;column:ticket_id"`
	CaseID    string    `json:"case_id" gorm:"type:text;index"`
	Name      string    `json:"name" gorm:"type:text;not null"`
	Email     string    `json:"email" gorm:"type:text;not null"`
	Message   string    `json:"message" gorm:"type:text;not null"`
	Status    Status    `json:"status" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"not null"`
}

func (Ticket) TableName() string { return "support_tickets" }

type CreateTicketRequest struct {
	CaseID  string `json:"case_id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type Service interface {
	Create(ctx context.Context, req CreateTicketRequest) (*Ticket, error)
	List(ctx context.Context) ([]Ticket, error)
	SetStatus(ctx context.Context, ticketID string, status Status) (*Ticket, error)
}

type Repository interface {
	Insert(ctx context.Context, t *Ticket) error
	List(ctx context.Context) ([]Ticket, error)
	UpdateStatus(ctx context.Context, ticketID string, status Status) (*Ticket, error)
}
