package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/vdmx/riskintel/internal/clock"
	ticketdomain "github.com/vdmx/riskintel/internal/ticket/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type service struct {
	repo ticketdomain.Repository
	node *snowflake.Node
	clk  clock.Clock
	log  *zap.Logger
}

type Params struct {
	fx.In

	Repo  ticketdomain.Repository
	Node  *snowflake.Node
	Clock clock.Clock
	Log   *zap.Logger
}

func NewService(p Params) ticketdomain.Service {
	return &service{
		repo: p.Repo,
		node: p.Node,
		clk:  p.Clock,
		log:  p.Log.Named("ticket.service"),
	}
}

func (s *service) Create(ctx context.Context, req ticketdomain.CreateTicketRequest) (*ticketdomain.Ticket, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	message := strings.TrimSpace(req.Message)
	if name == "" || email == "" || message == "" {
		return nil, ticketdomain.ErrInvalidRequest
	}

	t := &ticketdomain.Ticket{
		TicketID:  fmt.Sprintf("TCK-%d", s.node.Generate()),
		CaseID:    strings.TrimSpace(req.CaseID),
		Name:      name,
		Email:     email,
		Message:   message,
		Status:    ticketdomain.StatusOpen,
		CreatedAt: s.clk.Now(),
	}
	if err := s.repo.Insert(ctx, t); err != nil {
		return nil, err
	}
	s.log.Info("support ticket created",
		zap.String("ticket_id", t.TicketID),
		zap.String("case_id", t.CaseID),
	)
	return t, nil
}

func (s *service) List(ctx context.Context) ([]ticketdomain.Ticket, error) {
	return s.repo.List(ctx)
}

func (s *service) SetStatus(ctx context.Context, ticketID string, status ticketdomain.Status) (*ticketdomain.Ticket, error) {
	if _, err := ticketdomain.ParseStatus(string(status)); err != nil {
		return nil, err
	}
	t, err := s.repo.UpdateStatus(ctx, ticketID, status)
	if err != nil {
		return nil, err
	}
	s.log.Info("ticket status changed",
		zap.String("ticket_id", ticketID),
		zap.String("status", string(status)),
	)
	return t, nil
}
