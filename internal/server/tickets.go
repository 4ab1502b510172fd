package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ticketdomain "github.com/vdmx/riskintel/internal/ticket/domain"
)

type createTicketRequest struct {
	CaseID  string `json:"caseId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

func (s *Server) CreateTicket(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	ticket, err := s.ticketSvc.Create(c.Request.Context(), ticketdomain.CreateTicketRequest{
		CaseID:  strings.TrimSpace(req.CaseID),
		Name:    strings.TrimSpace(req.Name),
		Email:   strings.TrimSpace(req.Email),
		Message: strings.TrimSpace(req.Message),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"data": ticket})
}

func (s *Server) ListTickets(c *gin.Context) {
	tickets, err := s.ticketSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tickets, "total": len(tickets)})
}

type setTicketStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetTicketStatus(c *gin.Context) {
	var req setTicketStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	status, err := ticketdomain.ParseStatus(req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	ticket, err := s.ticketSvc.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": ticket})
}
