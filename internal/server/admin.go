package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"go.uber.org/zap"
)

func (s *Server) ListCases(c *gin.Context) {
	cases, err := s.caseSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": cases, "total": len(cases)})
}

type setCaseStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) SetCaseStatus(c *gin.Context) {
	var req setCaseStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	status, err := casedomain.ParseStatus(req.Status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	updated, err := s.caseSvc.SetStatus(c.Request.Context(), c.Param("id"), status)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.saveDraft(updated)
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

type scoreCaseRequest struct {
	Ratings map[string]int `json:"ratings"`
}

func (s *Server) ScoreCase(c *gin.Context) {
	var req scoreCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	updated, err := s.caseSvc.AssignScore(c.Request.Context(), c.Param("id"), req.Ratings)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) DeleteCase(c *gin.Context) {
	deleted, err := s.caseSvc.Delete(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if !deleted {
		AbortWithError(c, casedomain.ErrCaseNotFound)
		return
	}

	if err := s.reconciler.Reset(c.Param("id")); err != nil {
		s.log.Warn("draft reset failed", zap.String("case_id", c.Param("id")), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"deleted": true})
}

func (s *Server) CreateDebugCase(c *gin.Context) {
	created, err := s.caseSvc.CreateDebugCase(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"data": created})
}
