package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/gin-gonic/gin"
	casedomain "github.com/vdmx/riskintel/internal/casework/domain"
	"github.com/vdmx/riskintel/internal/upload"
	"go.uber.org/zap"
)

// GetCase is the folio-as-capability fetch: knowing the folio is what
// authorizes reading the case. The response is the server state merged
// with the stored draft, so a client picking up after a reload sees the
// step it had reached.
func (s *Server) GetCase(c *gin.Context) {
	found, err := s.caseSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	view, err := s.reconciler.Reconcile(found)
	if err != nil {
		s.log.Warn("draft reconcile failed", zap.String("case_id", found.ID), zap.Error(err))
		view = found
	}
	c.JSON(http.StatusOK, gin.H{"data": view})
}

type updateCaseRequest struct {
	Status   string         `json:"status"`
	FormData map[string]any `json:"formData"`
}

// UpdateCase drives the client-side lifecycle steps. A JSON body opens the
// form or submits it; a multipart body stores the uploads and confirms the
// document set. Every transition is re-validated server-side.
func (s *Server) UpdateCase(c *gin.Context) {
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		s.confirmDocuments(c)
		return
	}

	var req updateCaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	id := c.Param("id")
	var (
		updated *casedomain.Case
		err     error
	)
	switch {
	case len(req.FormData) > 0:
		updated, err = s.caseSvc.SubmitForm(c.Request.Context(), id, req.FormData)
	case req.Status == string(casedomain.StatusFormPending):
		updated, err = s.caseSvc.OpenForm(c.Request.Context(), id)
	default:
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.saveDraft(updated)
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

func (s *Server) confirmDocuments(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	fields := make([]string, 0, len(form.File))
	for field := range form.File {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	docs := make([]casedomain.Document, 0, len(fields))
	for _, field := range fields {
		headers := form.File[field]
		if len(headers) == 0 {
			continue
		}
		hdr := headers[0]

		f, err := hdr.Open()
		if err != nil {
			AbortWithError(c, ErrInvalidRequest)
			return
		}
		desc, err := s.uploads.Save(c.Request.Context(), upload.Upload{
			FieldName:   field,
			Filename:    hdr.Filename,
			ContentType: hdr.Header.Get("Content-Type"),
			Size:        hdr.Size,
			Content:     f,
		})
		f.Close()
		if err != nil {
			AbortWithError(c, err)
			return
		}

		docs = append(docs, casedomain.Document{
			ID:         field,
			Name:       desc.Name,
			URL:        desc.URL,
			Size:       desc.Size,
			UploadedAt: desc.UploadedAt,
		})
	}

	updated, err := s.caseSvc.ConfirmDocuments(c.Request.Context(), c.Param("id"), docs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.saveDraft(updated)
	c.JSON(http.StatusOK, gin.H{"data": updated})
}

// saveDraft refreshes the stored draft after a successful mutation; on
// terminal statuses it clears instead. Failures only cost the client its
// resume point, so they are logged and swallowed.
func (s *Server) saveDraft(updated *casedomain.Case) {
	if err := s.reconciler.Save(updated); err != nil {
		s.log.Warn("draft save failed", zap.String("case_id", updated.ID), zap.Error(err))
	}
}
