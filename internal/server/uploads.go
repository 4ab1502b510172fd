package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ServeUpload streams a stored file back. The store only accepts exactly a
// generated filename, so path-style names never reach the filesystem.
func (s *Server) ServeUpload(c *gin.Context) {
	name := c.Param("filename")

	f, err := s.uploads.Open(name)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	defer f.Close()

	http.ServeContent(c.Writer, c.Request, name, time.Time{}, f)
}
