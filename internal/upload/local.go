package upload

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/vdmx/riskintel/internal/clock"
	"github.com/vdmx/riskintel/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var allowedTypes = map[string]struct{}{
	"image/jpeg":      {},
	"image/jpg":       {},
	"image/png":       {},
	"application/pdf": {},
}

// Generated names are a uuid plus a sanitized extension; this is also the
// shape Open accepts.
var storedNameRe = regexp.MustCompile(`^[a-zA-Z0-9-]+(\.[a-zA-Z0-9]+)?$`)

// LocalStore writes files to a directory on disk and serves them back under
// PublicBaseURL/uploads/.
type LocalStore struct {
	dir      string
	baseURL  string
	maxBytes int64
	clk      clock.Clock
	log      *zap.Logger
}

func NewLocalStore(cfg config.Config, clk clock.Clock, log *zap.Logger) (*LocalStore, error) {
	if err := os.MkdirAll(cfg.UploadDir, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{
		dir:      cfg.UploadDir,
		baseURL:  cfg.PublicBaseURL,
		maxBytes: cfg.MaxUploadBytes,
		clk:      clk,
		log:      log.Named("upload.store"),
	}, nil
}

func (s *LocalStore) Save(ctx context.Context, u Upload) (*Descriptor, error) {
	if _, ok := allowedTypes[strings.ToLower(strings.TrimSpace(u.ContentType))]; !ok {
		return nil, fmt.Errorf("%w: %s", ErrTypeNotAllowed, u.ContentType)
	}
	if u.Size > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	name := uuid.NewString() + safeExt(u.Filename)
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	// One byte over the cap means the reader lied about Size.
	written, err := io.Copy(dst, io.LimitReader(u.Content, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return nil, err
	}
	if written > s.maxBytes {
		_ = os.Remove(path)
		return nil, ErrFileTooLarge
	}

	s.log.Info("file stored",
		zap.String("field", u.FieldName),
		zap.String("name", name),
		zap.Int64("size", written),
	)
	return &Descriptor{
		ID:         u.FieldName,
		Name:       u.Filename,
		URL:        fmt.Sprintf("%s/uploads/%s", s.baseURL, name),
		Size:       written,
		UploadedAt: s.clk.Now(),
	}, nil
}

func (s *LocalStore) Open(name string) (io.ReadSeekCloser, error) {
	if name != filepath.Base(name) || strings.Contains(name, "..") || !storedNameRe.MatchString(name) {
		s.log.Warn("path traversal attempt blocked", zap.String("name", name))
		return nil, ErrInvalidFilename
	}
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrFileNotFound
		}
		return nil, err
	}
	return f, nil
}

// safeExt strips everything but alphanumerics from the extension so a
// crafted original filename cannot smuggle path characters.
func safeExt(filename string) string {
	ext := filepath.Ext(filename)
	var b strings.Builder
	for _, r := range ext {
		if r == '.' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() <= 1 {
		return ""
	}
	return b.String()
}

func provideStore(cfg config.Config, clk clock.Clock, log *zap.Logger) (Store, error) {
	return NewLocalStore(cfg, clk, log)
}

var Module = fx.Module("upload", fx.Provide(provideStore))
