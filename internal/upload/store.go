// Package upload stores client document files. The case service never
// reads file bytes; it only records the descriptor returned from Save.
package upload

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrFileTooLarge    = errors.New("file_too_large")
	ErrTypeNotAllowed  = errors.New("file_type_not_allowed")
	ErrInvalidFilename = errors.New("invalid_filename")
	ErrFileNotFound    = errors.New("file_not_found")
)

// Upload is one incoming file. FieldName ties it to a DocumentSpec id.
type Upload struct {
	FieldName   string
	Filename    string
	ContentType string
	Size        int64
	Content     io.Reader
}

// Descriptor is what gets recorded against the case.
type Descriptor struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

type Store interface {
	Save(ctx context.Context, u Upload) (*Descriptor, error)
	// Open returns the stored file for serving. The name must be exactly a
	// generated filename; anything path-like is rejected.
	Open(name string) (io.ReadSeekCloser, error)
}
