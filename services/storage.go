package services

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// StoredFile is the metadata recorded for an accepted upload.
type StoredFile struct {
	FileName string
	FilePath string
	FileSize int64
	MimeType string
}

// FileStorage persists uploaded documents before their metadata is
// written inside the intake transaction.
type FileStorage interface {
	Save(fh *multipart.FileHeader, category string) (StoredFile, error)
	Remove(path string) error
}

var allowedMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
}

// DiskStorage writes uploads under a base directory with random file
// names, keeping the client-supplied name only as metadata.
type DiskStorage struct {
	BaseDir string
	MaxSize int64
}

func NewDiskStorage(baseDir string, maxSize int64) (*DiskStorage, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("error creating upload directory: %w", err)
	}
	return &DiskStorage{BaseDir: baseDir, MaxSize: maxSize}, nil
}

func (s *DiskStorage) Save(fh *multipart.FileHeader, category string) (StoredFile, error) {
	if fh.Size > s.MaxSize {
		return StoredFile{}, ValidationError(fmt.Sprintf("file %s exceeds the %d byte limit", fh.Filename, s.MaxSize))
	}

	src, err := fh.Open()
	if err != nil {
		return StoredFile{}, InternalError("failed to open uploaded file", err)
	}
	defer src.Close()

	mtype, err := mimetype.DetectReader(src)
	if err != nil {
		return StoredFile{}, InternalError("failed to inspect uploaded file", err)
	}
	detected := mtype.String()
	if !allowedMimeTypes[detected] {
		return StoredFile{}, ValidationError(fmt.Sprintf("file %s has unsupported type %s", fh.Filename, detected))
	}
	if _, err := src.Seek(0, io.SeekStart); err != nil {
		return StoredFile{}, InternalError("failed to rewind uploaded file", err)
	}

	name := fmt.Sprintf("%s_%s%s", category, uuid.NewString(), mtype.Extension())
	path := filepath.Join(s.BaseDir, name)

	dst, err := os.Create(path)
	if err != nil {
		return StoredFile{}, InternalError("failed to create stored file", err)
	}
	defer dst.Close()

	written, err := io.Copy(dst, src)
	if err != nil {
		_ = os.Remove(path)
		return StoredFile{}, InternalError("failed to write stored file", err)
	}

	return StoredFile{
		FileName: fh.Filename,
		FilePath: path,
		FileSize: written,
		MimeType: detected,
	}, nil
}

func (s *DiskStorage) Remove(path string) error {
	return os.Remove(path)
}
