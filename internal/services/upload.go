package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"taskboard/backend/internal/config"
	"taskboard/backend/internal/models"
	"taskboard/backend/internal/storage"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

// uploadChunkSize bounds how much of an incoming file is held in memory at
// once while streaming to disk.
const uploadChunkSize = 1 << 20 // 1 MiB

type UploadService interface {
	Store(db *gorm.DB, file io.Reader, declaredName, contentType string, uploaderID uint) (*models.Attachment, error)
}

type UploadServiceImpl struct {
	paths storage.Paths
	cfg   config.UploadConfig
}

func NewUploadService(paths storage.Paths, cfg config.UploadConfig) *UploadServiceImpl {
	return &UploadServiceImpl{paths: paths, cfg: cfg}
}

// Store validates and streams one uploaded file to disk, then persists its
// attachment row. Validation happens before any byte is written; a failure
// after the file exists (size cap, I/O error, row insert) removes the file
// again so no partial upload survives the call.
func (s *UploadServiceImpl) Store(db *gorm.DB, file io.Reader, declaredName, contentType string, uploaderID uint) (*models.Attachment, error) {
	if declaredName == "" {
		return nil, ErrMissingFilename
	}

	sanitized := storage.SanitizeFilename(declaredName)
	ext := filepath.Ext(sanitized)
	if !s.cfg.ExtensionAllowed(ext) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, ext)
	}

	// Timestamp plus uploader alone is not collision-proof for concurrent
	// uploads within the same second, hence the random token.
	token, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("generate upload token: %w", err)
	}
	storedName := fmt.Sprintf("%d_%d_%s_%s", uploaderID, time.Now().Unix(), token.String(), sanitized)

	if err := s.paths.EnsureRoot(); err != nil {
		return nil, fmt.Errorf("ensure upload root: %w", err)
	}

	diskPath := s.paths.StoredPath(storedName)
	if err := s.writeBounded(diskPath, file); err != nil {
		return nil, err
	}

	attachment := models.Attachment{
		Filename:   sanitized,
		FilePath:   s.paths.PublicURL(storedName),
		FileType:   contentType,
		UploaderID: uploaderID,
	}
	if err := db.Create(&attachment).Error; err != nil {
		// The row is the source of truth; without it the file must not
		// outlive this call.
		if rmErr := os.Remove(diskPath); rmErr != nil {
			return nil, fmt.Errorf("insert attachment: %v (orphan file cleanup also failed: %w)", err, rmErr)
		}
		return nil, fmt.Errorf("insert attachment: %w", err)
	}

	return &attachment, nil
}

// writeBounded copies the stream to diskPath in fixed-size chunks, aborting
// the moment the running total exceeds the configured maximum. The declared
// content length is never trusted. Any failure removes the partial file.
func (s *UploadServiceImpl) writeBounded(diskPath string, file io.Reader) error {
	out, err := os.Create(diskPath)
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}

	maxBytes := s.cfg.MaxSizeBytes()
	buf := make([]byte, uploadChunkSize)
	var written int64

	for {
		n, readErr := file.Read(buf)
		if n > 0 {
			written += int64(n)
			if written > maxBytes {
				return s.abortWrite(out, diskPath, ErrFileTooLarge)
			}
			if _, writeErr := out.Write(buf[:n]); writeErr != nil {
				return s.abortWrite(out, diskPath, fmt.Errorf("write upload file: %w", writeErr))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return s.abortWrite(out, diskPath, fmt.Errorf("read upload stream: %w", readErr))
		}
	}

	if err := out.Close(); err != nil {
		os.Remove(diskPath)
		return fmt.Errorf("close upload file: %w", err)
	}
	return nil
}

func (s *UploadServiceImpl) abortWrite(out *os.File, diskPath string, cause error) error {
	out.Close()
	os.Remove(diskPath)
	return cause
}
