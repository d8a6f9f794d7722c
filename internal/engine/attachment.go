package engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"curia-backend/internal/metadata"
	"curia-backend/internal/storage"
)

// maxFileNameLength bounds the stored original file name.
const maxFileNameLength = 100

// Upload is a multipart file that passed inspection but is not stored yet.
type Upload struct {
	header      *multipart.FileHeader
	ContentType string
}

// Filename returns the base name the client sent.
func (u *Upload) Filename() string {
	return filepath.Base(u.header.Filename)
}

// StoredFile is an upload after it reached storage.
type StoredFile struct {
	Name string
	Path string
}

// AttachmentManager validates uploads and moves them in and out of storage.
type AttachmentManager struct {
	storage      storage.FileStorage
	maxSize      int64
	allowedTypes []string
}

func NewAttachmentManager(fs storage.FileStorage, maxSize int64, allowedTypes []string) *AttachmentManager {
	return &AttachmentManager{storage: fs, maxSize: maxSize, allowedTypes: allowedTypes}
}

// Inspect checks size and sniffed content type. Nothing is written.
func (a *AttachmentManager) Inspect(fh *multipart.FileHeader) (*Upload, error) {
	if a.maxSize > 0 && fh.Size > a.maxSize {
		msg := fmt.Sprintf("File too large: %s (max %s)",
			humanize.Bytes(uint64(fh.Size)), humanize.Bytes(uint64(a.maxSize)))
		return nil, NewAppError("FILE_TOO_LARGE", http.StatusRequestEntityTooLarge, msg)
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, fmt.Errorf("read uploaded file: %w", err)
	}
	contentType := http.DetectContentType(head[:n])
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}

	if len(a.allowedTypes) > 0 && !slices.Contains(a.allowedTypes, contentType) {
		return nil, NewAppError("UNSUPPORTED_MEDIA_TYPE", http.StatusUnsupportedMediaType,
			fmt.Sprintf("File type %s is not allowed", contentType))
	}
	return &Upload{header: fh, ContentType: contentType}, nil
}

// Store writes the upload under the entity's namespace.
func (a *AttachmentManager) Store(ctx context.Context, entity *metadata.Entity, u *Upload) (*StoredFile, error) {
	src, err := u.header.Open()
	if err != nil {
		return nil, fmt.Errorf("open uploaded file: %w", err)
	}
	defer src.Close()

	name := u.Filename()
	path, err := a.storage.Save(ctx, entity.Name, uuid.New().String(), name, src)
	if err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}
	return &StoredFile{Name: truncateRunes(name, maxFileNameLength), Path: path}, nil
}

// Remove deletes a stored file. Failures are logged, not returned: the row
// write that decided the outcome has already happened.
func (a *AttachmentManager) Remove(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := a.storage.Delete(ctx, path); err != nil {
		log.Printf("WARN: remove stored file %s: %v", path, err)
	}
}

// Open returns a reader for a stored file.
func (a *AttachmentManager) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	return a.storage.Open(ctx, path)
}
