package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"filevault/internal/ids"
	"filevault/internal/models"
	"filevault/internal/repository"
	"filevault/internal/storage"
)

var (
	ErrMissingName     = errors.New("missing name")
	ErrMissingType     = errors.New("missing or invalid type")
	ErrMissingData     = errors.New("missing data")
	ErrParentNotFound  = errors.New("parent not found")
	ErrParentNotFolder = errors.New("parent is not a folder")
)

type FileStore interface {
	Create(ctx context.Context, file models.File) error
	GetByID(ctx context.Context, id string) (models.File, error)
	GetByOwner(ctx context.Context, id string, userID string) (models.File, error)
	ListByParent(ctx context.Context, userID string, parentID string, limit, offset int) ([]models.File, error)
	SetPublic(ctx context.Context, id string, userID string, isPublic bool) (models.File, error)
}

type ThumbnailEnqueuer interface {
	EnqueueThumbnail(ctx context.Context, fileID string, ownerID string) error
}

type UploadInput struct {
	OwnerID  string
	Name     string
	Type     string
	Data     string
	ParentID string
	IsPublic bool
}

// UploadService validates and persists new file records, writes blob
// content for non-folder types and queues thumbnail work for images.
type UploadService struct {
	files FileStore
	blobs storage.BlobStore
	queue ThumbnailEnqueuer
	log   zerolog.Logger
}

func NewUploadService(files FileStore, blobs storage.BlobStore, queue ThumbnailEnqueuer, log zerolog.Logger) *UploadService {
	return &UploadService{
		files: files,
		blobs: blobs,
		queue: queue,
		log:   log,
	}
}

func (s *UploadService) Upload(ctx context.Context, input UploadInput) (models.File, error) {
	if input.Name == "" {
		return models.File{}, ErrMissingName
	}

	fileType := models.FileType(input.Type)
	if !fileType.Valid() {
		return models.File{}, ErrMissingType
	}

	if fileType != models.FileTypeFolder && input.Data == "" {
		return models.File{}, ErrMissingData
	}

	parentID := input.ParentID
	if parentID == "" {
		parentID = models.RootParentID
	}
	if parentID != models.RootParentID {
		parent, err := s.files.GetByID(ctx, parentID)
		if err != nil {
			if errors.Is(err, repository.ErrFileNotFound) {
				return models.File{}, ErrParentNotFound
			}
			return models.File{}, err
		}
		if parent.Type != models.FileTypeFolder {
			return models.File{}, ErrParentNotFolder
		}
	}

	// The id is generated up front so the thumbnail job published
	// below always references an already-committed record.
	file := models.File{
		ID:       ids.New(),
		UserID:   input.OwnerID,
		Name:     input.Name,
		Type:     fileType,
		IsPublic: input.IsPublic,
		ParentID: parentID,
	}

	if fileType == models.FileTypeFolder {
		if err := s.files.Create(ctx, file); err != nil {
			return models.File{}, fmt.Errorf("create folder record: %w", err)
		}
		return file, nil
	}

	raw, err := base64.StdEncoding.DecodeString(input.Data)
	if err != nil {
		return models.File{}, ErrMissingData
	}

	key := storage.NewKey()
	if err := s.blobs.Write(ctx, key, raw); err != nil {
		return models.File{}, fmt.Errorf("write blob: %w", err)
	}
	file.LocalPath = key

	if err := s.files.Create(ctx, file); err != nil {
		return models.File{}, fmt.Errorf("create file record: %w", err)
	}

	if fileType == models.FileTypeImage {
		// Derivatives are best-effort: the record exists either way,
		// and the reconcile sweep re-enqueues missed images.
		if err := s.queue.EnqueueThumbnail(ctx, file.ID, file.UserID); err != nil {
			s.log.Warn().Err(err).Str("file_id", file.ID).Msg("enqueue thumbnail failed")
		}
	}

	return file, nil
}
