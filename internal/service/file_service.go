package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"filevault/internal/models"
	"filevault/internal/repository"
	"filevault/internal/storage"
)

var (
	// ErrFileNotFound is returned both for true absence and for
	// records owned by someone else.
	ErrFileNotFound = errors.New("file not found")

	ErrFolderNoContent = errors.New("a folder doesn't have content")
)

const listPageSize = 20

// FileService covers the read side: browse, visibility toggles and
// content download with thumbnail size selection.
type FileService struct {
	files FileStore
	blobs storage.BlobStore
	log   zerolog.Logger
}

func NewFileService(files FileStore, blobs storage.BlobStore, log zerolog.Logger) *FileService {
	return &FileService{
		files: files,
		blobs: blobs,
		log:   log,
	}
}

func (s *FileService) Show(ctx context.Context, ownerID string, fileID string) (models.File, error) {
	file, err := s.files.GetByOwner(ctx, fileID, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return models.File{}, ErrFileNotFound
		}
		return models.File{}, err
	}
	return file, nil
}

func (s *FileService) List(ctx context.Context, ownerID string, parentID string, page int) ([]models.File, error) {
	if parentID == "" {
		parentID = models.RootParentID
	}
	if page < 0 {
		page = 0
	}

	files, err := s.files.ListByParent(ctx, ownerID, parentID, listPageSize, page*listPageSize)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	return files, nil
}

func (s *FileService) SetPublic(ctx context.Context, ownerID string, fileID string, isPublic bool) (models.File, error) {
	file, err := s.files.SetPublic(ctx, fileID, ownerID, isPublic)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return models.File{}, ErrFileNotFound
		}
		return models.File{}, err
	}
	return file, nil
}

// Download returns a file record and its blob content. callerID may
// be empty for anonymous requests; private files then resolve to
// ErrFileNotFound. size selects a thumbnail width; anything outside
// the generated set, or a derivative that does not exist yet, falls
// back to the original blob.
func (s *FileService) Download(ctx context.Context, callerID string, fileID string, size string) (models.File, []byte, error) {
	file, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return models.File{}, nil, ErrFileNotFound
		}
		return models.File{}, nil, err
	}

	if !file.IsPublic && callerID != file.UserID {
		return models.File{}, nil, ErrFileNotFound
	}

	if file.Type == models.FileTypeFolder {
		return models.File{}, nil, ErrFolderNoContent
	}

	key := file.LocalPath
	if width, ok := allowedSize(size); ok {
		derivative := storage.DerivativeKey(file.LocalPath, width)
		exists, err := s.blobs.Exists(ctx, derivative)
		if err != nil {
			return models.File{}, nil, fmt.Errorf("stat derivative: %w", err)
		}
		if exists {
			key = derivative
		} else {
			s.log.Debug().Str("file_id", file.ID).Str("size", size).Msg("derivative missing, serving original")
		}
	}

	data, err := s.blobs.Read(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrBlobNotFound) {
			return models.File{}, nil, ErrFileNotFound
		}
		return models.File{}, nil, fmt.Errorf("read blob: %w", err)
	}

	return file, data, nil
}

func allowedSize(size string) (int, bool) {
	if size == "" {
		return 0, false
	}
	width, err := strconv.Atoi(size)
	if err != nil {
		return 0, false
	}
	switch width {
	case 100, 250, 500:
		return width, true
	}
	return 0, false
}
