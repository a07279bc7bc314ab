// Package worker consumes thumbnail jobs and writes resized
// derivatives of image blobs.
package worker

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"filevault/internal/models"
	"filevault/internal/queue"
	"filevault/internal/repository"
	"filevault/internal/storage"
	"filevault/internal/thumbnail"
)

// Jobs failing with these can never succeed and are dropped instead
// of retried.
var (
	ErrMalformedJob = fmt.Errorf("%w: missing file or owner id", queue.ErrPermanent)
	ErrFileNotFound = fmt.Errorf("%w: file not found", queue.ErrPermanent)
	ErrNotAnImage   = fmt.Errorf("%w: not an image", queue.ErrPermanent)
)

type FileStore interface {
	GetByOwner(ctx context.Context, id string, userID string) (models.File, error)
	ListImages(ctx context.Context, limit, offset int) ([]models.File, error)
}

type Enqueuer interface {
	EnqueueThumbnail(ctx context.Context, fileID string, ownerID string) error
}

type Processor struct {
	files  FileStore
	blobs  storage.BlobStore
	queue  Enqueuer
	logger zerolog.Logger
}

func NewProcessor(files FileStore, blobs storage.BlobStore, enqueuer Enqueuer, logger zerolog.Logger) *Processor {
	return &Processor{
		files:  files,
		blobs:  blobs,
		queue:  enqueuer,
		logger: logger,
	}
}

func (p *Processor) Handle(ctx context.Context, msg redis.XMessage) error {
	job := queue.JobFromMessage(msg)

	switch job.Type {
	case "", queue.JobTypeThumbnail:
		return p.processThumbnail(ctx, job)
	case queue.JobTypeReconcile:
		return p.reconcile(ctx)
	default:
		p.logger.Warn().Str("type", job.Type).Msg("unknown job type")
		return nil
	}
}

func (p *Processor) processThumbnail(ctx context.Context, job queue.Job) error {
	if job.FileID == "" || job.OwnerID == "" {
		return ErrMalformedJob
	}

	file, err := p.files.GetByOwner(ctx, job.FileID, job.OwnerID)
	if err != nil {
		if errors.Is(err, repository.ErrFileNotFound) {
			return ErrFileNotFound
		}
		return fmt.Errorf("load file: %w", err)
	}

	if file.Type != models.FileTypeImage {
		return ErrNotAnImage
	}

	original, err := p.blobs.Read(ctx, file.LocalPath)
	if err != nil {
		return fmt.Errorf("read original: %w", err)
	}

	for _, width := range thumbnail.Widths {
		derived, err := thumbnail.Generate(original, width)
		if err != nil {
			return fmt.Errorf("generate %dpx: %w", width, err)
		}
		// Overwriting an existing derivative keeps redelivery safe.
		if err := p.blobs.Write(ctx, storage.DerivativeKey(file.LocalPath, width), derived); err != nil {
			return fmt.Errorf("write %dpx: %w", width, err)
		}
	}

	p.logger.Info().
		Str("file_id", file.ID).
		Str("user_id", file.UserID).
		Msg("thumbnails generated")
	return nil
}

const reconcileBatchSize = 100

// reconcile walks all image records and re-enqueues thumbnail work
// for any with a missing derivative, healing uploads whose enqueue
// failed or whose job was lost.
func (p *Processor) reconcile(ctx context.Context) error {
	for offset := 0; ; offset += reconcileBatchSize {
		files, err := p.files.ListImages(ctx, reconcileBatchSize, offset)
		if err != nil {
			return fmt.Errorf("list images: %w", err)
		}
		if len(files) == 0 {
			return nil
		}

		for _, file := range files {
			complete, err := p.derivativesComplete(ctx, file)
			if err != nil {
				p.logger.Error().Err(err).Str("file_id", file.ID).Msg("derivative check failed")
				continue
			}
			if complete {
				continue
			}
			if err := p.queue.EnqueueThumbnail(ctx, file.ID, file.UserID); err != nil {
				p.logger.Error().Err(err).Str("file_id", file.ID).Msg("re-enqueue failed")
			}
		}
	}
}

func (p *Processor) derivativesComplete(ctx context.Context, file models.File) (bool, error) {
	for _, width := range thumbnail.Widths {
		exists, err := p.blobs.Exists(ctx, storage.DerivativeKey(file.LocalPath, width))
		if err != nil {
			return false, err
		}
		if !exists {
			return false, nil
		}
	}
	return true, nil
}
