package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"filevault/internal/models"
)

var ErrFileNotFound = errors.New("file not found")

type FileRepository struct {
	pool *pgxpool.Pool
}

func NewFileRepository(pool *pgxpool.Pool) *FileRepository {
	return &FileRepository{pool: pool}
}

func (r *FileRepository) Create(ctx context.Context, file models.File) error {
	const query = `
		INSERT INTO files (
			id, user_id, name, type, is_public, parent_id, local_path, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, NOW(), NOW()
		)
	`

	_, err := r.pool.Exec(ctx, query,
		file.ID,
		file.UserID,
		file.Name,
		file.Type,
		file.IsPublic,
		file.ParentID,
		file.LocalPath,
	)
	return err
}

func (r *FileRepository) GetByID(ctx context.Context, id string) (models.File, error) {
	const query = `
		SELECT id, user_id, name, type, is_public, parent_id, local_path, created_at, updated_at
		FROM files WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	return scanFile(row)
}

// GetByOwner resolves a file only when it belongs to the given user,
// so absence and ownership mismatch look identical to callers.
func (r *FileRepository) GetByOwner(ctx context.Context, id string, userID string) (models.File, error) {
	const query = `
		SELECT id, user_id, name, type, is_public, parent_id, local_path, created_at, updated_at
		FROM files WHERE id = $1 AND user_id = $2
	`

	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanFile(row)
}

func (r *FileRepository) ListByParent(ctx context.Context, userID string, parentID string, limit, offset int) ([]models.File, error) {
	const query = `
		SELECT id, user_id, name, type, is_public, parent_id, local_path, created_at, updated_at
		FROM files
		WHERE user_id = $1 AND parent_id = $2
		ORDER BY created_at
		LIMIT $3 OFFSET $4
	`

	rows, err := r.pool.Query(ctx, query, userID, parentID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func (r *FileRepository) SetPublic(ctx context.Context, id string, userID string, isPublic bool) (models.File, error) {
	const query = `
		UPDATE files
		SET is_public = $3, updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, name, type, is_public, parent_id, local_path, created_at, updated_at
	`

	row := r.pool.QueryRow(ctx, query, id, userID, isPublic)
	return scanFile(row)
}

// ListImages pages through image records, oldest first. Used by the
// reconcile sweep in the worker.
func (r *FileRepository) ListImages(ctx context.Context, limit, offset int) ([]models.File, error) {
	const query = `
		SELECT id, user_id, name, type, is_public, parent_id, local_path, created_at, updated_at
		FROM files
		WHERE type = 'image'
		ORDER BY created_at
		LIMIT $1 OFFSET $2
	`

	rows, err := r.pool.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func scanFile(row pgx.Row) (models.File, error) {
	var file models.File
	if err := row.Scan(
		&file.ID,
		&file.UserID,
		&file.Name,
		&file.Type,
		&file.IsPublic,
		&file.ParentID,
		&file.LocalPath,
		&file.CreatedAt,
		&file.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.File{}, ErrFileNotFound
		}
		return models.File{}, err
	}
	return file, nil
}
