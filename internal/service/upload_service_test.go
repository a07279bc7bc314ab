package service

import (
	"context"
	"encoding/base64"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"filevault/internal/models"
)

type uploadFixture struct {
	svc   *UploadService
	files *fakeFileStore
	blobs *fakeBlobStore
	queue *fakeEnqueuer
}

func newUploadFixture(t *testing.T) uploadFixture {
	t.Helper()
	files := newFakeFileStore()
	blobs := newFakeBlobStore()
	enqueuer := newFakeEnqueuer(files)
	return uploadFixture{
		svc:   NewUploadService(files, blobs, enqueuer, zerolog.Nop()),
		files: files,
		blobs: blobs,
		queue: enqueuer,
	}
}

func b64(s string) string {
	return base64.StdEncoding.EncodeToString([]byte(s))
}

func TestUploadValidation(t *testing.T) {
	fx := newUploadFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		input   UploadInput
		wantErr error
	}{
		{"missing name", UploadInput{OwnerID: "u1", Type: "file", Data: b64("x")}, ErrMissingName},
		{"missing type", UploadInput{OwnerID: "u1", Name: "a"}, ErrMissingType},
		{"bad type", UploadInput{OwnerID: "u1", Name: "a", Type: "symlink"}, ErrMissingType},
		{"file without data", UploadInput{OwnerID: "u1", Name: "a", Type: "file"}, ErrMissingData},
		{"image without data", UploadInput{OwnerID: "u1", Name: "a", Type: "image"}, ErrMissingData},
		{"invalid base64", UploadInput{OwnerID: "u1", Name: "a", Type: "file", Data: "%%%"}, ErrMissingData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.Upload(ctx, tt.input)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestUploadParentChecks(t *testing.T) {
	fx := newUploadFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "doc.txt", Type: "file", Data: b64("x"), ParentID: "missing",
	})
	assert.ErrorIs(t, err, ErrParentNotFound)

	notFolder, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "plain.txt", Type: "file", Data: b64("x"),
	})
	require.NoError(t, err)

	_, err = fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "doc.txt", Type: "file", Data: b64("x"), ParentID: notFolder.ID,
	})
	assert.ErrorIs(t, err, ErrParentNotFolder)
}

func TestUploadFolder(t *testing.T) {
	fx := newUploadFixture(t)
	ctx := context.Background()

	folder, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "photos", Type: "folder",
	})
	require.NoError(t, err)
	assert.Equal(t, models.FileTypeFolder, folder.Type)
	assert.Equal(t, models.RootParentID, folder.ParentID)
	assert.Empty(t, folder.LocalPath)

	// Folders write no blob and queue no job.
	assert.Empty(t, fx.blobs.blobs)
	assert.Empty(t, fx.queue.jobs)
}

func TestUploadFileWritesBlob(t *testing.T) {
	fx := newUploadFixture(t)
	ctx := context.Background()

	file, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "hello.txt", Type: "file", Data: b64("Hello Webstack!"),
	})
	require.NoError(t, err)
	require.NotEmpty(t, file.LocalPath)

	data, err := fx.blobs.Read(ctx, file.LocalPath)
	require.NoError(t, err)
	assert.Equal(t, []byte("Hello Webstack!"), data)

	// Plain files never queue thumbnail work.
	assert.Empty(t, fx.queue.jobs)
}

func TestUploadFileInFolder(t *testing.T) {
	fx := newUploadFixture(t)
	ctx := context.Background()

	folder, err := fx.svc.Upload(ctx, UploadInput{OwnerID: "u1", Name: "docs", Type: "folder"})
	require.NoError(t, err)

	file, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "a.txt", Type: "file", Data: b64("x"), ParentID: folder.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, folder.ID, file.ParentID)
}

func TestUploadImageEnqueuesAfterPersist(t *testing.T) {
	fx := newUploadFixture(t)
	ctx := context.Background()

	image, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "cat.png", Type: "image", Data: b64("fake png bytes"),
	})
	require.NoError(t, err)

	require.Len(t, fx.queue.jobs, 1)
	assert.Equal(t, image.ID, fx.queue.jobs[0].fileID)
	assert.Equal(t, "u1", fx.queue.jobs[0].ownerID)

	// The job referenced a record that was already committed and
	// retrievable when it was published.
	require.Len(t, fx.queue.resolvableAtEnqueue, 1)
	assert.True(t, fx.queue.resolvableAtEnqueue[0])
}

func TestUploadImageExactlyOneJob(t *testing.T) {
	fx := newUploadFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "a.png", Type: "image", Data: b64("a"),
	})
	require.NoError(t, err)
	_, err = fx.svc.Upload(ctx, UploadInput{
		OwnerID: "u1", Name: "b.png", Type: "image", Data: b64("b"),
	})
	require.NoError(t, err)

	assert.Len(t, fx.queue.jobs, 2)
}
