package service

import (
	"context"
	"sync"
	"time"

	"filevault/internal/models"
	"filevault/internal/repository"
	"filevault/internal/session"
	"filevault/internal/storage"
)

// In-memory fakes standing in for the postgres repositories, the
// session store and the blob store.

type fakeUserStore struct {
	mu        sync.Mutex
	users     map[string]models.User // keyed by id
	createErr error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]models.User{}}
}

func (f *fakeUserStore) Create(_ context.Context, user models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return models.User{}, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetByID(_ context.Context, id string) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return models.User{}, repository.ErrUserNotFound
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
	// failWith makes every operation error, as a down redis would.
	failWith error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: map[string]string{}}
}

func (f *fakeSessionStore) Put(_ context.Context, token, userID string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	f.sessions[token] = userID
	return nil
}

func (f *fakeSessionStore) Get(_ context.Context, token string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return "", f.failWith
	}
	if userID, ok := f.sessions[token]; ok {
		return userID, nil
	}
	return "", session.ErrNoSession
}

func (f *fakeSessionStore) Delete(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.sessions, token)
	return nil
}

type fakeFileStore struct {
	mu    sync.Mutex
	files map[string]models.File
	// created records insert order, used to check enqueue-after-persist.
	created []string
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: map[string]models.File{}}
}

func (f *fakeFileStore) Create(_ context.Context, file models.File) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.files[file.ID] = file
	f.created = append(f.created, file.ID)
	return nil
}

func (f *fakeFileStore) GetByID(_ context.Context, id string) (models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.files[id]; ok {
		return file, nil
	}
	return models.File{}, repository.ErrFileNotFound
}

func (f *fakeFileStore) GetByOwner(_ context.Context, id, userID string) (models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if file, ok := f.files[id]; ok && file.UserID == userID {
		return file, nil
	}
	return models.File{}, repository.ErrFileNotFound
}

func (f *fakeFileStore) ListByParent(_ context.Context, userID, parentID string, limit, offset int) ([]models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var matched []models.File
	for _, id := range f.created {
		file := f.files[id]
		if file.UserID == userID && file.ParentID == parentID {
			matched = append(matched, file)
		}
	}
	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (f *fakeFileStore) SetPublic(_ context.Context, id, userID string, isPublic bool) (models.File, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	file, ok := f.files[id]
	if !ok || file.UserID != userID {
		return models.File{}, repository.ErrFileNotFound
	}
	file.IsPublic = isPublic
	f.files[id] = file
	return file, nil
}

type fakeBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{blobs: map[string][]byte{}}
}

func (f *fakeBlobStore) Write(_ context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.blobs[key] = data
	return nil
}

func (f *fakeBlobStore) Read(_ context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if data, ok := f.blobs[key]; ok {
		return data, nil
	}
	return nil, storage.ErrBlobNotFound
}

func (f *fakeBlobStore) Exists(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.blobs[key]
	return ok, nil
}

// fakeEnqueuer records every published job, and can verify that the
// referenced record was already persisted at enqueue time.
type fakeEnqueuer struct {
	mu    sync.Mutex
	files *fakeFileStore

	jobs                []enqueuedJob
	resolvableAtEnqueue []bool
}

type enqueuedJob struct {
	fileID  string
	ownerID string
}

func newFakeEnqueuer(files *fakeFileStore) *fakeEnqueuer {
	return &fakeEnqueuer{files: files}
}

func (f *fakeEnqueuer) EnqueueThumbnail(ctx context.Context, fileID, ownerID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.jobs = append(f.jobs, enqueuedJob{fileID: fileID, ownerID: ownerID})
	_, err := f.files.GetByOwner(ctx, fileID, ownerID)
	f.resolvableAtEnqueue = append(f.resolvableAtEnqueue, err == nil)
	return nil
}
