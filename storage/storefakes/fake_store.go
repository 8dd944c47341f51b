package storefakes

import (
	"context"
	"sync"

	"github.com/hrsphere/go-client/storage"
)

var _ storage.Store = (*FakeStore)(nil)

// FakeStore is an in-memory storage.Store for tests. Each operation records
// the keys it was called with and can be forced to fail by setting the
// corresponding error field.
type FakeStore struct {
	mu     sync.Mutex
	values map[string]string

	GetErr    error
	SetErr    error
	DeleteErr error

	GetCalls    []string
	SetCalls    []string
	DeleteCalls []string
}

func NewFakeStore() *FakeStore {
	return &FakeStore{
		values: make(map[string]string),
	}
}

func (f *FakeStore) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.GetCalls = append(f.GetCalls, key)
	if f.GetErr != nil {
		return "", f.GetErr
	}
	value, ok := f.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (f *FakeStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.SetCalls = append(f.SetCalls, key)
	if f.SetErr != nil {
		return f.SetErr
	}
	f.values[key] = value
	return nil
}

func (f *FakeStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.DeleteCalls = append(f.DeleteCalls, key)
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	if _, ok := f.values[key]; !ok {
		return storage.ErrNotFound
	}
	delete(f.values, key)
	return nil
}

// Seed inserts a value without recording a call, for test setup.
func (f *FakeStore) Seed(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}
