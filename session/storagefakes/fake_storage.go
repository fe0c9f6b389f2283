package storagefakes

import (
	"context"
	"sync"

	"github.com/yenikoza/tablet-dashboard/session"
)

type FakeStorage struct {
	data    map[string]string
	mu      sync.RWMutex
	failGet error
	failSet error
	failRm  error
	failKey map[string]error
}

var _ session.Storage = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{data: make(map[string]string), failKey: make(map[string]error)}
}

func (f *FakeStorage) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.failGet != nil {
		return "", false, f.failGet
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *FakeStorage) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failSet != nil {
		return f.failSet
	}
	if err := f.failKey[key]; err != nil {
		return err
	}
	f.data[key] = value
	return nil
}

func (f *FakeStorage) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRm != nil {
		return f.failRm
	}
	delete(f.data, key)
	return nil
}

// Len is the number of stored keys.
func (f *FakeStorage) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.data)
}

func (f *FakeStorage) Snapshot() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.data))
	for k, v := range f.data {
		out[k] = v
	}
	return out
}

// FailGet makes every subsequent Get return err; nil restores normal behaviour.
func (f *FakeStorage) FailGet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failGet = err
}

func (f *FakeStorage) FailSet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failSet = err
}

func (f *FakeStorage) FailRemove(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failRm = err
}

// FailSetKey makes Set return err for key only; nil restores it.
func (f *FakeStorage) FailSetKey(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		delete(f.failKey, key)
		return
	}
	f.failKey[key] = err
}
