package services

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/lborres/ticketflow/core"
)

// FakeStorage is a test-only fake implementing core.Storage.
// It stores values in a map and exposes error fields for behavior injection.
type FakeStorage struct {
	values    map[string]string
	mu        sync.RWMutex
	getErr    error
	setErr    error
	removeErr error
	gets      int
	sets      map[string]int
}

var _ core.Storage = (*FakeStorage)(nil)

func NewFakeStorage() *FakeStorage {
	return &FakeStorage{
		values: make(map[string]string),
		sets:   make(map[string]int),
	}
}

func (f *FakeStorage) Get(_ context.Context, key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gets++
	if f.getErr != nil {
		return "", f.getErr
	}
	v, ok := f.values[key]
	if !ok {
		return "", core.ErrKeyNotFound
	}
	return v, nil
}

func (f *FakeStorage) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.values[key] = value
	f.sets[key]++
	return nil
}

func (f *FakeStorage) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.removeErr != nil {
		return f.removeErr
	}
	delete(f.values, key)
	return nil
}

// Test helper methods
func (f *FakeStorage) Put(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
}

func (f *FakeStorage) Value(key string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *FakeStorage) SetCount(key string) int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.sets[key]
}

func (f *FakeStorage) GetCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.gets
}

func (f *FakeStorage) SetGetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *FakeStorage) SetSetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

func (f *FakeStorage) SetRemoveError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeErr = err
}

// RecordingNotifier is a test-only core.Notifier that keeps every message.
type RecordingNotifier struct {
	mu    sync.Mutex
	shown []core.Notification
}

var _ core.Notifier = (*RecordingNotifier)(nil)

func (r *RecordingNotifier) Show(message string, severity core.Severity, duration time.Duration) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if severity == "" {
		severity = core.SeveritySuccess
	}
	r.shown = append(r.shown, core.Notification{Message: message, Severity: severity, Duration: duration})
	return message
}

func (r *RecordingNotifier) All() []core.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]core.Notification(nil), r.shown...)
}

// Last returns the most recent notification.
func (r *RecordingNotifier) Last() (core.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.shown) == 0 {
		return core.Notification{}, false
	}
	return r.shown[len(r.shown)-1], true
}

// FakeCache is a test-only fake implementing core.Cache.
// It stores values in a map and exposes error fields for behavior injection.
type FakeCache struct {
	cache  map[string]string
	mu     sync.RWMutex
	getErr error
	setErr error
	hits   int
	misses int
}

func NewFakeCache() *FakeCache {
	return &FakeCache{
		cache: make(map[string]string),
	}
}

func (f *FakeCache) Get(key string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.getErr != nil {
		return "", f.getErr
	}

	v, ok := f.cache[key]
	if !ok {
		f.misses++
		return "", core.ErrCacheNotFound
	}

	f.hits++
	return v, nil
}

func (f *FakeCache) Set(key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.setErr != nil {
		return f.setErr
	}

	f.cache[key] = value
	return nil
}

func (f *FakeCache) Delete(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.cache, key)
	return nil
}

func (f *FakeCache) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache = make(map[string]string)
	return nil
}

func (f *FakeCache) Stats() core.CacheStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return core.CacheStats{
		Hits:   int64(f.hits),
		Misses: int64(f.misses),
		Size:   len(f.cache),
	}
}

func (f *FakeCache) SetSetError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setErr = err
}

// fakeFailingCache is a cache whose every operation fails.
type fakeFailingCache struct{}

func (f *fakeFailingCache) Get(key string) (string, error) {
	return "", core.ErrCacheNotFound
}
func (f *fakeFailingCache) Set(key, value string) error {
	return errors.New("cache set failed")
}
func (f *fakeFailingCache) Delete(key string) error {
	return errors.New("cache delete failed")
}
func (f *fakeFailingCache) Clear() error {
	return errors.New("cache clear failed")
}

// fakeSessionState is a test-only core.SessionState for guard tests.
type fakeSessionState struct {
	mu            sync.Mutex
	initialized   bool
	authenticated bool
	initCalls     int
	initErr       error
}

func (f *fakeSessionState) Initialized() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.initialized
}

func (f *fakeSessionState) Initialize(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.initCalls++
	f.initialized = true
	return f.initErr
}

func (f *fakeSessionState) IsAuthenticated() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.authenticated
}

// fakeSessionReader reports a fixed session.
type fakeSessionReader struct {
	session core.Session
	ok      bool
}

func (f fakeSessionReader) Current() (core.Session, bool) { return f.session, f.ok }

// sequentialIDs returns an IDFunc yielding prefix-1, prefix-2, ...
func sequentialIDs(prefix string) core.IDFunc {
	var mu sync.Mutex
	n := 0
	return func() (string, error) {
		mu.Lock()
		defer mu.Unlock()
		n++
		return prefix + "-" + strconv.Itoa(n), nil
	}
}

