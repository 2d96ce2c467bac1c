package usecase_test

import (
	"context"
	"errors"
	"io"
	"time"

	"pnregistry-dbinit/internal/bootstrap/domain/model"
	"pnregistry-dbinit/internal/bootstrap/domain/repository"
	"pnregistry-dbinit/internal/shared/logger"

	"github.com/stretchr/testify/mock"
)

var errConnRefused = errors.New("connection refused")

// mockConnector fails the first `failures` attempts, then returns store
type mockConnector struct {
	failures int
	calls    int
	store    repository.Store
}

func (m *mockConnector) Connect(ctx context.Context) (repository.Store, error) {
	m.calls++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.calls <= m.failures {
		return nil, errConnRefused
	}
	return m.store, nil
}

type mockStore struct {
	mock.Mock
}

func (m *mockStore) ListDatabaseNames(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) ListCollectionNames(ctx context.Context, database string) ([]string, error) {
	args := m.Called(ctx, database)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStore) CreateCollection(ctx context.Context, database, collection string) error {
	args := m.Called(ctx, database, collection)
	return args.Error(0)
}

func (m *mockStore) CreateIndex(ctx context.Context, database, collection, field string) (string, error) {
	args := m.Called(ctx, database, collection, field)
	return args.String(0), args.Error(1)
}

func (m *mockStore) InsertOne(ctx context.Context, database, collection string, document interface{}) error {
	args := m.Called(ctx, database, collection, document)
	return args.Error(0)
}

func (m *mockStore) Disconnect(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type staticSeed struct {
	record model.Record
	err    error
}

func (s staticSeed) Load() (model.Record, error) {
	return s.record, s.err
}

type mockLocker struct {
	mock.Mock
}

func (m *mockLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	args := m.Called(ctx, key, ttl)
	return args.Bool(0), args.Error(1)
}

func (m *mockLocker) Release(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// fakeTimer fires immediately and records every requested wait
type fakeTimer struct {
	waits []time.Duration
	c     chan time.Time
}

func (f *fakeTimer) Start(d time.Duration) {
	f.waits = append(f.waits, d)
	f.c = make(chan time.Time, 1)
	f.c <- time.Time{}
}

func (f *fakeTimer) Stop() {}

func (f *fakeTimer) C() <-chan time.Time {
	return f.c
}

func quietLogger() logger.Logger {
	return logger.New(logger.Options{Backend: logger.BackendLogrus, Level: "error", Out: io.Discard, ErrOut: io.Discard})
}
