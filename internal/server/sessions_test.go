package server

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-reportform/pkg/model"
	"github.com/goliatone/go-reportform/pkg/report"
)

func TestMemoryStoreExpiry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	store := NewMemoryStore(10 * time.Minute)
	store.now = func() time.Time { return now }

	snap := report.Snapshot{Values: model.Values{"category": "Fraud"}, Mode: report.ModeSubmit}
	require.NoError(t, store.Save(ctx, "a", snap))
	require.NoError(t, store.Save(ctx, "b", snap))

	got, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "Fraud", got.Values["category"])

	now = now.Add(8 * time.Minute)
	require.NoError(t, store.Save(ctx, "a", snap))

	now = now.Add(5 * time.Minute)
	_, ok, _ = store.Get(ctx, "b")
	require.False(t, ok, "b expired")
	_, ok, _ = store.Get(ctx, "a")
	require.True(t, ok, "saving slides the expiry")

	require.Equal(t, 1, store.Sweep())
	require.Equal(t, 1, store.Len())

	require.NoError(t, store.Delete(ctx, "a"))
	require.Zero(t, store.Len())
}

func TestMemoryStoreJanitorStops(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore(time.Millisecond)
	require.NoError(t, store.Save(context.Background(), "a", report.Snapshot{}))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- store.RunJanitor(ctx, 5*time.Millisecond, nil) }()

	require.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)
}

type fakeKV struct {
	data map[string][]byte
	ttls map[string]time.Duration
	err  error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (f *fakeKV) SetBytes(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.data[key] = value
	f.ttls[key] = ttl
	return nil
}

func (f *fakeKV) GetBytes(_ context.Context, key string) ([]byte, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	value, ok := f.data[key]
	return value, ok, nil
}

func (f *fakeKV) Del(_ context.Context, key string) error {
	delete(f.data, key)
	return nil
}

func TestRedisStoreRoundTrip(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := newFakeKV()
	store := NewRedisStore(kv, 30*time.Minute)

	snap := report.Snapshot{
		Values:      model.Values{"isAnonymous": true, "reportDetails": "x"},
		Mode:        report.ModeView,
		LookupType:  report.LookupAnonymous,
		AnonymousID: "ANON-1",
	}
	require.NoError(t, store.Save(ctx, "abc", snap))
	require.Contains(t, kv.data, "reportform:session:abc")
	require.Equal(t, 30*time.Minute, kv.ttls["reportform:session:abc"])

	got, ok, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, report.ModeView, got.Mode)
	require.Equal(t, "ANON-1", got.AnonymousID)
	require.Equal(t, true, got.Values["isAnonymous"])

	_, ok, err = store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	kv.data["reportform:session:bad"] = []byte("{")
	_, _, err = store.Get(ctx, "bad")
	require.Error(t, err)

	require.NoError(t, store.Delete(ctx, "abc"))
	require.NotContains(t, kv.data, "reportform:session:abc")
}

func TestRedisStoreBackendFailureSurfaces(t *testing.T) {
	t.Parallel()

	kv := newFakeKV()
	kv.err = errors.New("connection refused")

	f := newFixture(t, func(d *Deps) { d.Sessions = NewRedisStore(kv, time.Minute) })
	rec := f.do(t, "GET", "/report/", nil, "")
	require.Equal(t, 503, rec.Code)

	rec = f.do(t, "GET", "/api/report/sessions/abc", nil, "")
	require.Equal(t, 503, rec.Code)
}
