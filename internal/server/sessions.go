package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-reportform/pkg/report"
)

// SessionStore keeps report snapshots between requests. Every Save restarts
// the entry's time to live.
type SessionStore interface {
	Get(ctx context.Context, id string) (report.Snapshot, bool, error)
	Save(ctx context.Context, id string, snap report.Snapshot) error
	Delete(ctx context.Context, id string) error
}

type memoryEntry struct {
	snap    report.Snapshot
	expires time.Time
}

// MemoryStore is a process local SessionStore. Expired entries are invisible
// to Get and removed by Sweep.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]memoryEntry
}

// NewMemoryStore builds a store whose entries live for ttl after their last
// save.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (report.Snapshot, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[id]
	if !ok || !m.now().Before(entry.expires) {
		return report.Snapshot{}, false, nil
	}
	return entry.snap, true, nil
}

func (m *MemoryStore) Save(_ context.Context, id string, snap report.Snapshot) error {
	m.mu.Lock()
	m.entries[id] = memoryEntry{snap: snap, expires: m.now().Add(m.ttl)}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.entries, id)
	m.mu.Unlock()
	return nil
}

// Len returns the number of stored entries, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	removed := 0
	for id, entry := range m.entries {
		if !now.Before(entry.expires) {
			delete(m.entries, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps every interval until ctx is done.
func (m *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration, logger *zap.Logger) error {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := m.Sweep(); n > 0 && logger != nil {
				logger.Debug("expired report sessions removed", zap.Int("count", n))
			}
		}
	}
}

// KV is the subset of redis used by RedisStore.
type KV interface {
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	Del(ctx context.Context, key string) error
}

const sessionPrefix = "reportform:session:"

// RedisStore keeps snapshots as JSON with a redis expiry, so sessions survive
// restarts and are shared between instances.
type RedisStore struct {
	kv  KV
	ttl time.Duration
}

// NewRedisStore builds a store over kv.
func NewRedisStore(kv KV, ttl time.Duration) *RedisStore {
	return &RedisStore{kv: kv, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, id string) (report.Snapshot, bool, error) {
	raw, ok, err := s.kv.GetBytes(ctx, sessionPrefix+id)
	if err != nil || !ok {
		return report.Snapshot{}, false, err
	}
	var snap report.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return report.Snapshot{}, false, fmt.Errorf("session %s: decode: %w", id, err)
	}
	return snap, true, nil
}

func (s *RedisStore) Save(ctx context.Context, id string, snap report.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("session %s: encode: %w", id, err)
	}
	return s.kv.SetBytes(ctx, sessionPrefix+id, raw, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.kv.Del(ctx, sessionPrefix+id)
}

// ErrRedisUnavailable is returned when redis is configured but unreachable.
var ErrRedisUnavailable = errors.New("server: redis is unavailable")
