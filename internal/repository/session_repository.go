package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/noah-isme/timetable-api/internal/models"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// MemorySessionRepository keeps sessions in process memory.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	sessions map[string]models.Session
	now      func() time.Time
}

// NewMemorySessionRepository constructs an empty in-memory session store.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{
		sessions: make(map[string]models.Session),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Save stores or replaces the session.
func (r *MemorySessionRepository) Save(ctx context.Context, session models.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID] = session
	return nil
}

// Get returns a live session. Expired entries are evicted on read.
func (r *MemorySessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	r.mu.RLock()
	session, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	if session.Expired(r.now()) {
		_ = r.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes the session. Unknown ids are ignored.
func (r *MemorySessionRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
	return nil
}

const sessionKeyPrefix = "timetable:session:"

// RedisSessionRepository stores sessions as JSON with a Redis TTL.
type RedisSessionRepository struct {
	cache *CacheRepository
}

// NewRedisSessionRepository wraps a cache repository as a session store.
func NewRedisSessionRepository(cache *CacheRepository) *RedisSessionRepository {
	return &RedisSessionRepository{cache: cache}
}

// Save stores the session until its expiry.
func (r *RedisSessionRepository) Save(ctx context.Context, session models.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if session.ExpiresAt.IsZero() {
		ttl = 0
	} else if ttl <= 0 {
		return nil
	}
	return r.cache.Set(ctx, sessionKeyPrefix+session.ID, session, ttl)
}

// Get loads the session.
func (r *RedisSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	if err := r.cache.Get(ctx, sessionKeyPrefix+id, &session); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Delete removes the session key.
func (r *RedisSessionRepository) Delete(ctx context.Context, id string) error {
	return r.cache.Delete(ctx, sessionKeyPrefix+id)
}

var sessionsBucket = []byte("Sessions")

// BoltSessionRepository persists sessions in an embedded bbolt file so they survive restarts.
type BoltSessionRepository struct {
	db  *bbolt.DB
	now func() time.Time
}

// OpenBoltSessionRepository opens (or creates) the database file at path.
func OpenBoltSessionRepository(path string) (*BoltSessionRepository, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open session db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionsBucket)
		return err
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create sessions bucket: %w", err)
	}

	return &BoltSessionRepository{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

// Save stores or replaces the session.
func (r *BoltSessionRepository) Save(ctx context.Context, session models.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Put([]byte(session.ID), data)
	})
}

// Get returns a live session. Expired entries are removed.
func (r *BoltSessionRepository) Get(ctx context.Context, id string) (*models.Session, error) {
	var session models.Session
	err := r.db.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(sessionsBucket).Get([]byte(id))
		if v == nil {
			return ErrSessionNotFound
		}
		return json.Unmarshal(v, &session)
	})
	if err != nil {
		return nil, err
	}
	if session.Expired(r.now()) {
		_ = r.Delete(ctx, id)
		return nil, ErrSessionNotFound
	}
	return &session, nil
}

// Delete removes the session. Unknown ids are ignored.
func (r *BoltSessionRepository) Delete(ctx context.Context, id string) error {
	return r.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(sessionsBucket).Delete([]byte(id))
	})
}

// Close releases the database file lock.
func (r *BoltSessionRepository) Close() error {
	return r.db.Close()
}
