package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is a single-process store for development and tests.
// Sessions are copied in and out so callers never share state.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]memoryEntry
	ttl   time.Duration
	now   func() time.Time
}

type memoryEntry struct {
	data    []byte
	expires time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{items: map[string]memoryEntry{}, ttl: ttl, now: time.Now}
}

func (m *MemoryStore) Create(ctx context.Context, userID uint) (*Session, error) {
	sess := &Session{Token: uuid.NewString(), UserID: userID, History: []Message{}}
	if err := m.Save(ctx, sess); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *MemoryStore) Load(_ context.Context, token string) (*Session, error) {
	m.mu.Lock()
	entry, ok := m.items[token]
	if ok && !m.now().Before(entry.expires) {
		delete(m.items, token)
		ok = false
	}
	m.mu.Unlock()
	if !ok {
		return nil, ErrNotFound
	}

	var sess Session
	if err := json.Unmarshal(entry.data, &sess); err != nil {
		return nil, err
	}
	return &sess, nil
}

func (m *MemoryStore) Save(_ context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[sess.Token] = memoryEntry{data: data, expires: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, token)
	return nil
}
