// internal/domain/signing/entity.go
package signing

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Status is the state of a signing session
type Status string

const (
	StatusInitializing    Status = "initializing"
	StatusActive          Status = "active"
	StatusSessionConflict Status = "session_conflict"
	StatusError           Status = "error"
	StatusComplete        Status = "complete"
)

// IsTerminal reports whether the session has reached an end state. A
// session in conflict can still be retried, so it is not terminal.
func (s Status) IsTerminal() bool {
	return s == StatusError || s == StatusComplete
}

// Session is the observable state of one BankID signing workflow
type Session struct {
	ID             string    `json:"id"`
	PersonalNumber string    `json:"-"`
	OrderNumber    string    `json:"order_number,omitempty"`
	OrderRef       string    `json:"-"`
	Status         Status    `json:"status"`
	AutoStartToken string    `json:"auto_start_token,omitempty"`
	QRImageURL     string    `json:"qr_image_url,omitempty"`
	HintCode       string    `json:"hint_code,omitempty"`
	Message        string    `json:"message,omitempty"`
	TimeLeft       int       `json:"time_left"`
	RetryAfter     int       `json:"retry_after,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Store persists signing sessions so the status endpoint and the poll
// runner share one view.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Save(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string) error
}

// storedSession is the persisted form of a Session. The API response hides
// the personal number and the gateway order reference, but the poll loop and
// the identity guard need both back after a load, so the store carries them
// explicitly.
type storedSession struct {
	Session
	PersonalNumber string `json:"personal_number"`
	OrderRef       string `json:"order_ref"`
}

func encodeSession(session *Session) ([]byte, error) {
	return json.Marshal(storedSession{
		Session:        *session,
		PersonalNumber: session.PersonalNumber,
		OrderRef:       session.OrderRef,
	})
}

func decodeSession(data []byte) (*Session, error) {
	var stored storedSession
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}

	session := stored.Session
	session.PersonalNumber = stored.PersonalNumber
	session.OrderRef = stored.OrderRef
	return &session, nil
}

// RedisStore keeps signing sessions as JSON values with a TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed session store
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func sessionKey(id string) string {
	return fmt.Sprintf("signing:session:%s", id)
}

// Get retrieves a session by id
func (s *RedisStore) Get(ctx context.Context, id string) (*Session, error) {
	data, err := s.client.Get(ctx, sessionKey(id)).Result()
	if err == redis.Nil {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("failed to load signing session: %w", err)
	}

	session, err := decodeSession([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode signing session: %w", err)
	}
	return session, nil
}

// Save writes the session state
func (s *RedisStore) Save(ctx context.Context, session *Session) error {
	session.UpdatedAt = time.Now().UTC()

	data, err := encodeSession(session)
	if err != nil {
		return fmt.Errorf("failed to encode signing session: %w", err)
	}
	return s.client.Set(ctx, sessionKey(session.ID), data, s.ttl).Err()
}

// Delete removes the session
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, sessionKey(id)).Err()
}

// MemoryStore is an in-process session store used by tests. It round-trips
// sessions through the same encoding as the Redis store, so a field the
// encoding drops is dropped here too.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string][]byte
}

// NewMemoryStore creates an empty in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string][]byte),
	}
}

// Get retrieves a session by id
func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return decodeSession(data)
}

// Save writes the session state
func (s *MemoryStore) Save(_ context.Context, session *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	session.UpdatedAt = time.Now().UTC()
	data, err := encodeSession(session)
	if err != nil {
		return err
	}
	s.sessions[session.ID] = data
	return nil
}

// Delete removes the session
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}
