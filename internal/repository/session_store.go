package repository

import (
	"context"
	"errors"
	"time"

	"github.com/vitorf997/packing-creator/internal/cache"
	"github.com/vitorf997/packing-creator/internal/packing"
)

// ErrSessionNotFound is returned when an allocation session is unknown or
// has expired.
var ErrSessionNotFound = errors.New("allocation session not found")

const sessionKeyPrefix = "alloc:session:"

// Session is a stored allocation editing session.
type Session struct {
	ID           string        `json:"id"`
	ClientID     string        `json:"client_id,omitempty"`
	SizeMatrixID string        `json:"size_matrix_id,omitempty"`
	State        packing.State `json:"state"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// SessionStore persists allocation sessions. Every Guardar refreshes the TTL.
type SessionStore interface {
	Cargar(ctx context.Context, id string) (*Session, error)
	Guardar(ctx context.Context, s *Session) error
	Eliminar(ctx context.Context, id string) error
}

type sessionStore struct {
	store cache.Store
	ttl   time.Duration
}

func NewSessionStore(store cache.Store, ttl time.Duration) SessionStore {
	return &sessionStore{store: store, ttl: ttl}
}

func (s *sessionStore) Cargar(ctx context.Context, id string) (*Session, error) {
	var sess Session
	ok, err := s.store.Get(ctx, sessionKeyPrefix+id, &sess)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrSessionNotFound
	}
	return &sess, nil
}

func (s *sessionStore) Guardar(ctx context.Context, sess *Session) error {
	sess.UpdatedAt = time.Now().UTC()
	return s.store.Set(ctx, sessionKeyPrefix+sess.ID, sess, s.ttl)
}

func (s *sessionStore) Eliminar(ctx context.Context, id string) error {
	return s.store.Delete(ctx, sessionKeyPrefix+id)
}
