package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
)

// ErrNoSession is returned by Read when no usable session exists for
// the given id, including right after Clear.
var ErrNoSession = errors.New("no session")

const (
	RoleDoctor       = "doctor"
	RoleMedicalOwner = "medical-owner"
)

// Session holds everything a logged-in dashboard user needs: the
// upstream bearer token plus the identifying fields the UI displays.
// The upstream token is never expired gateway-side; an upstream 401 is
// how a dead token is discovered.
type Session struct {
	ID            string
	UpstreamToken string
	Email         string
	UserID        string
	Role          string
	CreatedAt     time.Time
}

// Store is constructed once in main and injected into every component
// that needs the session; nothing reads ambient global state.
type Store interface {
	Save(ctx context.Context, s Session) error
	Read(ctx context.Context, id string) (Session, error)
	Clear(ctx context.Context, id string) error
}

// PGStore persists sessions in the gateway_sessions table so logins
// survive a gateway restart.
type PGStore struct {
	pool *pgxpool.Pool
}

func NewPGStore(pool *pgxpool.Pool) *PGStore {
	return &PGStore{pool: pool}
}

func (s *PGStore) Save(ctx context.Context, sess Session) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO gateway_sessions (session_id, upstream_token, email, user_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO UPDATE
		SET upstream_token = $2, email = $3, user_id = $4, role = $5, created_at = $6`,
		sess.ID, sess.UpstreamToken, sess.Email, sess.UserID, sess.Role, sess.CreatedAt)
	return err
}

func (s *PGStore) Read(ctx context.Context, id string) (Session, error) {
	var sess Session
	err := s.pool.QueryRow(ctx, `
		SELECT session_id, upstream_token, email, user_id, role, created_at
		FROM gateway_sessions WHERE session_id = $1`, id).Scan(
		&sess.ID, &sess.UpstreamToken, &sess.Email, &sess.UserID, &sess.Role, &sess.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Session{}, ErrNoSession
		}
		return Session{}, err
	}
	if sess.UpstreamToken == "" || sess.UserID == "" {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

func (s *PGStore) Clear(ctx context.Context, id string) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM gateway_sessions WHERE session_id = $1`, id)
	return err
}

// MemoryStore keeps sessions in a map. Used in tests and when no
// DATABASE_URL is configured; sessions then last until the process
// exits, which matches a dev setup.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]Session)}
}

func (s *MemoryStore) Save(ctx context.Context, sess Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, id string) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[id]
	if !ok || sess.UpstreamToken == "" || sess.UserID == "" {
		return Session{}, ErrNoSession
	}
	return sess, nil
}

func (s *MemoryStore) Clear(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}
