package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	domainauth "gearshare/internal/domain/auth"
	domainuser "gearshare/internal/domain/user"
)

// UserRepository keeps accounts in process memory. Identity is deliberately
// the one part of the system without a durable store here; swapping in a
// real provider only touches the auth service wiring.
type UserRepository struct {
	mu     sync.RWMutex
	users  map[domainuser.ID]domainuser.User
	emails map[string]domainuser.ID
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:  make(map[domainuser.ID]domainuser.User),
		emails: make(map[string]domainuser.ID),
	}
}

func (r *UserRepository) ByID(ctx context.Context, id domainuser.ID) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return &u, nil
}

func (r *UserRepository) ByEmail(ctx context.Context, email string) (*domainuser.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emails[emailKey(email)]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	u, ok := r.users[id]
	if !ok {
		return nil, domainuser.ErrNotFound
	}
	return &u, nil
}

// Save stores a copy of the user and claims its email. Claiming an email
// already held by a different account fails, mirroring a unique index.
func (r *UserRepository) Save(ctx context.Context, user *domainuser.User) error {
	if user == nil || strings.TrimSpace(string(user.ID)) == "" {
		return domainuser.ErrIDRequired
	}
	key := emailKey(user.Email)
	if key == "" {
		return domainuser.ErrEmailRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if holder, taken := r.emails[key]; taken && holder != user.ID {
		return domainuser.ErrEmailAlreadyUsed
	}
	r.emails[key] = user.ID
	r.users[user.ID] = *user
	return nil
}

func emailKey(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SessionStore keeps bearer sessions in memory with a per-user index so a
// block can revoke every session at once.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domainauth.Token]domainauth.Session
	byUser   map[domainuser.ID]map[domainauth.Token]struct{}
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domainauth.Token]domainauth.Session),
		byUser:   make(map[domainuser.ID]map[domainauth.Token]struct{}),
	}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[session.Token] = *session
	if s.byUser[session.UserID] == nil {
		s.byUser[session.UserID] = make(map[domainauth.Token]struct{})
	}
	s.byUser[session.UserID][session.Token] = struct{}{}
	return nil
}

// Get returns a live session. Expired entries are purged on read, which is
// the only garbage collection an in-memory store needs.
func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.Expired(time.Now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[token]
	if !ok {
		return nil
	}
	delete(s.sessions, token)
	if index := s.byUser[session.UserID]; index != nil {
		delete(index, token)
		if len(index) == 0 {
			delete(s.byUser, session.UserID)
		}
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token := range s.byUser[userID] {
		delete(s.sessions, token)
	}
	delete(s.byUser, userID)
	return nil
}

var _ domainuser.Repository = (*UserRepository)(nil)
var _ domainauth.SessionStore = (*SessionStore)(nil)
