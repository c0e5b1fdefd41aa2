package session

import (
	"context"
	"errors"
	"fmt"

	"garage-client/pkg/response"
)

// Session is the signed-in user as returned by the backend at sign-in.
// The access token is opaque to the client; it is stored and forwarded,
// never inspected.
type Session struct {
	UserID      int64    `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles"`
	AccessToken string   `json:"accessToken"`
}

// Persistence keeps a session across process restarts, the way the
// browser client kept it in localStorage. Load returns
// response.ErrNotFound when nothing is stored.
type Persistence interface {
	Load(ctx context.Context) (*Session, error)
	Save(ctx context.Context, sess *Session) error
	Clear(ctx context.Context) error
}

// Store holds the current session in memory and mirrors every change to
// its persistence. It is passed explicitly to components that need
// auth; there is no package-level current user.
type Store struct {
	persist Persistence
	current *Session
}

func NewStore(persist Persistence) *Store {
	return &Store{persist: persist}
}

// Hydrate loads a previously persisted session, if any. An absent
// session is not an error; the user is simply signed out.
func (s *Store) Hydrate(ctx context.Context) error {
	const op = "session.Store.Hydrate"

	sess, err := s.persist.Load(ctx)
	if err != nil {
		if errors.Is(err, response.ErrNotFound) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	s.current = sess
	return nil
}

func (s *Store) Set(ctx context.Context, sess *Session) error {
	const op = "session.Store.Set"

	if err := s.persist.Save(ctx, sess); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.current = sess
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	const op = "session.Store.Clear"

	if err := s.persist.Clear(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.current = nil
	return nil
}

func (s *Store) Current() *Session {
	return s.current
}

// Token returns the access token of the current session or
// response.ErrUnauthenticated when no one is signed in. Callers check
// this before issuing any authenticated request.
func (s *Store) Token() (string, error) {
	if s.current == nil || s.current.AccessToken == "" {
		return "", response.ErrUnauthenticated
	}
	return s.current.AccessToken, nil
}
