package tokenstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Tokens is the access/refresh credential pair issued at login.
type Tokens struct {
	Access  string
	Refresh string
}

// Empty reports whether no credentials are held.
func (t Tokens) Empty() bool {
	return t.Access == "" && t.Refresh == ""
}

// Scope names which storage tier currently holds credentials.
type Scope string

const (
	ScopeDurable Scope = "durable"
	ScopeSession Scope = "session"
	ScopeNone    Scope = "none"
)

// Store persists tokens, the cached user record and named visit marks.
// Implementations must be safe for concurrent use.
type Store interface {
	SetTokens(ctx context.Context, tokens Tokens) error
	Tokens(ctx context.Context) (Tokens, error)
	SetAccess(ctx context.Context, access string) error

	SetUser(ctx context.Context, raw json.RawMessage) error
	User(ctx context.Context) (json.RawMessage, error)

	SetVisitMark(ctx context.Context, name string, at time.Time) error
	VisitMark(ctx context.Context, name string) (time.Time, error)

	// Clear removes credentials and the cached user. Visit marks survive;
	// they feed "new since last visit" badges across logins.
	Clear(ctx context.Context) error
}

// Selector routes between the durable and session scopes. The scope is
// chosen at login by the remember flag; reads prefer whichever scope holds
// credentials, durable first.
type Selector struct {
	durable Store
	session Store
}

// NewSelector builds a selector over the two scopes. Either store may be
// nil; a nil durable scope downgrades remember-me logins to session scope.
func NewSelector(durable, session Store) (*Selector, error) {
	if session == nil {
		return nil, fmt.Errorf("session store is required")
	}
	return &Selector{durable: durable, session: session}, nil
}

// ForRemember returns the scope a login with the given remember flag
// should write to.
func (s *Selector) ForRemember(remember bool) Store {
	if remember && s.durable != nil {
		return s.durable
	}
	return s.session
}

// Active returns the store currently holding credentials, durable first.
// Scope is ScopeNone when neither holds any.
func (s *Selector) Active(ctx context.Context) (Store, Scope, error) {
	if s.durable != nil {
		tokens, err := s.durable.Tokens(ctx)
		if err != nil {
			return nil, ScopeNone, err
		}
		if !tokens.Empty() {
			return s.durable, ScopeDurable, nil
		}
	}
	tokens, err := s.session.Tokens(ctx)
	if err != nil {
		return nil, ScopeNone, err
	}
	if !tokens.Empty() {
		return s.session, ScopeSession, nil
	}
	return nil, ScopeNone, nil
}

// Scope reports which scope currently holds credentials.
func (s *Selector) Scope(ctx context.Context) (Scope, error) {
	_, scope, err := s.Active(ctx)
	return scope, err
}

// Durable exposes the durable scope for state that should outlive the
// session regardless of the remember flag, such as visit marks. May be nil.
func (s *Selector) Durable() Store {
	return s.durable
}

// ClearAll wipes credentials and cached state from both scopes.
func (s *Selector) ClearAll(ctx context.Context) error {
	if err := s.session.Clear(ctx); err != nil {
		return err
	}
	if s.durable != nil {
		return s.durable.Clear(ctx)
	}
	return nil
}
