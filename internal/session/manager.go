package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/ndertimnet/ndertimnet-client/internal/accounts"
	"github.com/ndertimnet/ndertimnet-client/pkg/enums"
	pkgerrors "github.com/ndertimnet/ndertimnet-client/pkg/errors"
	"github.com/ndertimnet/ndertimnet-client/pkg/logger"
	"github.com/ndertimnet/ndertimnet-client/pkg/tokenstore"
)

// Snapshot is an immutable view of the session handed to subscribers and
// guards.
type Snapshot struct {
	User    *accounts.User
	Loading bool
	Step    Step
}

// Authenticated reports whether a user is present.
func (s Snapshot) Authenticated() bool {
	return s.User != nil
}

// Role returns the user's role, or the empty role when unauthenticated.
func (s Snapshot) Role() enums.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// IsCustomer reports whether the session belongs to a customer account.
func (s Snapshot) IsCustomer() bool { return s.Role() == enums.RoleCustomer }

// IsCompany reports whether the session belongs to a company account.
func (s Snapshot) IsCompany() bool { return s.Role() == enums.RoleCompany }

// IsAdmin reports whether the session belongs to an admin account.
func (s Snapshot) IsAdmin() bool { return s.Role() == enums.RoleAdmin }

// CanVerifyEmail reports whether the verification prompt applies.
func (s Snapshot) CanVerifyEmail() bool { return s.Step == StepEmailUnverified }

// CanEditProfile reports whether profile editing is reachable.
func (s Snapshot) CanEditProfile() bool { return s.Step >= StepProfileIncomplete }

// HasFullAccess reports whether onboarding is complete.
func (s Snapshot) HasFullAccess() bool { return s.Step == StepFull }

// Manager owns the session state. All mutation funnels through it; readers
// take snapshots and subscribers are notified after every change.
type Manager struct {
	accounts *accounts.Client
	tokens   *tokenstore.Selector
	logg     *logger.Logger

	mu      sync.RWMutex
	user    *accounts.User
	loading bool

	subMu   sync.Mutex
	subs    map[int]func(Snapshot)
	nextSub int
}

// ManagerParams bundles the dependencies required to build a session manager.
type ManagerParams struct {
	Accounts *accounts.Client
	Tokens   *tokenstore.Selector
	Logger   *logger.Logger
}

// NewManager constructs a session manager.
func NewManager(params ManagerParams) (*Manager, error) {
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts client is required")
	}
	if params.Tokens == nil {
		return nil, fmt.Errorf("token selector is required")
	}
	return &Manager{
		accounts: params.Accounts,
		tokens:   params.Tokens,
		logg:     params.Logger,
		loading:  true,
		subs:     make(map[int]func(Snapshot)),
	}, nil
}

// Snapshot returns the current session view.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.snapshotLocked()
}

func (m *Manager) snapshotLocked() Snapshot {
	step := StepUnauthenticated
	if m.user != nil {
		step = deriveStep(true, m.user.EmailVerified, m.user.ProfileCompleted)
	}
	return Snapshot{User: m.user, Loading: m.loading, Step: step}
}

// Subscribe registers a callback fired after every state change. The
// returned function removes the subscription.
func (m *Manager) Subscribe(fn func(Snapshot)) func() {
	m.subMu.Lock()
	defer m.subMu.Unlock()
	id := m.nextSub
	m.nextSub++
	m.subs[id] = fn
	return func() {
		m.subMu.Lock()
		defer m.subMu.Unlock()
		delete(m.subs, id)
	}
}

func (m *Manager) notify() {
	snapshot := m.Snapshot()
	m.subMu.Lock()
	subs := make([]func(Snapshot), 0, len(m.subs))
	for _, fn := range m.subs {
		subs = append(subs, fn)
	}
	m.subMu.Unlock()
	for _, fn := range subs {
		fn(snapshot)
	}
}

// Init rehydrates the session at process start: stored tokens are looked up
// durable-first, then the current user is fetched. Loading always ends
// false, whatever the outcome.
func (m *Manager) Init(ctx context.Context) error {
	defer func() {
		m.mu.Lock()
		m.loading = false
		m.mu.Unlock()
		m.notify()
	}()

	store, scope, err := m.tokens.Active(ctx)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "read stored credentials")
	}
	if store == nil {
		return nil
	}
	if m.logg != nil {
		m.logg.Info(m.logg.WithField(ctx, "scope", string(scope)), "rehydrating session from stored credentials")
	}

	// Show the cached user immediately; the fetch below is authoritative.
	if raw, err := store.User(ctx); err == nil && len(raw) > 0 {
		var cached accounts.User
		if json.Unmarshal(raw, &cached) == nil {
			m.mu.Lock()
			m.user = &cached
			m.mu.Unlock()
		}
	}

	_, err = m.FetchCurrentUser(ctx)
	return err
}

// Login authenticates and stores tokens in the scope selected by remember.
func (m *Manager) Login(ctx context.Context, email, password string, remember bool) (*accounts.User, error) {
	result, err := m.accounts.Login(ctx, accounts.LoginRequest{
		Email:      email,
		Password:   password,
		RememberMe: remember,
	})
	if err != nil {
		return nil, err
	}

	store := m.tokens.ForRemember(remember)
	if err := store.SetTokens(ctx, tokenstore.Tokens{Access: result.Access, Refresh: result.Refresh}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persist tokens")
	}

	m.mu.Lock()
	m.user = result.User
	m.loading = false
	m.mu.Unlock()
	m.cacheUser(ctx, store, result.User)
	m.notify()

	// Best effort: the /me record is richer than the login payload.
	if _, err := m.FetchCurrentUser(ctx); err != nil && m.logg != nil {
		m.logg.Warn(ctx, "post-login profile fetch failed")
	}

	user := m.Snapshot().User
	return user, nil
}

// FetchCurrentUser refreshes the user record from accounts/me/.
// 401 purges credentials; the email-unverified 403 downgrades the cached
// user instead of logging out, so the verification prompt can render.
func (m *Manager) FetchCurrentUser(ctx context.Context) (*accounts.User, error) {
	user, err := m.accounts.Me(ctx)
	if err != nil {
		if pkgerrors.IsEmailUnverified(err) {
			m.mu.Lock()
			if m.user != nil {
				downgraded := *m.user
				downgraded.EmailVerified = false
				m.user = &downgraded
			} else {
				m.user = &accounts.User{EmailVerified: false}
			}
			m.mu.Unlock()
			m.notify()
			return nil, err
		}
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeUnauthorized {
			if m.logg != nil {
				m.logg.Warn(ctx, "session rejected by server; logging out")
			}
			m.Logout(ctx)
		}
		return nil, err
	}

	m.mu.Lock()
	m.user = user
	m.mu.Unlock()

	if store, _, selErr := m.tokens.Active(ctx); selErr == nil && store != nil {
		m.cacheUser(ctx, store, user)
	}
	m.notify()
	return user, nil
}

// RefreshMe is a convenience alias for FetchCurrentUser.
func (m *Manager) RefreshMe(ctx context.Context) error {
	_, err := m.FetchCurrentUser(ctx)
	return err
}

// Logout clears local credential state in both scopes. The server is not
// contacted.
func (m *Manager) Logout(ctx context.Context) {
	if err := m.tokens.ClearAll(ctx); err != nil && m.logg != nil {
		m.logg.Error(ctx, "failed to clear stored credentials", err)
	}
	m.mu.Lock()
	m.user = nil
	m.loading = false
	m.mu.Unlock()
	m.notify()
}

func (m *Manager) cacheUser(ctx context.Context, store tokenstore.Store, user *accounts.User) {
	if user == nil {
		return
	}
	raw, err := json.Marshal(user)
	if err != nil {
		return
	}
	if err := store.SetUser(ctx, raw); err != nil && m.logg != nil {
		m.logg.Warn(ctx, "failed to cache user record")
	}
}
