package session

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/kasyus/kasyus-go/users"
)

// LoginPath is the entry point the redirect callback receives whenever the
// session is invalidated and the user has to re-authenticate.
const LoginPath = "/login"

// Authenticator exchanges credentials for a bearer token at the auth backend.
type Authenticator interface {
	Login(ctx context.Context, email, password string) (string, error)
}

// Verifier maps a bearer token to the profile it belongs to. The identity
// backend is the sole authority for session validity; the token itself is
// opaque to this client and is never inspected locally.
type Verifier interface {
	Me(ctx context.Context, token string) (*users.User, error)
}

// RedirectFunc is invoked when the session has been cleared and the consuming
// application should navigate to the login entry point. It receives the
// target path and must not block.
type RedirectFunc func(target string)

// Manager is the single source of truth for "is anyone logged in, and who".
// It owns the in-memory session and is the only writer of the persistent
// session store. Construct one Manager at application startup and hand the
// same instance to every consumer; all mutation funnels through its lock, so
// the token and profile are always set and cleared together.
type Manager struct {
	store    Store
	authn    Authenticator
	verifier Verifier
	redirect RedirectFunc
	log      zerolog.Logger

	initOnce sync.Once

	mu        sync.RWMutex
	token     string
	user      *users.User
	isLoading bool
}

// ManagerOption defines a function type to modify the Manager instance.
type ManagerOption func(*Manager)

// WithRedirect sets the callback fired after the session is invalidated.
func WithRedirect(fn RedirectFunc) ManagerOption {
	return func(m *Manager) {
		m.redirect = fn
	}
}

// WithLogger sets the logger used for session lifecycle events.
func WithLogger(log zerolog.Logger) ManagerOption {
	return func(m *Manager) {
		m.log = log
	}
}

// NewManager initializes a new Manager with required dependencies.
// Optional configuration can be provided via options.
func NewManager(store Store, authn Authenticator, verifier Verifier, options ...ManagerOption) (*Manager, error) {
	if store == nil {
		return nil, errors.New("[NewManager] store is required")
	}
	if authn == nil {
		return nil, errors.New("[NewManager] authenticator is required")
	}
	if verifier == nil {
		return nil, errors.New("[NewManager] verifier is required")
	}

	m := &Manager{
		store:     store,
		authn:     authn,
		verifier:  verifier,
		redirect:  func(string) {},
		log:       zerolog.Nop(),
		isLoading: true,
	}

	for _, opt := range options {
		opt(m)
	}

	return m, nil
}

// Initialize rehydrates the session from the persistent store. It runs the
// store read and verification at most once per Manager lifetime; concurrent
// callers block until the first invocation completes, later calls are no-ops.
// Failures never propagate outward: any verification problem clears the
// session and fires the redirect callback instead.
func (m *Manager) Initialize(ctx context.Context) {
	m.initOnce.Do(func() {
		m.rehydrate(ctx)
	})
}

func (m *Manager) rehydrate(ctx context.Context) {
	defer m.setLoaded()

	token, _, err := m.store.Read(ctx)
	if err != nil {
		m.log.Warn().Err(err).Msg("session store unreadable, starting unauthenticated")
		return
	}

	// No stored token: terminal, no network call.
	if token == "" {
		return
	}

	user, err := m.verifier.Me(ctx, token)
	if err != nil {
		m.log.Warn().Err(err).Msg("startup token verification failed")
		m.invalidate(ctx)
		return
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	// Refresh the cached profile from the authoritative response.
	if err := m.store.WriteUser(ctx, user); err != nil {
		m.log.Warn().Err(err).Msg("failed caching verified profile")
	}

	m.log.Info().Str("email", user.Email).Msg("session rehydrated")
}

// Login authenticates against the backend and populates the session. On a
// rejected login the prior session state is left untouched and the returned
// error is an *AuthenticationError wrapping the backend's message. After a
// nil return both the token and the verified profile are set.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return ErrMissingCredentials
	}

	token, err := m.authn.Login(ctx, email, password)
	if err != nil {
		return &AuthenticationError{cause: err}
	}

	if err := m.store.WriteToken(ctx, token); err != nil {
		return errors.Wrap(err, "[Login] persisting token")
	}

	// Populate the profile from the identity backend rather than trusting
	// anything the login response claims about the user.
	user, err := m.verifier.Me(ctx, token)
	if err != nil {
		m.invalidate(ctx)
		return errors.Wrap(err, "[Login] verifying issued token")
	}

	m.mu.Lock()
	m.token = token
	m.user = user
	m.mu.Unlock()

	if err := m.store.WriteUser(ctx, user); err != nil {
		m.log.Warn().Err(err).Msg("failed caching verified profile")
	}

	m.log.Info().Str("email", user.Email).Msg("login succeeded")
	return nil
}

// Logout unconditionally clears the in-memory session and the persistent
// store, then signals a redirect to the login entry point. It never fails
// and is idempotent.
func (m *Manager) Logout(ctx context.Context) {
	m.invalidate(ctx)
	m.log.Info().Msg("logged out")
}

// invalidate clears both sides of the session and fires the redirect signal.
// Verification failure and explicit logout share this path.
func (m *Manager) invalidate(ctx context.Context) {
	m.mu.Lock()
	m.token = ""
	m.user = nil
	m.mu.Unlock()

	if err := m.store.Clear(ctx); err != nil {
		m.log.Warn().Err(err).Msg("failed clearing session store")
	}

	m.redirect(LoginPath)
}

func (m *Manager) setLoaded() {
	m.mu.Lock()
	m.isLoading = false
	m.mu.Unlock()
}

// Token returns the current bearer token, or "" when logged out.
func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token
}

// User returns a copy of the verified profile, or nil when logged out.
func (m *Manager) User() *users.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.user == nil {
		return nil
	}
	u := *m.user
	return &u
}

// IsLoading reports whether the startup verification step is still running.
// Consumers must treat a loading session as not yet trustworthy.
func (m *Manager) IsLoading() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.isLoading
}

// LoggedIn reports whether a verified session is present.
func (m *Manager) LoggedIn() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.token != "" && m.user != nil
}

// TokenSource exposes the session's bearer token as an oauth2.TokenSource so
// gateway clients can attach it to their own requests. The source reflects
// the live session: after logout it yields ErrNotAuthenticated.
func (m *Manager) TokenSource() oauth2.TokenSource {
	return &managerTokenSource{m: m}
}

type managerTokenSource struct {
	m *Manager
}

var _ oauth2.TokenSource = (*managerTokenSource)(nil)

func (ts *managerTokenSource) Token() (*oauth2.Token, error) {
	token := ts.m.Token()
	if token == "" {
		return nil, ErrNotAuthenticated
	}
	return &oauth2.Token{AccessToken: token, TokenType: "Bearer"}, nil
}
