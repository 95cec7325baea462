package session_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/kasyus/kasyus-go/session"
	"github.com/kasyus/kasyus-go/sessionstore"
	"github.com/kasyus/kasyus-go/users"
)

const (
	testToken    = "abc"
	testEmail    = "user@test.com"
	testPassword = "correctpw"
)

var testUser = users.User{
	ID:        "1",
	FirstName: "A",
	LastName:  "B",
	Email:     testEmail,
	Role:      users.RoleUser,
}

type fakeAuthenticator struct {
	loginFn func(ctx context.Context, email, password string) (string, error)
	calls   atomic.Int64
}

func (f *fakeAuthenticator) Login(ctx context.Context, email, password string) (string, error) {
	f.calls.Add(1)
	if f.loginFn != nil {
		return f.loginFn(ctx, email, password)
	}
	return "", errors.New("not configured")
}

type fakeVerifier struct {
	meFn  func(ctx context.Context, token string) (*users.User, error)
	calls atomic.Int64
}

func (f *fakeVerifier) Me(ctx context.Context, token string) (*users.User, error) {
	f.calls.Add(1)
	if f.meFn != nil {
		return f.meFn(ctx, token)
	}
	return nil, errors.New("not configured")
}

// testFixture holds all test dependencies
type testFixture struct {
	store     *sessionstore.Memory
	authn     *fakeAuthenticator
	verifier  *fakeVerifier
	redirects atomic.Int64
	manager   *session.Manager
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	f := &testFixture{
		store:    sessionstore.NewMemory(),
		authn:    &fakeAuthenticator{},
		verifier: &fakeVerifier{},
	}

	manager, err := session.NewManager(f.store, f.authn, f.verifier,
		session.WithRedirect(func(target string) {
			require.Equal(t, session.LoginPath, target)
			f.redirects.Add(1)
		}),
	)
	require.NoError(t, err)

	f.manager = manager
	return f
}

// requireCoConsistent asserts the token/user co-consistency invariant: the
// profile and token are either both present or both absent.
func requireCoConsistent(t *testing.T, m *session.Manager) {
	t.Helper()
	if m.User() != nil {
		require.NotEmpty(t, m.Token())
	}
	if m.Token() == "" {
		require.Nil(t, m.User())
	}
}

func TestNewManager_RequiresDependencies(t *testing.T) {
	store := sessionstore.NewMemory()
	authn := &fakeAuthenticator{}
	verifier := &fakeVerifier{}

	_, err := session.NewManager(nil, authn, verifier)
	require.Error(t, err)

	_, err = session.NewManager(store, nil, verifier)
	require.Error(t, err)

	_, err = session.NewManager(store, authn, nil)
	require.Error(t, err)
}

func TestInitialize_EmptyStore_MakesNoNetworkCall(t *testing.T) {
	f := setupTestFixture(t)

	require.True(t, f.manager.IsLoading())
	f.manager.Initialize(context.Background())

	require.False(t, f.manager.IsLoading())
	require.Empty(t, f.manager.Token())
	require.Nil(t, f.manager.User())
	require.False(t, f.manager.LoggedIn())
	require.Zero(t, f.verifier.calls.Load())
	require.Zero(t, f.redirects.Load())
	requireCoConsistent(t, f.manager)
}

func TestInitialize_ValidToken_RehydratesSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.WriteToken(ctx, testToken))
	f.verifier.meFn = func(_ context.Context, token string) (*users.User, error) {
		require.Equal(t, testToken, token)
		u := testUser
		return &u, nil
	}

	f.manager.Initialize(ctx)

	require.False(t, f.manager.IsLoading())
	require.Equal(t, testToken, f.manager.Token())
	require.Equal(t, testEmail, f.manager.User().Email)
	require.True(t, f.manager.LoggedIn())
	requireCoConsistent(t, f.manager)

	// The verified profile is written back to the store.
	_, stored, err := f.store.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, testUser, *stored)
}

func TestInitialize_ExpiredToken_ClearsStoreAndRedirectsOnce(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.WriteToken(ctx, "expired"))
	require.NoError(t, f.store.WriteUser(ctx, &testUser))
	f.verifier.meFn = func(context.Context, string) (*users.User, error) {
		return nil, errors.New("API error: 401 - Unauthorized")
	}

	f.manager.Initialize(ctx)

	require.False(t, f.manager.IsLoading())
	require.Empty(t, f.manager.Token())
	require.Nil(t, f.manager.User())
	requireCoConsistent(t, f.manager)

	token, stored, err := f.store.Read(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
	require.Nil(t, stored)
	require.EqualValues(t, 1, f.redirects.Load())
}

func TestInitialize_RunsAtMostOnce(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.WriteToken(ctx, testToken))
	f.verifier.meFn = func(context.Context, string) (*users.User, error) {
		u := testUser
		return &u, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.manager.Initialize(ctx)
		}()
	}
	wg.Wait()

	require.EqualValues(t, 1, f.verifier.calls.Load())
	require.Equal(t, testToken, f.manager.Token())
}

func TestLogin_PopulatesTokenAndUserAtomically(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.authn.loginFn = func(_ context.Context, email, password string) (string, error) {
		require.Equal(t, testEmail, email)
		require.Equal(t, testPassword, password)
		return testToken, nil
	}
	f.verifier.meFn = func(_ context.Context, token string) (*users.User, error) {
		require.Equal(t, testToken, token)
		u := testUser
		return &u, nil
	}

	require.NoError(t, f.manager.Login(ctx, testEmail, testPassword))

	require.Equal(t, testToken, f.manager.Token())
	require.Equal(t, testEmail, f.manager.User().Email)
	require.True(t, f.manager.LoggedIn())
	requireCoConsistent(t, f.manager)

	token, stored, err := f.store.Read(ctx)
	require.NoError(t, err)
	require.Equal(t, testToken, token)
	require.Equal(t, testUser, *stored)
}

func TestLogin_BadCredentials_LeavesSessionUntouched(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	// Establish a prior session first.
	f.authn.loginFn = func(context.Context, string, string) (string, error) {
		return testToken, nil
	}
	f.verifier.meFn = func(context.Context, string) (*users.User, error) {
		u := testUser
		return &u, nil
	}
	require.NoError(t, f.manager.Login(ctx, testEmail, testPassword))

	f.authn.loginFn = func(context.Context, string, string) (string, error) {
		return "", errors.New("API error: 401 - Invalid credentials")
	}

	err := f.manager.Login(ctx, testEmail, "wrongpw")
	require.Error(t, err)

	var authErr *session.AuthenticationError
	require.ErrorAs(t, err, &authErr)
	require.Contains(t, err.Error(), "Invalid credentials")

	// Prior state survives a rejected login.
	require.Equal(t, testToken, f.manager.Token())
	require.Equal(t, testEmail, f.manager.User().Email)
	requireCoConsistent(t, f.manager)
}

func TestLogin_MissingCredentials(t *testing.T) {
	f := setupTestFixture(t)

	err := f.manager.Login(context.Background(), "", "")
	require.ErrorIs(t, err, session.ErrMissingCredentials)
	require.Zero(t, f.authn.calls.Load())
}

func TestLogin_VerificationFailure_ClearsSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.authn.loginFn = func(context.Context, string, string) (string, error) {
		return testToken, nil
	}
	f.verifier.meFn = func(context.Context, string) (*users.User, error) {
		return nil, errors.New("identity service unreachable")
	}

	err := f.manager.Login(ctx, testEmail, testPassword)
	require.Error(t, err)

	require.Empty(t, f.manager.Token())
	require.Nil(t, f.manager.User())
	requireCoConsistent(t, f.manager)

	token, _, readErr := f.store.Read(ctx)
	require.NoError(t, readErr)
	require.Empty(t, token)
	require.EqualValues(t, 1, f.redirects.Load())
}

func TestLogout_IsIdempotent(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	f.authn.loginFn = func(context.Context, string, string) (string, error) {
		return testToken, nil
	}
	f.verifier.meFn = func(context.Context, string) (*users.User, error) {
		u := testUser
		return &u, nil
	}
	require.NoError(t, f.manager.Login(ctx, testEmail, testPassword))

	f.manager.Logout(ctx)
	f.manager.Logout(ctx)

	require.Empty(t, f.manager.Token())
	require.Nil(t, f.manager.User())
	require.False(t, f.manager.LoggedIn())
	requireCoConsistent(t, f.manager)

	token, stored, err := f.store.Read(ctx)
	require.NoError(t, err)
	require.Empty(t, token)
	require.Nil(t, stored)
}

func TestRehydration_IsDeterministic(t *testing.T) {
	ctx := context.Background()

	// Same verifier response, same outcome, across repeated fresh runs.
	for i := 0; i < 3; i++ {
		f := setupTestFixture(t)
		require.NoError(t, f.store.WriteToken(ctx, testToken))
		f.verifier.meFn = func(context.Context, string) (*users.User, error) {
			u := testUser
			return &u, nil
		}
		f.manager.Initialize(ctx)
		require.Equal(t, testToken, f.manager.Token())
		require.Equal(t, testUser, *f.manager.User())
	}

	for i := 0; i < 3; i++ {
		f := setupTestFixture(t)
		require.NoError(t, f.store.WriteToken(ctx, testToken))
		f.verifier.meFn = func(context.Context, string) (*users.User, error) {
			return nil, errors.New("API error: 401 - Unauthorized")
		}
		f.manager.Initialize(ctx)
		require.Empty(t, f.manager.Token())
		require.Nil(t, f.manager.User())
	}
}

func TestUser_ReturnsACopy(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.WriteToken(ctx, testToken))
	f.verifier.meFn = func(context.Context, string) (*users.User, error) {
		u := testUser
		return &u, nil
	}
	f.manager.Initialize(ctx)

	u := f.manager.User()
	u.Email = "mutated@test.com"
	require.Equal(t, testEmail, f.manager.User().Email)
}

func TestTokenSource_TracksLiveSession(t *testing.T) {
	f := setupTestFixture(t)
	ctx := context.Background()

	src := f.manager.TokenSource()
	_, err := src.Token()
	require.ErrorIs(t, err, session.ErrNotAuthenticated)

	f.authn.loginFn = func(context.Context, string, string) (string, error) {
		return testToken, nil
	}
	f.verifier.meFn = func(context.Context, string) (*users.User, error) {
		u := testUser
		return &u, nil
	}
	require.NoError(t, f.manager.Login(ctx, testEmail, testPassword))

	tok, err := src.Token()
	require.NoError(t, err)
	require.Equal(t, testToken, tok.AccessToken)
	require.Equal(t, "Bearer", tok.TokenType)

	f.manager.Logout(ctx)
	_, err = src.Token()
	require.ErrorIs(t, err, session.ErrNotAuthenticated)
}
