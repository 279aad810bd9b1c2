package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/panaghia/restaurant/pkg/storage"
	"github.com/panaghia/restaurant/pkg/transport"
)

type fakeAuth struct {
	loginErr   error
	refreshErr error
	logoutErr  error

	logins    atomic.Int32
	refreshes atomic.Int32
	logouts   atomic.Int32

	refreshGate  chan struct{}
	afterRefresh func()

	mu          sync.Mutex
	lastRefresh string
}

var admin = transport.User{ID: "u1", Email: "admin@panaghia.ro", IsSuperadmin: true}

func (f *fakeAuth) Login(_ context.Context, email, _ string) (*transport.TokenResponse, error) {
	f.logins.Add(1)
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &transport.TokenResponse{AccessToken: "acc-1", RefreshToken: "ref-1", TokenType: "bearer", User: transport.User{ID: "u1", Email: email}}, nil
}

func (f *fakeAuth) Refresh(ctx context.Context, rt string) (*transport.TokenResponse, error) {
	f.refreshes.Add(1)
	f.mu.Lock()
	f.lastRefresh = rt
	f.mu.Unlock()
	if f.refreshGate != nil {
		select {
		case <-f.refreshGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.afterRefresh != nil {
		defer f.afterRefresh()
	}
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &transport.TokenResponse{AccessToken: "acc-2", RefreshToken: "ref-2", User: admin}, nil
}

func (f *fakeAuth) Logout(context.Context, string, string) error {
	f.logouts.Add(1)
	return f.logoutErr
}

func seed(t *testing.T, kv storage.Store, access, refresh, user string) {
	t.Helper()
	ctx := context.Background()
	if access != "" {
		require.NoError(t, kv.Set(ctx, storage.KeyAccessToken, access))
	}
	if refresh != "" {
		require.NoError(t, kv.Set(ctx, storage.KeyRefreshToken, refresh))
	}
	if user != "" {
		require.NoError(t, kv.Set(ctx, storage.KeyUser, user))
	}
}

func assertCleared(t *testing.T, kv storage.Store) {
	t.Helper()
	for _, k := range []string{storage.KeyAccessToken, storage.KeyRefreshToken, storage.KeyUser} {
		_, err := kv.Get(context.Background(), k)
		assert.ErrorIs(t, err, storage.ErrNotFound, k)
	}
}

func userJSON(t *testing.T) string {
	raw, err := json.Marshal(admin)
	require.NoError(t, err)
	return string(raw)
}

func TestNewManager_StartsUnknown(t *testing.T) {
	t.Parallel()

	m := NewManager(&fakeAuth{}, storage.NewMemory(), nil)
	assert.Equal(t, Unknown, m.State())
	assert.Equal(t, ShowLoading, m.Guard())
	assert.False(t, m.IsAuthenticated())
}

func TestRestore_OptimisticWithoutNetwork(t *testing.T) {
	t.Parallel()

	api := &fakeAuth{}
	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "ref-0", userJSON(t))

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))

	assert.True(t, m.IsAuthenticated())
	assert.Equal(t, Allow, m.Guard())
	assert.Equal(t, "acc-0", m.AccessToken())
	assert.Equal(t, admin.Email, m.User().Email)
	assert.Zero(t, api.logins.Load()+api.refreshes.Load()+api.logouts.Load())
}

func TestRestore_CorruptUserClearsSession(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name, user string
	}{
		{"malformed", "{broken"},
		{"not an object", "42"},
		{"null", "null"},
		{"empty object", "{}"},
		{"missing email", `{"id":"u1"}`},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kv := storage.NewMemory()
			seed(t, kv, "acc-0", "ref-0", tt.user)

			m := NewManager(&fakeAuth{}, kv, nil)
			require.NoError(t, m.Restore(context.Background()))

			assert.False(t, m.IsAuthenticated())
			assert.Equal(t, Anonymous, m.State())
			assert.Nil(t, m.User())
			assertCleared(t, kv)
		})
	}
}

func TestRestore_MissingPieces(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		access, user string
	}{
		{name: "no token", user: `{"id":"u1","email":"a@b.c"}`},
		{name: "no user", access: "acc-0"},
		{name: "empty"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			kv := storage.NewMemory()
			seed(t, kv, tt.access, "", tt.user)

			m := NewManager(&fakeAuth{}, kv, nil)
			require.NoError(t, m.Restore(context.Background()))
			assert.Equal(t, Anonymous, m.State())
			assert.Equal(t, RedirectLogin, m.Guard())
		})
	}
}

func TestLogin_PersistsSession(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	m := NewManager(&fakeAuth{}, kv, nil)

	require.NoError(t, m.Login(context.Background(), "admin@panaghia.ro", "secret123"))
	assert.True(t, m.IsAuthenticated())

	v, err := kv.Get(context.Background(), storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref-1", v)

	restored := NewManager(&fakeAuth{}, kv, nil)
	require.NoError(t, restored.Restore(context.Background()))
	assert.Equal(t, "admin@panaghia.ro", restored.User().Email)
}

func TestLogin_FailureSurfacesMessage(t *testing.T) {
	t.Parallel()

	api := &fakeAuth{loginErr: errors.New("Email sau parolă incorectă")}
	m := NewManager(api, storage.NewMemory(), nil)
	require.NoError(t, m.Restore(context.Background()))

	err := m.Login(context.Background(), "x@y.z", "bad")
	require.Error(t, err)
	assert.Equal(t, Anonymous, m.State())
	assert.Equal(t, "Email sau parolă incorectă", m.LastError())
	assert.EqualValues(t, 1, api.logins.Load())
}

func TestLogout_AlwaysClearsLocally(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "ref-0", userJSON(t))
	api := &fakeAuth{logoutErr: errors.New("network down")}

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))
	require.NoError(t, m.Logout(context.Background()))

	assert.Equal(t, Anonymous, m.State())
	assert.Empty(t, m.AccessToken())
	assert.EqualValues(t, 1, api.logouts.Load())
	assertCleared(t, kv)
}

func TestRefresh_NoRefreshTokenLogsOut(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "", userJSON(t))
	api := &fakeAuth{}

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))
	require.True(t, m.IsAuthenticated())

	err := m.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrNoRefreshToken)
	assert.Equal(t, Anonymous, m.State())
	assert.Zero(t, api.refreshes.Load())
	assertCleared(t, kv)
}

func TestRefresh_Success(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "ref-0", userJSON(t))
	api := &fakeAuth{}

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))
	require.NoError(t, m.Refresh(context.Background()))

	assert.Equal(t, "acc-2", m.AccessToken())
	assert.Equal(t, "ref-0", api.lastRefresh)
	v, err := kv.Get(context.Background(), storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref-2", v)
}

func TestRefresh_FailureLogsOut(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "ref-0", userJSON(t))
	api := &fakeAuth{refreshErr: errors.New("401")}

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))

	err := m.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrRefreshFailed)
	assert.Equal(t, Anonymous, m.State())
	assertCleared(t, kv)
}

func TestRefresh_ConcurrentCallersShareOneRequest(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "ref-0", userJSON(t))
	api := &fakeAuth{refreshGate: make(chan struct{})}

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))

	var wg sync.WaitGroup
	errs := make(chan error, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- m.Refresh(context.Background())
		}()
	}
	require.Eventually(t, func() bool { return api.refreshes.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(20 * time.Millisecond)
	close(api.refreshGate)
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.EqualValues(t, 1, api.refreshes.Load())
	assert.Equal(t, "acc-2", m.AccessToken())
}

func TestRefresh_CancelledKeepsSession(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "ref-0", userJSON(t))
	api := &fakeAuth{refreshGate: make(chan struct{})}

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := m.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "acc-0", m.AccessToken())
	assert.Zero(t, api.logouts.Load())
}

func TestRefresh_CancelledAfterResponseKeepsRotatedTokens(t *testing.T) {
	t.Parallel()

	kv := storage.NewMemory()
	seed(t, kv, "acc-0", "ref-0", userJSON(t))

	ctx, cancel := context.WithCancel(context.Background())
	api := &fakeAuth{afterRefresh: cancel}

	m := NewManager(api, kv, nil)
	require.NoError(t, m.Restore(context.Background()))

	err := m.Refresh(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, api.logouts.Load())

	v, err := kv.Get(context.Background(), storage.KeyRefreshToken)
	require.NoError(t, err)
	assert.Equal(t, "ref-2", v)

	api.afterRefresh = nil
	require.NoError(t, m.Refresh(context.Background()))
	assert.Equal(t, "ref-2", api.lastRefresh)
	assert.Equal(t, Authenticated, m.State())
}

func TestCookieConsent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	kv := storage.NewMemory()

	v, err := CookieConsent(ctx, kv)
	require.NoError(t, err)
	assert.Empty(t, v)

	assert.ErrorIs(t, SetCookieConsent(ctx, kv, "maybe"), ErrInvalidConsent)
	require.NoError(t, SetCookieConsent(ctx, kv, ConsentAccepted))

	v, err = CookieConsent(ctx, kv)
	require.NoError(t, err)
	assert.Equal(t, ConsentAccepted, v)
}
