package store

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscash/campuscash-go/client"
	"github.com/campuscash/campuscash-go/query"
	"github.com/campuscash/campuscash-go/services"
)

// One store instance feeds the token to every layer.
var (
	_ client.TokenProvider = (*AuthStore)(nil)
	_ services.TokenStore  = (*AuthStore)(nil)
	_ query.SessionStore   = (*AuthStore)(nil)
	_ query.Notifier       = (*UIStore)(nil)
)

func signedToken(t *testing.T, expiresAt time.Time) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "1",
		"exp": expiresAt.Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret"))
	require.NoError(t, err)
	return signed
}

func TestAuthStoreLoginLogout(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewAuthStore(backend, nil)

	user := services.User{ID: 1, Name: "Ana", Email: "ana@uni.edu", Role: services.RoleStudent}
	store.Login(user, "token-1")

	assert.True(t, store.IsAuthenticated())
	assert.Equal(t, "token-1", store.Token())
	require.NotNil(t, store.User())
	assert.Equal(t, "Ana", store.User().Name)

	store.Logout()

	assert.False(t, store.IsAuthenticated())
	assert.Empty(t, store.Token())
	assert.Nil(t, store.User())
	assert.False(t, store.IsLoading())

	_, err := backend.Read("auth-storage.json")
	assert.Error(t, err, "logout clears the persisted snapshot")
	_, err = backend.Read("auth_token")
	assert.Error(t, err, "logout clears the persisted token")
}

func TestAuthStorePersistsSelectedFields(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewAuthStore(backend, nil)

	token := signedToken(t, time.Now().Add(time.Hour))
	store.Login(services.User{ID: 2, Name: "Bruno", Role: services.RoleProfessor}, token)
	store.SetLoading(true)

	restored := NewAuthStore(backend, nil)
	require.NoError(t, restored.Hydrate())

	assert.True(t, restored.IsAuthenticated())
	assert.Equal(t, token, restored.Token())
	require.NotNil(t, restored.User())
	assert.Equal(t, "Bruno", restored.User().Name)
	assert.False(t, restored.IsLoading(), "loading never survives a restart")
}

func TestAuthStoreDropsExpiredToken(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewAuthStore(backend, nil)
	store.Login(services.User{ID: 3, Role: services.RoleStudent}, signedToken(t, time.Now().Add(-time.Minute)))

	restored := NewAuthStore(backend, nil)
	require.NoError(t, restored.Hydrate())

	assert.False(t, restored.IsAuthenticated())
	assert.Empty(t, restored.Token())
	assert.Nil(t, restored.User())

	_, err := backend.Read("auth-storage.json")
	assert.Error(t, err, "an expired session is purged from disk")
}

func TestAuthStoreDropsMalformedToken(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewAuthStore(backend, nil)
	store.Login(services.User{ID: 4, Role: services.RoleCompany}, "not-a-jwt")

	restored := NewAuthStore(backend, nil)
	require.NoError(t, restored.Hydrate())
	assert.False(t, restored.IsAuthenticated())
}

func TestAuthStoreTokenLifecycle(t *testing.T) {
	store := NewAuthStore(nil, nil)

	assert.Empty(t, store.Token())
	store.SetToken("abc")
	assert.Equal(t, "abc", store.Token())
	store.ClearToken()
	assert.Empty(t, store.Token())
}

func TestUIStorePersistsPreferencesOnly(t *testing.T) {
	backend := NewMemoryBackend()
	store := NewUIStore(backend, nil)

	store.SetTheme(ThemeDark)
	store.ToggleSidebar()
	store.AddFeedback(FeedbackInfo, "welcome back")
	require.Len(t, store.Feedback(), 1)

	restored := NewUIStore(backend, nil)
	require.NoError(t, restored.Hydrate())

	assert.Equal(t, ThemeDark, restored.Theme())
	assert.False(t, restored.SidebarOpen())
	assert.Empty(t, restored.Feedback(), "the feedback feed never survives a restart")
}

func TestUIStoreFeedbackFeed(t *testing.T) {
	store := NewUIStore(nil, nil)

	store.Success("reward redeemed")
	store.Error("insufficient balance")

	feed := store.Feedback()
	require.Len(t, feed, 2)
	assert.Equal(t, FeedbackError, feed[0].Kind, "newest notice first")
	assert.Equal(t, "insufficient balance", feed[0].Message)
	assert.Equal(t, FeedbackSuccess, feed[1].Kind)
	assert.Equal(t, 2, store.UnreadFeedback())

	store.MarkFeedbackRead(feed[0].ID)
	assert.Equal(t, 1, store.UnreadFeedback())

	store.ClearFeedback()
	assert.Empty(t, store.Feedback())
}

func TestFileBackendRoundTrip(t *testing.T) {
	dir := t.TempDir()
	backend, err := NewFileBackend(dir)
	require.NoError(t, err)

	require.NoError(t, backend.Write("auth_token", []byte("tok")))
	data, err := backend.Read("auth_token")
	require.NoError(t, err)
	assert.Equal(t, "tok", string(data))

	require.NoError(t, backend.Delete("auth_token"))
	_, err = backend.Read("auth_token")
	assert.Error(t, err)
	require.NoError(t, backend.Delete("auth_token"), "deleting a missing snapshot is not an error")
}
