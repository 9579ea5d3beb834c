package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscash/campuscash-go/client"
	"github.com/campuscash/campuscash-go/pkg/config"
	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

type recordedRequest struct {
	method string
	path   string
	query  string
}

func newBackend(t *testing.T, status int, body string) (*client.Client, *recordedRequest) {
	t.Helper()
	rec := &recordedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	return client.New(config.APIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}), rec
}

type memoryTokenStore struct {
	token string
}

func (m *memoryTokenStore) SetToken(token string) { m.token = token }
func (m *memoryTokenStore) Token() string         { return m.token }
func (m *memoryTokenStore) ClearToken()           { m.token = "" }

func TestAuthLoginMapsEndpoint(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `{"token":"t1","user":{"id":1,"name":"Ana","email":"ana@uni.edu","role":"student"}}`)
	svc := NewAuthService(c, &memoryTokenStore{}, nil, nil)

	resp, err := svc.Login(context.Background(), LoginRequest{Email: "ana@uni.edu", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/auth/login", rec.path)
	assert.Equal(t, "t1", resp.Token)
	assert.Equal(t, RoleStudent, resp.User.Role)
}

func TestAuthLoginRejectsInvalidPayloadBeforeNetwork(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `{}`)
	svc := NewAuthService(c, &memoryTokenStore{}, nil, nil)

	_, err := svc.Login(context.Background(), LoginRequest{Email: "not-an-email"})
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrValidation.Code, apperrors.FromError(err).Code)
	assert.Empty(t, rec.method, "validation failures must not reach the network")
}

func TestAuthTokenLifecycle(t *testing.T) {
	store := &memoryTokenStore{}
	svc := NewAuthService(nil, store, nil, nil)

	assert.False(t, svc.IsAuthenticated())
	svc.SetToken("t1")
	assert.Equal(t, "t1", svc.Token())
	assert.True(t, svc.IsAuthenticated())
	svc.Logout()
	assert.Empty(t, svc.Token())
	assert.False(t, svc.IsAuthenticated())
}

func TestStudentRedeemMapsEndpoint(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `{"id":7,"code":"CPN-1","rewardId":3,"studentId":1,"used":false}`)
	svc := NewStudentService(c, nil, nil)

	coupon, err := svc.Redeem(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/student/redeem", rec.path)
	assert.Equal(t, "CPN-1", coupon.Code)
}

func TestStudentRedeemPropagatesBackendError(t *testing.T) {
	c, _ := newBackend(t, http.StatusBadRequest, `{"error":"insufficient_balance"}`)
	svc := NewStudentService(c, nil, nil)

	_, err := svc.Redeem(context.Background(), 3)
	require.Error(t, err)
	apiErr := apperrors.FromError(err)
	assert.Equal(t, "insufficient_balance", apiErr.Message)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
}

func TestStudentNotificationEndpoints(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `{}`)
	svc := NewStudentService(c, nil, nil)

	require.NoError(t, svc.MarkNotificationRead(context.Background(), 42))
	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Equal(t, "/api/student/notifications/42/read", rec.path)

	require.NoError(t, svc.MarkAllNotificationsRead(context.Background()))
	assert.Equal(t, "/api/student/notifications/read-all", rec.path)

	_, err := svc.UnreadNotificationsCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/student/notifications/unread/count", rec.path)
}

func TestProfessorGiveCoinsValidation(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `{}`)
	svc := NewProfessorService(c, nil, nil)

	_, err := svc.GiveCoins(context.Background(), GiveCoinsRequest{StudentID: 1, Amount: -5, Reason: "x"})
	require.Error(t, err)
	assert.Empty(t, rec.method)

	_, err = svc.GiveCoins(context.Background(), GiveCoinsRequest{StudentID: 1, Amount: 10, Reason: "participation"})
	require.NoError(t, err)
	assert.Equal(t, "/api/professor/give-coins", rec.path)
}

func TestProfessorSearchStudentsEscapesQuery(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `[]`)
	svc := NewProfessorService(c, nil, nil)

	_, err := svc.SearchStudents(context.Background(), "ana maria")
	require.NoError(t, err)
	assert.Equal(t, "/api/professor/students/search", rec.path)
	assert.Equal(t, "q=ana+maria", rec.query)
}

func TestCompanyRewardEndpoints(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `{"id":9,"title":"Coffee","cost":50,"category":"food","active":true,"companyId":2}`)
	svc := NewCompanyService(c, nil, nil)

	_, err := svc.CreateReward(context.Background(), CreateRewardRequest{Title: "Coffee", Description: "One cup", Cost: 50, Category: "food"})
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/company/rewards", rec.path)

	_, err = svc.UpdateRewardStatus(context.Background(), 9, false)
	require.NoError(t, err)
	assert.Equal(t, http.MethodPatch, rec.method)
	assert.Equal(t, "/api/company/rewards/9/status", rec.path)

	require.NoError(t, svc.DeleteReward(context.Background(), 9))
	assert.Equal(t, http.MethodDelete, rec.method)
	assert.Equal(t, "/api/company/rewards/9", rec.path)
}

func TestCompanyUploadRewardImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/company/rewards/9/image", r.URL.Path)
		assert.Contains(t, r.Header.Get("Content-Type"), "multipart/form-data")
		w.Write([]byte(`{"id":9}`)) //nolint:errcheck
	}))
	t.Cleanup(srv.Close)
	svc := NewCompanyService(client.New(config.APIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second}), nil, nil)

	reward, err := svc.UploadRewardImage(context.Background(), 9, "img.png", strings.NewReader("bytes"))
	require.NoError(t, err)
	assert.Equal(t, int64(9), reward.ID)
}

func TestMarketplaceRewardsEncodesFilters(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `[]`)
	svc := NewMarketplaceService(c, nil)

	_, err := svc.Rewards(context.Background(), &RewardFilters{
		Category: "food",
		PriceMin: 10,
		PriceMax: 100,
		Sort:     SortPriceAsc,
	})
	require.NoError(t, err)
	assert.Equal(t, "/api/rewards", rec.path)
	assert.Contains(t, rec.query, "categoria=food")
	assert.Contains(t, rec.query, "precoMin=10")
	assert.Contains(t, rec.query, "precoMax=100")
	assert.Contains(t, rec.query, "ordenacao=preco_menor")
}

func TestMarketplaceRewardsSkipsCategorySentinel(t *testing.T) {
	c, rec := newBackend(t, http.StatusOK, `[]`)
	svc := NewMarketplaceService(c, nil)

	_, err := svc.Rewards(context.Background(), &RewardFilters{Category: "todas"})
	require.NoError(t, err)
	assert.Empty(t, rec.query)
}

func TestRoleDashboardPathExhaustive(t *testing.T) {
	cases := map[Role]string{
		RoleStudent:   "/student/dashboard",
		RoleProfessor: "/professor/dashboard",
		RoleCompany:   "/company/dashboard",
	}
	for role, want := range cases {
		got, err := role.DashboardPath()
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	_, err := Role("admin").DashboardPath()
	require.Error(t, err)
	assert.False(t, Role("admin").Valid())
}
