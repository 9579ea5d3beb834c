package query

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
	"github.com/campuscash/campuscash-go/pkg/config"
	"github.com/campuscash/campuscash-go/services"
)

// fakeBackend is an in-process CampusCash API with just enough state to walk
// the student journey end to end.
type fakeBackend struct {
	mu           sync.Mutex
	balance      int64
	balanceCalls int
}

func (b *fakeBackend) router() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	r.POST("/api/auth/login", func(c *gin.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&req); err != nil || req.Password != "sup3rs3cret" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials", "message": "invalid email or password"})
			return
		}

		role := "student"
		if req.Email == "intruder@uni.edu" {
			role = "superadmin"
		}
		c.JSON(http.StatusOK, gin.H{
			"token": "token-abc",
			"user":  gin.H{"id": 1, "name": "Ana", "email": req.Email, "role": role},
		})
	})

	authed := r.Group("/api", func(c *gin.Context) {
		if c.GetHeader("Authorization") != "Bearer token-abc" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized", "message": "missing or invalid token"})
		}
	})

	authed.GET("/student/balance", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.balanceCalls++
		c.JSON(http.StatusOK, gin.H{"balance": b.balance})
	})

	authed.POST("/student/redeem", func(c *gin.Context) {
		var req struct {
			RewardID int64 `json:"rewardId"`
		}
		_ = c.ShouldBindJSON(&req)

		b.mu.Lock()
		defer b.mu.Unlock()
		cost := int64(30)
		if req.RewardID == 99 || b.balance < cost {
			c.JSON(http.StatusBadRequest, gin.H{"error": "insufficient_balance", "message": "insufficient balance"})
			return
		}
		b.balance -= cost
		c.JSON(http.StatusOK, gin.H{"id": 10, "code": "CPN-777", "rewardId": req.RewardID, "studentId": 1})
	})

	return r
}

type memorySession struct {
	mu       sync.Mutex
	user     *services.User
	loggedIn bool
}

func (s *memorySession) Login(user services.User, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = &user
	s.loggedIn = true
}

func (s *memorySession) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = nil
	s.loggedIn = false
}

type memoryTokens struct {
	mu    sync.Mutex
	token string
}

func (s *memoryTokens) SetToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

func (s *memoryTokens) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *memoryTokens) ClearToken() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

type journey struct {
	backend  *fakeBackend
	session  *memorySession
	tokens   *memoryTokens
	notifier *recordingNotifier
	store    *MemoryStore
	flows    *AuthFlows
	student  *StudentQueries
}

func newJourney(t *testing.T) *journey {
	t.Helper()

	backend := &fakeBackend{balance: 100}
	srv := httptest.NewServer(backend.router())
	t.Cleanup(srv.Close)

	tokens := &memoryTokens{}
	api := client.New(
		config.APIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second},
		client.WithTokenProvider(tokens),
	)

	authSvc := services.NewAuthService(api, tokens, nil, zap.NewNop())
	studentSvc := services.NewStudentService(api, nil, zap.NewNop())

	session := &memorySession{}
	notifier := &recordingNotifier{}
	memStore := NewMemoryStore()
	queries := NewClient(memStore, WithNotifier(notifier))

	return &journey{
		backend:  backend,
		session:  session,
		tokens:   tokens,
		notifier: notifier,
		store:    memStore,
		flows:    NewAuthFlows(authSvc, queries, session),
		student:  NewStudentQueries(studentSvc, queries),
	}
}

func TestStudentJourney(t *testing.T) {
	j := newJourney(t)
	ctx := context.Background()

	t.Run("rejected login leaves no session behind", func(t *testing.T) {
		_, err := j.flows.Login(ctx, services.LoginRequest{Email: "ana@uni.edu", Password: "wrong"})
		require.Error(t, err)
		assert.Contains(t, j.notifier.errors, "invalid email or password")
		assert.False(t, j.session.loggedIn)
		assert.Empty(t, j.tokens.Token())
	})

	t.Run("login resolves the role dashboard", func(t *testing.T) {
		result, err := j.flows.Login(ctx, services.LoginRequest{Email: "ana@uni.edu", Password: "sup3rs3cret"})
		require.NoError(t, err)
		assert.Equal(t, "/student/dashboard", result.DashboardPath)
		assert.Equal(t, "token-abc", j.tokens.Token())
		assert.True(t, j.session.loggedIn)
	})

	t.Run("balance is cached between reads", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			balance, err := j.student.Balance(ctx)
			require.NoError(t, err)
			assert.Equal(t, int64(100), balance.Balance)
		}
		assert.Equal(t, 1, j.backend.balanceCalls)
	})

	t.Run("redeem refreshes the balance", func(t *testing.T) {
		coupon, err := j.student.Redeem(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, "CPN-777", coupon.Code)
		assert.Contains(t, j.notifier.successes, "reward redeemed")

		balance, err := j.student.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(70), balance.Balance, "the cached balance was invalidated")
		assert.Equal(t, 2, j.backend.balanceCalls)
	})

	t.Run("failed redeem keeps the cache intact", func(t *testing.T) {
		_, err := j.student.Redeem(ctx, 99)
		require.Error(t, err)
		assert.Contains(t, j.notifier.errors, "insufficient balance")

		balance, err := j.student.Balance(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(70), balance.Balance)
		assert.Equal(t, 2, j.backend.balanceCalls, "the cached balance survived the failure")
	})

	t.Run("logout clears the token and every cached read", func(t *testing.T) {
		require.Greater(t, j.store.Len(), 0)
		j.flows.Logout(ctx)
		assert.Empty(t, j.tokens.Token())
		assert.False(t, j.session.loggedIn)
		assert.Equal(t, 0, j.store.Len())
	})
}

func TestLoginRejectsUnknownRole(t *testing.T) {
	j := newJourney(t)
	ctx := context.Background()

	_, err := j.flows.Login(ctx, services.LoginRequest{Email: "intruder@uni.edu", Password: "sup3rs3cret"})
	require.Error(t, err)
	assert.Empty(t, j.tokens.Token(), "no token is persisted for an unsupported role")
	assert.False(t, j.session.loggedIn)
}
