package query

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
	"github.com/campuscash/campuscash-go/pkg/config"
	"github.com/campuscash/campuscash-go/services"
)

func TestPollerRefetchesUnreadCount(t *testing.T) {
	var serverCalls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/student/notifications/unread/count", r.URL.Path)
		n := atomic.AddInt32(&serverCalls, 1)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"count": %d}`, n)
	}))
	defer srv.Close()

	api := client.New(config.APIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	studentSvc := services.NewStudentService(api, nil, zap.NewNop())
	queries := NewClient(NewMemoryStore())
	notifications := NewNotificationQueries(studentSvc, nil, queries)

	counts := make(chan int64, 16)
	poller := NewPoller(notifications, queries, services.RoleStudent, func(count *services.UnreadCount) {
		counts <- count.Count
	}, PollerConfig{Interval: 10 * time.Millisecond})

	poller.Start(context.Background())

	// Each tick invalidates the cached counter first, so consecutive ticks
	// see fresh, strictly increasing server counts instead of the cache.
	first := receiveCount(t, counts)
	second := receiveCount(t, counts)
	assert.Greater(t, second, first)

	poller.Stop()

	// Drain anything already in flight, then confirm the loop is gone.
	for {
		select {
		case <-counts:
			continue
		case <-time.After(50 * time.Millisecond):
		}
		break
	}
	select {
	case count := <-counts:
		t.Fatalf("poller ticked after Stop, got count %d", count)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"count": 0}`)
	}))
	defer srv.Close()

	api := client.New(config.APIConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
	studentSvc := services.NewStudentService(api, nil, zap.NewNop())
	queries := NewClient(NewMemoryStore())
	notifications := NewNotificationQueries(studentSvc, nil, queries)

	poller := NewPoller(notifications, queries, services.RoleStudent, nil, PollerConfig{Interval: time.Hour})
	poller.Start(context.Background())
	poller.Start(context.Background())
	poller.Stop()
	poller.Stop()
}

func receiveCount(t *testing.T, counts <-chan int64) int64 {
	t.Helper()
	select {
	case count := <-counts:
		return count
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a poller tick")
		return 0
	}
}
