package query

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/services"
)

// PollHandler receives each freshly fetched unread counter.
type PollHandler func(count *services.UnreadCount)

// PollerConfig configures the notification poller.
type PollerConfig struct {
	Interval time.Duration
	Logger   *zap.Logger
}

// Poller periodically invalidates and refetches the unread notification
// counter for the signed-in role. It is the background half of the
// notification feed; the foreground reads stay on NotificationQueries.
type Poller struct {
	notifications *NotificationQueries
	queries       *Client
	role          services.Role
	interval      time.Duration
	handler       PollHandler
	logger        *zap.Logger

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewPoller builds a poller for the given role.
func NewPoller(notifications *NotificationQueries, queries *Client, role services.Role, handler PollHandler, cfg PollerConfig) *Poller {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	return &Poller{
		notifications: notifications,
		queries:       queries,
		role:          role,
		interval:      cfg.Interval,
		handler:       handler,
		logger:        cfg.Logger,
	}
}

// Start begins polling in the background. Safe to call once.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.wg.Add(1)
	go p.loop()
	p.started = true
	p.logger.Sugar().Infow("notification poller started", "role", string(p.role), "interval", p.interval)
}

// Stop cancels the poll loop and waits for it to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Sugar().Infow("notification poller stopped", "role", string(p.role))
}

func (p *Poller) loop() {
	defer p.wg.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			p.tick()
		}
	}
}

func (p *Poller) tick() {
	// Drop the cached counter first so the fetch below always hits the
	// backend instead of returning the stale cache entry.
	p.queries.Invalidate(p.ctx, unreadKey(p.role))

	count, err := p.notifications.UnreadCount(p.ctx, p.role)
	if err != nil {
		p.logger.Sugar().Warnw("notification poll failed", "role", string(p.role), "error", err)
		return
	}
	if p.handler != nil {
		p.handler(count)
	}
}
