package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
	"github.com/campuscash/campuscash-go/pkg/cache"
	"github.com/campuscash/campuscash-go/pkg/config"
	"github.com/campuscash/campuscash-go/pkg/export"
	"github.com/campuscash/campuscash-go/pkg/logger"
	"github.com/campuscash/campuscash-go/query"
	"github.com/campuscash/campuscash-go/services"
	"github.com/campuscash/campuscash-go/store"
)

const usage = `usage: campuscash <command> [flags]

commands:
  login          authenticate and persist the session
  logout         clear the session and cached data
  me             show the signed-in identity
  balance        show the coin balance
  transactions   list the transaction history
  coupons        list redeemed coupons
  redeem         redeem a marketplace reward
  rewards        browse the marketplace catalog
  give           give coins to a student
  validate       validate a coupon code
  statement      export the transaction history as CSV or PDF
  notifications  list or mark notifications
  watch          poll unread notifications until interrupted
                 (serves Prometheus metrics on METRICS_ADDR when enabled)
`

// app wires the full client stack for one invocation.
type app struct {
	cfg    *config.Config
	logr   *zap.Logger
	auth   *store.AuthStore
	ui     *store.UIStore
	flows  *query.AuthFlows
	stu    *query.StudentQueries
	prof   *query.ProfessorQueries
	comp   *query.CompanyQueries
	market *query.MarketplaceQueries
	notifs *query.NotificationQueries
	q      *query.Client
	store  query.Store
	reg    *prometheus.Registry
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	a, err := newApp()
	if err != nil {
		log.Fatalf("failed to initialise: %v", err)
	}
	defer a.close()

	ctx := context.Background()
	if err := a.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		a.logr.Sugar().Debugw("command failed", "command", os.Args[1], "error", err)
		log.Fatalf("%v", err)
	}
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	backend, err := store.NewFileBackend(cfg.State.Dir)
	if err != nil {
		return nil, err
	}

	authStore := store.NewAuthStore(backend, logr)
	if err := authStore.Hydrate(); err != nil {
		return nil, fmt.Errorf("restore session: %w", err)
	}
	uiStore := store.NewUIStore(backend, logr)
	if err := uiStore.Hydrate(); err != nil {
		return nil, fmt.Errorf("restore preferences: %w", err)
	}

	clientOpts := []client.Option{client.WithTokenProvider(authStore), client.WithLogger(logr)}
	var reg *prometheus.Registry
	if cfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
		clientOpts = append(clientOpts, client.WithMetrics(client.NewMetrics(reg)))
	}
	api := client.New(cfg.API, clientOpts...)

	validate := validator.New()
	authSvc := services.NewAuthService(api, authStore, validate, logr)
	studentSvc := services.NewStudentService(api, validate, logr)
	professorSvc := services.NewProfessorService(api, validate, logr)
	companySvc := services.NewCompanyService(api, validate, logr)
	marketSvc := services.NewMarketplaceService(api, logr)

	var queryStore query.Store = query.NewMemoryStore()
	if cfg.Cache.Redis.Enabled {
		rdb, err := cache.NewRedis(cfg.Cache.Redis)
		if err != nil {
			return nil, fmt.Errorf("connect redis cache: %w", err)
		}
		queryStore = query.NewRedisStore(rdb, logr)
	}

	queries := query.NewClient(queryStore,
		query.WithTTL(cfg.Cache.TTL),
		query.WithRetryPolicy(query.RetryPolicyFromConfig(cfg.Retry)),
		query.WithNotifier(uiStore),
		query.WithQueryLogger(logr),
	)

	return &app{
		cfg:    cfg,
		logr:   logr,
		auth:   authStore,
		ui:     uiStore,
		flows:  query.NewAuthFlows(authSvc, queries, authStore),
		stu:    query.NewStudentQueries(studentSvc, queries),
		prof:   query.NewProfessorQueries(professorSvc, queries),
		comp:   query.NewCompanyQueries(companySvc, queries),
		market: query.NewMarketplaceQueries(marketSvc, queries),
		notifs: query.NewNotificationQueries(studentSvc, professorSvc, queries),
		q:      queries,
		store:  queryStore,
		reg:    reg,
	}, nil
}

func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logr != nil {
		_ = a.logr.Sync()
	}
}

func (a *app) run(ctx context.Context, command string, args []string) error {
	switch command {
	case "login":
		return a.cmdLogin(ctx, args)
	case "logout":
		a.flows.Logout(ctx)
		fmt.Println("logged out")
		return nil
	case "me":
		return a.cmdMe(ctx)
	case "balance":
		return a.cmdBalance(ctx)
	case "transactions":
		return a.cmdTransactions(ctx)
	case "coupons":
		return a.requireRole(services.RoleStudent, func() error {
			coupons, err := a.stu.Coupons(ctx)
			if err != nil {
				return err
			}
			return printJSON(coupons)
		})
	case "redeem":
		return a.cmdRedeem(ctx, args)
	case "rewards":
		return a.cmdRewards(ctx, args)
	case "give":
		return a.cmdGive(ctx, args)
	case "validate":
		return a.cmdValidate(ctx, args)
	case "statement":
		return a.cmdStatement(ctx, args)
	case "notifications":
		return a.cmdNotifications(ctx, args)
	case "watch":
		return a.cmdWatch(ctx)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) cmdLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ExitOnError)
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	_ = fs.Parse(args)

	result, err := a.flows.Login(ctx, services.LoginRequest{Email: *email, Password: *password})
	if err != nil {
		return err
	}
	fmt.Printf("logged in as %s (%s), dashboard: %s\n", result.User.Name, result.User.Role, result.DashboardPath)
	return nil
}

func (a *app) cmdMe(ctx context.Context) error {
	user, err := a.flows.Me(ctx)
	if err != nil {
		return err
	}
	return printJSON(user)
}

func (a *app) cmdBalance(ctx context.Context) error {
	role, err := a.currentRole()
	if err != nil {
		return err
	}
	switch role {
	case services.RoleStudent:
		balance, err := a.stu.Balance(ctx)
		if err != nil {
			return err
		}
		return printJSON(balance)
	case services.RoleProfessor:
		balance, err := a.prof.Balance(ctx)
		if err != nil {
			return err
		}
		return printJSON(balance)
	default:
		return fmt.Errorf("role %q has no coin balance", role)
	}
}

func (a *app) cmdTransactions(ctx context.Context) error {
	role, err := a.currentRole()
	if err != nil {
		return err
	}
	transactions, err := a.transactionsFor(ctx, role)
	if err != nil {
		return err
	}
	return printJSON(transactions)
}

func (a *app) cmdRedeem(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("redeem", flag.ExitOnError)
	rewardID := fs.Int64("reward", 0, "reward id to redeem")
	_ = fs.Parse(args)

	return a.requireRole(services.RoleStudent, func() error {
		coupon, err := a.stu.Redeem(ctx, *rewardID)
		if err != nil {
			return err
		}
		fmt.Printf("redeemed, coupon code: %s\n", coupon.Code)
		return nil
	})
}

func (a *app) cmdRewards(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rewards", flag.ExitOnError)
	category := fs.String("category", "", "filter by category")
	priceMin := fs.Int64("price-min", 0, "minimum cost")
	priceMax := fs.Int64("price-max", 0, "maximum cost")
	sort := fs.String("sort", "", "sort order: preco_menor, preco_maior, nome, data")
	_ = fs.Parse(args)

	filters := &services.RewardFilters{
		Category: *category,
		PriceMin: *priceMin,
		PriceMax: *priceMax,
		Sort:     services.RewardSort(*sort),
	}
	rewards, err := a.market.Rewards(ctx, filters)
	if err != nil {
		return err
	}
	return printJSON(rewards)
}

func (a *app) cmdGive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("give", flag.ExitOnError)
	studentID := fs.Int64("student", 0, "student id")
	amount := fs.Int64("amount", 0, "coin amount")
	reason := fs.String("reason", "", "why the coins are given")
	_ = fs.Parse(args)

	return a.requireRole(services.RoleProfessor, func() error {
		tx, err := a.prof.GiveCoins(ctx, services.GiveCoinsRequest{
			StudentID: *studentID,
			Amount:    *amount,
			Reason:    *reason,
		})
		if err != nil {
			return err
		}
		fmt.Printf("gave %d coins, transaction %d\n", tx.Amount, tx.ID)
		return nil
	})
}

func (a *app) cmdValidate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	code := fs.String("code", "", "coupon code")
	_ = fs.Parse(args)

	return a.requireRole(services.RoleCompany, func() error {
		result, err := a.comp.ValidateCoupon(ctx, services.ValidateCouponRequest{Code: *code})
		if err != nil {
			return err
		}
		if !result.Valid {
			return fmt.Errorf("coupon rejected: %s", result.Message)
		}
		fmt.Printf("coupon valid: %s\n", result.Message)
		return nil
	})
}

func (a *app) cmdStatement(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("statement", flag.ExitOnError)
	format := fs.String("format", "csv", "output format: csv or pdf")
	out := fs.String("out", "", "output file (defaults to statement.<format>)")
	_ = fs.Parse(args)

	role, err := a.currentRole()
	if err != nil {
		return err
	}
	transactions, err := a.transactionsFor(ctx, role)
	if err != nil {
		return err
	}

	owner := ""
	if user := a.auth.User(); user != nil {
		owner = user.Name
	}
	statement := export.NewStatement(owner, transactions)

	var data []byte
	switch *format {
	case "csv":
		data, err = statement.CSV()
	case "pdf":
		data, err = statement.PDF()
	default:
		return fmt.Errorf("unknown format %q", *format)
	}
	if err != nil {
		return err
	}

	path := *out
	if path == "" {
		path = "statement." + *format
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write statement: %w", err)
	}
	fmt.Printf("wrote %s (%d transactions)\n", path, len(transactions))
	return nil
}

func (a *app) cmdNotifications(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("notifications", flag.ExitOnError)
	markRead := fs.Int64("mark-read", 0, "mark one notification as read")
	markAll := fs.Bool("mark-all", false, "mark every notification as read")
	_ = fs.Parse(args)

	role, err := a.currentRole()
	if err != nil {
		return err
	}

	switch {
	case *markRead > 0:
		if err := a.notifs.MarkRead(ctx, role, *markRead); err != nil {
			return err
		}
		fmt.Println("marked as read")
		return nil
	case *markAll:
		if err := a.notifs.MarkAllRead(ctx, role); err != nil {
			return err
		}
		fmt.Println("marked all as read")
		return nil
	default:
		notifications, err := a.notifs.List(ctx, role)
		if err != nil {
			return err
		}
		return printJSON(notifications)
	}
}

func (a *app) cmdWatch(ctx context.Context) error {
	role, err := a.currentRole()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if a.reg != nil {
		srv := &http.Server{
			Addr:    a.cfg.Metrics.Addr,
			Handler: promhttp.HandlerFor(a.reg, promhttp.HandlerOpts{}),
		}
		go func() {
			a.logr.Sugar().Infow("metrics endpoint listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				a.logr.Sugar().Warnw("metrics endpoint failed", "error", err)
			}
		}()
		defer srv.Close()
	}

	poller := query.NewPoller(a.notifs, a.q, role, func(count *services.UnreadCount) {
		fmt.Printf("unread notifications: %d\n", count.Count)
	}, query.PollerConfig{Interval: a.cfg.Notifications.PollInterval, Logger: a.logr})

	poller.Start(ctx)
	<-ctx.Done()
	poller.Stop()
	return nil
}

func (a *app) currentRole() (services.Role, error) {
	user := a.auth.User()
	if user == nil || !a.auth.IsAuthenticated() {
		return "", fmt.Errorf("not logged in, run: campuscash login")
	}
	return user.Role, nil
}

func (a *app) requireRole(role services.Role, fn func() error) error {
	current, err := a.currentRole()
	if err != nil {
		return err
	}
	if current != role {
		return fmt.Errorf("command requires the %s role, current role is %s", role, current)
	}
	return fn()
}

func (a *app) transactionsFor(ctx context.Context, role services.Role) ([]services.Transaction, error) {
	switch role {
	case services.RoleStudent:
		return a.stu.Transactions(ctx)
	case services.RoleProfessor:
		return a.prof.Transactions(ctx)
	case services.RoleCompany:
		return a.comp.History(ctx)
	default:
		return nil, fmt.Errorf("unknown role %q", role)
	}
}

func printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}
