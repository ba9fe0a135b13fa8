// Package main runs the spin rewards service:
// - HTTP API and live websocket feed
// - Scheduled jobs: daily free spins, prize table refresh
// - Prometheus metrics on /metrics
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"spin-rewards/internal/api"
	"spin-rewards/internal/config"
	"spin-rewards/internal/feed"
	"spin-rewards/internal/logger"
	"spin-rewards/internal/prizetable"
	"spin-rewards/internal/ratelimit"
	"spin-rewards/internal/scheduler"
	"spin-rewards/internal/spin"
	"spin-rewards/internal/sui"
)

const (
	jobDailyGrant   = "daily_grant"
	jobPrizeRefresh = "prize_refresh"
)

// Server holds all components of the service.
type Server struct {
	cfg    config.Config
	logger *zap.Logger

	stores   *allStores
	prizes   *prizetable.Provider
	service  *spin.Service
	hub      *feed.Hub
	cron     *scheduler.Runner
	httpSrv  *http.Server
	redis    *redis.Client
	started  time.Time
	mu       sync.Mutex
	lastRuns map[string]time.Time
}

// StatusResponse is the data of the /status endpoint.
type StatusResponse struct {
	Status       string               `json:"status"`
	Env          string               `json:"env"`
	Uptime       string               `json:"uptime"`
	Storage      string               `json:"storage"`
	Analytics    bool                 `json:"analytics"`
	Purchases    bool                 `json:"purchases"`
	FeedClients  int                  `json:"feed_clients"`
	TableVersion int64                `json:"table_version,omitempty"`
	LastJobRuns  map[string]time.Time `json:"last_job_runs,omitempty"`
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	configPath := flag.String("config", os.Getenv("SPIN_CONFIG"), "Path to YAML config file")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL")
	httpAddr := flag.String("http-addr", "", "HTTP listen address (overrides config)")
	flag.Parse()

	if *useMemory {
		os.Setenv("SPIN_STORAGE_USE_MEMORY", "true")
	}
	if *httpAddr != "" {
		os.Setenv("SPIN_SERVER_HTTP_ADDR", *httpAddr)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	server, err := newServer(ctx, cfg, log)
	if err != nil {
		log.Fatal("failed to init server", zap.Error(err))
	}

	// Channel to signal completion
	done := make(chan struct{})

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		log.Info("received signal, initiating graceful shutdown", zap.String("signal", sig.String()))
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			log.Warn("received second signal, forcing immediate shutdown", zap.String("signal", sig.String()))
			os.Exit(1)
		case <-done:
		}
	}()

	err = server.Run(ctx)
	close(done)
	server.Close()

	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal("server error", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// newServer wires stores, the spin service and its collaborators.
func newServer(ctx context.Context, cfg config.Config, log *zap.Logger) (*Server, error) {
	s := &Server{
		cfg:      cfg,
		logger:   log,
		started:  time.Now(),
		lastRuns: make(map[string]time.Time),
	}

	stores, err := createStores(ctx, cfg.Storage, log)
	if err != nil {
		return nil, fmt.Errorf("create stores: %w", err)
	}
	s.stores = stores

	s.prizes = prizetable.NewProvider(stores.prizes, cfg.Spin.PrizeCacheTTL, log)
	table, err := s.prizes.EnsureSeeded(ctx, prizetable.Default())
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("seed prize table: %w", err)
	}
	log.Info("prize table loaded", zap.Int64("version", table.Version), zap.Int("slots", len(table.Slots)))

	limiter, err := s.createLimiter(ctx)
	if err != nil {
		s.Close()
		return nil, err
	}

	var rpc sui.RPCClient
	if cfg.SUI.TreasuryAddress != "" {
		rpc = sui.NewHTTPClient(cfg.SUI.RPCEndpoint,
			sui.WithTimeout(cfg.SUI.Timeout),
			sui.WithMaxRetries(cfg.SUI.MaxRetries),
		)
	} else {
		log.Warn("sui.treasury_address not set, purchases disabled")
	}

	s.hub = feed.NewHub(log, true)

	deps := spin.Deps{
		Users:     stores.users,
		Spins:     stores.spins,
		Purchases: stores.purchases,
		Events:    stores.events,
		Prizes:    s.prizes,
		Limiter:   limiter,
		RPC:       rpc,
		Publisher: s.hub,
	}

	s.service, err = spin.NewService(spin.Config{
		CommissionPercent: decimal.NewFromFloat(cfg.Spin.CommissionPercent),
		InitialSpins:      cfg.Spin.InitialSpins,
		DailyFreeSpins:    cfg.Spin.DailyFreeSpins,
		TreasuryAddress:   cfg.SUI.TreasuryAddress,
		SpinPriceMist:     decimal.NewFromInt(cfg.SUI.SpinPriceMist),
		HistoryLimit:      cfg.Spin.HistoryLimit,
	}, deps, log)
	if err != nil {
		s.Close()
		return nil, fmt.Errorf("create spin service: %w", err)
	}

	router := api.NewServer(s.service, s.hub, s.status, log).Router()
	s.httpSrv = &http.Server{
		Addr:         cfg.Server.HTTPAddr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	return s, nil
}

// createLimiter selects the redis limiter when redis.addr is set.
func (s *Server) createLimiter(ctx context.Context) (ratelimit.Limiter, error) {
	spinCfg := s.cfg.Spin
	if s.cfg.Redis.Addr == "" {
		return ratelimit.NewMemoryLimiter(spinCfg.RateLimit, spinCfg.RateWindow), nil
	}

	s.redis = redis.NewClient(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	})
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	s.logger.Info("using redis rate limiter", zap.String("addr", s.cfg.Redis.Addr))
	return ratelimit.NewRedisLimiter(s.redis, "spin:rl", spinCfg.RateLimit, spinCfg.RateWindow), nil
}

// Run serves HTTP and scheduled jobs until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info("starting server",
		zap.String("env", s.cfg.App.Env),
		zap.String("addr", s.cfg.Server.HTTPAddr),
	)

	go s.hub.Run(ctx)

	if s.cfg.Scheduler.Enabled {
		if err := s.startScheduler(ctx); err != nil {
			return err
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		runErr = ctx.Err()
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", zap.Error(err))
	}
	if s.cron != nil {
		s.cron.Stop()
	}
	return runErr
}

func (s *Server) startScheduler(ctx context.Context) error {
	s.cron = scheduler.New(s.logger, ctx)

	if _, err := s.cron.Add(jobDailyGrant, s.cfg.Scheduler.DailyGrant, s.tracked(jobDailyGrant, func(ctx context.Context) error {
		_, err := s.service.GrantDailySpins(ctx, time.Now())
		return err
	})); err != nil {
		return err
	}

	if _, err := s.cron.Add(jobPrizeRefresh, s.cfg.Scheduler.PrizeRefresh, s.tracked(jobPrizeRefresh, func(ctx context.Context) error {
		_, err := s.prizes.Refresh(ctx)
		return err
	})); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

// tracked records the time of each successful run for /status.
func (s *Server) tracked(name string, job scheduler.Job) scheduler.Job {
	return func(ctx context.Context) error {
		if err := job(ctx); err != nil {
			return err
		}
		s.mu.Lock()
		s.lastRuns[name] = time.Now().UTC()
		s.mu.Unlock()
		return nil
	}
}

func (s *Server) status() interface{} {
	resp := StatusResponse{
		Status:      "running",
		Env:         s.cfg.App.Env,
		Uptime:      time.Since(s.started).Round(time.Second).String(),
		Storage:     s.stores.mode,
		Analytics:   s.stores.events != nil,
		Purchases:   s.cfg.SUI.TreasuryAddress != "",
		FeedClients: s.hub.Clients(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if table, err := s.prizes.Current(ctx); err == nil {
		resp.TableVersion = table.Version
	}

	s.mu.Lock()
	if len(s.lastRuns) > 0 {
		resp.LastJobRuns = make(map[string]time.Time, len(s.lastRuns))
		for k, v := range s.lastRuns {
			resp.LastJobRuns[k] = v
		}
	}
	s.mu.Unlock()

	return resp
}

// Close releases connections. Safe to call on a partially built server.
func (s *Server) Close() {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			s.logger.Warn("close redis", zap.Error(err))
		}
	}
	if s.stores != nil {
		s.stores.cleanup()
	}
}

// loadEnvFile loads environment variables from .env file.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.Trim(strings.TrimSpace(parts[1]), `"'`)

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
