package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"jobsearch-engine/internal/aggregate"
	"jobsearch-engine/internal/cache"
	"jobsearch-engine/internal/config"
	"jobsearch-engine/internal/events"
	"jobsearch-engine/internal/httpapi"
	"jobsearch-engine/internal/logging"
	"jobsearch-engine/internal/research"
	"jobsearch-engine/internal/scheduler"
	"jobsearch-engine/internal/scrape/util"
	"jobsearch-engine/internal/secrets"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
)

func main() {
	boot := logging.NewLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FORMAT"))
	config.LoadEnv(boot)

	if err := run(boot); err != nil {
		boot.WithError(err).Fatal("engine stopped")
	}
}

func run(boot *logrus.Logger) error {
	dataDir := config.GetEnv("JOBSEARCH_DATA_DIR", ".")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return err
	}

	userCfgPath, err := config.EnsureUserConfig(dataDir, filepath.Join("config", "config.yml"))
	if err != nil {
		return fmt.Errorf("config bootstrap: %w", err)
	}
	companiesPath := filepath.Join(dataDir, "companies.yml")

	loadCfg := func() (config.Config, error) {
		cfg, err := config.Load(userCfgPath)
		if err != nil {
			return cfg, err
		}
		if err := config.OverlayCompanies(&cfg, companiesPath); err != nil {
			return cfg, fmt.Errorf("companies overlay: %w", err)
		}
		if unknown := config.ApplyEnv(&cfg); len(unknown) > 0 {
			boot.WithField("unknown", unknown).Warn("JOBSEARCH_SOURCES names unknown sources")
		}
		cfg, vr := config.NormalizeAndValidate(cfg)
		for _, w := range vr.Warnings {
			boot.Warn(w)
		}
		return cfg, vr.Err()
	}

	cfg, err := loadCfg()
	if err != nil {
		return fmt.Errorf("config load (%s): %w", userCfgPath, err)
	}
	var cfgVal atomic.Value
	cfgVal.Store(cfg)

	log := logging.NewLogger(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	hc := &http.Client{Timeout: cfg.SourceTimeout()}
	b := &builder{
		log:     log,
		hc:      hc,
		limiter: util.NewHostLimiter(cfg.Limiter.ReqPerSec, cfg.Limiter.Burst),
		metrics: aggregate.NewMetrics(reg),
	}

	if cfg.Cache.Enabled && cfg.Cache.RedisURL != "" {
		rc, err := cache.Open(ctx, cfg.Cache.RedisURL, cfg.CacheTTL())
		if err != nil {
			log.WithError(err).Warn("result cache unavailable; continuing without it")
		} else {
			defer rc.Close()
			b.cache = rc
			log.WithField("ttl", cfg.CacheTTL()).Info("result cache enabled")
		}
	}
	b.rebuild(cfg)

	var researcher research.Researcher
	if cfg.Research.Enabled {
		researcher = research.New(
			research.NewDDGFinder(hc, b.limiter),
			research.NewHunter(secrets.HunterAPIKey, hc, b.limiter),
		)
	}

	hub := events.NewHub()
	if cfg.Events.PingSeconds > 0 {
		go scheduler.Every(ctx, log, time.Duration(cfg.Events.PingSeconds)*time.Second, "sse-ping", pinger(hub))
	}

	handler := httpapi.NewHandler(httpapi.Deps{
		Logger:      log,
		Hub:         hub,
		Engine:      b.current,
		CfgVal:      &cfgVal,
		UserCfgPath: userCfgPath,
		LoadCfg:     loadCfg,
		OnConfig:    b.rebuild,
		Research:    researcher,
		Gatherer:    reg,
	})

	addr := fmt.Sprintf(":%d", cfg.App.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	// SSE streams only end when their channel closes
	srv.RegisterOnShutdown(hub.Close)

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	log.WithFields(logrus.Fields{"addr": ln.Addr().String(), "config": userCfgPath}).Info("engine listening")

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("engine exited")
	return nil
}
