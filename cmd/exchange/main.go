package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"service-exchange/internal"
	"service-exchange/internal/api/http/middleware"
	rateshttp "service-exchange/internal/api/http/rates"
	"service-exchange/internal/cnb"
	currencyFreaks "service-exchange/internal/currency_freaks"
	"service-exchange/internal/ecb"
	"service-exchange/internal/metrics"
	"service-exchange/internal/postgresql"
	"service-exchange/internal/repository/migrations"
	"service-exchange/internal/service/logger"
	ratessvc "service-exchange/internal/service/rates"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	lg := setupLogger(cfg)
	defer func() { _ = lg.Sync() }()

	if err := run(ctx, cfg, lg); err != nil {
		lg.Fatal("exchange stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg Config, lg *zap.Logger) error {
	// drivers
	drivers, err := setupDrivers(cfg)
	if err != nil {
		return err
	}

	// metrics
	var m *metrics.Metrics
	reg := prometheus.NewRegistry()
	if cfg.MetricsEnabled {
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m = metrics.NewMetrics(reg, "exchange")
	}

	// DB (optional): fetch log, request log, api keys
	var (
		fetchLog  logger.FetchLogger
		reqLogger logger.RequestLogger
		keys      *internal.HMACKeyValidator
	)
	if cfg.DatabaseURL != "" {
		dbCtx, cancelDB := context.WithTimeout(ctx, 5*time.Second)
		defer cancelDB()

		pool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("connect db: %w", err)
		}
		defer pool.Close()

		if err := migrations.New(pool).Setup(dbCtx); err != nil {
			return fmt.Errorf("ensure tables: %w", err)
		}

		fetchLog = logger.NewFetchLogger(postgresql.NewFetchLogStorage(pool))
		reqLogger = logger.New(postgresql.NewRequestLogStorage(pool))
		if cfg.EncodingKey != "" {
			keys = internal.NewAPIKeyValidator(postgresql.NewAPIKeyStorage(pool), cfg.EncodingKey)
		}
	}

	svc := ratessvc.New(lg, m, fetchLog, drivers...)
	var primary ratessvc.Fetcher
	for _, d := range drivers {
		if d.Name() == cfg.Driver {
			primary = d
		}
	}

	codes := make([]string, len(cfg.Codes))
	for i, c := range cfg.Codes {
		codes[i] = c.String()
	}
	refresh := func(ctx context.Context) {
		res, err := svc.Latest(ctx, primary.Name(), "", codes)
		if err != nil {
			lg.Error("scheduled fetch failed", zap.String("driver", primary.Name()), zap.Error(err))
			return
		}
		lg.Info("rates updated",
			zap.String("driver", res.Driver),
			zap.String("date", res.Date.Format(internal.DateLayout)),
			zap.Int("rates", len(res.Rates)),
		)
	}

	// instant fetch
	refresh(ctx)

	// cron, in the driver's zone
	spec := primary.Clock().Spec()
	if cfg.CronSpec != "" {
		spec = cfg.CronSpec
	}
	scheduler := cron.New(
		cron.WithLocation(primary.Location()),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
	)

	// HTTP
	api := http.NewServeMux()
	rateshttp.New(svc, reqLogger, lg, m).Register(api)

	var apiHandler http.Handler = api
	if keys != nil {
		apiHandler = middleware.APIKeyAuth(keys)(apiHandler)
	}

	mux := http.NewServeMux()
	mux.Handle("/api/", apiHandler)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if cfg.MetricsEnabled {
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}

	g, gctx := errgroup.WithContext(ctx)

	if _, err := scheduler.AddFunc(spec, func() { refresh(gctx) }); err != nil {
		return fmt.Errorf("add cron func %q: %w", spec, err)
	}
	lg.Info("refresh scheduled",
		zap.String("driver", primary.Name()),
		zap.String("spec", spec),
		zap.String("zone", primary.Location().String()),
	)

	g.Go(func() error {
		return runCron(gctx, scheduler)
	})

	g.Go(func() error {
		return serveHTTP(gctx, lg, ":"+cfg.HTTPPort, middleware.RequestLogger(lg)(mux))
	})

	lg.Info("running, stop with Ctrl+C / SIGTERM")
	return g.Wait()
}

func setupLogger(cfg Config) *zap.Logger {
	var lg *zap.Logger
	var err error

	if cfg.IsProduction() {
		lg, err = zap.NewProduction()
	} else {
		lg, err = zap.NewDevelopment()
	}

	if err != nil {
		panic(err)
	}

	return lg
}

func setupDrivers(cfg Config) ([]ratessvc.Fetcher, error) {
	transport := &http.Client{Timeout: cfg.HTTPTimeout}

	cnbDriver, err := cnb.NewDriver(transport)
	if err != nil {
		return nil, fmt.Errorf("cnb driver: %w", err)
	}
	ecbDriver, err := ecb.NewDriver(transport)
	if err != nil {
		return nil, fmt.Errorf("ecb driver: %w", err)
	}
	drivers := []ratessvc.Fetcher{cnbDriver, ecbDriver}

	if cfg.APIKey != "" {
		freaks, err := currencyFreaks.NewDriver(transport, cfg.APIKey, internal.CurrencyCode(cfg.BaseCCY), cfg.Codes)
		if err != nil {
			return nil, fmt.Errorf("currencyfreaks driver: %w", err)
		}
		drivers = append(drivers, freaks)
	}
	return drivers, nil
}

func runCron(ctx context.Context, c *cron.Cron) error {
	c.Start()
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	<-ctx.Done()
	return nil
}

func serveHTTP(ctx context.Context, lg *zap.Logger, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	lg.Info("HTTP listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
