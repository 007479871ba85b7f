package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"scoring-api/internal/api"
	"scoring-api/internal/config"
	"scoring-api/internal/logging"
	"scoring-api/internal/metrics"
	"scoring-api/internal/middleware"
	"scoring-api/internal/scoring"
	"scoring-api/internal/store"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd описывает команду запуска. Флаги перекрывают значения
// из файла конфигурации и окружения, только если заданы явно.
func newRootCmd() *cobra.Command {
	var (
		configPath  string
		dotenvPath  string
		port        int
		logFile     string
		host        string
		redisAddr   string
		storeSeed   string
		metricsAddr string
	)

	cmd := &cobra.Command{
		Use:           "scoring-server",
		Short:         "JSON-over-HTTP scoring API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath, dotenvPath)
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			if flags.Changed("port") {
				cfg.Port = port
			}
			if flags.Changed("log") {
				cfg.LogFile = logFile
			}
			if flags.Changed("host") {
				cfg.Host = host
			}
			if flags.Changed("redis-addr") {
				cfg.Redis.Addr = redisAddr
			}
			if flags.Changed("store-seed") {
				cfg.StoreSeed = storeSeed
			}
			if flags.Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&configPath, "config", "", "path to YAML config file")
	f.StringVar(&dotenvPath, "env-file", ".env", "path to .env file (ignored if missing)")
	f.IntVarP(&port, "port", "p", 8080, "port to listen on")
	f.StringVarP(&logFile, "log", "l", "", "log file (default stderr)")
	f.StringVar(&host, "host", "localhost", "host to listen on")
	f.StringVar(&redisAddr, "redis-addr", "", "Redis address; empty uses the in-memory store")
	f.StringVar(&storeSeed, "store-seed", "", "JSON file to seed the in-memory store")
	f.StringVar(&metricsAddr, "metrics-addr", "", "address for the Prometheus /metrics listener")
	return cmd
}

// run собирает зависимости и запускает HTTP-сервер до отмены ctx.
func run(ctx context.Context, cfg config.Config) error {
	out, closeLog, err := logging.OpenOutput(cfg.LogFile)
	if err != nil {
		return err
	}
	defer closeLog()

	logger := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.LogLevel),
		Format: logging.ParseFormat(cfg.LogFormat),
		Output: out,
	})

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	auth := api.NewAuthenticator(api.AuthConfig{Salt: cfg.Salt, AdminSalt: cfg.AdminSalt})
	dispatcher := api.NewDispatcher(auth, scoring.NewService(st, cfg.CacheTTL), api.WithLogger(logger))
	handler := api.NewHandler(dispatcher, api.HandlerConfig{
		Logger:         logger,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           chiWithMiddleware(handler.Router(), logger),
		ReadHeaderTimeout: cfg.RequestTimeout,
	}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("Starting server", slog.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	var metricsSrv *http.Server
	if cfg.MetricsAddr != "" {
		metricsSrv = &http.Server{Addr: cfg.MetricsAddr, Handler: metrics.Handler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("Starting metrics server", slog.String("addr", metricsSrv.Addr))
			errCh <- metricsSrv.ListenAndServe()
		}()
	}

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	return srv.Shutdown(shutdownCtx)
}

// openStore выбирает хранилище: Redis, если задан адрес, иначе память
// с начальными данными из файла.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (store.Store, error) {
	if cfg.Redis.Addr != "" {
		rs := store.NewRedisStore(store.RedisConfig{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.Redis.DialTimeout,
			ReadTimeout: cfg.Redis.ReadTimeout,
			MaxRetries:  cfg.Redis.MaxRetries,
		}, logger)
		// Недоступный Redis не мешает старту: кэш деградирует сам,
		// а ошибки чтения интересов отдаются клиенту как 500.
		if err := rs.Ping(ctx); err != nil {
			logger.Warn("redis is not reachable", slog.Any("error", err))
		}
		return rs, nil
	}

	ms := store.NewMemoryStore()
	if cfg.StoreSeed != "" {
		if err := ms.LoadSeed(cfg.StoreSeed); err != nil {
			return nil, fmt.Errorf("load store seed: %w", err)
		}
	}
	return ms, nil
}

// chiWithMiddleware навешивает общесервисные middleware на роутер API.
func chiWithMiddleware(h http.Handler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chiMiddleware.RealIP)
	r.Use(middleware.RequestIDMiddleware)
	r.Use(metrics.InstrumentHandler)
	r.Use(middleware.LoggingMiddleware(logger))
	r.Use(chiMiddleware.Recoverer)

	r.Mount("/", h)
	return r
}
