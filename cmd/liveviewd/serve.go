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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/liveview-go/liveview/pkg/live"
	"github.com/liveview-go/liveview/pkg/pubsub"
)

const shutdownTimeout = 30 * time.Second

func serveCmd() *cobra.Command {
	var (
		addr        string
		metricsAddr string
		logLevel    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the live session transport server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(addr, metricsAddr, logLevel)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address for the live endpoint")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", ":9090", "address for the Prometheus metrics endpoint")
	cmd.Flags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	return cmd
}

func serve(addr, metricsAddr, logLevel string) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Single-node deployment: the in-process pub/sub backend, with
	// debug logging of every broadcast when the level allows it.
	var ps pubsub.PubSub = pubsub.NewMemory(pubsub.WithLogger(logger))
	if level <= slog.LevelDebug {
		ps = pubsub.NewLogging(ps, logger)
	}

	cfg := live.DefaultConfig()
	cfg.Logger = logger
	cfg.Metrics = live.NewMetrics()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	router.Mount("/", live.Routes(ps, cfg))

	appServer := &http.Server{Addr: addr, Handler: router}

	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())
	metricsServer := &http.Server{Addr: metricsAddr, Handler: metricsRouter}

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("live endpoint listening", "addr", addr)
		if err := appServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("live server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		logger.Info("metrics endpoint listening", "addr", metricsAddr)
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("metrics server: %w", err)
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return errors.Join(
			appServer.Shutdown(shutdownCtx),
			metricsServer.Shutdown(shutdownCtx),
		)
	})

	return group.Wait()
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("unknown log level %q", s)
	}
}
