package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	configloader "github.com/foxseedlab/koecheck/external/config"
	"github.com/foxseedlab/koecheck/external/httpapi"
	notifyimpl "github.com/foxseedlab/koecheck/external/notify"
	repositoryimpl "github.com/foxseedlab/koecheck/external/repository"
	"github.com/foxseedlab/koecheck/external/telemetry"
	transcriberimpl "github.com/foxseedlab/koecheck/external/transcriber"
	"github.com/foxseedlab/koecheck/internal/config"
	"github.com/foxseedlab/koecheck/internal/notify"
	"github.com/foxseedlab/koecheck/internal/repository"
	"github.com/foxseedlab/koecheck/internal/verify"
	"github.com/samber/do/v2"
	"golang.org/x/sync/errgroup"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	slog.Info("startup: loading configuration")
	cfg := mustLoadConfig()
	initLogger(cfg)
	slog.Info("startup: configuration loaded", "env", cfg.Env, "transcriber", cfg.Transcriber, "provider_timeout", cfg.ProviderTimeout)

	slog.Info("startup: building dependency graph")
	injector := setupDI(cfg)

	slog.Info("startup: launching relay", "addr", cfg.HTTPAddr)
	if err := runRelay(cfg, injector); err != nil {
		slog.Error("relay stopped with error", "error", err)
		os.Exit(1)
	}
}

func mustLoadConfig() *config.Config {
	cfg, err := configloader.Load()
	if err != nil {
		slog.Error("config validation failed", "error", err)
		os.Exit(1)
	}
	return cfg
}

func initLogger(cfg *config.Config) {
	logLevel := slog.LevelInfo
	if cfg.IsDevelopment() {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})))
}

func setupDI(cfg *config.Config) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cfg)
	telemetry.RegisterDI(injector)
	repositoryimpl.RegisterDI(injector)
	notifyimpl.RegisterDI(injector)
	transcriberimpl.RegisterDI(injector)
	verify.RegisterDI(injector)
	httpapi.RegisterDI(injector)

	return injector
}

func runRelay(cfg *config.Config, injector do.Injector) error {
	api, err := do.Invoke[*httpapi.Server](injector)
	if err != nil {
		return err
	}
	journal := do.MustInvoke[*verify.Journal](injector)
	tel := do.MustInvoke[*telemetry.Telemetry](injector)
	repo := do.MustInvoke[repository.Repository](injector)
	sender := do.MustInvoke[notify.Sender](injector)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("relay listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	serveErr := g.Wait()

	journal.Wait()
	var errs []error
	if serveErr != nil {
		errs = append(errs, serveErr)
	}
	if c, ok := sender.(io.Closer); ok {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := repo.Close(); err != nil {
		errs = append(errs, err)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := tel.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
