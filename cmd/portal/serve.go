package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/99minutos/agency-portal/internal/api"
	"github.com/99minutos/agency-portal/internal/api/handler"
	"github.com/99minutos/agency-portal/internal/api/metrics"
	"github.com/99minutos/agency-portal/internal/api/middleware"
	"github.com/99minutos/agency-portal/internal/core/ports"
	"github.com/99minutos/agency-portal/internal/core/service"
	"github.com/99minutos/agency-portal/internal/core/validation"
	"github.com/99minutos/agency-portal/internal/infrastructure/authapi"
	"github.com/99minutos/agency-portal/internal/infrastructure/catalog"
	"github.com/99minutos/agency-portal/internal/infrastructure/db/memory"
	"github.com/99minutos/agency-portal/internal/infrastructure/db/redis"
	"github.com/99minutos/agency-portal/internal/infrastructure/queue"
	"github.com/99minutos/agency-portal/internal/pkg/config"
	"github.com/99minutos/agency-portal/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the portal pages and session API.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx)
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := config.Load(ctx)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "agency-portal",
	})

	cat, err := catalog.Load(cfg.Catalog.File)
	if err != nil {
		return err
	}

	checks := map[string]handler.Check{
		"auth_service": authapi.Probe(cfg.Upstream.BaseURL, nil),
	}

	memCookies := memory.NewCookieStore(cfg.Session.TTL)
	var cookies ports.CookieStore = memCookies
	if cfg.Redis.Enabled {
		rdb, err := redis.Connect(ctx, redis.Config{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer rdb.Close()

		cookies = redis.NewCookieStore(rdb, cfg.Session.TTL)
		checks["redis"] = func(ctx context.Context) error { return redis.Ping(ctx, rdb, time.Second) }
		log.Info().Str("addr", cfg.Redis.Addr).Msg("upstream cookies stored in redis")
	}

	newAPI, err := authapi.NewFactory(authapi.Options{
		BaseURL: cfg.Upstream.BaseURL,
		Timeout: cfg.Upstream.Timeout,
		Policy:  authapi.DefaultPolicy(metrics.UnauthorizedRedirectsTotal.Inc),
		Observe: metrics.ObserveUpstream,
	}, cookies, logger.For("authapi"))
	if err != nil {
		return err
	}

	dispatcher := queue.NewDispatcher(0, queue.Sinks{
		service.NewAuditSink(logger.For("audit")),
		metrics.TransitionSink{},
	}, logger.For("dispatcher"))

	v := validation.New()
	registry := service.NewRegistry(newAPI, v, service.RegistryOptions{
		IdleTTL: cfg.Session.IdleTTL,
		Publish: dispatcher.Enqueue,
		Observe: func(n int) { metrics.ActiveSessions.Set(float64(n)) },
	}, logger.For("session"))

	e, err := api.NewRouter(api.Deps{
		Sessions:  registry,
		Launcher:  service.NewLauncher(cat),
		Validator: v,
		Cookie: middleware.SessionCookieConfig{
			Name:   cfg.Session.CookieName,
			Secret: cfg.Session.Secret,
			TTL:    cfg.Session.TTL,
			Secure: cfg.Session.Secure,
		},
		Checks: checks,
		Log:    logger.For("http"),
	})
	if err != nil {
		return err
	}

	group, ctx := errgroup.WithContext(ctx)
	dispatcher.Start(ctx)
	registry.Start(ctx)
	if !cfg.Redis.Enabled {
		memCookies.Start(ctx, time.Minute)
	}

	group.Go(func() error {
		log.Info().Str("port", cfg.Port).Str("upstream", cfg.Upstream.BaseURL).Msg("portal listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-ctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
