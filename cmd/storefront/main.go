package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/xlaiver/cl4projectsurebet-vip/internal/admin"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/auth"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/catalog"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/checkout"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/config"
	healthgrpc "github.com/xlaiver/cl4projectsurebet-vip/internal/grpc"
	h "github.com/xlaiver/cl4projectsurebet-vip/internal/http"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/logger"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/service"
	"github.com/xlaiver/cl4projectsurebet-vip/internal/session"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"golang.org/x/sync/errgroup"
)

const serviceName = "storefront"

func main() {
	if err := run(); err != nil {
		slog.Error("storefront exited", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(logger.Options{
		Service:   serviceName,
		Env:       cfg.AppEnv,
		Level:     cfg.LogLevel,
		AddSource: !cfg.IsProduction(),
	})

	tp := newTracerProvider(cfg)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := tp.Shutdown(ctx); err != nil {
			log.Warn("tracer provider shutdown", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	plans, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	repo, err := openCustomerStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer repo.Close()
	log.Info("customer store ready", "backend", cfg.StoreBackend)

	sessions, err := openSessionStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer sessions.close()
	log.Info("session store ready", "backend", cfg.SessionBackend)

	provider, err := newAuthProvider(cfg, log)
	if err != nil {
		return err
	}

	pub := newPublisher(cfg, log)
	defer func() {
		if err := pub.Close(); err != nil {
			log.Warn("publisher close", "error", err)
		}
	}()

	limiter := auth.NewLoginLimiter(cfg.LoginRPS, cfg.LoginBurst)
	customers := admin.NewService(repo, cfg.Location)

	deps := service.Deps{
		Catalog:   plans,
		Sessions:  sessions.store,
		Checkout:  checkout.NewMaterializer(repo, checkout.WithSaveTimeout(cfg.StoreTimeout)),
		Gate:      auth.NewGate(provider, log),
		Customers: customers,
		Publisher: pub,
		Logger:    log,
	}
	if sessions.locks != nil {
		deps.Locks = sessions.locks
	}
	store := service.New(deps)

	ready := func(ctx context.Context) error {
		if err := repo.Ping(ctx); err != nil {
			return fmt.Errorf("customer store: %w", err)
		}
		if sessions.ping != nil {
			if err := sessions.ping(ctx); err != nil {
				return fmt.Errorf("session store: %w", err)
			}
		}
		return nil
	}

	router := h.NewRouter(store, customers, h.RouterConfig{
		RequestTimeout: cfg.RequestTimeout,
		Tokens:         session.NewTokens(cfg.SessionSecret, cfg.SessionTTL),
		LoginLimiter:   limiter,
		SecureCookies:  cfg.IsProduction(),
		Logger:         log,
		Ready:          ready,
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	checks := map[string]healthgrpc.Check{"customers": repo.Ping}
	if sessions.ping != nil {
		checks["sessions"] = sessions.ping
	}
	health := healthgrpc.NewHealthServer(checks, 10*time.Second, log)

	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", cfg.GRPCPort))
	if err != nil {
		return fmt.Errorf("listen grpc: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("http server listening", "port", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("grpc health server listening", "port", cfg.GRPCPort)
		return health.Serve(lis)
	})

	g.Go(func() error {
		health.Watch(gctx)
		return nil
	})

	g.Go(func() error {
		limiter.Run(gctx)
		return nil
	})

	if sessions.sweep != nil {
		g.Go(func() error {
			sessions.sweep(gctx)
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		health.GracefulStop()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("storefront stopped")
	return nil
}

func newTracerProvider(cfg *config.Config) *sdktrace.TracerProvider {
	res := resource.NewSchemaless(
		attribute.String("service.name", serviceName),
		attribute.String("deployment.environment", cfg.AppEnv),
	)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.AlwaysSample())),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	return tp
}
