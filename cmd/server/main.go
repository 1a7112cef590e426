package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/linemk/tool-shop/internal/app"
	"github.com/linemk/tool-shop/internal/config"
	"github.com/linemk/tool-shop/internal/lib/cors"
	"github.com/linemk/tool-shop/internal/lib/logger"
	"github.com/linemk/tool-shop/internal/payment"
	"github.com/linemk/tool-shop/internal/service"
	"github.com/linemk/tool-shop/internal/storage"
	pkgerrors "github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

func main() {
	// загрузка конфигурации
	cfg := config.MustLoad()

	// инициализация логгера, зависит от настройки окружения
	log := logger.SetupLogger(cfg.Env)
	log.Info("starting tool shop", slog.String("env", cfg.Env))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, log, cfg); err != nil {
		log.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	log.Info("server gracefully stopped")
}

func run(ctx context.Context, log *slog.Logger, cfg *config.Config) error {
	// загружаем объект приложения, конфигом и подключением к БД
	application, err := app.NewApp(ctx, log, cfg)
	if err != nil {
		return pkgerrors.Wrap(err, "failed to initialize app")
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Error("failed to close database", slog.Any("error", err))
		}
	}()

	if cfg.Payment.SecretKey == "" {
		log.Warn("STRIPE_SECRET_KEY is not set, payment intents will fail")
	}

	// реализация слоев по работе с БД по каждому направлению
	toolRepo := storage.NewToolRepository(application.DB)
	orderRepo := storage.NewOrderRepository(application.DB)
	userRepo := storage.NewUserRepository(application.DB)
	reviewRepo := storage.NewReviewRepository(application.DB)
	paymentRepo := storage.NewPaymentRepository(application.DB)

	gateway := payment.NewStripeGateway(cfg.Payment.SecretKey, cfg.Payment.Currency, nil)

	services := app.Services{
		Tools:    service.NewToolService(log, toolRepo),
		Orders:   service.NewOrderService(log, orderRepo),
		Users:    service.NewUserService(log, userRepo, []byte(cfg.JWT.Secret), cfg.JWT.TTL()),
		Reviews:  service.NewReviewService(log, reviewRepo),
		Payments: service.NewPaymentService(log, application.DB, orderRepo, paymentRepo, gateway),
	}

	router := app.NewRouter(log, app.RouterConfig{
		JWTSecret: []byte(cfg.JWT.Secret),
		CORS: cors.Options{
			AllowedOrigins: cfg.CORS.AllowedOrigins,
			MaxAge:         cfg.CORS.MaxAge,
		},
	}, userRepo, services)

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("starting server", slog.String("address", cfg.HTTPServer.Address))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return pkgerrors.Wrap(err, "server error")
		}
		return nil
	})

	// graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return pkgerrors.Wrap(err, "server shutdown failed")
		}
		return nil
	})

	return g.Wait()
}
