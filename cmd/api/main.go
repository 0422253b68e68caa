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

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/farmtrade/internal/auth"
	"github.com/MrJamesThe3rd/farmtrade/internal/config"
	"github.com/MrJamesThe3rd/farmtrade/internal/database"
	farmHttp "github.com/MrJamesThe3rd/farmtrade/internal/http"
	negotiationHandler "github.com/MrJamesThe3rd/farmtrade/internal/http/negotiation"
	"github.com/MrJamesThe3rd/farmtrade/internal/negotiation"
	negotiationStore "github.com/MrJamesThe3rd/farmtrade/internal/negotiation/store"
	orderStore "github.com/MrJamesThe3rd/farmtrade/internal/order/store"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if cfg.DB.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
	}

	maxDiscount, minDiff, err := cfg.Percentages()
	if err != nil {
		return err
	}

	rules := negotiation.NewRules(negotiation.RuleConfig{
		DefaultExpiry:       time.Duration(cfg.Negotiation.DefaultExpiryHours) * time.Hour,
		MaxExpiryHorizon:    time.Duration(cfg.Negotiation.MaxExpiryDays) * 24 * time.Hour,
		MaxCounterOffers:    cfg.Negotiation.MaxCounterOffers,
		MaxDiscountPercent:  maxDiscount,
		MinPriceDiffPercent: minDiff,
		MaxNotesLength:      cfg.Negotiation.MaxNotesLength,
	})

	negotiationService := negotiation.NewService(
		negotiationStore.New(db),
		orderStore.New(db),
		rules,
		negotiation.WithExpiringSoonWindow(cfg.Negotiation.ExpiringSoonWindow),
	)

	authenticator := auth.New(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer)

	router := farmHttp.New(farmHttp.Options{
		AllowedOrigins: cfg.Auth.AllowedOrigins,
		Authenticate:   authenticator.Middleware,
	}, negotiationHandler.NewHandler(negotiationService))

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("starting server", "app", cfg.App.Name, "addr", srv.Addr)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listening: %w", err)
		}

		return nil
	})

	if cfg.Sweeper.Enabled {
		g.Go(func() error {
			slog.Info("starting expiry sweeper", "interval", cfg.Sweeper.Interval)
			return negotiation.NewSweeper(negotiationService, cfg.Sweeper.Interval).Run(gctx)
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
