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

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/srgjo27/installation_proof/internal/adapter/handler"
	"github.com/srgjo27/installation_proof/internal/config"
	"github.com/srgjo27/installation_proof/internal/platform/database"
	"github.com/srgjo27/installation_proof/internal/platform/telemetry"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:          "installation-proof",
		Short:        "Installation proof approval and payout release service",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(serveCmd(), sweepCmd(), migrateCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setup() (config.App, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.App{}, nil, fmt.Errorf("config: %w", err)
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}))
	slog.SetDefault(log)
	return cfg, log, nil
}

func serveCmd() *cobra.Command {
	var noWorker bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the auto-approval worker",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			otelCfg := telemetry.Config{
				ServiceName: cfg.ServiceName,
				Version:     version,
				Endpoint:    cfg.OTLPEndpoint,
			}
			shutdownTracer, err := telemetry.InitTracer(ctx, otelCfg)
			if err != nil {
				return err
			}
			defer shutdownTracer(context.Background())

			shutdownMeter, err := telemetry.InitMeter(ctx, otelCfg)
			if err != nil {
				return err
			}
			defer shutdownMeter(context.Background())

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			if !noWorker {
				go a.approver.Run(ctx)
			}

			limiter := handler.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
			go pruneVisitors(ctx, limiter)

			gin.SetMode(gin.ReleaseMode)
			server := &http.Server{
				Addr: cfg.HTTPAddr,
				Handler: handler.NewRouter(handler.RouterDeps{
					Bookings:  a.bookings,
					Proofs:    a.proofs,
					Reviews:   a.reviews,
					JWTSecret: []byte(cfg.JWTSecret),
					Limiter:   limiter,
					Proxies:   cfg.TrustedProxies,
					Log:       log,
				}),
				ReadTimeout:  30 * time.Second,
				WriteTimeout: 60 * time.Second,
				IdleTimeout:  120 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("server starting", "addr", cfg.HTTPAddr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server startup failed: %w", err)
				}
			case <-ctx.Done():
			}

			log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			log.Info("server exiting")
			return nil
		},
	}

	cmd.Flags().BoolVar(&noWorker, "no-worker", false, "do not run the auto-approval worker in this process")
	return cmd
}

func pruneVisitors(ctx context.Context, rl *handler.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.Prune(3 * time.Minute)
		}
	}
}

func sweepCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Approve every proof whose review period has elapsed, then exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := buildApp(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.approver.Sweep(ctx)
			if err != nil {
				return err
			}

			log.Info("sweep finished",
				"skipped", res.Skipped,
				"scanned", res.Scanned,
				"approved", res.Approved,
				"conflicts", res.Conflicts,
				"failed", res.Failed,
			)
			if res.Failed > 0 {
				return fmt.Errorf("%d proofs failed to auto-approve", res.Failed)
			}
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := setup()
			if err != nil {
				return err
			}
			if cfg.StoreDriver != "postgres" {
				return fmt.Errorf("migrate needs STORE_DRIVER=postgres, got %q", cfg.StoreDriver)
			}

			db, err := database.NewPostgresDB(cmd.Context(), cfg.Database(), log)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}

			log.Info("schema applied")
			return nil
		},
	}
}
