package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/abhisek/pysis/internal/api"
	"github.com/abhisek/pysis/internal/gateway"
	"github.com/abhisek/pysis/internal/stats"
)

// shutdownTimeout bounds graceful shutdown of an HTTP service.
const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run one of the PySis HTTP services",
}

var serveCoreCmd = &cobra.Command{
	Use:   "core",
	Short: "Run the conversation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateCore(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		svc, err := newTutor(ctx, st)
		if err != nil {
			return err
		}
		return serveHTTP(ctx, "core", addrFlag(cmd, cfg.CoreAddr), api.NewCoreRouter(svc, logger))
	},
}

var serveGatewayCmd = &cobra.Command{
	Use:   "gateway",
	Short: "Run the Telegram webhook gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateGateway(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sender, err := gateway.NewTelegramSender(cfg.TelegramBotToken, "", nil)
		if err != nil {
			return err
		}
		logger.Info("telegram bot authorized", zap.String("username", sender.Username()))

		if cfg.TelegramWebhookURL != "" {
			if err := sender.RegisterWebhook(cfg.TelegramWebhookURL); err != nil {
				return err
			}
			logger.Info("webhook registered", zap.String("url", cfg.TelegramWebhookURL))
		}

		core := gateway.NewCoreClient(cfg.CoreServiceURL, cfg.CoreTimeout, logger)
		h := gateway.NewHandler(core, sender, logger)
		return serveHTTP(ctx, "gateway", addrFlag(cmd, cfg.GatewayAddr), gateway.NewRouter(h))
	},
}

var serveStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Run the statistics service",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.ValidateStats(); err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		st, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		svc := stats.NewService(st.StatsRepo(), nil, cfg.Timezone)
		return serveHTTP(ctx, "stats", addrFlag(cmd, cfg.StatsAddr), api.NewStatsRouter(svc, logger))
	},
}

func addrFlag(cmd *cobra.Command, fallback string) string {
	if a, _ := cmd.Flags().GetString("addr"); a != "" {
		return a
	}
	return fallback
}

// serveHTTP runs handler on addr until ctx is cancelled, then shuts the
// server down gracefully.
func serveHTTP(ctx context.Context, name, addr string, handler http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log := logger.With(zap.String("service", name))

	errc := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		if err != nil {
			return fmt.Errorf("%s server: %w", name, err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("%s server forced to shutdown: %w", name, err)
	}
	log.Info("server stopped")
	return nil
}

func init() {
	for _, c := range []*cobra.Command{serveCoreCmd, serveGatewayCmd, serveStatsCmd} {
		c.Flags().String("addr", "", "Listen address (overrides the service's *_ADDR env var)")
		serveCmd.AddCommand(c)
	}
}
