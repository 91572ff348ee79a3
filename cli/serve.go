package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	httpLayer "loan-predictor/http"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web form prediction API",
	Long: `Serve exposes:
  POST /predict       form or JSON applicant attributes -> {"success", "prediction"}
  GET  /model         model version, feature order, categories and input bounds
  GET  /predictions   latest recorded predictions
  GET  /healthz       liveness
  GET  /metrics       Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", ":8080", "listen address")
	_ = viper.BindPFlag("addr", serveCmd.Flags().Lookup("addr"))
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := newApp(os.Stdout)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			a.logger.Error("close resources", "error", err)
		}
	}()
	log := a.logger

	rateLimiter := httpLayer.NewRateLimiter(a.cfg.RateLimit.Requests, a.cfg.RateLimit.Window)
	defer rateLimiter.Stop()

	router := httpLayer.NewRouter(httpLayer.RouterConfig{
		Predict:     httpLayer.NewPredictHandler(a.predictions, log),
		Model:       httpLayer.NewModelHandler(a.artifact.Schema()),
		RateLimiter: rateLimiter,
		OnLimited:   a.metrics.IncrementRateLimited,
		Gatherer:    a.registry,
		Logger:      log,
	})

	server := &http.Server{
		Addr:         a.cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// The first goroutine to fail (or a signal) stops both.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting http server", "addr", a.cfg.Addr, "model_version", a.artifact.Version)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Shutdown)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error("graceful shutdown failed", "error", err)
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server exited")
	return nil
}
