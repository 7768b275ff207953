package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"salesdb/internal/handlers"
	"salesdb/internal/loader"
	"salesdb/internal/query"
	"salesdb/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the revenue HTTP API",
	Long: `Serve starts the HTTP API on the configured listen address.

The schema is created on startup if missing. SIGINT/SIGTERM trigger a
graceful shutdown with a 10 second drain.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := setup(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.store.EnsureSchema(ctx); err != nil {
		return err
	}

	ld := &loader.Loader{
		Store:         a.store,
		Logger:        zap.NewStdLog(a.log),
		BatchSize:     a.cfg.Loader.BatchSize,
		ParserOptions: a.cfg.Loader.Parser,
	}
	svc := &query.Service{Store: a.store}

	if a.cfg.LogMode == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(server.RouterConfig{
		RevenueHandler: handlers.NewRevenueHandler(a.log, svc),
		IngestHandler:  handlers.NewIngestHandler(a.log, ld.Load),
	})

	srv := &http.Server{
		Addr:              a.cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("listening", zap.String("addr", a.cfg.Listen),
			zap.String("storage", a.cfg.Storage.Kind))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	a.log.Info("shutting down")
	shutCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
