package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/pdiddy/propverify/internal/upload"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the upload server",
	Long: `Serve accepts report uploads on POST /api/upload as multipart forms with
an "orderId" field and a "file" part. Stored documents are recorded in a
SQLite ledger that can be queried on GET /api/uploads/{orderId}. Prometheus
metrics are exposed on /metrics.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().String("storage-dir", "", "directory for uploaded documents (default uploads)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	overrideString(cmd.Flags(), "addr", &cfg.Server.Addr)
	overrideString(cmd.Flags(), "storage-dir", &cfg.Server.StorageDir)

	if err := os.MkdirAll(filepath.Dir(cfg.Server.LedgerPath), 0o755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}
	ledger, err := upload.OpenLedger(cfg.Server.LedgerPath)
	if err != nil {
		return err
	}
	defer ledger.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	srv, err := upload.NewServer(cfg.Server, ledger, reg, logger)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("upload server listening", zap.String("addr", cfg.Server.Addr))
		fmt.Fprintf(os.Stderr, "Listening on %s\n", cfg.Server.Addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("upload server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down upload server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}
	return nil
}
