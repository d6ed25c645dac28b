package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/covercheck/internal/api"
	"github.com/ppiankov/covercheck/internal/logging"
	"github.com/ppiankov/covercheck/internal/vessels"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var allowDegraded bool

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the validation HTTP API",
	Long: `Serve the validation API:

  POST /validate   {"document_text": "..."} -> validation report
  GET  /           health and readiness

The approved vessel list must load or the server refuses to start. Without
extraction credentials the server refuses to start unless --allow-degraded
is set, in which case /validate answers 503 until it is configured.

Example:
  covercheck serve
  covercheck serve --addr :9090 --vessels ./valid_vessels.json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :8080)")
	serveCmd.Flags().BoolVar(&allowDegraded, "allow-degraded", false, "start without a configured extractor")
	serveCmd.Flags().Bool("watch", false, "reload the vessel list when the file changes")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := newApp(cfg, allowDegraded)
	if err != nil {
		return err
	}

	logger := logging.New("serve")
	handler := &api.Handler{
		Validator:    a.pipeline,
		Version:      Version,
		MaxBodyBytes: cfg.Server.MaxBodyBytes,
		Logger:       logging.New("api"),
	}
	srv := api.NewServer(cfg.Server.Addr, handler, cfg.Server.ReadHeaderTimeout)

	out := cmd.ErrOrStderr()
	banner(cmd, "covercheck API")
	fmt.Fprintf(out, "  Listen:       %s\n", cfg.Server.Addr)
	fmt.Fprintf(out, "  Provider:     %s/%s\n", cfg.Extraction.Provider, cfg.Extraction.Model)
	fmt.Fprintf(out, "  Vessels:      %s (%d approved)\n", cfg.Vessels.Path, a.holder.Current().Len())
	fmt.Fprintf(out, "  Rules:        %s\n", ruleSummary(cfg))
	fmt.Fprintf(out, "  Cache:        %v\n", cfg.Cache.Enabled)
	fmt.Fprintf(out, "\n")

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("listening", slog.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if cfg.Vessels.Watch {
		g.Go(func() error {
			return vessels.Watch(gctx, cfg.Vessels.Path, a.holder, logging.New("vessels"))
		})
	}

	return g.Wait()
}
