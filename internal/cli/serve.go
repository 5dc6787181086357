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

	"faspmgr/internal/fasp"
	"faspmgr/internal/httpapi"
	"faspmgr/internal/manager"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var addr string
	var maxActive int
	cmd := &cobra.Command{
		Use:     "serve",
		Short:   "Run the transfer daemon with its HTTP API",
		Example: "  faspmgr serve --addr 127.0.0.1:8090\n  faspmgr serve --config /etc/faspmgr.yaml",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if addr != "" {
				a.cfg.Addr = addr
			}
			return a.serve(ctx, maxActive)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (default from config)")
	cmd.Flags().IntVar(&maxActive, "max-active", 0, "Maximum concurrently running transfers (0 = default)")
	return cmd
}

// newDaemon wires the manager, websocket feed and router.
func (a *app) newDaemon(ctx context.Context, maxActive int) (*manager.Manager, http.Handler) {
	cfg := a.cfg
	mgr := manager.NewWithConfig(manager.ManagerConfig{
		Executable:  cfg.Executable,
		SearchPaths: cfg.SearchPaths,
		MaxActive:   maxActive,
		Agent: fasp.AgentConfig{
			AcceptTimeout:  cfg.AcceptTimeout(),
			InterruptGrace: cfg.InterruptGrace(),
			Logger:         &a.log,
		},
		Logger: &a.log,
	})
	feed := httpapi.NewFeed(ctx, a.log)
	_ = mgr.RegisterListener(feed, fasp.FormatEnhanced)

	httpapi.SetLogger(a.log)
	if len(cfg.CORSOrigins) > 0 {
		httpapi.SetCORSOptions(true, cfg.CORSOrigins,
			[]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
			[]string{"Content-Type"})
	}
	return mgr, httpapi.NewMux(mgr, feed)
}

func (a *app) serve(ctx context.Context, maxActive int) error {
	mgr, handler := a.newDaemon(ctx, maxActive)
	srv := &http.Server{
		Addr:              a.cfg.Addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.cfg.Addr).Str("executable", a.cfg.Executable).Msg("faspmgr listening")
		errCh <- srv.ListenAndServe()
	}()

	var serveErr error
	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			serveErr = err
		}
	case <-ctx.Done():
		a.log.Info().Msg("shutting down")
	}

	shCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shCtx); err != nil {
		a.log.Warn().Err(err).Msg("graceful shutdown error")
	}
	if err := mgr.Close(shCtx); err != nil {
		a.log.Warn().Err(err).Msg("transfers still running at shutdown")
	}
	return serveErr
}
