package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hellausefulsoftware/headercheck/internal/common/vcs"
	"github.com/hellausefulsoftware/headercheck/internal/config"
	"github.com/hellausefulsoftware/headercheck/internal/github"
	"github.com/hellausefulsoftware/headercheck/internal/lifecycle"
	"github.com/hellausefulsoftware/headercheck/internal/logging"
	"github.com/hellausefulsoftware/headercheck/internal/templates"
	"github.com/hellausefulsoftware/headercheck/internal/webhook"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

func newServeCmd(opts *options) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Receive GitHub webhooks and check new and edited issues",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := opts.cfg
			if addr != "" {
				cfg.Webhook.Addr = addr
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides webhook.addr)")
	return cmd
}

// newService builds the platform service selected by the configuration.
func newService(cfg *config.Config) (vcs.Service, error) {
	factory := vcs.NewFactory(cfg)
	factory.RegisterProvider(config.DefaultPlatform, func(c *config.Config) vcs.ServiceProvider {
		return github.NewProvider(c)
	})
	return factory.GetService()
}

func serve(ctx context.Context, cfg *config.Config) error {
	service, err := newService(cfg)
	if err != nil {
		return err
	}

	login, err := service.AuthenticatedLogin(ctx)
	if err != nil {
		return fmt.Errorf("failed to resolve bot login: %w", err)
	}

	controller := lifecycle.NewController(
		service,
		templates.NewRepository(service, cfg.Templates.Directory, cfg.Templates.ReplyPath),
		cfg.Templates.Label,
	)

	// Events outlive the request that delivered them and are cancelled only
	// after shutdown has drained them.
	eventCtx, cancelEvents := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelEvents()
	dispatcher := webhook.NewDispatcher(eventCtx, controller)

	mux := http.NewServeMux()
	mux.Handle(cfg.Webhook.Path, webhook.NewHandler(cfg.Webhook.Secret, dispatcher.Dispatch))
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})

	server := &http.Server{
		Addr:              cfg.Webhook.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return eventCtx },
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("Listening for webhooks",
			"addr", cfg.Webhook.Addr,
			"path", cfg.Webhook.Path,
			"bot_login", login,
			"version", version)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logging.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Warn("Server shutdown did not complete", "error", err)
	}

	drained := make(chan struct{})
	go func() {
		dispatcher.Wait()
		close(drained)
	}()

	select {
	case <-drained:
		logging.Info("All in-flight events finished")
	case <-shutdownCtx.Done():
		logging.Warn("Cancelling in-flight events after shutdown timeout")
		cancelEvents()
		<-drained
	}
	return nil
}
