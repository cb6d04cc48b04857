package cmd

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"perpus/api"
	"perpus/config"
	"perpus/log"
	"perpus/repository"
)

func newServeCommand(cfg func() config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Migrate the schema and serve the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg())
		},
	}
}

func serve(ctx context.Context, cfg config.Config) error {
	logger := log.GetLogger(ctx)
	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()
	if err = repository.Migrate(a.db); err != nil {
		return err
	}

	if a.listener != nil {
		go func() {
			if err := a.listener.Run(ctx); err != nil {
				logger.WithError(err).Errorln("event listener stopped")
			}
		}()
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.NewRouter(a.handler(), cfg.HTTP.RequestTimeout),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.Infof("listening on %s", cfg.HTTP.Addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err = <-errs:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Infoln("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}
