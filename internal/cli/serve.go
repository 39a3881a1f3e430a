package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/thicketlab/thicket/internal/server"
	"github.com/thicketlab/thicket/pkg/config"
	"github.com/thicketlab/thicket/pkg/store"
)

// newServeCmd creates the serve command, which runs the HTTP API.
func newServeCmd(flags *rootFlags) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API server",
		Long: `Run the HTTP API server exposing metadata lookup, effective models,
graph resolution, and stored-graph retrieval.

Graphs are persisted to MongoDB when store.mongo_uri is configured,
in process memory otherwise.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			logger := loggerFromContext(ctx)

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}

			env, cleanup, err := newEnvironment(ctx, cfg, logger, flags.noCache)
			if err != nil {
				return err
			}
			defer cleanup()

			st, err := newStore(ctx, cfg.Store)
			if err != nil {
				return err
			}
			defer st.Close(context.Background())

			srv := &http.Server{
				Addr:              cfg.Server.Addr,
				Handler:           server.New(env, st, logger).Router(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				logger.Info("listening", "addr", cfg.Server.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
				logger.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides config)")

	return cmd
}

func newStore(ctx context.Context, cfg config.StoreConfig) (store.Store, error) {
	if cfg.MongoURI == "" {
		return store.NewMemoryStore(), nil
	}
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return store.NewMongoStore(connectCtx, cfg.MongoURI, cfg.Database, cfg.Collection)
}
