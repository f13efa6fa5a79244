package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"firstbites/config"
	"firstbites/routes"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func serveCommand(cfg *config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is required")
			}
			if cfg.IsProduction() {
				gin.SetMode(gin.ReleaseMode)
			}

			a, err := newApp(ctx, *cfg)
			if err != nil {
				return err
			}
			defer a.close()

			r := routes.SetupRouter(routes.Deps{
				JWTSecret:  cfg.JWTSecret,
				Sessions:   a.sessions,
				Push:       a.push,
				Reminders:  a.reminders,
				Recognizer: a.recognizer,
				Dispatcher: a.dispatcher,
				Uploader:   a.uploader,
				Hub:        a.hub,
				Registry:   a.registry,
				Logger:     a.log.Named("http"),
				DevRoutes:  !cfg.IsProduction(),
			})

			srv := &http.Server{
				Addr:              ":" + cfg.ServerPort,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.log.Infow("listening", "addr", srv.Addr, "env", cfg.Environment)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				a.log.Errorw("forced shutdown", "error", err)
				return err
			}
			a.sessions.Flush()
			return nil
		},
	}
}
