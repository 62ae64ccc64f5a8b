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

	"github.com/spf13/cobra"

	"github.com/intellidetect/dashboard/internal/mockapi"
)

const shutdownTimeout = 10 * time.Second

func newMockServerCmd(c *cli) *cobra.Command {
	var addr string
	var seed bool
	cmd := &cobra.Command{
		Use:   "mock-server",
		Short: "Run an in-memory backend for local development",
		Long: `mock-server serves both the accident and the obstacle API from one process.
Point the dashboard at it with:

  intellidetect --accident-api-url http://<addr>/api/v1 --obstacle-api-url http://<addr>/api/v1`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Mock.Addr
			}
			srv := mockapi.New(mockapi.WithSecret(c.cfg.Mock.Secret), mockapi.WithLogger(c.log))
			if seed {
				if err := srv.Seed(); err != nil {
					return err
				}
			}

			ln, err := net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "mock backend listening on http://%s%s\n", ln.Addr(), mockapi.BasePath) //nolint:errcheck
			if seed {
				fmt.Fprintf(cmd.OutOrStdout(), "demo account: %s / %s\n", mockapi.DemoUsername, mockapi.DemoPassword) //nolint:errcheck
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return c.serve(ctx, ln, srv.Handler())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, 127.0.0.1:8080)")
	cmd.Flags().BoolVar(&seed, "seed", true, "create the demo account and sample records")
	return cmd
}

// serve runs handler on ln until ctx is cancelled, then shuts down gracefully.
func (c *cli) serve(ctx context.Context, ln net.Listener, handler http.Handler) error {
	hs := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := hs.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mock server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		c.log.Info().Msg("shutting down mock server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("mock server shutdown: %w", err)
		}
		<-errCh
		return nil
	}
}
