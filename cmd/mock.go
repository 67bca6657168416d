package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"apibdd/internal/mockapi"
	"apibdd/pkg/logging"
)

func newMockCmd() *cobra.Command {
	var (
		addr    string
		latency time.Duration
	)

	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Serve the built-in mock Payment Initiation API",
		Long: `Mock starts an in-memory implementation of the Payment
Initiation and user management API so feature files can be developed
and debugged without a real backend. A test account
(testuser/testpass) is pre-seeded.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMock(addr, latency)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().DurationVar(&latency, "latency", 0, "artificial latency added to every request")

	return cmd
}

func runMock(addr string, latency time.Duration) error {
	server := mockapi.NewServer(mockapi.Options{Addr: addr, Latency: latency})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		logging.Info("mock", "Received %s, shutting down", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Stop(ctx)
	}
}
