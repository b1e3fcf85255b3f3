package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/cooksheet/cooksheet/internal/service"
	"github.com/cooksheet/cooksheet/internal/validate"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	var listen string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the validation HTTP service",
		Long: `Serve the validation API. POST /validate accepts a full snapshot and
returns the report with quality insights; concurrent submissions
supersede each other so only the latest snapshot's report is delivered.`,
		Example: `  # Serve on the configured address
  cooksheet serve

  # Serve on a specific port
  cooksheet serve --listen :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd, listen)
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "", "Bind address (overrides config)")
	return cmd
}

func runServe(cmd *cobra.Command, listen string) error {
	cmdCtx := NewCommandContext(cmd)

	addr := cmdCtx.Cfg.ListenAddr
	if listen != "" {
		addr = listen
	}

	store, closeStore, err := openHistory(cmdCtx)
	if err != nil {
		return err
	}
	defer closeStore()

	runner := service.NewRunner(validate.NewEngine(cmdCtx.Logger), store, cmdCtx.Logger)
	srv := service.NewServer(runner, store, cmdCtx.Logger)

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           srv.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		cmdCtx.Logger.Info("serving validation API", "addr", addr)
		errCh <- httpSrv.ListenAndServe()
	}()

	fmt.Fprintf(cmd.OutOrStdout(), "Listening on %s\n", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpSrv.Shutdown(shutdownCtx)
}
