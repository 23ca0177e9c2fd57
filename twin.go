package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/businesscomms/bcctl/internal/twin"
)

const (
	twinReadHeaderTimeout = 10 * time.Second
	twinShutdownTimeout   = 5 * time.Second
	twinCredentialsFile   = "twin-credentials.json"
)

func (a *app) newTwinCmd() *cobra.Command {
	var (
		listen   string
		credsOut string
		lenient  bool
	)

	cmd := &cobra.Command{
		Use:   "twin",
		Short: "Serve a local simulated Business Communications API",
		Long: "Serve an in-memory Business Communications API with its own token\n" +
			"endpoint, and write a service-account credentials file that it accepts.\n" +
			"Point other bcctl commands at it with --endpoint and --credentials.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("listen") {
				listen = a.cfg.Twin.Listen
			}

			if credsOut == "" {
				credsOut = filepath.Join(filepath.Dir(a.cfg.LedgerPath), twinCredentialsFile)
			}

			strict := a.cfg.Twin.StrictMasks && !lenient

			return a.serveTwin(cmd.Context(), listen, credsOut, strict)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "address to listen on (default from config)")
	cmd.Flags().StringVar(&credsOut, "credentials-out", "", "where to write the twin's credentials file")
	cmd.Flags().BoolVar(&lenient, "lenient", false, "clear masked fields missing from the body instead of rejecting the patch")

	return cmd
}

// serveTwin runs the twin until ctx is canceled.
func (a *app) serveTwin(ctx context.Context, listen, credsOut string, strict bool) error {
	ln, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("twin: listening on %s: %w", listen, err)
	}

	base := "http://" + ln.Addr().String()

	srv := twin.New(twin.WithLogger(a.logger), twin.WithStrictMasks(strict))

	sa, err := srv.NewServiceAccount("bcctl", base+"/token")
	if err != nil {
		ln.Close()

		return err
	}

	if err := sa.WriteCredentials(credsOut); err != nil {
		ln.Close()

		return err
	}

	httpSrv := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: twinReadHeaderTimeout,
	}

	errCh := make(chan error, 1)

	go func() {
		errCh <- httpSrv.Serve(ln)
	}()

	a.statusf("Twin listening on %s (strict masks: %t)\n", base, strict)
	a.statusf("Credentials written to %s\n", credsOut)
	a.statusf("Try: bcctl --endpoint %s --credentials %s brand sample\n", base, credsOut)

	select {
	case err := <-errCh:
		return fmt.Errorf("twin: serving: %w", err)
	case <-ctx.Done():
	}

	a.logger.Info("shutting down twin",
		slog.Int("requests", srv.Requests()),
		slog.Int("token_grants", srv.TokenGrants()),
	)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), twinShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("twin: shutting down: %w", err)
	}

	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("twin: serving: %w", err)
	}

	return nil
}
