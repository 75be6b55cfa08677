package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	vizerrors "github.com/depdiscover/depviz/pkg/errors"
)

// newServeCmd creates the serve command: a small HTTP server over the
// directory holding rendered artifacts, so results can be viewed in a
// browser on a remote machine.
func newServeCmd() *cobra.Command {
	var (
		addr string
		dir  string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered artifacts over HTTP",
		Long: `Serve rendered artifacts over HTTP.

The serve command exposes the artifact directory as static files, which is
handy when rendering happens on a headless machine. The server shuts down
when the command is interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info, err := os.Stat(dir)
			if err != nil {
				return vizerrors.Wrap(vizerrors.ErrCodeInvalidInput, err, "artifact directory %s", dir)
			}
			if !info.IsDir() {
				return vizerrors.New(vizerrors.ErrCodeInvalidInput, "%s is not a directory", dir)
			}
			return runServe(cmd, addr, dir)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "localhost:8080", "listen address")
	cmd.Flags().StringVarP(&dir, "dir", "d", ".", "directory to serve")
	return cmd
}

func runServe(cmd *cobra.Command, addr, dir string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	r.Handle("/*", http.FileServer(http.Dir(dir)))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Infof("Serving %s at http://%s", dir, addr)
	printSuccess("Server listening on http://%s", addr)
	printDetail("press Ctrl+C to stop")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("Shutdown incomplete: %v", err)
		}
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return vizerrors.Wrap(vizerrors.ErrCodeInternal, err, "serve %s", addr)
	}
}
