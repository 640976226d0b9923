package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pigeonworks-llc/billed/internal/bills"
	"github.com/pigeonworks-llc/billed/internal/client"
	"github.com/pigeonworks-llc/billed/internal/server"
	"github.com/pigeonworks-llc/billed/internal/store"
	"github.com/pigeonworks-llc/billed/internal/views"
	"github.com/pigeonworks-llc/billed/internal/web"
	"github.com/pigeonworks-llc/billed/pkg/db"
	"github.com/spf13/cobra"
)

var (
	servePort     string
	serveNoVisits bool
)

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the bills pages and the bill API",
	Long: `Start the HTTP server.

Bills are read from the local store unless BILLED_API_URL points at a
remote bill API, in which case the pages fetch through it (with OAuth2
client credentials when BILLED_API_CLIENT_ID is set). Every bills page
load is recorded in the visit history.

Example:
  billed serve
  billed serve --port 9090 --no-visits`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "port to listen on (overrides BILLED_PORT)")
	serveCmd.Flags().BoolVar(&serveNoVisits, "no-visits", false, "do not record page visits")
}

// writeMargin is the time left to render and write a page once its bill
// fetch has returned.
const writeMargin = 15 * time.Second

// writeTimeout bounds a response so that a page whose fetch runs for the
// full fetch timeout can still render its error view.
func writeTimeout(fetch time.Duration) time.Duration {
	return fetch + writeMargin
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, paths, err := loadConfig("server.port", "server.locale", "storage.dataDir")
	if err != nil {
		return err
	}

	logLevel := slog.LevelInfo
	if cfg.Debug {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	st, err := store.New(paths.GetStorePath())
	if err != nil {
		return fmt.Errorf("failed to initialize store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			slog.Error("failed to close store", "error", err)
		}
	}()
	slog.Info("store initialized", "path", paths.GetStorePath())

	var backend web.BillBackend = st
	if cfg.Remote.Enabled() {
		backend = client.New(cmd.Context(), client.Config{
			BaseURL:      cfg.Remote.URL,
			ClientID:     cfg.Remote.ClientID,
			ClientSecret: cfg.Remote.ClientSecret,
			TokenURL:     cfg.Remote.TokenURL,
			Timeout:      cfg.Server.FetchTimeout,
		})
		slog.Info("reading bills from remote API", "url", cfg.Remote.URL)
	}

	var visits web.VisitRecorder
	if !serveNoVisits {
		conn, err := db.Open(paths.GetHistoryPath())
		if err != nil {
			return fmt.Errorf("failed to open visit history: %w", err)
		}
		defer conn.Close()
		visits = db.NewVisitLog(conn)
		slog.Info("visit history initialized", "path", paths.GetHistoryPath())
	}

	renderer, err := views.New()
	if err != nil {
		return err
	}

	materializer, err := bills.NewMaterializer(cfg.Server.Locale)
	if err != nil {
		return err
	}

	pages := web.New(web.Options{
		Backend:      backend,
		Sessions:     st,
		Views:        renderer,
		Materializer: materializer,
		Visits:       visits,
		FetchTimeout: cfg.Server.FetchTimeout,
		Logger:       logger,
	})

	port := cfg.Server.Port
	if servePort != "" {
		port = servePort
	}
	addr := fmt.Sprintf(":%s", port)

	srv := &http.Server{
		Addr: addr,
		Handler: server.NewRouter(server.Deps{
			Store:      st,
			Pages:      pages,
			APIClients: cfg.Server.APIClients,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: writeTimeout(cfg.Server.FetchTimeout),
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("starting billed", "addr", addr, "locale", cfg.Server.Locale, "data_dir", paths.GetDataDir())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("server error: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
