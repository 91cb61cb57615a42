package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/maply-labs/risk-engine/internal/model"
	"github.com/maply-labs/risk-engine/internal/regions"
	"github.com/maply-labs/risk-engine/internal/server"
)

var (
	servePort   int
	serveNoWarm bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the risk API server",
	Long:  "Runs the pipeline once over the configured sources, caches the scored regions, and serves them over HTTP.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		engine := initEngine(st)
		catalog := regions.NewCatalog()

		if !serveNoWarm {
			zap.L().Info("warming catalog", zap.Strings("sources", cfg.Data.Sources))
			env := engine.Run(ctx, cfg.Data.Sources)
			if env.Status == model.StatusSuccess {
				catalog.Replace(env.Data)
				zap.L().Info("catalog loaded", zap.Int("regions", env.TotalRegions))
			} else {
				// Fall back to the last persisted results so a transient
				// source outage does not blank the API.
				zap.L().Warn("startup pipeline failed", zap.String("message", env.Message))
				if cached, err := st.LatestResults(ctx); err == nil && len(cached) > 0 {
					catalog.Replace(cached)
					zap.L().Info("catalog loaded from last successful run", zap.Int("regions", len(cached)))
				}
			}
		}

		srv := &http.Server{
			Handler: server.New(catalog, engine, cfg.Data.Sources, st).Router(cfg.Server.CORSOrigins),
		}

		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port()))
		if err != nil {
			return eris.Wrap(err, "server listen")
		}

		zap.L().Info("starting server", zap.Int("port", port()))
		return serveHTTP(ctx, srv, ln)
	},
}

// serveHTTP serves on ln until ctx is cancelled, then drains in-flight
// requests before returning. Requests still running after the drain window
// are cut off.
func serveHTTP(ctx context.Context, srv *http.Server, ln net.Listener) error {
	shutdownDone := make(chan error, 1)
	go func() {
		<-ctx.Done()
		zap.L().Info("shutting down server")
		drainCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		shutdownDone <- srv.Shutdown(drainCtx)
	}()

	if err := srv.Serve(ln); err != nil && err != http.ErrServerClosed {
		return eris.Wrap(err, "server serve")
	}
	if err := <-shutdownDone; err != nil {
		return eris.Wrap(err, "server shutdown")
	}
	return nil
}

func port() int {
	if servePort != 0 {
		return servePort
	}
	return cfg.Server.Port
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoWarm, "no-warm", false, "skip the startup pipeline run")
	rootCmd.AddCommand(serveCmd)
}
