package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/waypoint"
	"github.com/aretw0/waypoint/internal/cli"
	httpAdapter "github.com/aretw0/waypoint/pkg/adapters/http"
	"github.com/aretw0/waypoint/pkg/domain"
	"github.com/aretw0/waypoint/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP playback server",
	Long: `Starts the playback controller behind a JSON API over HTTP.
Every rendered step is pushed to subscribers of GET /events (Server-Sent Events),
and Prometheus metrics are served on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		logger := newLogger(cfg)

		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}

		streams := httpAdapter.NewStreamManager(logger)
		playOpts, err := cfg.PlaybackOptions()
		if err != nil {
			return err
		}

		vis, err := waypoint.New(
			waypoint.WithGraph(cfg.BuildGraph()),
			waypoint.WithStart(cfg.StartVertex()),
			waypoint.WithLogger(logger),
			waypoint.WithRenderer(streams.Render),
			waypoint.WithLifecycleHooks(domain.CombineHooks(metrics.Hooks(), streams.Hooks())),
			waypoint.WithPlaybackOptions(playOpts...),
		)
		if err != nil {
			return fmt.Errorf("error initializing waypoint: %w", err)
		}
		defer vis.Close()
		metrics.SetInterval(vis.Controller().Interval().Seconds())

		if _, err := vis.Build(); err != nil {
			return err
		}

		handler, err := httpAdapter.NewHandler(vis,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithMetrics(reg),
			httpAdapter.WithLogger(logger),
		)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		sigCtx := cli.NewSignalContext(context.Background())
		defer sigCtx.Cancel()

		g, ctx := errgroup.WithContext(sigCtx)
		g.Go(func() error {
			logger.Info("Starting Waypoint server", "address", srv.Addr, "vertices", vis.Graph().Len())
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			logger.Info("Shutting down", "signal", sigCtx.Signal())

			// Give outstanding requests a deadline for completion.
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown did not complete: %w", err)
			}
			return nil
		})

		if err := g.Wait(); err != nil {
			return err
		}
		logger.Info("Waypoint server stopped gracefully")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (overrides config)")
}
