package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/signalsfoundry/orbital-tracker/catalog"
	"github.com/signalsfoundry/orbital-tracker/core"
	"github.com/signalsfoundry/orbital-tracker/internal/logging"
	"github.com/signalsfoundry/orbital-tracker/internal/observability"
	"github.com/signalsfoundry/orbital-tracker/model"
	"github.com/signalsfoundry/orbital-tracker/timectrl"
)

type config struct {
	CatalogPaths []string
	Tick         time.Duration
	Duration     time.Duration
	Accelerated  bool
	BatchSize    int
	MetricsAddr  string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("TRACKER")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:   "tracker",
		Short: "Propagate an orbital catalog and publish geodetic sub-points",
		Long: `tracker loads two-line element files into an in-memory catalog,
runs a propagation pass per tick, and publishes each object's geographic
sub-point, classification, and reentry-risk flag. Prometheus metrics are
served over HTTP for the duration of the run.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config{
				CatalogPaths: v.GetStringSlice("catalog"),
				Tick:         v.GetDuration("tick"),
				Duration:     v.GetDuration("duration"),
				Accelerated:  v.GetBool("accelerated"),
				BatchSize:    v.GetInt("batch-size"),
				MetricsAddr:  v.GetString("metrics-addr"),
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringSlice("catalog", nil, "two-line element file(s) to load; each file becomes a catalog group")
	cmd.Flags().Duration("tick", 1*time.Second, "simulation tick interval")
	cmd.Flags().Duration("duration", 0, "total simulated duration (0 runs until interrupted)")
	cmd.Flags().Bool("accelerated", false, "replay ticks as fast as possible instead of real time")
	cmd.Flags().Int("batch-size", core.DefaultBatchSize, "records per pipeline window")
	cmd.Flags().String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")

	cobra.CheckErr(v.BindPFlags(cmd.Flags()))
	return cmd
}

func run(ctx context.Context, cfg config) error {
	log := logging.NewFromEnv()

	collector, err := observability.NewTrackerCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		return err
	}

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		return err
	}

	metricsSrv := serveMetrics(cfg.MetricsAddr, collector, log)

	store := catalog.NewStore(catalog.WithMetricsRecorder(collector))
	for _, path := range cfg.CatalogPaths {
		records, err := LoadElementFile(path)
		if err != nil {
			log.Warn(ctx, "skipping catalog file",
				logging.String("path", path),
				logging.String("error", err.Error()))
			continue
		}
		if err := store.ReplaceGroup(groupName(path), records); err != nil {
			log.Warn(ctx, "rejecting catalog file",
				logging.String("path", path),
				logging.String("error", err.Error()))
			continue
		}
		log.Info(ctx, "loaded catalog group",
			logging.String("group", groupName(path)),
			logging.Int("records", len(records)))
	}

	prop := core.NewSGP4Propagator()
	resolver := core.NewResolver(prop, log)
	pipeline := core.NewPipeline(resolver, prop,
		core.WithLogger(log),
		core.WithMetrics(collector),
	)

	mode := timectrl.RealTime
	if cfg.Accelerated {
		mode = timectrl.Accelerated
	}
	tc := timectrl.NewTimeController(time.Now().UTC(), cfg.Tick, mode)

	tc.AddListener(func(simTime time.Time) {
		pipeline.ProcessBatched(ctx, store.Records(), simTime, cfg.BatchSize,
			func(objects []*model.ProcessedObject, complete bool) {
				if !complete {
					return
				}
				store.PublishObjects(objects)
				collector.SetReentryCount(countReentry(objects))
				log.Info(ctx, "pass published",
					logging.String("sim_time", simTime.Format(time.RFC3339)),
					logging.Int("objects", len(objects)),
					logging.Int("reentry", countReentry(objects)))
			})
	})

	log.Info(ctx, "starting tracker",
		logging.String("tick", cfg.Tick.String()),
		logging.String("duration", cfg.Duration.String()),
		logging.Int("batch_size", cfg.BatchSize))

	done := tc.Start(cfg.Duration)

	stopCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	select {
	case <-done:
	case <-stopCtx.Done():
	}

	log.Info(ctx, "shutting down tracker")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
	observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)
	return nil
}

func serveMetrics(addr string, collector *observability.TrackerCollector, log logging.Logger) *http.Server {
	if collector == nil || addr == "" {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(context.Background(), "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(context.Background(), "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}

func countReentry(objects []*model.ProcessedObject) int {
	n := 0
	for _, obj := range objects {
		if obj.ReentryRisk {
			n++
		}
	}
	return n
}

func groupName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
