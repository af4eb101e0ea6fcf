package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"sort"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/frontierkit/crawlsched/internal/config"
	"github.com/frontierkit/crawlsched/internal/downloader"
	"github.com/frontierkit/crawlsched/internal/engine"
	"github.com/frontierkit/crawlsched/internal/fetch"
	"github.com/frontierkit/crawlsched/internal/frontier/memory"
	"github.com/frontierkit/crawlsched/internal/logging"
	"github.com/frontierkit/crawlsched/internal/request"
	"github.com/frontierkit/crawlsched/internal/scheduler"
	"github.com/frontierkit/crawlsched/internal/stats"
)

// newRunCmd creates the 'run' subcommand, which crawls the given seed
// URLs (or the configured ones) through the in-memory frontier.
func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [seed URL...]",
		Short: "Runs a crawl against the in-memory frontier",
		RunE:  runCrawl,
	}
}

func runCrawl(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck // best-effort flush

	if len(cfg.Frontier) == 0 {
		logger.Warn("frontier settings not found, using default frontier settings")
	}

	seeds := args
	if len(seeds) == 0 {
		seeds = cfg.Crawler.Seeds
	}
	if len(seeds) == 0 {
		return errors.New("no seed URLs given (arguments or crawler.seeds)")
	}

	fr := memory.New(cfg.FrontierSettings(), logger.Named("frontier"))
	slots := downloader.NewSlots(cfg.Crawler.Concurrency)

	registry := prometheus.NewRegistry()
	promSink, err := stats.NewPrometheusSink(registry)
	if err != nil {
		return fmt.Errorf("init prometheus sink: %w", err)
	}
	memSink := stats.NewMemorySink()
	sink := stats.MultiSink{memSink, promSink}

	sched, err := scheduler.New(
		fr,
		slots,
		sink,
		scheduler.Config{RedirectEnabled: cfg.Scheduler.RedirectEnabled},
		logger.Named("scheduler"),
	)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}

	fetcher := fetch.NewHTTPFetcher(fetch.Config{
		UserAgent:    cfg.Crawler.UserAgent,
		Timeout:      cfg.FetchTimeout(),
		MaxBodyBytes: cfg.Crawler.MaxBodyBytes,
	})

	eng := engine.New(sched, fr, fetcher, slots, engine.Config{
		PollInterval: cfg.PollInterval(),
	}, logger.Named("engine"))

	stopMetrics := serveMetrics(cfg.Server.MetricsPort, registry, logger)
	defer stopMetrics()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	requests := make([]*request.Request, 0, len(seeds))
	for _, seed := range seeds {
		requests = append(requests, request.New(seed))
	}

	runErr := eng.Run(ctx, requests)
	printSummary(memSink, logger)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("run crawl: %w", runErr)
	}
	return nil
}

func serveMetrics(port int, registry *prometheus.Registry, logger *zap.Logger) func() {
	router := chi.NewRouter()
	router.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", zap.Error(err))
		}
	}()

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("metrics server shutdown", zap.Error(err))
		}
	}
}

func printSummary(sink *stats.MemorySink, logger *zap.Logger) {
	snapshot := sink.Snapshot()
	keys := make([]string, 0, len(snapshot))
	for key := range snapshot {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		logger.Info("crawl counter", zap.String("key", key), zap.Int64("value", snapshot[key]))
	}
}
