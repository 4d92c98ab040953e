package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/gapa64/async-web-monitoring/internal/config"
	"github.com/gapa64/async-web-monitoring/internal/domain/result"
	"github.com/gapa64/async-web-monitoring/internal/fetch"
	"github.com/gapa64/async-web-monitoring/internal/obs"
	"github.com/gapa64/async-web-monitoring/internal/repository/memory"
	pg "github.com/gapa64/async-web-monitoring/internal/repository/postgres"
	"github.com/gapa64/async-web-monitoring/internal/services/monitor"
)

func main() {
	os.Exit(run())
}

// run holds all the deferred cleanup so the exit code can still be set.
func run() int {
	var (
		cfgPath = flag.String("config", "config.yaml", "path to the YAML config file")
		dryRun  = flag.Bool("dry-run", false, "log results instead of writing them to the database")
	)
	flag.Parse()

	root, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.Log.AsLoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()

	otelCloser, err := obs.SetupOTel(root, cfg.OTEL.AsOTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	targets, err := cfg.CompileTargets()
	if err != nil {
		l.Fatal("compile targets", zap.Error(err))
	}

	var (
		sink result.Sink
		db   *pg.DB
	)
	if *dryRun {
		sink = memory.NewSink()
	} else {
		db, err = pg.New(root, cfg.DB.AsPoolConfig())
		if err != nil {
			l.Fatal("db connect", zap.Error(err))
		}
		defer db.Close()
		sink = pg.NewResultRepo(db)
	}

	if cfg.Server.MetricsAddr != "" {
		ms := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, func(ctx context.Context) error {
			if db == nil {
				return nil
			}
			return db.Pool.Ping(ctx)
		}, l)
		defer func() {
			shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
			defer cancel()
			_ = ms.Shutdown(shCtx)
		}()
	}

	runner := monitor.NewRunner(l, fetch.New(cfg.HTTP), sink, cfg.Monitor.MaxConcurrent)
	results, sum := runner.Run(root, targets)

	if *dryRun {
		for i := range results {
			r := &results[i]
			l.Info("result",
				zap.String("url", r.URL),
				zap.String("kind", string(r.Kind)),
				zap.Int("status_code", r.StatusCode),
				zap.Int64("elapsed_ms", r.ElapsedMS()),
				zap.String("detail", r.Detail))
		}
	}

	l.Info("run complete",
		zap.Int("targets", sum.Total),
		zap.Int("success", sum.Success),
		zap.Int("pattern_mismatch", sum.Mismatch),
		zap.Int("network_errors", sum.NetworkError),
		zap.Int("timeouts", sum.Timeout),
		zap.Int("sink_failures", sum.SinkFailures),
		zap.Duration("duration", sum.Duration))

	if sum.SinkFailures > 0 {
		l.Warn("some results were not persisted", zap.Int("count", sum.SinkFailures))
		return 1
	}
	return 0
}
