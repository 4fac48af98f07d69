package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/2beens/perfindex/internal"
	"github.com/2beens/perfindex/internal/config"
	"github.com/2beens/perfindex/internal/db"
	"github.com/2beens/perfindex/internal/events"
	"github.com/2beens/perfindex/internal/logging"
	"github.com/2beens/perfindex/internal/perfindex"
	"github.com/2beens/perfindex/internal/telemetry/metrics"
	"github.com/2beens/perfindex/internal/telemetry/tracing"
	"github.com/2beens/perfindex/internal/workouts"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

func main() {
	fmt.Println("starting consumer ...")

	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	flag.Parse()

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		panic(err)
	}
	if len(cfg.KafkaBrokers) == 0 {
		log.Fatalln("no kafka brokers set, nothing to consume")
	}

	sentryDSN := os.Getenv("SENTRY_DSN")
	logging.Setup(logging.LoggerSetupParams{
		LogFileName:      cfg.LogsPath,
		LogToStdout:      cfg.LogToStdout,
		LogLevel:         cfg.LogLevel,
		LogFormatJSON:    cfg.LogFormatJSON,
		Environment:      *env,
		SentryEnabled:    sentryDSN != "",
		SentryDSN:        sentryDSN,
		SentryServerName: "perfindex-consumer",
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	honeycombEnabled := cfg.TracingEnabled || os.Getenv("HONEYCOMB_ENABLED") == "true"

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDB,
		DBUser:         os.Getenv("PERFINDEX_POSTGRES_USER"),
		DBPassword:     os.Getenv("PERFINDEX_POSTGRES_PASS"),
		TracingEnabled: honeycombEnabled,
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	promRegistry := metrics.SetupPrometheus(
		pgxpoolprometheus.NewCollector(dbPool, map[string]string{"db_name": cfg.PostgresDB}),
	)
	metricsManager := metrics.NewManager("perfindex", "consumer", promRegistry)

	rdb := internal.NewRedisClient(ctx, cfg, os.Getenv("PERFINDEX_REDIS_PASS"))
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}()

	otelShutdown, err := tracing.HoneycombSetup(honeycombEnabled, "perfindex-consumer", rdb)
	if err != nil {
		log.Fatalf("honeycomb setup: %s", err)
	}
	defer otelShutdown()

	snapshotStore, err := internal.NewSnapshotStore(ctx, cfg, rdb)
	if err != nil {
		log.Fatalf("new snapshot store: %s", err)
	}
	defer func() {
		if err := snapshotStore.Close(); err != nil {
			log.Errorf("failed to close snapshot store: %s", err)
		}
	}()

	engine := perfindex.NewEngine(perfindex.EngineParams{
		Workouts:       workouts.NewRepo(dbPool),
		Store:          snapshotStore,
		Biometrics:     internal.BiometricDefaults(cfg),
		MetricsManager: metricsManager,
	})

	metricsAddr := net.JoinHostPort(cfg.PrometheusMetricsHost, cfg.PrometheusMetricsPort)
	metricsServer := &http.Server{
		Addr:    metricsAddr,
		Handler: promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}),
	}
	go func() {
		log.Debugf(" > consumer metrics listening on: [%s]", metricsAddr)
		err := metricsServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Errorf("metrics service, listen and serve: %s", err)
		}
	}()

	reader := events.NewKafkaReader(cfg.KafkaBrokers, cfg.KafkaGroupID, cfg.KafkaTopic)
	processor := events.NewProcessor(reader, engine, metricsManager)

	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Infof("consumer started (topic=%s, group=%s)", cfg.KafkaTopic, cfg.KafkaGroupID)
		if err := processor.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Errorf("consumer stopped: %s", err)
		}
	}()

	chOsInterrupt := make(chan os.Signal, 1)
	signal.Notify(chOsInterrupt, os.Interrupt, syscall.SIGTERM)

	select {
	case receivedSig := <-chOsInterrupt:
		log.Warnf("signal [%s] received, stopping consumer ...", receivedSig)
	case <-done:
	}
	cancel()
	<-done

	if err := reader.Close(); err != nil {
		log.Errorf("failed to close kafka reader: %s", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.Errorf("failed to shutdown metrics server: %s", err)
	}

	sentry.Flush(5 * time.Second)
	log.Warnln("consumer shut down")
}
