package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/IBM/pgxpoolprometheus"
	"github.com/getsentry/sentry-go"
	"github.com/go-redis/redis/v8"
	"github.com/go-redis/redis_rate/v9"
	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/2beens/perfindex/internal/config"
	"github.com/2beens/perfindex/internal/db"
	"github.com/2beens/perfindex/internal/events"
	"github.com/2beens/perfindex/internal/middleware"
	"github.com/2beens/perfindex/internal/perfindex"
	"github.com/2beens/perfindex/internal/scheduler"
	"github.com/2beens/perfindex/internal/telemetry/metrics"
	"github.com/2beens/perfindex/internal/telemetry/tracing"
	"github.com/2beens/perfindex/internal/workouts"
	"github.com/2beens/perfindex/pkg"
)

type Server struct {
	httpServer        *http.Server
	metricsHttpServer *http.Server
	versionInfo       string

	config        *config.Config
	dbPool        *pgxpool.Pool
	redisClient   *redis.Client
	snapshotStore *SnapshotStore
	workoutsRepo  *workouts.Repo
	engine        *perfindex.Engine
	publisher     *events.Publisher
	scheduler     *scheduler.Scheduler

	// metrics
	metricsManager *metrics.Manager
	promRegistry   *prometheus.Registry
	otelShutdown   func()
}

type NewServerParams struct {
	Config                  *config.Config
	VersionInfo             string
	RedisPassword           string
	PostgresUser            string
	PostgresPassword        string
	HoneycombTracingEnabled bool
}

type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	SnapshotStore string `json:"snapshotStore"`
}

func NewServer(
	ctx context.Context,
	params NewServerParams,
) (*Server, error) {
	cfg := params.Config

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:         cfg.PostgresHost,
		DBPort:         cfg.PostgresPort,
		DBName:         cfg.PostgresDB,
		DBUser:         params.PostgresUser,
		DBPassword:     params.PostgresPassword,
		TracingEnabled: params.HoneycombTracingEnabled,
	})
	if err != nil {
		return nil, fmt.Errorf("new db pool: %w", err)
	}

	if err := dbPool.Ping(ctx); err != nil {
		log.Warnf("failed to ping db: %s", err)
	}

	pgxpoolCollector := pgxpoolprometheus.NewCollector(
		dbPool,
		map[string]string{"db_name": cfg.PostgresDB},
	)
	promRegistry := metrics.SetupPrometheus(pgxpoolCollector)
	metricsManager := metrics.NewManager("perfindex", "api", promRegistry)
	metricsManager.GaugeLifeSignal.Set(0)

	rdb := NewRedisClient(ctx, cfg, params.RedisPassword)

	// use honeycomb distro to setup OpenTelemetry SDK
	otelShutdown, err := tracing.HoneycombSetup(params.HoneycombTracingEnabled, "perfindex-api", rdb)
	if err != nil {
		return nil, err
	}

	workoutsRepo := workouts.NewRepo(dbPool)
	if err := workoutsRepo.Migrate(ctx); err != nil {
		log.Errorf("failed to migrate workouts schema: %s", err)
	}

	snapshotStore, err := NewSnapshotStore(ctx, cfg, rdb)
	if err != nil {
		return nil, fmt.Errorf("new snapshot store: %w", err)
	}

	engine := perfindex.NewEngine(perfindex.EngineParams{
		Workouts:       workoutsRepo,
		Store:          snapshotStore,
		Biometrics:     BiometricDefaults(cfg),
		MetricsManager: metricsManager,
	})

	s := &Server{
		config:        cfg,
		versionInfo:   params.VersionInfo,
		dbPool:        dbPool,
		redisClient:   rdb,
		snapshotStore: snapshotStore,
		workoutsRepo:  workoutsRepo,
		engine:        engine,

		// telemetry
		metricsManager: metricsManager,
		promRegistry:   promRegistry,
		otelShutdown:   otelShutdown,
	}

	if len(cfg.KafkaBrokers) > 0 {
		s.publisher = events.NewPublisher(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
	} else {
		log.Warnln("no kafka brokers set, workouts will only be picked up by the scheduled sweep")
	}

	if cfg.RecalculateCron != "" {
		s.scheduler = scheduler.NewScheduler(workoutsRepo, engine)
		if err := s.scheduler.Register(cfg.RecalculateCron); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// NewRedisClient creates the client used for snapshots and rate limiting. A failed
// ping is only logged, redis might come up later.
func NewRedisClient(ctx context.Context, cfg *config.Config, password string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(cfg.RedisHost, cfg.RedisPort),
		Password: password,
		DB:       0, // use default DB
	})

	rdbStatus := rdb.Ping(ctx)
	if err := rdbStatus.Err(); err != nil {
		log.Errorf("--> failed to ping redis: %s", err)
	} else {
		log.Debugf("redis ping: %s", rdbStatus.Val())
	}
	return rdb
}

func BiometricDefaults(cfg *config.Config) perfindex.BiometricDefaults {
	return perfindex.BiometricDefaults{
		Age:      cfg.Biometrics.Age,
		WeightKg: cfg.Biometrics.WeightKg,
		Gender:   cfg.Biometrics.Gender,
	}
}

func (s *Server) routerSetup() *mux.Router {
	r := mux.NewRouter()
	r.Use(otelmux.Middleware("perfindex-router"))

	r.HandleFunc("/health", s.handleHealth).Methods("GET").Name("health")

	workoutsHandler := workouts.NewHandler(s.workoutsRepo, nil, s.metricsManager)
	if s.publisher != nil {
		workoutsHandler = workouts.NewHandler(s.workoutsRepo, s.publisher, s.metricsManager)
	}
	workoutsHandler.SetupRoutes(r)

	var reqRateLimiter middleware.RequestRateLimiter
	if s.redisClient != nil {
		reqRateLimiter = redis_rate.NewLimiter(s.redisClient)
	}
	indexHandler := perfindex.NewHandler(s.engine)
	indexHandler.SetupRoutes(r, reqRateLimiter, s.metricsManager, s.config.CalculateRateLimit)

	// all the rest - unhandled paths
	r.HandleFunc("/{unknown}", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}).Methods("GET", "POST", "PUT", "DELETE", "OPTIONS").Name("unknown")

	r.Use(middleware.PanicRecovery(s.metricsManager))
	r.Use(middleware.LogRequest())
	r.Use(middleware.RequestMetrics(s.metricsManager))
	r.Use(middleware.Cors(s.config.CorsAllowedOrigins))
	r.Use(middleware.DrainAndCloseRequest(middleware.MaxRequestBodyBytes))

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	resp := HealthResponse{
		Status:  "ok",
		Version: s.versionInfo,
	}
	if s.snapshotStore != nil {
		resp.SnapshotStore = s.snapshotStore.Backend
	}

	respJson, err := json.Marshal(resp)
	if err != nil {
		log.Errorf("marshal health response: %s", err)
		http.Error(w, "error, failed to marshal response", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (s *Server) Serve(host string, port int) {
	router := s.routerSetup()

	ipAndPort := net.JoinHostPort(host, strconv.Itoa(port))
	s.httpServer = &http.Server{
		Handler:      router,
		Addr:         ipAndPort,
		WriteTimeout: time.Minute,
		ReadTimeout:  time.Minute,
		ConnState:    s.connStateMetrics,
	}

	metricsRouter := mux.NewRouter()
	metricsRouter.Handle("/metrics", otelhttp.NewHandler(
		promhttp.HandlerFor(s.promRegistry, promhttp.HandlerOpts{}),
		"metrics",
	))
	metricsAddr := net.JoinHostPort(s.config.PrometheusMetricsHost, s.config.PrometheusMetricsPort)
	s.metricsHttpServer = &http.Server{
		Addr:    metricsAddr,
		Handler: metricsRouter,
	}

	go func() {
		log.Infof(" > server listening on: [%s]", ipAndPort)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("main service, listen and serve: %s", err)
		}
	}()

	go func() {
		log.Debugf(" > metrics listening on: [%s]", metricsAddr)
		err := s.metricsHttpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("metrics service, listen and serve: %s", err)
		}
	}()

	if s.scheduler != nil {
		s.scheduler.Start()
	}

	s.metricsManager.GaugeLifeSignal.Set(1)
}

func (s *Server) GracefulShutdown() {
	log.Debug("graceful shutdown initiated ...")

	s.metricsManager.GaugeLifeSignal.Set(0)

	if s.scheduler != nil {
		s.scheduler.Stop()
	}

	maxWaitDuration := time.Second * 15
	ctx, timeoutCancel := context.WithTimeout(context.Background(), maxWaitDuration)
	defer timeoutCancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown http server")
		}
		log.Warnln("server shut down")
	}

	if s.metricsHttpServer != nil {
		if err := s.metricsHttpServer.Shutdown(ctx); err != nil {
			log.Error(" >>> failed to gracefully shutdown metrics http server")
		}
		log.Warnln("metrics server shut down")
	}

	if s.publisher != nil {
		if err := s.publisher.Close(); err != nil {
			log.Errorf("failed to close kafka writer: %s", err)
		}
	}

	if s.snapshotStore != nil {
		if err := s.snapshotStore.Close(); err != nil {
			log.Errorf("failed to close snapshot store: %s", err)
		}
	}

	s.otelShutdown()
	log.Trace("otel shut down ...")

	if s.redisClient != nil {
		if err := s.redisClient.Close(); err != nil {
			log.Errorf("failed to close redis client conn: %s", err)
		}
	}

	if s.dbPool != nil {
		log.Debugln("closing db pool ...")
		s.dbPool.Close() // blocking operation
		log.Debugln("db pool closed")
	}

	if ok := sentry.Flush(5 * time.Second); ok {
		log.Debugf("sentry flush ok: %t", ok)
	}
}

func (s *Server) connStateMetrics(_ net.Conn, state http.ConnState) {
	switch state {
	case http.StateNew:
		s.metricsManager.GaugeRequests.Add(1)
	case http.StateClosed:
		s.metricsManager.GaugeRequests.Add(-1)
	default:
		// do nothing
	}
}
