package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"smarthub/internal/config"
	"smarthub/internal/database"
	httpapi "smarthub/internal/http"
	"smarthub/internal/metrics"
	"smarthub/internal/mqtt"
	"smarthub/internal/repository"
	"smarthub/internal/schedule"
	"smarthub/internal/service"
	"smarthub/internal/store"

	"github.com/go-redis/redis/v8"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API (and the MQTT bridge when enabled)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// components 运行期依赖，closers 按逆序关闭
type components struct {
	store   store.Store
	redis   *redis.Client
	checks  map[string]httpapi.HealthCheck
	closers []func(ctx context.Context)
}

func (c *components) close(ctx context.Context) {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i](ctx)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	comps, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		closeCtx, closeCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer closeCancel()
		comps.close(closeCtx)
	}()

	m := metrics.NewMetrics()
	repos := repository.New(comps.store)

	sunset := buildSunsetSource(cfg, comps.redis, logger, m)
	resolver := schedule.NewResolver(sunset)

	settings := service.NewSettingsService(repos.Preferences, resolver, logger.Named("settings"))
	actuation := service.NewActuationService(repos.Preferences, repos.Samples, service.LightPolicy(cfg.Engine.LightPolicy), logger.Named("actuation")).
		WithMetrics(m)
	readings := service.NewReadingsService(repos.Samples, logger.Named("readings"))
	profiles := service.NewProfileService(repos.Profiles, logger.Named("profiles"))
	tanks := service.NewTankService(repos.Tanks, logger.Named("tanks"))

	// MQTT 桥接（可选）
	var consumer *mqtt.SensorConsumer
	if cfg.MQTT.Enabled {
		client, err := mqtt.NewClient(cfg.MQTT, logger.Named("mqtt"))
		if err != nil {
			logger.Warn("MQTT enabled but connection failed, bridge disabled", zap.Error(err))
		} else {
			comps.closers = append(comps.closers, func(context.Context) { client.Disconnect() })
			comps.checks["mqtt"] = func(context.Context) error {
				if !client.IsConnected() {
					return errors.New("not connected")
				}
				return nil
			}
			actuation.WithPublisher(mqtt.NewActuatorPublisher(client, cfg.MQTT.ActuatorTopic, cfg.MQTT.QoS, m))
			consumer = mqtt.NewSensorConsumer(client, actuation, cfg.MQTT.SensorTopic, cfg.MQTT.QoS, logger.Named("mqtt")).
				WithMetrics(m)
		}
	}

	router := httpapi.NewRouter(logger)
	router.Use(m.Middleware)
	router.RegisterSettingsRoutes(httpapi.NewSettingsHandler(settings, logger))
	router.RegisterSensorRoutes(httpapi.NewSensorHandler(actuation, readings, logger))
	router.RegisterProfileRoutes(httpapi.NewProfileHandler(profiles, logger))
	router.RegisterTankRoutes(httpapi.NewTankHandler(tanks, logger))
	router.RegisterOpsRoutes(httpapi.NewHealthHandler(comps.checks), m.Handler())

	srv := service.NewServer(cfg.HTTP.Addr, httpapi.Wrap(router, cfg.CORS.Origins, logger), logger)

	errCh := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	if consumer != nil {
		go func() {
			if err := consumer.Start(ctx); err != nil {
				errCh <- err
			}
		}()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-sigCh:
		logger.Info("Shutdown signal received", zap.String("signal", sig.String()))
	case runErr = <-errCh:
		logger.Error("Component failed", zap.Error(runErr))
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if consumer != nil {
		_ = consumer.Stop()
	}
	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	return runErr
}

// openBackends connects the configured document store and Redis. An
// unreachable store is an error unless STORE_MEMORY_FALLBACK is set.
func openBackends(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*components, error) {
	comps := &components{checks: map[string]httpapi.HealthCheck{}}

	connectCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var storeErr error
	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, err := database.NewMongoClient(connectCtx, &cfg.Mongo)
		if err != nil {
			storeErr = fmt.Errorf("connect mongo: %w", err)
			break
		}
		st := store.NewMongoStore(client, cfg.Mongo.Database)
		comps.store = st
		comps.closers = append(comps.closers, func(ctx context.Context) { _ = st.Close(ctx) })
		comps.checks["store"] = func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) }
		logger.Info("Using mongo store", zap.String("database", cfg.Mongo.Database))

	case config.BackendPostgres:
		db, err := database.NewPostgresDB(connectCtx, &cfg.Database)
		if err != nil {
			storeErr = fmt.Errorf("connect postgres: %w", err)
			break
		}
		st := store.NewPostgresStore(db)
		if err := st.EnsureSchema(connectCtx); err != nil {
			_ = db.Close()
			storeErr = fmt.Errorf("postgres schema: %w", err)
			break
		}
		comps.store = st
		comps.closers = append(comps.closers, func(ctx context.Context) { _ = st.Close(ctx) })
		comps.checks["store"] = db.PingContext
		logger.Info("Using postgres store", zap.String("database", cfg.Database.Database))
	}

	if storeErr != nil {
		if !cfg.Store.MemoryFallback {
			return nil, storeErr
		}
		logger.Warn("Store unreachable, falling back to memory store", zap.Error(storeErr))
	}
	if comps.store == nil {
		comps.store = store.NewMemoryStore()
		logger.Warn("Using in-memory store; data is lost on restart")
	}

	if cfg.Redis.Enabled {
		client, err := database.NewRedisClient(connectCtx, &cfg.Redis)
		if err != nil {
			logger.Warn("Redis enabled but unreachable, sunset cache disabled", zap.Error(err))
		} else {
			comps.redis = client
			comps.closers = append(comps.closers, func(context.Context) { _ = client.Close() })
			comps.checks["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		}
	}
	return comps, nil
}

func buildSunsetSource(cfg *config.Config, rdb *redis.Client, logger *zap.Logger, m *metrics.Metrics) schedule.SunsetSource {
	client := service.NewSunsetClient(service.SunsetClientConfig{
		URL:     cfg.Sunset.APIURL,
		Lat:     cfg.Sunset.Lat,
		Lng:     cfg.Sunset.Lng,
		Offset:  cfg.Sunset.Offset,
		Timeout: cfg.Sunset.Timeout,
	}, logger.Named("sunset"), m)

	if !cfg.Sunset.CacheEnabled || rdb == nil {
		return client
	}
	return service.NewCachedSunsetSource(store.NewRedisKV(rdb), client, cfg.Sunset.CacheTTL, logger.Named("sunset"), m)
}
