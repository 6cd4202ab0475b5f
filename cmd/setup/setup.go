package setup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"hash/fnv"
	"time"

	"github.com/francois202/gigabanksystem1-sub000/internal/common/graceful"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/idempotency"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/publisher"
	"github.com/francois202/gigabanksystem1-sub000/internal/common/xlog"
	"github.com/francois202/gigabanksystem1-sub000/internal/config"
	"github.com/francois202/gigabanksystem1-sub000/internal/deliveries/http/health"
	"github.com/francois202/gigabanksystem1-sub000/internal/repositories"
	"github.com/francois202/gigabanksystem1-sub000/internal/services"

	cMetrics "github.com/francois202/gigabanksystem1-sub000/internal/common/metrics"
	dlqpublisher "github.com/francois202/gigabanksystem1-sub000/internal/common/dlq_publisher"

	"github.com/Shopify/sarama"
	"github.com/newrelic/go-agent/v3/integrations/nrzap"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	_ "github.com/newrelic/go-agent/v3/integrations/nrpgx"
)

type Setup struct {
	Config    config.Config
	NewRelic  *newrelic.Application
	WriteDB   *sql.DB
	ReadDB    *sql.DB
	Cache     *redis.Client
	RepoCache repositories.CacheRepository
	Tracker   idempotency.Tracker
	Producer  publisher.DeliveryProducer
	DLQ       dlqpublisher.Router
	Service   *services.Services
	Metrics   cMetrics.Metrics
}

// HealthChecks are the dependencies probed by /api/health/ready.
func (s *Setup) HealthChecks() []health.Check {
	var checks []health.Check
	if s.WriteDB != nil {
		checks = append(checks, health.Check{Name: "postgres", Ping: s.WriteDB.PingContext})
	}
	if s.Cache != nil {
		checks = append(checks, health.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return s.Cache.Ping(ctx).Err()
		}})
	}
	return checks
}

func Init(command string) (setup *Setup, stopper []graceful.ProcessStopper, err error) {
	ctx := context.Background()

	cfg, err := config.Load(
		config.WithConfigFileName("config"),
		config.WithConfigFileSearchPaths("/config", ".", "./config"),
	)
	if err != nil {
		return
	}

	setup = &Setup{
		Config: cfg,
	}

	env := cfg.App.Environment()
	logLevel := xlog.DebugLogLevel
	if !env.AllowsDebugLevel() {
		logLevel = xlog.InfoLogLevel
	}
	if cfg.App.LogLevel != "" && !env.IsProduction() {
		logLevel = cfg.App.LogLevel
	}

	logEnv := xlog.EnvDevelopment
	if env.IsProduction() {
		logEnv = xlog.EnvProduction
	}

	err = xlog.Init(cfg.App.Name+"-"+command,
		xlog.WithLogEnvOption(logEnv),
		xlog.WithCaller(true),
		xlog.AddCallerSkip(1),
		xlog.WithLevel(logLevel))
	if err != nil {
		err = fmt.Errorf("failed to init logger: %w", err)
		return
	}

	stopper = append(stopper, func(ctx context.Context) error {
		_ = xlog.Sync()
		return nil
	})

	newRelic := setupNR(ctx, cfg)

	// metrics
	mtc := cMetrics.New()

	// connect to db master
	writeDB, readDB, err := setupPostgres(cfg)
	if err != nil {
		err = fmt.Errorf("failed connect to database: %w", err)
		return
	}
	stopper = append(stopper, func(ctx context.Context) error {
		var errs error

		if writeDB != nil {
			if err := writeDB.Close(); err != nil {
				errs = errors.Join(errs, fmt.Errorf("failed to close writeDB: %w", err))
			}
		}

		if readDB != nil {
			if err := readDB.Close(); err != nil {
				errs = errors.Join(errs, fmt.Errorf("failed to close readDB: %w", err))
			}
		}

		return errs
	})

	// connect to redis
	cache := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Db,
	})
	_, err = cache.Ping(ctx).Result()
	if err != nil {
		err = fmt.Errorf("failed connect to redis: %w", err)
		return
	}
	stopper = append(stopper, func(ctx context.Context) error { return cache.Close() })

	if mtc != nil {
		// register DB write stat prometheus metrics
		err = mtc.RegisterDB(writeDB, cfg.App.Name+"-"+command+"-write", cfg.Postgres.Write.DbName)
		if err != nil {
			err = fmt.Errorf("failed register DB stat prometheus: %w", err)
			return
		}
		// register DB read stat prometheus metrics
		err = mtc.RegisterDB(readDB, cfg.App.Name+"-"+command+"-read", cfg.Postgres.Read.DbName)
		if err != nil {
			err = fmt.Errorf("failed register DB stat prometheus: %w", err)
			return
		}

		// register redis prometheus metrics
		err = mtc.RegisterRedis(cache, cfg.App.Name, command)
		if err != nil {
			err = fmt.Errorf("failed register redis prometheus: %w", err)
			return
		}
	}

	// register repository
	sqlRepo := repositories.NewSQLRepository(writeDB, readDB)
	cacheRepo := repositories.NewCacheRepository(cache)

	tracker, err := idempotency.New(cfg.Idempotency, cacheRepo)
	if err != nil {
		err = fmt.Errorf("failed to create idempotency tracker: %w", err)
		return
	}
	stopper = append(stopper, func(ctx context.Context) error { return tracker.Close() })

	producer, err := setupDeliveryProducer(cfg, command, mtc)
	if err != nil {
		err = fmt.Errorf("unable to create delivery producer: %w", err)
		return
	}
	stopper = append(stopper, producer.Stop)

	syncProducer, err := publisher.NewKafkaSyncProducer(
		cfg.MessageBroker.KafkaConsumer.Brokers,
		publisher.WithIdempotence(),
		publisher.WithTimeout(cfg.Producer.Timeout),
		publisher.WithMaxRetries(cfg.Producer.MaxRetries),
		publisher.WithMetricRegistry(mtc.SaramaRegistry(cfg.App.Name+"_"+command+"_outbox", time.Second)),
	)
	if err != nil {
		err = fmt.Errorf("unable to create client kafka sync producer: %w", err)
		return
	}
	stopper = append(stopper, func(ctx context.Context) error { return syncProducer.Close() })

	outboxPub := publisher.NewPublisher(syncProducer, cfg.MessageBroker.KafkaConsumer.TopicOutboxEvents, mtc.GetPublisherPrometheus())
	dlq := dlqpublisher.New(syncProducer, cfg.MessageBroker.KafkaConsumer.TopicRetryDLT, mtc.GetPublisherPrometheus())

	// register service
	srv := services.New(
		cfg,
		sqlRepo,
		cacheRepo,
		tracker,
		producer,
		outboxPub,
		mtc,
	)

	return &Setup{
		Config:    cfg,
		NewRelic:  newRelic,
		WriteDB:   writeDB,
		ReadDB:    readDB,
		Cache:     cache,
		RepoCache: cacheRepo,
		Tracker:   tracker,
		Producer:  producer,
		DLQ:       dlq,
		Service:   srv,
		Metrics:   mtc,
	}, stopper, nil
}

// setupDeliveryProducer builds one sarama producer per delivery mode. Events
// are keyed by account so the fnv hasher keeps an account on one partition.
func setupDeliveryProducer(cfg config.Config, command string, mtc cMetrics.Metrics) (publisher.DeliveryProducer, error) {
	brokers := cfg.MessageBroker.KafkaConsumer.Brokers
	registry := mtc.SaramaRegistry(cfg.App.Name+"_"+command+"_producer", time.Second)

	atMostOnce, err := publisher.NewKafkaAsyncProducer(brokers,
		publisher.WithCustomHasher(fnv.New32a),
		publisher.WithFireAndForget(),
		publisher.WithMetricRegistry(registry),
	)
	if err != nil {
		return nil, fmt.Errorf("at-most-once producer: %w", err)
	}

	atLeastOnce, err := publisher.NewKafkaAsyncProducer(brokers,
		publisher.WithCustomHasher(fnv.New32a),
		publisher.WithRequiredAcks(sarama.WaitForAll),
		publisher.WithTimeout(cfg.Producer.Timeout),
		publisher.WithMaxRetries(cfg.Producer.MaxRetries),
		publisher.WithMetricRegistry(registry),
	)
	if err != nil {
		_ = atMostOnce.Close()
		return nil, fmt.Errorf("at-least-once producer: %w", err)
	}

	exactlyOnce, err := publisher.NewKafkaSyncProducer(brokers,
		publisher.WithCustomHasher(fnv.New32a),
		publisher.WithIdempotence(),
		publisher.WithTimeout(cfg.Producer.Timeout),
		publisher.WithMaxRetries(cfg.Producer.MaxRetries),
		publisher.WithMetricRegistry(registry),
	)
	if err != nil {
		_ = atMostOnce.Close()
		_ = atLeastOnce.Close()
		return nil, fmt.Errorf("exactly-once producer: %w", err)
	}

	return publisher.NewDeliveryProducer(
		cfg.MessageBroker.KafkaConsumer.TopicTransactions,
		mtc.GetPublisherPrometheus(),
		publisher.NewAtMostOnceStrategy(atMostOnce),
		publisher.NewAtLeastOnceStrategy(atLeastOnce, nil),
		publisher.NewExactlyOnceStrategy(exactlyOnce),
	)
}

func setupPostgres(conf config.Config) (*sql.DB, *sql.DB, error) {
	writeDB, err := initDB(conf.Postgres.Write)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init write DB: %w", err)
	}

	readDB, err := initDB(conf.Postgres.Read)
	if err != nil {
		_ = writeDB.Close()
		return nil, nil, fmt.Errorf("failed to init read DB: %w", err)
	}

	return writeDB, readDB, nil
}

func initDB(pgConf config.Database) (*sql.DB, error) {
	const (
		DefaultMaxOpen     = 10
		DefaultMaxIdle     = 10
		DefaultMaxLifetime = 3 // minutes
	)

	dsName := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s search_path=%s sslmode=disable",
		pgConf.DbHost, pgConf.DbPort, pgConf.DbUser, pgConf.DbPass, pgConf.DbName, pgConf.DbSchema,
	)

	db, err := sql.Open("nrpgx", dsName)
	if err != nil {
		return nil, err
	}

	if pgConf.MaxOpenConnection > 0 {
		db.SetMaxOpenConns(pgConf.MaxOpenConnection)
	} else {
		db.SetMaxOpenConns(DefaultMaxOpen)
	}

	if pgConf.MaxIdleConnection > 0 {
		db.SetMaxIdleConns(pgConf.MaxIdleConnection)
	} else {
		db.SetMaxIdleConns(DefaultMaxIdle)
	}

	if pgConf.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(time.Duration(pgConf.ConnMaxLifetime) * time.Minute)
	} else {
		db.SetConnMaxLifetime(time.Duration(DefaultMaxLifetime) * time.Minute)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func setupNR(ctx context.Context, cfg config.Config) *newrelic.Application {
	if !cfg.App.Environment().IsProduction() || cfg.NewRelicLicenseKey == "" {
		return nil
	}

	app, err := newrelic.NewApplication(
		newrelic.ConfigAppName(cfg.App.Name),
		newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		func(config *newrelic.Config) {
			config.Logger = nrzap.Transform(xlog.Logger().Named("newrelic"))
		},
		newrelic.ConfigDistributedTracerEnabled(true),
	)
	if err != nil {
		xlog.Errorf(ctx, "setupNR.NewApplication - %v", err)
		return nil
	}
	if err = app.WaitForConnection(15 * time.Second); nil != err {
		xlog.Errorf(ctx, "setupNR.WaitForConnection - %v", err)
	}
	return app
}
