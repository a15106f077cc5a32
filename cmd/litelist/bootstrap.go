package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/qcom/litelist/internal/api"
	"github.com/qcom/litelist/internal/config"
	"github.com/qcom/litelist/internal/repository"
	"github.com/qcom/litelist/internal/session"
)

// app holds everything a command needs, built once per invocation.
type app struct {
	cfg        *config.Config
	logger     *logrus.Logger
	client     *api.Client
	store      repository.Store
	registry   *prometheus.Registry
	controller *session.Controller
}

func bootstrap(c *cli.Context, jsonLogs bool) (*app, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := newLogger(cfg.Log, jsonLogs, c.Bool("verbose"))
	if err != nil {
		return nil, err
	}

	store, err := openStore(c.Context, cfg, logger)
	if err != nil {
		return nil, err
	}

	client := api.NewClient(cfg.API.URL, cfg.API.Timeout, logger)
	registry := prometheus.NewRegistry()

	controller := session.NewController(client, store, logger,
		session.WithScheduler(session.NewScheduler(cfg.Session.RenewPeriod, session.NewTimeTicker, logger)),
		session.WithMargins(cfg.Session.RecoveryMargin, cfg.Session.RenewalMargin),
		session.WithMetrics(session.NewMetrics(registry)),
	)

	return &app{
		cfg:        cfg,
		logger:     logger,
		client:     client,
		store:      store,
		registry:   registry,
		controller: controller,
	}, nil
}

// Close stops renewal and releases the store. The persisted token stays.
func (a *app) Close() {
	a.controller.Close()
	if err := a.store.Close(); err != nil {
		a.logger.WithError(err).Warn("Failed to close credential store")
	}
}

// requireSession resumes the persisted session or reports that a login is needed.
func (a *app) requireSession(ctx context.Context) (session.Session, error) {
	if !a.controller.RecoverFromStorage(ctx) {
		return session.Session{}, cli.Exit("not logged in, run `litelist login` first", 1)
	}
	return a.controller.Session(), nil
}

func newLogger(cfg config.LogConfig, jsonLogs, verbose bool) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if jsonLogs || cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to parse log level: %w", err)
	}
	if verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)

	return logger, nil
}

func openStore(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (repository.Store, error) {
	var store repository.Store

	switch cfg.Store.Backend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(cfg.Store.Path), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create store directory: %w", err)
		}
		sqliteStore, err := repository.OpenSQLiteStore(cfg.Store.Path, logger)
		if err != nil {
			return nil, err
		}
		store = sqliteStore
	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Endpoint,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		store = repository.NewRedisStore(client, cfg.Redis.Prefix, logger)
	case config.BackendDynamoDB:
		client, err := initDynamoDB(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		store = repository.NewDynamoStore(client, cfg.DynamoDB.TableName, cfg.DynamoDB.Namespace, logger)
	case config.BackendMemory:
		store = repository.NewMemoryStore()
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.Store.Backend)
	}

	if cfg.Store.SealSecret == "" {
		return store, nil
	}

	sealed, err := repository.Seal(store, []byte(cfg.Store.SealSecret))
	if err != nil {
		store.Close()
		return nil, err
	}
	return sealed, nil
}

func initDynamoDB(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDB.Endpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx,
			awsconfig.WithRegion(cfg.DynamoDB.Region),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           cfg.DynamoDB.Endpoint,
						SigningRegion: cfg.DynamoDB.Region,
					}, nil
				})),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.DynamoDB.Region))
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.Debug("DynamoDB client initialized")
	return client, nil
}
