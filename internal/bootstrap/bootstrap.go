// Package bootstrap builds the run's dependencies from configuration.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iho/atmledger/internal/adapter/http/handler"
	filesource "github.com/iho/atmledger/internal/adapter/source/file"
	pgsource "github.com/iho/atmledger/internal/adapter/source/postgres"
	redissource "github.com/iho/atmledger/internal/adapter/source/redis"
	"github.com/iho/atmledger/internal/generator"
	"github.com/iho/atmledger/internal/infrastructure/config"
	"github.com/iho/atmledger/internal/infrastructure/eventpublisher"
	"github.com/iho/atmledger/internal/infrastructure/idgen"
	"github.com/iho/atmledger/internal/infrastructure/postgres"
	"github.com/iho/atmledger/internal/infrastructure/redis"
	"github.com/iho/atmledger/internal/infrastructure/retry"
	"github.com/iho/atmledger/internal/usecase"
)

// Sources is an opened source backend.
type Sources struct {
	Kind     string
	Provider usecase.SourceProvider
	Sink     generator.Sink
	Checks   map[string]handler.Check

	closers []func()
}

// Close releases the backend connections.
func (s *Sources) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// OpenSources connects to the backend named by cfg.SourceKind.
func OpenSources(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (*Sources, error) {
	return openSources(ctx, cfg, cfg.SourceKind, logger)
}

// OpenSink connects to the backend named by kind and returns only its Sink.
func OpenSink(ctx context.Context, cfg *config.Config, kind, dir string, logger zerolog.Logger) (*Sources, error) {
	if kind == config.SourceKindFile && dir != "" {
		c := *cfg
		c.DataDir = dir
		cfg = &c
	}
	return openSources(ctx, cfg, kind, logger)
}

func openSources(ctx context.Context, cfg *config.Config, kind string, logger zerolog.Logger) (*Sources, error) {
	switch kind {
	case config.SourceKindFile:
		return &Sources{
			Kind:     kind,
			Provider: filesource.NewProvider(cfg.DataDir, cfg.DataExt),
			Sink:     filesource.NewSink(cfg.DataDir, cfg.DataExt),
			Checks:   map[string]handler.Check{},
		}, nil

	case config.SourceKindRedis:
		client, err := redis.NewClient(ctx, cfg.RedisURL, logger)
		if err != nil {
			return nil, err
		}
		return &Sources{
			Kind:     kind,
			Provider: redissource.NewProvider(client, cfg.RedisKeyPrefix),
			Sink:     redissource.NewSink(client, cfg.RedisKeyPrefix),
			Checks:   map[string]handler.Check{"redis": redisCheck(client)},
			closers:  []func(){func() { client.Close() }},
		}, nil

	case config.SourceKindPostgres:
		pool, err := postgres.NewPoolWithConfig(ctx, postgres.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConns:       cfg.DatabaseMaxConns,
			MinConns:       cfg.DatabaseMinConns,
			ConnectTimeout: cfg.DatabaseTimeout,
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Msg("connected to postgres")
		return &Sources{
			Kind:     kind,
			Provider: pgsource.NewProvider(pool),
			Sink:     pgsource.NewSink(pool),
			Checks:   map[string]handler.Check{"postgres": postgresCheck(pool)},
			closers:  []func(){pool.Close},
		}, nil
	}

	return nil, fmt.Errorf("%w: %q", config.ErrUnknownSourceKind, kind)
}

func redisCheck(client *goredis.Client) handler.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}

func postgresCheck(pool *pgxpool.Pool) handler.Check {
	return pool.Ping
}

// Publisher is a usecase.EventPublisher that may hold a connection.
type Publisher interface {
	usecase.EventPublisher
	Close() error
}

type logPublisher struct {
	*eventpublisher.LogPublisher
}

func (logPublisher) Close() error { return nil }

// NewPublisher returns a Kafka publisher when brokers are configured and a
// log publisher otherwise.
func NewPublisher(cfg *config.Config, logger zerolog.Logger) Publisher {
	if len(cfg.KafkaBrokers) > 0 {
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).Msg("publishing run events to kafka")
		return eventpublisher.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic, logger)
	}
	return logPublisher{eventpublisher.NewLogPublisher(logger)}
}

// GeneratorConfig returns the generation parameters in cfg.
func GeneratorConfig(cfg *config.Config) generator.Config {
	return generator.Config{
		Sources:      cfg.GenSources,
		Accounts:     cfg.GenAccounts,
		Transactions: cfg.GenTransactions,
		Seed:         cfg.GenSeed,
		Mean:         generator.DefaultMean,
		StdDev:       generator.DefaultStdDev,
	}
}

// Generate writes the configured synthetic sources into dst.
func Generate(ctx context.Context, cfg *config.Config, dst *Sources, logger zerolog.Logger) ([]string, error) {
	return generator.Generate(ctx, GeneratorConfig(cfg), dst.Sink, logger)
}

// PrepareSources generates the data directory of a file backend if it
// does not exist yet. Other backends are left alone.
func PrepareSources(ctx context.Context, cfg *config.Config, src *Sources, logger zerolog.Logger) error {
	if src.Kind != config.SourceKindFile {
		return nil
	}
	_, err := generator.EnsureDataFiles(ctx, cfg.DataDir, GeneratorConfig(cfg), src.Sink, logger)
	return err
}

// NewRunUseCase wires a RunUseCase over src.
func NewRunUseCase(cfg *config.Config, src *Sources, metrics usecase.MetricsRecorder, publisher usecase.EventPublisher, logger zerolog.Logger) *usecase.RunUseCase {
	return usecase.NewRunUseCase(usecase.RunConfig{
		Provider:  src.Provider,
		Retrier:   retry.NewRetrier(cfg.SourceOpenRetries, logger),
		IDGen:     idgen.NewULIDGenerator(),
		Metrics:   metrics,
		Publisher: publisher,
		Logger:    &logger,
	})
}

// NewMigrator returns a migrator for the configured database.
func NewMigrator(cfg *config.Config, logger zerolog.Logger) *postgres.Migrator {
	return postgres.NewMigrator(cfg.DatabaseURL, cfg.MigrationsPath, logger)
}
