package di

import (
	"context"
	"fmt"
	"time"

	drepo "FundLens/internal/domain/repository"
	dservice "FundLens/internal/domain/service"
	"FundLens/internal/handler/api"
	internalrepo "FundLens/internal/repository"
	"FundLens/internal/services/marketdata"
	"FundLens/internal/services/narrative"
	"FundLens/internal/usecase"
	"FundLens/pkg/cache"
	pkgch "FundLens/pkg/clickhouse"
	"FundLens/pkg/config"
	xhttp "FundLens/pkg/http"
	pkgkafka "FundLens/pkg/kafka"
	"FundLens/pkg/logger"
	"FundLens/pkg/metrics"
	"FundLens/pkg/server"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*logger.Logger, error) {
	return logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideCacheManager creates the two-tier cache manager on the configured
// backend.
func ProvideCacheManager(cfg *config.Config) (*cache.Manager, error) {
	var (
		store cache.Store
		err   error
	)
	switch cfg.Cache.Backend {
	case "badger":
		store, err = cache.NewBadgerCache(cfg.Cache.Dir)
	case "redis":
		store, err = cache.NewRedisCache(
			cache.WithRedisHost(cfg.Cache.Redis.Host),
			cache.WithRedisPort(cfg.Cache.Redis.Port),
			cache.WithRedisPassword(cfg.Cache.Redis.Password),
			cache.WithRedisDB(cfg.Cache.Redis.DB),
			cache.WithRedisPrefix(cfg.Cache.Redis.Prefix),
		)
	case "memory":
		store = cache.NewMemoryCache()
	default:
		return nil, fmt.Errorf("unknown cache backend: %s", cfg.Cache.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("cache store: %w", err)
	}
	return cache.NewManager(store, cfg.Cache.RawTTL, cfg.Cache.ResultTTL), nil
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() drepo.Metrics {
	return metrics.New()
}

// ProvideSnapshotProvider creates the fundamentals data provider client.
func ProvideSnapshotProvider(cfg *config.Config) dservice.SnapshotProvider {
	return marketdata.New(cfg.Provider.BaseURL, cfg.Provider.Timeout)
}

// ProvideNarrativeGenerator creates the Gemini narrative generator. Without
// an API key the pipeline runs in rule-based-only mode.
func ProvideNarrativeGenerator(cfg *config.Config, l *logger.Logger) (dservice.NarrativeGenerator, error) {
	if cfg.Narrative.APIKey == "" {
		l.Warn("narrative api key missing, rationales will be rule-based")
		return nil, nil
	}
	gen, err := narrative.NewGemini(context.Background(),
		cfg.Narrative.APIKey, cfg.Narrative.Model, cfg.Narrative.Timeout)
	if err != nil {
		return nil, fmt.Errorf("narrative generator: %w", err)
	}
	return gen, nil
}

// ProvideHistoryStore creates the analysis history store. Disabled by
// default; ClickHouse when configured.
func ProvideHistoryStore(cfg *config.Config, l *logger.Logger) (drepo.HistoryStore, error) {
	if cfg.History.Backend != "clickhouse" {
		return internalrepo.NoopHistoryStore{}, nil
	}

	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.History.ClickHouse.Host),
		pkgch.WithPort(cfg.History.ClickHouse.Port),
		pkgch.WithDatabase(cfg.History.ClickHouse.Database),
		pkgch.WithCredentials(cfg.History.ClickHouse.User, cfg.History.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithTimeouts(cfg.History.ClickHouse.DialTimeout, cfg.History.ClickHouse.ReadTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}

	store := internalrepo.NewCHHistoryStore(client, cfg.History.Table)
	store.SetLogger(l)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.Init(ctx); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return store, nil
}

// ProvideEventPublisher creates the analysis event publisher. Disabled by
// default; Kafka when configured.
func ProvideEventPublisher(cfg *config.Config) (drepo.EventPublisher, error) {
	if !cfg.Events.Enabled {
		return internalrepo.NoopPublisher{}, nil
	}

	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Events.Brokers),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return internalrepo.NewKafkaPublisher(producer, cfg.Events.Topic), nil
}

// ProvideAnalyzeUseCase creates the analysis pipeline orchestrator.
func ProvideAnalyzeUseCase(
	cm *cache.Manager,
	provider dservice.SnapshotProvider,
	gen dservice.NarrativeGenerator,
	history drepo.HistoryStore,
	events drepo.EventPublisher,
	m drepo.Metrics,
	l *logger.Logger,
	cfg *config.Config,
) *usecase.AnalyzeUseCase {
	return usecase.NewAnalyzeUseCase(cm, provider, gen, history, events, m, l,
		cfg.Provider.RetryAttempts, cfg.Provider.RetryBackoff)
}

// ProvideHTTPHandler creates the API handler.
func ProvideHTTPHandler(l *logger.Logger, uc *usecase.AnalyzeUseCase) xhttp.Handler {
	return api.NewAnalyzeHandler(l, uc)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *logger.Logger,
	handler xhttp.Handler,
	cm *cache.Manager,
	history drepo.HistoryStore,
	events drepo.EventPublisher,
) *server.App {
	return server.New(cfg, l, handler, cm, history, events)
}
