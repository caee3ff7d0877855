package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/starmatch-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/starmatch-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/starmatch-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/starmatch-backend/internal/infrastructure/embedder"
	"github.com/DRSN-tech/starmatch-backend/internal/infrastructure/pitch"
	"github.com/DRSN-tech/starmatch-backend/internal/repository/filesystem"
	s3Repo "github.com/DRSN-tech/starmatch-backend/internal/repository/minio"
	"github.com/DRSN-tech/starmatch-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/starmatch-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/starmatch-backend/internal/repository/qdrant"
	"github.com/DRSN-tech/starmatch-backend/internal/repository/redis"
	"github.com/DRSN-tech/starmatch-backend/internal/usecase"
	"github.com/DRSN-tech/starmatch-backend/pkg/clients"
	"github.com/DRSN-tech/starmatch-backend/pkg/closer"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/DRSN-tech/starmatch-backend/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	bootstrapTimeout = 2 * time.Minute
	shutdownTimeout  = 10 * time.Second
)

// App связывает хранилища, каталог, usecase-слой и серверы.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
}

// NewApp подключается к хранилищам, загружает каталог и готовит серверы.
// При ошибке уже открытые ресурсы закрываются.
func NewApp(cfg *config.Config, log logger.Logger) (_ *App, err error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}
	defer func() {
		if err != nil {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if cerr := a.closer.Close(ctx); cerr != nil {
				log.Warnf("Cleanup after failed start: %v", cerr)
			}
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), bootstrapTimeout)
	defer cancel()

	db, err := a.initPGDB(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	modelRepo, err := a.initModelRepo(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embeddingRepo, err := a.initEmbeddingRepo(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cacheRepo, err := a.initCacheRepo(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	datasetRepo := pgdb.NewDatasetRepo(db.Pool, pgdbConv.NewDatasetConverter())
	catalogUC := usecase.NewCatalogUC(datasetRepo, modelRepo, embeddingRepo, usecase.CatalogConfig{
		BrandEncoderName:    cfg.Models.BrandEncoderName,
		CelebProjectionName: cfg.Models.CelebProjectionName,
	}, log)

	cat, err := catalogUC.Build(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	textEmbedder := embedder.NewEmbedder(embedder.Config{
		APIKey:           cfg.Embedding.APIKey,
		BaseURL:          cfg.Embedding.BaseURL,
		Model:            cfg.Embedding.Model,
		InputType:        cfg.Embedding.InputType,
		BreakerFailures:  uint32(cfg.Embedding.BreakerFailures),
		BreakerOpenFor:   cfg.Embedding.BreakerOpenFor,
		BreakerHalfOpens: 1,
	}, log)
	if cfg.Embedding.APIKey == "" {
		log.Warnf("Embedding API key is not set, description search will answer 503")
	}

	pitchGen := pitch.NewGenerator(pitch.Config{
		APIKey:          cfg.LLM.APIKey,
		BaseURL:         cfg.LLM.BaseURL,
		Model:           cfg.LLM.Model,
		Temperature:     cfg.LLM.Temperature,
		MaxTokens:       int64(cfg.LLM.MaxTokens),
		BreakerFailures: uint32(cfg.LLM.BreakerFailures),
		BreakerOpenFor:  cfg.LLM.BreakerOpenFor,
	}, log)
	if cfg.LLM.APIKey == "" {
		log.Warnf("LLM API key is not set, explanations will use the fallback text")
	}

	recommendUC := usecase.NewRecommendUC(cat, textEmbedder, pitchGen, cacheRepo, usecase.RecommendConfig{
		EmbeddingTimeout: cfg.Embedding.Timeout,
		PitchTimeout:     cfg.LLM.Timeout,
	}, log)

	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(recommendUC, cfg.Http)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	// Серверы останавливаются первыми (LIFO), затем клиенты хранилищ.
	a.closer.Add("grpc server", a.grpcSrv.Stop)
	a.closer.Add("http server", a.httpSrv.Stop)

	return a, nil
}

// Run запускает серверы и блокируется до сигнала остановки или ошибки сервера.
func (a *App) Run() error {
	errCh, err := startServers(a.grpcSrv, a.httpSrv, a.logger)
	if err != nil {
		a.logger.Errorf(err, "failed to start servers")
		a.shutdown()
		return err
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	a.shutdown()
	return appErr
}

func (a *App) shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			a.logger.Warnf("Shutdown timeout: %v", err)
		} else {
			a.logger.Errorf(err, "shutdown error")
		}
	}

	a.logger.Infof("Application shutdown complete")
}

// startServers занимает порты обоих серверов и только после этого запускает обработку
// и переводит health в SERVING. Ошибка привязки возвращается сразу, health остаётся NOT_SERVING.
func startServers(grpcSrv *v1Grpc.GRPCServer, httpSrv *v1Http.Server, log logger.Logger) (<-chan error, error) {
	grpcLis, err := grpcSrv.Listen()
	if err != nil {
		return nil, e.Wrap("gRPC server", err)
	}

	httpLis, err := httpSrv.Listen()
	if err != nil {
		_ = grpcLis.Close()
		return nil, e.Wrap("HTTP server", err)
	}

	errCh := make(chan error, 2)

	go func() {
		if err := grpcSrv.Serve(grpcLis); err != nil {
			errCh <- e.Wrap("gRPC server", err)
		}
	}()
	log.Infof("gRPC server listening on %s", grpcSrv.Addr())

	go func() {
		if err := httpSrv.Serve(httpLis); err != nil {
			errCh <- e.Wrap("HTTP server", err)
		}
	}()
	log.Infof("HTTP server listening on %s", httpSrv.Addr())

	grpcSrv.SetServing()

	return errCh, nil
}

func (a *App) initPGDB(ctx context.Context) (*postgres.PgDatabase, error) {
	var db *postgres.PgDatabase
	err := clients.Retry(ctx, clients.DefaultRetryPolicy(), "postgres", a.logger, func(ctx context.Context) error {
		var err error
		db, err = postgres.Connect(ctx, a.cfg.Db)
		return err
	})
	if err != nil {
		a.logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		return nil
	})

	if err := db.RunMigrations(a.logger); err != nil {
		a.logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}

func (a *App) initModelRepo(ctx context.Context) (usecase.ModelRepository, error) {
	if a.cfg.Models.Source == config.ModelSourceLocal {
		a.logger.Infof("Loading models from local directory %s", a.cfg.Models.Dir)
		return filesystem.NewModelRepo(a.cfg.Models.Dir), nil
	}

	minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	err = clients.Retry(ctx, clients.DefaultRetryPolicy(), "minio", a.logger, func(ctx context.Context) error {
		return clients.EnsureBucket(ctx, minioClient, a.cfg.Minio.BucketName)
	})
	if err != nil {
		a.logger.Errorf(err, "failed to initialize MinIO bucket")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return s3Repo.NewModelRepo(minioClient, a.cfg.Minio), nil
}

// initEmbeddingRepo возвращает nil, если Qdrant не настроен: таблица будет пересчитана.
func (a *App) initEmbeddingRepo(ctx context.Context) (usecase.EmbeddingRepository, error) {
	if !a.cfg.Qdrant.Enabled {
		a.logger.Infof("Qdrant is not configured, embedding table will be projected on every start")
		return nil, nil
	}

	qdrantClient, err := clients.NewQdrantClient(a.cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("qdrant", qdrantClient.Close)

	err = clients.Retry(ctx, clients.DefaultRetryPolicy(), "qdrant", a.logger, func(ctx context.Context) error {
		return clients.EnsureCollection(ctx, qdrantClient)
	})
	if err != nil {
		a.logger.Errorf(err, "failed to initialize qdrant")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, a.cfg.Qdrant), nil
}

// initCacheRepo возвращает nil, если кэш эмбеддингов выключен.
func (a *App) initCacheRepo(ctx context.Context) (usecase.CacheRepository, error) {
	if !a.cfg.Redis.Enabled {
		return nil, nil
	}

	redisClient := clients.NewRedisClient(a.cfg.Redis)
	a.closer.Add("redis", redisClient.Close)

	if err := clients.Retry(ctx, clients.DefaultRetryPolicy(), "redis", a.logger, redisClient.Ping); err != nil {
		a.logger.Errorf(err, "failed to connect to redis")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return redis.NewEmbeddingCacheRepo(redisClient, a.cfg.Embedding.Model, a.cfg.Redis, a.logger), nil
}
