package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnv — переменная с путём к необязательному YAML-файлу конфигурации.
// Ключи файла совпадают с именами переменных окружения в нижнем регистре;
// переменные окружения имеют приоритет над файлом.
const ConfigPathEnv = "CONFIG_PATH"

type Config struct {
	Http      *HTTPConfig
	Grpc      *GRPCConfig
	Db        *PGDBCfg
	Qdrant    *QdrantCfg
	Redis     *RedisCfg
	Minio     *MinIOCfg
	Models    *ModelsCfg
	Embedding *EmbeddingCfg
	LLM       *LLMCfg
	Log       *LogCfg
}

type HTTPConfig struct {
	Port           string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	AllowedOrigins []string
	RateLimit      int           // запросов с одного IP за RateWindow, 0 — без ограничения
	RateWindow     time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Enabled              bool // без QDRANT_HOST таблица эмбеддингов пересчитывается при каждом старте
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64 // размерность эмбеддинга знаменитости
}

type RedisCfg struct {
	Enabled      bool
	Addr         string
	Password     string
	User         string
	DB           int
	MaxRetries   int
	DialTimeout  time.Duration
	Timeout      time.Duration
	EmbeddingTTL time.Duration
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет с весами моделей
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

// ModelsCfg — откуда брать веса проекционных моделей.
type ModelsCfg struct {
	Source              string // "minio" или "local"
	Dir                 string // каталог для Source = "local"
	BrandEncoderName    string
	CelebProjectionName string
}

type EmbeddingCfg struct {
	APIKey          string
	BaseURL         string
	Model           string
	InputType       string
	Timeout         time.Duration
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

type LLMCfg struct {
	APIKey          string
	BaseURL         string
	Model           string
	Temperature     float64
	MaxTokens       int
	Timeout         time.Duration
	BreakerFailures int
	BreakerOpenFor  time.Duration
}

type LogCfg struct {
	Level  string
	Format string
}

const (
	ModelSourceMinio = "minio"
	ModelSourceLocal = "local"
)

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	src, err := newSource(os.Getenv(ConfigPathEnv))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return src.load(log)
}

func (s *source) load(log logger.Logger) (*Config, error) {
	http, err := s.loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	db, err := s.loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := s.loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := s.loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := s.loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	models, err := s.loadModelsCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	embedding, err := s.loadEmbeddingCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	llm, err := s.loadLLMCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Http:      http,
		Grpc:      s.loadGRPCConfig(),
		Db:        db,
		Qdrant:    qdrant,
		Redis:     redis,
		Minio:     minio,
		Models:    models,
		Embedding: embedding,
		LLM:       llm,
		Log:       s.loadLogCfg(),
	}, nil
}

// LoadLogCfg читает только настройки логгера, который нужен до загрузки остальной конфигурации.
func LoadLogCfg() *LogCfg {
	src, err := newSource(os.Getenv(ConfigPathEnv))
	if err != nil {
		return &LogCfg{Level: "info", Format: "json"}
	}

	return src.loadLogCfg()
}

// LoadPGDBCfg читает только настройки Postgres (используется импортёром).
func LoadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	src, err := newSource(os.Getenv(ConfigPathEnv))
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return src.loadPGDBCfg(log)
}

func (s *source) loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 5 * time.Second
		defaultWriteTimeout = 30 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultOrigins      = "*"
		defaultRateLimit    = 100
		defaultRateWindow   = time.Minute
	)

	readTimeout, err := s.parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := s.parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := s.parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	rateLimit, err := s.parseIntEnv("HTTP_RATE_LIMIT", defaultRateLimit)
	if err != nil {
		log.Errorf(err, "invalid HTTP_RATE_LIMIT")
		return nil, err
	}

	rateWindow, err := s.parseDurationEnv("HTTP_RATE_WINDOW", defaultRateWindow)
	if err != nil {
		log.Errorf(err, "invalid HTTP_RATE_WINDOW")
		return nil, err
	}

	return &HTTPConfig{
		Port:           s.getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		IdleTimeout:    idleTimeout,
		AllowedOrigins: splitList(s.getEnvOrDefault("HTTP_ALLOWED_ORIGINS", defaultOrigins)),
		RateLimit:      rateLimit,
		RateWindow:     rateWindow,
	}, nil
}

func (s *source) loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        s.getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: s.getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func (s *source) loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB"} {
		if s.getEnv(key) == "" {
			err := fmt.Errorf("%s is required", key)
			log.Errorf(err, "missing %s", key)
			return nil, err
		}
	}

	return &PGDBCfg{
		Host:     s.getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     s.getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     s.getEnv("POSTGRES_USER"),
		Password: s.getEnv("POSTGRES_PASSWORD"),
		DBName:   s.getEnv("POSTGRES_DB"),
		SSLMode:  s.getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

func (s *source) loadQdrantCfg(log logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = 6334
		defaultUseTLS         = false
		defaultVectorSize     = 1024
		defaultCollection     = "celebrity_embeddings"
	)

	port, err := s.parseIntEnv("QDRANT_GRPC_PORT", defaultQdrantGRPCPort)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := s.parseBoolEnv("QDRANT_USE_TLS", defaultUseTLS)
	if err != nil {
		log.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := s.parseIntEnv("VECTOR_SIZE", defaultVectorSize)
	if err == nil && vectorSize <= 0 {
		err = e.Wrap("VECTOR_SIZE", e.ErrIncorrectEnvVariable)
	}
	if err != nil {
		log.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	host := s.getEnv("QDRANT_HOST")

	return &QdrantCfg{
		Enabled:              host != "",
		Host:                 host,
		Port:                 port,
		ApiKey:               s.getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: s.getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           uint64(vectorSize),
	}, nil
}

func (s *source) loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultEnabled      = true
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultEmbeddingTTL = 24 * time.Hour
	)

	enabled, err := s.parseBoolEnv("EMBEDDING_CACHE_ENABLED", defaultEnabled)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_CACHE_ENABLED")
		return nil, err
	}

	db, err := s.parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := s.parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := s.parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := s.parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := s.parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	embeddingTTL, err := s.parseDurationEnv("EMBEDDING_CACHE_TTL", defaultEmbeddingTTL)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_CACHE_TTL")
		return nil, err
	}

	return &RedisCfg{
		Enabled:      enabled,
		Addr:         s.getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:     s.getEnv("REDIS_PASSWORD"),
		User:         s.getEnv("REDIS_USER"),
		DB:           db,
		MaxRetries:   maxRetries,
		DialTimeout:  dialTimeout,
		Timeout:      max(readTimeout, writeTimeout),
		EmbeddingTTL: embeddingTTL,
	}, nil
}

func (s *source) loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "models"
	)

	useSSL, err := s.parseBoolEnv("MINIO_USE_SSL", defaultUseSSL)
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     s.getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        s.getEnvOrDefault("BUCKET_NAME", defaultBucket),
		MinioRootUser:     s.getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: s.getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func (s *source) loadModelsCfg() (*ModelsCfg, error) {
	const (
		defaultSource          = ModelSourceMinio
		defaultDir             = "assets"
		defaultBrandEncoder    = "brand_encoder.json"
		defaultCelebProjection = "celeb_proj.json"
	)

	src := strings.ToLower(s.getEnvOrDefault("MODEL_SOURCE", defaultSource))
	if src != ModelSourceMinio && src != ModelSourceLocal {
		return nil, e.Wrap("MODEL_SOURCE", e.ErrIncorrectEnvVariable)
	}

	return &ModelsCfg{
		Source:              src,
		Dir:                 s.getEnvOrDefault("MODEL_DIR", defaultDir),
		BrandEncoderName:    s.getEnvOrDefault("BRAND_ENCODER_MODEL", defaultBrandEncoder),
		CelebProjectionName: s.getEnvOrDefault("CELEB_PROJECTION_MODEL", defaultCelebProjection),
	}, nil
}

func (s *source) loadEmbeddingCfg(log logger.Logger) (*EmbeddingCfg, error) {
	const (
		defaultBaseURL         = "https://api.voyageai.com/v1/"
		defaultModel           = "voyage-3-large"
		defaultInputType       = "document"
		defaultTimeout         = 10 * time.Second
		defaultBreakerFailures = 5
		defaultBreakerOpenFor  = 30 * time.Second
	)

	timeout, err := s.parseDurationEnv("EMBEDDING_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_TIMEOUT")
		return nil, err
	}

	failures, err := s.parseIntEnv("EMBEDDING_BREAKER_FAILURES", defaultBreakerFailures)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_BREAKER_FAILURES")
		return nil, err
	}

	openFor, err := s.parseDurationEnv("EMBEDDING_BREAKER_OPEN_FOR", defaultBreakerOpenFor)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_BREAKER_OPEN_FOR")
		return nil, err
	}

	return &EmbeddingCfg{
		APIKey:          s.getEnv("VOYAGE_API_KEY"),
		BaseURL:         s.getEnvOrDefault("EMBEDDING_BASE_URL", defaultBaseURL),
		Model:           s.getEnvOrDefault("EMBEDDING_MODEL", defaultModel),
		InputType:       s.getEnvOrDefault("EMBEDDING_INPUT_TYPE", defaultInputType),
		Timeout:         timeout,
		BreakerFailures: failures,
		BreakerOpenFor:  openFor,
	}, nil
}

func (s *source) loadLLMCfg(log logger.Logger) (*LLMCfg, error) {
	const (
		defaultModel           = "gpt-4o-mini"
		defaultTemperature     = 0.7
		defaultMaxTokens       = 220
		defaultTimeout         = 20 * time.Second
		defaultBreakerFailures = 5
		defaultBreakerOpenFor  = 30 * time.Second
	)

	temperature, err := s.parseFloatEnv("LLM_TEMPERATURE", defaultTemperature)
	if err != nil {
		log.Errorf(err, "invalid LLM_TEMPERATURE")
		return nil, err
	}

	maxTokens, err := s.parseIntEnv("LLM_MAX_TOKENS", defaultMaxTokens)
	if err != nil {
		log.Errorf(err, "invalid LLM_MAX_TOKENS")
		return nil, err
	}

	timeout, err := s.parseDurationEnv("LLM_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid LLM_TIMEOUT")
		return nil, err
	}

	failures, err := s.parseIntEnv("LLM_BREAKER_FAILURES", defaultBreakerFailures)
	if err != nil {
		log.Errorf(err, "invalid LLM_BREAKER_FAILURES")
		return nil, err
	}

	openFor, err := s.parseDurationEnv("LLM_BREAKER_OPEN_FOR", defaultBreakerOpenFor)
	if err != nil {
		log.Errorf(err, "invalid LLM_BREAKER_OPEN_FOR")
		return nil, err
	}

	return &LLMCfg{
		APIKey:          s.getEnv("OPENAI_API_KEY"),
		BaseURL:         s.getEnv("OPENAI_BASE_URL"),
		Model:           s.getEnvOrDefault("LLM_MODEL", defaultModel),
		Temperature:     temperature,
		MaxTokens:       maxTokens,
		Timeout:         timeout,
		BreakerFailures: failures,
		BreakerOpenFor:  openFor,
	}, nil
}

func (s *source) loadLogCfg() *LogCfg {
	return &LogCfg{
		Level:  s.getEnvOrDefault("LOG_LEVEL", "info"),
		Format: s.getEnvOrDefault("LOG_FORMAT", "json"),
	}
}

// source — слои конфигурации: необязательный YAML-файл, поверх него переменные окружения.
type source struct {
	k *koanf.Koanf
}

func newSource(path string) (*source, error) {
	// Ключи плоские, разделитель выбран так, чтобы не встречаться в именах переменных
	k := koanf.New("::")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", "::", strings.ToLower), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	return &source{k: k}, nil
}

// getEnv возвращает значение параметра или пустую строку, если он не задан.
func (s *source) getEnv(key string) string {
	return strings.TrimSpace(s.k.String(strings.ToLower(key)))
}

// getEnvOrDefault возвращает значение параметра или значение по умолчанию.
func (s *source) getEnvOrDefault(key, defaultValue string) string {
	if value := s.getEnv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func (s *source) parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := s.getEnv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func (s *source) parseIntEnv(key string, defaultValue int) (int, error) {
	if s.getEnv(key) == "" {
		return defaultValue, nil
	}

	v, err := strconv.Atoi(s.getEnv(key))
	if err != nil {
		return defaultValue, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	return v, nil
}

func (s *source) parseFloatEnv(key string, defaultValue float64) (float64, error) {
	if s.getEnv(key) == "" {
		return defaultValue, nil
	}

	v, err := strconv.ParseFloat(s.getEnv(key), 64)
	if err != nil {
		return defaultValue, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	return v, nil
}

func (s *source) parseBoolEnv(key string, defaultValue bool) (bool, error) {
	if s.getEnv(key) == "" {
		return defaultValue, nil
	}

	v, err := strconv.ParseBool(s.getEnv(key))
	if err != nil {
		return defaultValue, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	return v, nil
}

func splitList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
