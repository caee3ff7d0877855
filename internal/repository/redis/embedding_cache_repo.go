package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/starmatch-backend/pkg/clients"
	"github.com/DRSN-tech/starmatch-backend/pkg/e"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/jimlawless/whereami"
	r "github.com/redis/go-redis/v9"
)

// EmbeddingCacheRepo кэширует эмбеддинги текстов в Redis.
// Ключ зависит от модели эмбеддингов, чтобы смена модели не отдавала старые векторы.
type EmbeddingCacheRepo struct {
	client *clients.RedisClient
	model  string
	cfg    *cfg.RedisCfg
	logger logger.Logger
}

func NewEmbeddingCacheRepo(client *clients.RedisClient, model string, cfg *cfg.RedisCfg, logger logger.Logger) *EmbeddingCacheRepo {
	return &EmbeddingCacheRepo{
		client: client,
		model:  model,
		cfg:    cfg,
		logger: logger,
	}
}

// GetEmbedding возвращает закэшированный вектор. Промах — (nil, false, nil).
func (c *EmbeddingCacheRepo) GetEmbedding(ctx context.Context, text string) ([]float32, bool, error) {
	key := c.embeddingKey(text)

	val, err := c.client.Client.Get(ctx, key).Result()
	if err == r.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, e.Wrap(whereami.WhereAmI(), err)
	}

	data, err := redisValueToBytes(val, key)
	if err != nil || data == nil {
		return nil, false, err
	}

	var model converter.EmbeddingRedisModel
	if err := json.Unmarshal(data, &model); err != nil {
		c.logger.Warnf("Redis unmarshal failed: %v", e.Wrap(whereami.WhereAmI(), err))
		c.drop(ctx, key)
		return nil, false, nil
	}

	if !model.Valid(c.model) {
		c.logger.Warnf("Cached embedding is inconsistent, dropping key %s", key)
		c.drop(ctx, key)
		return nil, false, nil
	}

	return model.Vector, true, nil
}

// SetEmbedding сохраняет вектор с TTL из конфигурации.
func (c *EmbeddingCacheRepo) SetEmbedding(ctx context.Context, text string, vector []float32) error {
	data, err := json.Marshal(converter.ToRedisModel(c.model, vector))
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	if err := c.client.Client.Set(ctx, c.embeddingKey(text), data, c.cfg.EmbeddingTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (c *EmbeddingCacheRepo) drop(ctx context.Context, key string) {
	if err := c.client.Client.Del(ctx, key).Err(); err != nil {
		c.logger.Warnf("Redis del failed: %v", e.Wrap(whereami.WhereAmI(), err))
	}
}

// embeddingKey возвращает ключ вида embedding:<model>:<sha256(text)>.
func (c *EmbeddingCacheRepo) embeddingKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("embedding:%s:%s", c.model, hex.EncodeToString(sum[:]))
}

// redisValueToBytes конвертирует значение из Redis в []byte.
// Поддерживает string и []byte, возвращает ошибку для неизвестных типов.
func redisValueToBytes(val interface{}, key string) ([]byte, error) {
	switch v := val.(type) {
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case nil:
		return nil, nil // cache miss
	default:
		return nil, fmt.Errorf("unexpected Redis value type for key %s: %T", key, val)
	}
}
