package redis

import (
	"context"
	"testing"
	"time"

	"github.com/DRSN-tech/starmatch-backend/internal/cfg"
	"github.com/DRSN-tech/starmatch-backend/pkg/clients"
	"github.com/DRSN-tech/starmatch-backend/pkg/logger"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T, model string) (*EmbeddingCacheRepo, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)

	redisCfg := &cfg.RedisCfg{Addr: mr.Addr(), EmbeddingTTL: time.Hour}
	client := clients.NewRedisClient(redisCfg)
	t.Cleanup(func() { _ = client.Client.Close() })

	return NewEmbeddingCacheRepo(client, model, redisCfg, logger.NewNopLogger()), mr
}

func TestEmbeddingCache_Miss(t *testing.T) {
	repo, _ := setupCache(t, "voyage-3-large")

	vec, ok, err := repo.GetEmbedding(context.Background(), "sports drink")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, vec)
}

func TestEmbeddingCache_RoundTripWithTTL(t *testing.T) {
	repo, mr := setupCache(t, "voyage-3-large")
	ctx := context.Background()

	require.NoError(t, repo.SetEmbedding(ctx, "sports drink", []float32{0.25, -0.5, 1}))

	vec, ok, err := repo.GetEmbedding(ctx, "sports drink")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{0.25, -0.5, 1}, vec)

	key := repo.embeddingKey("sports drink")
	assert.Equal(t, time.Hour, mr.TTL(key))

	mr.FastForward(2 * time.Hour)
	_, ok, err = repo.GetEmbedding(ctx, "sports drink")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmbeddingCache_KeyDependsOnModel(t *testing.T) {
	a, _ := setupCache(t, "model-a")
	b, _ := setupCache(t, "model-b")

	assert.NotEqual(t, a.embeddingKey("text"), b.embeddingKey("text"))
	assert.Equal(t, a.embeddingKey("text"), a.embeddingKey("text"))
	assert.Contains(t, a.embeddingKey("text"), "embedding:model-a:")
}

func TestEmbeddingCache_CorruptEntryIsDropped(t *testing.T) {
	repo, mr := setupCache(t, "voyage-3-large")
	ctx := context.Background()

	key := repo.embeddingKey("broken")
	require.NoError(t, mr.Set(key, "{not json"))

	_, ok, err := repo.GetEmbedding(ctx, "broken")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(key))
}

func TestEmbeddingCache_ForeignModelEntryIsDropped(t *testing.T) {
	repo, mr := setupCache(t, "voyage-3-large")

	key := repo.embeddingKey("text")
	require.NoError(t, mr.Set(key, `{"model":"other","dim":1,"vector":[1]}`))

	_, ok, err := repo.GetEmbedding(context.Background(), "text")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.False(t, mr.Exists(key))
}

func TestEmbeddingCache_ServerDown(t *testing.T) {
	repo, mr := setupCache(t, "voyage-3-large")
	mr.Close()

	_, _, err := repo.GetEmbedding(context.Background(), "text")
	assert.Error(t, err)
}
