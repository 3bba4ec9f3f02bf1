package semantic

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// CacheConfig configures the Redis embedding cache.
type CacheConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// DefaultCacheConfig returns the default cache configuration.
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{TTL: 24 * time.Hour}
}

// CachedEmbedder memoizes embeddings in Redis keyed by content hash.
// Embedding calls dominate vault latency for repeated queries; cache
// failures degrade to the inner embedder, never to an error.
type CachedEmbedder struct {
	inner  Embedder
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedEmbedder wraps inner with a Redis cache.
func NewCachedEmbedder(inner Embedder, cfg CacheConfig, logger *zap.Logger) (*CachedEmbedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultCacheConfig().TTL
	}
	return &CachedEmbedder{inner: inner, client: client, ttl: ttl, logger: logger}, nil
}

// Embed returns the cached vector when present, otherwise embeds and
// stores the result.
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key := embeddingKey(text)

	data, err := c.client.Get(ctx, key).Result()
	if err == nil {
		var emb []float64
		if jsonErr := json.Unmarshal([]byte(data), &emb); jsonErr == nil {
			return emb, nil
		}
		c.logger.Warn("corrupt cached embedding dropped", zap.String("key", key))
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("embedding cache read failed", zap.Error(err))
	}

	emb, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(emb); jsonErr == nil {
		if setErr := c.client.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			c.logger.Warn("embedding cache write failed", zap.Error(setErr))
		}
	}
	return emb, nil
}

// Close releases the Redis connection.
func (c *CachedEmbedder) Close() error {
	return c.client.Close()
}

func embeddingKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return "nexuscore:emb:" + hex.EncodeToString(sum[:])
}
