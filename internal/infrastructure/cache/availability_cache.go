// Package cache implementa la caché de disponibilidad sobre Redis.
package cache

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/warehouse-ledger/internal/application/inventory"
	"github.com/jhoicas/warehouse-ledger/pkg/config"
)

var _ inventory.AvailabilityCache = (*AvailabilityCache)(nil)

const (
	keyPrefix  = "avail:"
	genPrefix  = "avail:gen:"
	defaultTTL = 30 * time.Second
)

// setIfGen escribe el valor solo si la generación de la variante no cambió.
// KEYS[1] generación, KEYS[2] valor; ARGV[1] generación leída, ARGV[2] cantidad, ARGV[3] TTL en ms.
var setIfGen = redis.NewScript(`
local g = redis.call('GET', KEYS[1])
if not g then g = '0' end
if g ~= ARGV[1] then return 0 end
redis.call('SET', KEYS[2], ARGV[2], 'PX', ARGV[3])
return 1
`)

// AvailabilityCache guarda on_hand - reserved por variante (y bodega) con TTL.
// Claves: avail:{variant}:{warehouse}, avail:{variant}:all y el contador avail:gen:{variant}.
type AvailabilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAvailabilityCache construye la caché. ttl <= 0 usa 30 s.
func NewAvailabilityCache(client *redis.Client, ttl time.Duration) *AvailabilityCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &AvailabilityCache{client: client, ttl: ttl}
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func key(variantID int64, warehouseID *int64) string {
	w := "all"
	if warehouseID != nil {
		w = strconv.FormatInt(*warehouseID, 10)
	}
	return keyPrefix + strconv.FormatInt(variantID, 10) + ":" + w
}

func genKey(variantID int64) string {
	return genPrefix + strconv.FormatInt(variantID, 10)
}

func (c *AvailabilityCache) Get(ctx context.Context, variantID int64, warehouseID *int64) (int64, bool, error) {
	n, err := c.client.Get(ctx, key(variantID, warehouseID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

// Generation devuelve 0 si la variante nunca se invalidó.
func (c *AvailabilityCache) Generation(ctx context.Context, variantID int64) (int64, error) {
	n, err := c.client.Get(ctx, genKey(variantID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

func (c *AvailabilityCache) Set(ctx context.Context, variantID int64, warehouseID *int64, gen, qty int64) error {
	keys := []string{genKey(variantID), key(variantID, warehouseID)}
	return setIfGen.Run(ctx, c.client, keys, gen, qty, c.ttl.Milliseconds()).Err()
}

// Invalidate sube la generación y borra el agregado de la variante y las claves de las bodegas indicadas.
func (c *AvailabilityCache) Invalidate(ctx context.Context, variantID int64, warehouseIDs ...int64) error {
	keys := make([]string, 0, len(warehouseIDs)+1)
	keys = append(keys, key(variantID, nil))
	for _, w := range warehouseIDs {
		keys = append(keys, key(variantID, &w))
	}
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(variantID))
		pipe.Del(ctx, keys...)
		return nil
	})
	return err
}
