package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/eshop-api/internal/application/ports"
	"github.com/jhoicas/eshop-api/pkg/logger"
)

// Claves de la caché del catálogo.
const (
	cacheKeyFeatured   = "catalog:featured"
	cacheKeyCategories = "catalog:categories:"
)

// Cache caché opcional de lecturas del catálogo. El valor cero no cachea.
// Los errores de la caché se registran y nunca se propagan.
//
// Cada invalidación avanza una generación: una lectura que empezó antes de una
// escritura no guarda su resultado si la generación cambió mientras leía.
type Cache struct {
	store ports.CatalogCache
	ttl   time.Duration
	log   *logger.Logger
	gen   *generation
}

type generation struct {
	mu sync.RWMutex
	n  uint64
}

// NewCache construye la caché. store nil equivale a no cachear.
func NewCache(store ports.CatalogCache, ttl time.Duration, log *logger.Logger) Cache {
	return Cache{store: store, ttl: ttl, log: log, gen: &generation{}}
}

func (c Cache) enabled() bool { return c.store != nil && c.gen != nil }

// snapshot generación vigente; se toma antes de leer del almacén.
func (c Cache) snapshot() uint64 {
	if !c.enabled() {
		return 0
	}
	c.gen.mu.RLock()
	defer c.gen.mu.RUnlock()
	return c.gen.n
}

func (c Cache) get(ctx context.Context, key string, dest any) bool {
	if !c.enabled() {
		return false
	}
	ok, err := c.store.Get(ctx, key, dest)
	if err != nil {
		c.warn(err, key, "catálogo: lectura de caché fallida")
		return false
	}
	return ok
}

// set guarda value solo si no hubo invalidaciones desde snapshot.
func (c Cache) set(ctx context.Context, snapshot uint64, key string, value any) {
	if !c.enabled() {
		return
	}
	c.gen.mu.RLock()
	defer c.gen.mu.RUnlock()
	if c.gen.n != snapshot {
		return
	}
	if err := c.store.Set(ctx, key, value, c.ttl); err != nil {
		c.warn(err, key, "catálogo: escritura de caché fallida")
	}
}

func (c Cache) invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	c.gen.mu.Lock()
	defer c.gen.mu.Unlock()
	c.gen.n++
	if err := c.store.Invalidate(ctx); err != nil {
		c.warn(err, "catalog:*", "catálogo: invalidación de caché fallida")
	}
}

func (c Cache) warn(err error, key, msg string) {
	if c.log == nil {
		return
	}
	c.log.Warn().Err(err).Str("cache_key", key).Msg(msg)
}
