package ports

import (
	"context"
	"time"

	"github.com/jhoicas/eshop-api/internal/application/dto"
)

// CatalogCache guarda proyecciones de lectura del catálogo (destacados, listado de categorías).
// Un fallo de caché nunca debe romper la lectura: el caso de uso cae a la base de datos.
type CatalogCache interface {
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	// Invalidate borra todas las entradas del catálogo tras una escritura.
	Invalidate(ctx context.Context) error
}

// FeedEncoder serializa productos a un feed XML (RSS) para buscadores y marketplaces.
type FeedEncoder interface {
	Encode(items []dto.FeedItem) ([]byte, error)
}
