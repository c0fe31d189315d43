package ports

import (
	"context"

	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción, pasando repositorios atados a esa tx.
// Si fn retorna error se hace rollback y ningún cambio queda visible.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		categories repository.CategoryRepository,
		products repository.ProductRepository,
		carts repository.CartRepository,
	) error) error
}
