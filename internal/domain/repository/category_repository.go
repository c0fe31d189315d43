package repository

import (
	"context"

	"github.com/jhoicas/eshop-api/internal/domain/entity"
)

// CategoryFilter criterios para listar categorías.
type CategoryFilter struct {
	Search   string // subcadena (sin distinguir mayúsculas) en nombre o descripción
	Ordering string // name, -name, created_at, -created_at
}

// CategoryRepository define el puerto de persistencia para Category (DIP).
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	GetByID(ctx context.Context, id int64) (*entity.Category, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Category, error)
	Update(ctx context.Context, category *entity.Category) error
	List(ctx context.Context, filter CategoryFilter) ([]*entity.Category, error)
	// CountAvailableProducts cuenta los productos con is_available = true de la categoría.
	CountAvailableProducts(ctx context.Context, categoryID int64) (int, error)
	Delete(ctx context.Context, id int64) error
}
