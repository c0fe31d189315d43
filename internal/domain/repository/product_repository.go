package repository

import (
	"context"

	"github.com/jhoicas/eshop-api/internal/domain/entity"
)

// ProductRepository define el puerto de persistencia para Product (DIP).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id int64) (*entity.Product, error)
	Update(ctx context.Context, product *entity.Product) error
	// Search aplica el filtro y devuelve la página pedida junto con el total sin paginar.
	Search(ctx context.Context, filter ProductFilter) ([]*entity.Product, int, error)
	ListIDsByCategory(ctx context.Context, categoryID int64) ([]int64, error)
	Delete(ctx context.Context, id int64) error
}
