package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/application/ports"
	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
	"github.com/jhoicas/eshop-api/pkg/slug"
)

// categoryOrderings órdenes permitidos para el listado de categorías.
var categoryOrderings = map[string]bool{
	"name": true, "-name": true,
	"created_at": true, "-created_at": true,
}

// CategoryUseCase casos de uso de categorías. El borrado es en cascada (productos y líneas de carrito).
type CategoryUseCase struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	tx         ports.TxRunner
	cache      Cache
}

// NewCategoryUseCase construye el caso de uso.
func NewCategoryUseCase(
	categories repository.CategoryRepository,
	products repository.ProductRepository,
	tx ports.TxRunner,
	cache Cache,
) *CategoryUseCase {
	return &CategoryUseCase{categories: categories, products: products, tx: tx, cache: cache}
}

// Create crea una categoría. Si Slug viene vacío se deriva del nombre.
func (uc *CategoryUseCase) Create(ctx context.Context, in dto.CreateCategoryRequest) (*dto.CategorySummary, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, domain.ErrInvalidInput
	}
	s := slug.Make(in.Slug)
	if s == "" {
		s = slug.Make(name)
	}
	if s == "" {
		return nil, domain.ErrInvalidInput
	}
	existing, err := uc.categories.GetBySlug(ctx, s)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, domain.ErrDuplicate
	}
	now := time.Now()
	c := &entity.Category{
		Name:        name,
		Description: in.Description,
		Slug:        s,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.categories.Create(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.invalidate(ctx)
	out := ToCategorySummary(c, 0)
	return &out, nil
}

// GetBySlug obtiene una categoría con su conteo de productos disponibles.
func (uc *CategoryUseCase) GetBySlug(ctx context.Context, categorySlug string) (*dto.CategorySummary, error) {
	c, err := uc.getBySlug(ctx, uc.categories, categorySlug)
	if err != nil {
		return nil, err
	}
	return uc.summary(ctx, c)
}

// List lista categorías filtradas por texto. Orden por defecto: nombre.
func (uc *CategoryUseCase) List(ctx context.Context, search, ordering string) ([]dto.CategorySummary, error) {
	search = strings.TrimSpace(search)
	ordering = strings.TrimSpace(ordering)
	if !categoryOrderings[ordering] {
		ordering = "name"
	}
	key := cacheKeyCategories + ordering + ":" + strings.ToLower(search)

	var cached []dto.CategorySummary
	if uc.cache.get(ctx, key, &cached) {
		return cached, nil
	}
	gen := uc.cache.snapshot()

	list, err := uc.categories.List(ctx, repository.CategoryFilter{Search: search, Ordering: ordering})
	if err != nil {
		return nil, err
	}
	out := make([]dto.CategorySummary, 0, len(list))
	for _, c := range list {
		s, err := uc.summary(ctx, c)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	uc.cache.set(ctx, gen, key, out)
	return out, nil
}

// Update actualización parcial. Cambiar el slug valida que el nuevo no exista.
func (uc *CategoryUseCase) Update(ctx context.Context, categorySlug string, in dto.UpdateCategoryRequest) (*dto.CategorySummary, error) {
	c, err := uc.getBySlug(ctx, uc.categories, categorySlug)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, domain.ErrInvalidInput
		}
		c.Name = name
	}
	if in.Description != nil {
		c.Description = *in.Description
	}
	if in.Slug != nil {
		s := slug.Make(*in.Slug)
		if s == "" {
			return nil, domain.ErrInvalidInput
		}
		if s != c.Slug {
			other, err := uc.categories.GetBySlug(ctx, s)
			if err != nil {
				return nil, err
			}
			if other != nil {
				return nil, domain.ErrDuplicate
			}
			c.Slug = s
		}
	}
	c.UpdatedAt = time.Now()
	if err := uc.categories.Update(ctx, c); err != nil {
		return nil, err
	}
	uc.cache.invalidate(ctx)
	return uc.summary(ctx, c)
}

// Delete elimina la categoría, sus productos y las líneas de carrito que los referencian,
// todo en una única transacción.
func (uc *CategoryUseCase) Delete(ctx context.Context, categorySlug string) error {
	err := uc.tx.Run(ctx, func(
		categories repository.CategoryRepository,
		products repository.ProductRepository,
		carts repository.CartRepository,
	) error {
		c, err := uc.getBySlug(ctx, categories, categorySlug)
		if err != nil {
			return err
		}
		ids, err := products.ListIDsByCategory(ctx, c.ID)
		if err != nil {
			return err
		}
		for _, id := range ids {
			if _, err := carts.DeleteItemsByProduct(ctx, id); err != nil {
				return err
			}
			if err := products.Delete(ctx, id); err != nil {
				return err
			}
		}
		return categories.Delete(ctx, c.ID)
	})
	if err != nil {
		return err
	}
	uc.cache.invalidate(ctx)
	return nil
}

// Products productos disponibles de la categoría, más recientes primero.
func (uc *CategoryUseCase) Products(ctx context.Context, categorySlug string) ([]dto.ProductSummary, error) {
	c, err := uc.getBySlug(ctx, uc.categories, categorySlug)
	if err != nil {
		return nil, err
	}
	available := true
	list, _, err := uc.products.Search(ctx, repository.ProductFilter{
		CategoryID:  &c.ID,
		IsAvailable: &available,
		Ordering:    repository.DefaultProductOrdering,
	})
	if err != nil {
		return nil, err
	}
	return toProductSummaries(list), nil
}

func (uc *CategoryUseCase) getBySlug(ctx context.Context, repo repository.CategoryRepository, categorySlug string) (*entity.Category, error) {
	categorySlug = strings.TrimSpace(categorySlug)
	if categorySlug == "" {
		return nil, domain.ErrInvalidInput
	}
	c, err := repo.GetBySlug(ctx, categorySlug)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.ErrNotFound
	}
	return c, nil
}

func (uc *CategoryUseCase) summary(ctx context.Context, c *entity.Category) (*dto.CategorySummary, error) {
	n, err := uc.categories.CountAvailableProducts(ctx, c.ID)
	if err != nil {
		return nil, err
	}
	out := ToCategorySummary(c, n)
	return &out, nil
}
