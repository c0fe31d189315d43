package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/application/ports"
	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

// FeaturedLimit máximo de productos destacados.
const FeaturedLimit = 6

// ProductUseCase casos de uso del catálogo de productos. Stock y precio solo cambian por aquí;
// el carrito los lee pero nunca los modifica.
type ProductUseCase struct {
	products   repository.ProductRepository
	categories repository.CategoryRepository
	tx         ports.TxRunner
	cache      Cache
	feed       ports.FeedEncoder
	baseURL    string
}

// NewProductUseCase construye el caso de uso. feed puede ser nil si no se expone el feed.
func NewProductUseCase(
	products repository.ProductRepository,
	categories repository.CategoryRepository,
	tx ports.TxRunner,
	cache Cache,
	feed ports.FeedEncoder,
	baseURL string,
) *ProductUseCase {
	return &ProductUseCase{
		products:   products,
		categories: categories,
		tx:         tx,
		cache:      cache,
		feed:       feed,
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// Create crea un producto. La categoría debe existir; IsAvailable es true si se omite.
func (uc *ProductUseCase) Create(ctx context.Context, in dto.CreateProductRequest) (*dto.ProductDetail, error) {
	now := time.Now()
	p := &entity.Product{
		CategoryID:  in.CategoryID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Price:       in.Price,
		Stock:       in.Stock,
		IsAvailable: true,
		Featured:    in.Featured,
		Image:       in.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
	if p.Name == "" || !p.Valid() || p.CategoryID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	category, err := uc.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, domain.ErrNotFound
	}
	if err := uc.products.Create(ctx, p); err != nil {
		return nil, err
	}
	uc.cache.invalidate(ctx)
	return uc.GetByID(ctx, p.ID)
}

// GetByID obtiene el detalle de un producto.
func (uc *ProductUseCase) GetByID(ctx context.Context, id int64) (*dto.ProductDetail, error) {
	p, err := uc.get(ctx, uc.products, id)
	if err != nil {
		return nil, err
	}
	category, err := uc.categories.GetByID(ctx, p.CategoryID)
	if err != nil {
		return nil, err
	}
	var cs dto.CategorySummary
	if category != nil {
		n, err := uc.categories.CountAvailableProducts(ctx, category.ID)
		if err != nil {
			return nil, err
		}
		cs = ToCategorySummary(category, n)
	}
	out := ToProductDetail(p, cs)
	return &out, nil
}

// Update actualización parcial; revalida precio, stock y categoría.
func (uc *ProductUseCase) Update(ctx context.Context, id int64, in dto.UpdateProductRequest) (*dto.ProductDetail, error) {
	p, err := uc.get(ctx, uc.products, id)
	if err != nil {
		return nil, err
	}
	if in.CategoryID != nil && *in.CategoryID != p.CategoryID {
		category, err := uc.categories.GetByID(ctx, *in.CategoryID)
		if err != nil {
			return nil, err
		}
		if category == nil {
			return nil, domain.ErrNotFound
		}
		p.CategoryID = category.ID
	}
	if in.Name != nil {
		p.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Price != nil {
		p.Price = *in.Price
	}
	if in.Stock != nil {
		p.Stock = *in.Stock
	}
	if in.IsAvailable != nil {
		p.IsAvailable = *in.IsAvailable
	}
	if in.Featured != nil {
		p.Featured = *in.Featured
	}
	if in.Image != nil {
		p.Image = *in.Image
	}
	if p.Name == "" || !p.Valid() {
		return nil, domain.ErrInvalidInput
	}
	p.UpdatedAt = time.Now()
	if err := uc.products.Update(ctx, p); err != nil {
		return nil, err
	}
	uc.cache.invalidate(ctx)
	return uc.GetByID(ctx, p.ID)
}

// Delete elimina el producto y, en la misma transacción, las líneas de carrito que lo referencian.
func (uc *ProductUseCase) Delete(ctx context.Context, id int64) error {
	err := uc.tx.Run(ctx, func(
		_ repository.CategoryRepository,
		products repository.ProductRepository,
		carts repository.CartRepository,
	) error {
		if _, err := uc.get(ctx, products, id); err != nil {
			return err
		}
		if _, err := carts.DeleteItemsByProduct(ctx, id); err != nil {
			return err
		}
		return products.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.cache.invalidate(ctx)
	return nil
}

// List listado filtrado y paginado. Los filtros mal formados se ignoran.
func (uc *ProductUseCase) List(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	return uc.search(ctx, ParseProductFilter(q))
}

// SearchAdvanced igual que List pero el parámetro de categoría es siempre un slug.
func (uc *ProductUseCase) SearchAdvanced(ctx context.Context, q dto.ProductQuery) (*dto.ProductListResponse, error) {
	f := ParseProductFilter(q)
	if c := strings.TrimSpace(q.Category); c != "" {
		f.CategoryID = nil
		f.CategorySlug = c
	}
	return uc.search(ctx, f)
}

// Featured hasta FeaturedLimit productos destacados y disponibles, más recientes primero.
func (uc *ProductUseCase) Featured(ctx context.Context) ([]dto.ProductSummary, error) {
	var cached []dto.ProductSummary
	if uc.cache.get(ctx, cacheKeyFeatured, &cached) {
		return cached, nil
	}
	gen := uc.cache.snapshot()
	yes := true
	list, _, err := uc.products.Search(ctx, repository.ProductFilter{
		Featured:    &yes,
		IsAvailable: &yes,
		Ordering:    repository.DefaultProductOrdering,
		Limit:       FeaturedLimit,
	})
	if err != nil {
		return nil, err
	}
	out := toProductSummaries(list)
	uc.cache.set(ctx, gen, cacheKeyFeatured, out)
	return out, nil
}

// Feed serializa los productos disponibles como feed RSS.
func (uc *ProductUseCase) Feed(ctx context.Context) ([]byte, error) {
	if uc.feed == nil {
		return nil, fmt.Errorf("feed: encoder no configurado")
	}
	yes := true
	list, _, err := uc.products.Search(ctx, repository.ProductFilter{
		IsAvailable: &yes,
		Ordering:    repository.DefaultProductOrdering,
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.FeedItem, 0, len(list))
	for _, p := range list {
		items = append(items, dto.FeedItem{
			ID:           p.ID,
			Title:        p.Name,
			Description:  p.Description,
			Link:         fmt.Sprintf("%s/api/products/%d", uc.baseURL, p.ID),
			Image:        p.Image,
			Price:        p.Price,
			InStock:      p.InStock(),
			CategoryName: p.CategoryName,
			UpdatedAt:    p.UpdatedAt,
		})
	}
	return uc.feed.Encode(items)
}

func (uc *ProductUseCase) search(ctx context.Context, f repository.ProductFilter) (*dto.ProductListResponse, error) {
	list, total, err := uc.products.Search(ctx, f)
	if err != nil {
		return nil, err
	}
	return &dto.ProductListResponse{
		Items: toProductSummaries(list),
		Page:  dto.PageResponse{Limit: f.Limit, Offset: f.Offset, Total: total},
	}, nil
}

func (uc *ProductUseCase) get(ctx context.Context, repo repository.ProductRepository, id int64) (*entity.Product, error) {
	if id <= 0 {
		return nil, domain.ErrInvalidInput
	}
	p, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	return p, nil
}
