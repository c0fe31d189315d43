package usecase

import (
	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
)

// ToCategorySummary proyección de lectura de una categoría con su conteo de productos disponibles.
func ToCategorySummary(c *entity.Category, productCount int) dto.CategorySummary {
	return dto.CategorySummary{
		ID:           c.ID,
		Name:         c.Name,
		Description:  c.Description,
		Slug:         c.Slug,
		ProductCount: productCount,
		CreatedAt:    c.CreatedAt,
	}
}

// ToProductSummary proyección de listado.
func ToProductSummary(p *entity.Product) dto.ProductSummary {
	return dto.ProductSummary{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		CategoryName: p.CategoryName,
		Stock:        p.Stock,
		IsAvailable:  p.IsAvailable,
		Featured:     p.Featured,
		InStock:      p.InStock(),
		Image:        p.Image,
	}
}

// ToProductDetail proyección completa; category debe ser la categoría del producto.
func ToProductDetail(p *entity.Product, category dto.CategorySummary) dto.ProductDetail {
	return dto.ProductDetail{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		Category:    category,
		Stock:       p.Stock,
		IsAvailable: p.IsAvailable,
		Featured:    p.Featured,
		InStock:     p.InStock(),
		Image:       p.Image,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toProductSummaries(list []*entity.Product) []dto.ProductSummary {
	out := make([]dto.ProductSummary, 0, len(list))
	for _, p := range list {
		out = append(out, ToProductSummary(p))
	}
	return out
}
