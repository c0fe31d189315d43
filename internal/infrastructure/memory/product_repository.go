package memory

import (
	"context"
	"slices"

	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

// ProductRepo implementación en memoria de repository.ProductRepository.
type ProductRepo struct {
	a access
}

var _ repository.ProductRepository = (*ProductRepo)(nil)

func (r *ProductRepo) Create(_ context.Context, p *entity.Product) error {
	return r.a.do(func(d *dataset) error {
		if _, ok := d.categories[p.CategoryID]; !ok {
			return domain.ErrNotFound
		}
		if !p.Valid() {
			return domain.ErrInvalidInput
		}
		d.lastProduct++
		p.ID = d.lastProduct
		stored := *p
		stored.CategoryName, stored.CategorySlug = "", ""
		d.products[p.ID] = stored
		return nil
	})
}

func (r *ProductRepo) GetByID(_ context.Context, id int64) (*entity.Product, error) {
	var out *entity.Product
	err := r.a.do(func(d *dataset) error {
		out = d.product(id)
		return nil
	})
	return out, err
}

func (r *ProductRepo) Update(_ context.Context, p *entity.Product) error {
	return r.a.do(func(d *dataset) error {
		if _, ok := d.products[p.ID]; !ok {
			return domain.ErrNotFound
		}
		if _, ok := d.categories[p.CategoryID]; !ok {
			return domain.ErrNotFound
		}
		if !p.Valid() {
			return domain.ErrInvalidInput
		}
		stored := *p
		stored.CategoryName, stored.CategorySlug = "", ""
		d.products[p.ID] = stored
		return nil
	})
}

func (r *ProductRepo) Search(_ context.Context, f repository.ProductFilter) ([]*entity.Product, int, error) {
	var all []*entity.Product
	err := r.a.do(func(d *dataset) error {
		for id := range d.products {
			if p := d.product(id); f.Matches(p) {
				all = append(all, p)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	repository.SortProducts(all, f.Ordering)
	return f.Paginate(all), len(all), nil
}

func (r *ProductRepo) ListIDsByCategory(_ context.Context, categoryID int64) ([]int64, error) {
	var ids []int64
	err := r.a.do(func(d *dataset) error {
		for _, p := range d.products {
			if p.CategoryID == categoryID {
				ids = append(ids, p.ID)
			}
		}
		return nil
	})
	slices.Sort(ids)
	return ids, err
}

// Delete falla con ErrConflict si alguna línea de carrito aún referencia el producto.
func (r *ProductRepo) Delete(_ context.Context, id int64) error {
	return r.a.do(func(d *dataset) error {
		if _, ok := d.products[id]; !ok {
			return domain.ErrNotFound
		}
		for _, it := range d.items {
			if it.ProductID == id {
				return domain.ErrConflict
			}
		}
		delete(d.products, id)
		return nil
	})
}

// product copia del producto con los datos de su categoría, o nil.
func (d *dataset) product(id int64) *entity.Product {
	p, ok := d.products[id]
	if !ok {
		return nil
	}
	if c, ok := d.categories[p.CategoryID]; ok {
		p.CategoryName, p.CategorySlug = c.Name, c.Slug
	}
	return &p
}
