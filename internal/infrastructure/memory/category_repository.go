package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

// CategoryRepo implementación en memoria de repository.CategoryRepository.
type CategoryRepo struct {
	a access
}

var _ repository.CategoryRepository = (*CategoryRepo)(nil)

func (r *CategoryRepo) Create(_ context.Context, c *entity.Category) error {
	return r.a.do(func(d *dataset) error {
		if categoryTaken(d, c.Name, c.Slug, 0) {
			return domain.ErrDuplicate
		}
		d.lastCategory++
		c.ID = d.lastCategory
		d.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) GetByID(_ context.Context, id int64) (*entity.Category, error) {
	var out *entity.Category
	err := r.a.do(func(d *dataset) error {
		if c, ok := d.categories[id]; ok {
			out = &c
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) GetBySlug(_ context.Context, slug string) (*entity.Category, error) {
	var out *entity.Category
	err := r.a.do(func(d *dataset) error {
		for _, c := range d.categories {
			if c.Slug == slug {
				out = &c
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r *CategoryRepo) Update(_ context.Context, c *entity.Category) error {
	return r.a.do(func(d *dataset) error {
		if _, ok := d.categories[c.ID]; !ok {
			return domain.ErrNotFound
		}
		if categoryTaken(d, c.Name, c.Slug, c.ID) {
			return domain.ErrDuplicate
		}
		d.categories[c.ID] = *c
		return nil
	})
}

func (r *CategoryRepo) List(_ context.Context, f repository.CategoryFilter) ([]*entity.Category, error) {
	var out []*entity.Category
	err := r.a.do(func(d *dataset) error {
		q := strings.ToLower(strings.TrimSpace(f.Search))
		for _, c := range d.categories {
			if q != "" && !strings.Contains(strings.ToLower(c.Name), q) &&
				!strings.Contains(strings.ToLower(c.Description), q) {
				continue
			}
			out = append(out, &c)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	desc := strings.HasPrefix(f.Ordering, "-")
	byCreated := strings.TrimPrefix(f.Ordering, "-") == "created_at"
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		var c int
		if byCreated {
			c = a.CreatedAt.Compare(b.CreatedAt)
		} else {
			c = strings.Compare(a.Name, b.Name)
		}
		if c == 0 {
			c = int(a.ID - b.ID)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out, nil
}

func (r *CategoryRepo) CountAvailableProducts(_ context.Context, categoryID int64) (int, error) {
	n := 0
	err := r.a.do(func(d *dataset) error {
		for _, p := range d.products {
			if p.CategoryID == categoryID && p.IsAvailable {
				n++
			}
		}
		return nil
	})
	return n, err
}

// Delete falla con ErrConflict si aún hay productos (igual que la FK en PostgreSQL).
func (r *CategoryRepo) Delete(_ context.Context, id int64) error {
	return r.a.do(func(d *dataset) error {
		if _, ok := d.categories[id]; !ok {
			return domain.ErrNotFound
		}
		for _, p := range d.products {
			if p.CategoryID == id {
				return domain.ErrConflict
			}
		}
		delete(d.categories, id)
		return nil
	})
}

func categoryTaken(d *dataset, name, slug string, exceptID int64) bool {
	for _, c := range d.categories {
		if c.ID != exceptID && (c.Name == name || c.Slug == slug) {
			return true
		}
	}
	return false
}
