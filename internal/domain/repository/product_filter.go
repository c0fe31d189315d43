package repository

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/eshop-api/internal/domain/entity"
)

// DefaultProductOrdering más recientes primero.
const DefaultProductOrdering = "-created_at"

// productOrderingFields campos por los que se permite ordenar productos.
var productOrderingFields = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
	"stock":      true,
}

// ProductFilter filtros componibles sobre el catálogo. Un campo vacío o nil no restringe.
type ProductFilter struct {
	CategoryID   *int64
	CategorySlug string
	IsAvailable  *bool
	Featured     *bool
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	InStockOnly  bool   // stock > 0 AND is_available
	Search       string // subcadena en nombre, descripción o nombre de categoría
	Ordering     string // campo, con prefijo "-" para descendente
	Limit        int    // 0 = sin límite
	Offset       int
}

// NormalizeOrdering devuelve el campo y la dirección. Valores desconocidos caen al orden por defecto.
func NormalizeOrdering(ordering string) (field string, desc bool) {
	o := strings.TrimSpace(ordering)
	desc = strings.HasPrefix(o, "-")
	field = strings.TrimPrefix(o, "-")
	if !productOrderingFields[field] {
		return "created_at", true
	}
	return field, desc
}

// Matches evalúa el filtro sobre un producto ya cargado (con CategoryName/CategorySlug).
// Ignora Ordering, Limit y Offset.
func (f ProductFilter) Matches(p *entity.Product) bool {
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.CategorySlug != "" && p.CategorySlug != f.CategorySlug {
		return false
	}
	if f.IsAvailable != nil && p.IsAvailable != *f.IsAvailable {
		return false
	}
	if f.Featured != nil && p.Featured != *f.Featured {
		return false
	}
	if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.InStockOnly && !p.InStock() {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(p.Name), q) &&
			!strings.Contains(strings.ToLower(p.Description), q) &&
			!strings.Contains(strings.ToLower(p.CategoryName), q) {
			return false
		}
	}
	return true
}

// SortProducts ordena en el lugar según Ordering; el ID desempata para que la paginación sea estable.
func SortProducts(list []*entity.Product, ordering string) {
	field, desc := NormalizeOrdering(ordering)
	cmp := func(a, b *entity.Product) int {
		switch field {
		case "name":
			return strings.Compare(a.Name, b.Name)
		case "price":
			return a.Price.Cmp(b.Price)
		case "stock":
			return a.Stock - b.Stock
		default:
			return a.CreatedAt.Compare(b.CreatedAt)
		}
	}
	sort.SliceStable(list, func(i, j int) bool {
		c := cmp(list[i], list[j])
		if c == 0 {
			if desc {
				return list[i].ID > list[j].ID
			}
			return list[i].ID < list[j].ID
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
}

// Paginate recorta la lista según Limit/Offset.
func (f ProductFilter) Paginate(list []*entity.Product) []*entity.Product {
	offset := max(f.Offset, 0)
	if offset >= len(list) {
		return []*entity.Product{}
	}
	end := len(list)
	if f.Limit > 0 && offset+f.Limit < end {
		end = offset + f.Limit
	}
	return list[offset:end]
}
