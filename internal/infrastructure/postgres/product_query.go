package postgres

import (
	"fmt"
	"strings"

	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

// productSelect proyección de productos con los datos de su categoría.
const productSelect = `
	SELECT p.id, p.category_id, c.name, c.slug, p.name, p.description, p.price, p.stock,
	       p.is_available, p.featured, p.image, p.created_at, p.updated_at
	FROM products p
	JOIN categories c ON c.id = p.category_id`

// buildProductWhere traduce el filtro a una cláusula WHERE parametrizada (vacía si no hay filtros).
func buildProductWhere(f repository.ProductFilter) (string, []any) {
	var conds []string
	var args []any
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if f.CategoryID != nil {
		add("p.category_id = $%d", *f.CategoryID)
	}
	if f.CategorySlug != "" {
		add("c.slug = $%d", f.CategorySlug)
	}
	if f.IsAvailable != nil {
		add("p.is_available = $%d", *f.IsAvailable)
	}
	if f.Featured != nil {
		add("p.featured = $%d", *f.Featured)
	}
	if f.MinPrice != nil {
		add("p.price >= $%d", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		add("p.price <= $%d", *f.MaxPrice)
	}
	if f.InStockOnly {
		conds = append(conds, "p.stock > 0 AND p.is_available")
	}
	if f.Search != "" {
		add("(p.name ILIKE $%[1]d OR p.description ILIKE $%[1]d OR c.name ILIKE $%[1]d)", likePattern(f.Search))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// productOrderBy ORDER BY con desempate por id en la misma dirección.
func productOrderBy(ordering string) string {
	field, desc := repository.NormalizeOrdering(ordering)
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	return fmt.Sprintf(" ORDER BY p.%s %s, p.id %s", field, dir, dir)
}
