package usecase

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
)

// ParseProductFilter convierte los parámetros crudos del listado en un filtro.
// Un valor mal formado no es error: simplemente no restringe.
func ParseProductFilter(q dto.ProductQuery) repository.ProductFilter {
	var f repository.ProductFilter

	if c := strings.TrimSpace(q.Category); c != "" {
		if id, err := strconv.ParseInt(c, 10, 64); err == nil {
			f.CategoryID = &id
		} else {
			f.CategorySlug = c
		}
	}
	f.IsAvailable = parseBool(q.IsAvailable)
	f.Featured = parseBool(q.Featured)
	f.MinPrice = parseDecimal(q.MinPrice)
	f.MaxPrice = parseDecimal(q.MaxPrice)
	f.InStockOnly = strings.EqualFold(strings.TrimSpace(q.InStockOnly), "true")
	f.Search = strings.TrimSpace(q.Search)
	f.Ordering = strings.TrimSpace(q.Ordering)

	page := dto.PageRequest{Limit: parseInt(q.Limit), Offset: parseInt(q.Offset)}
	page.DefaultPage()
	f.Limit, f.Offset = page.Limit, page.Offset
	return f
}

func parseBool(s string) *bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		b := true
		return &b
	case "false", "0":
		b := false
		return &b
	}
	return nil
}

func parseDecimal(s string) *decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}

func parseInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
