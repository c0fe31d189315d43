package cart

import (
	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
)

// ToCartSummary proyecta el carrito recalculando total_items, total_price e is_empty.
func ToCartSummary(c *entity.Cart) dto.CartSummary {
	items := make([]dto.ItemSummary, 0, len(c.Items))
	for _, it := range c.Items {
		s := dto.ItemSummary{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			LineTotal: it.LineTotal(),
			AddedAt:   it.AddedAt,
		}
		if it.Product != nil {
			s.ProductName = it.Product.Name
			s.ProductPrice = it.Product.Price
		}
		items = append(items, s)
	}
	return dto.CartSummary{
		ID:         c.ID,
		Items:      items,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		IsEmpty:    c.IsEmpty(),
		UpdatedAt:  c.UpdatedAt,
	}
}

func toQuote(c *entity.Cart) Quote {
	lines := make([]QuoteLine, 0, len(c.Items))
	for _, it := range c.Items {
		l := QuoteLine{Quantity: it.Quantity, LineTotal: it.LineTotal()}
		if it.Product != nil {
			l.ProductName = it.Product.Name
			l.UnitPrice = it.Product.Price
		}
		lines = append(lines, l)
	}
	return Quote{
		Reference:  c.SessionKey,
		IssuedAt:   c.UpdatedAt,
		Lines:      lines,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
	}
}
