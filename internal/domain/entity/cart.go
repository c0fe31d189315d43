package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Cart es el carrito anónimo de una sesión. SessionKey es su identidad pública.
type Cart struct {
	ID         int64
	SessionKey string
	Items      []CartItem
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CartItem es una línea del carrito. Hay como máximo una por producto y carrito.
// Product es una referencia de lectura cargada junto con la línea.
type CartItem struct {
	ID        int64
	CartID    int64
	ProductID int64
	Product   *Product
	Quantity  int
	AddedAt   time.Time
	UpdatedAt time.Time
}

// LineTotal = cantidad × precio actual del producto.
func (i CartItem) LineTotal() decimal.Decimal {
	if i.Product == nil {
		return decimal.Zero
	}
	return i.Product.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalItems suma las cantidades de todas las líneas.
func (c *Cart) TotalItems() int {
	total := 0
	for _, it := range c.Items {
		total += it.Quantity
	}
	return total
}

// TotalPrice suma los totales de línea.
func (c *Cart) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.LineTotal())
	}
	return total
}

func (c *Cart) IsEmpty() bool { return len(c.Items) == 0 }

// Item busca una línea por ID dentro de este carrito.
func (c *Cart) Item(itemID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ID == itemID {
			return &c.Items[i]
		}
	}
	return nil
}

// ItemForProduct busca la línea de un producto dentro de este carrito.
func (c *Cart) ItemForProduct(productID int64) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}
