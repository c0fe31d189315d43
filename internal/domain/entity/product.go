package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo. Pertenece exactamente a una categoría.
// Stock lo administra el catálogo; el carrito solo lo lee.
type Product struct {
	ID           int64
	CategoryID   int64
	CategoryName string // solo lectura (join)
	CategorySlug string // solo lectura (join)
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	IsAvailable  bool
	Featured     bool
	Image        string // referencia opcional a la imagen
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// InStock indica si el producto puede venderse ahora mismo.
func (p *Product) InStock() bool {
	return p.Stock > 0 && p.IsAvailable
}

// Valid verifica los invariantes de precio y stock.
func (p *Product) Valid() bool {
	return !p.Price.IsNegative() && p.Stock >= 0
}
