package cart

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote cotización imprimible de un carrito.
type Quote struct {
	Reference  string
	IssuedAt   time.Time
	Lines      []QuoteLine
	TotalItems int
	TotalPrice decimal.Decimal
}

// QuoteLine una línea de la cotización.
type QuoteLine struct {
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
	LineTotal   decimal.Decimal
}
