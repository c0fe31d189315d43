package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// AddItemRequest entrada de add_item. Quantity es 1 si se omite.
type AddItemRequest struct {
	ProductID int64 `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

// UpdateItemRequest entrada de update_item.
type UpdateItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

// RemoveItemRequest entrada de remove_item.
type RemoveItemRequest struct {
	ItemID int64 `json:"item_id"`
}

// ItemSummary proyección de una línea del carrito.
type ItemSummary struct {
	ID           int64           `json:"id"`
	ProductID    int64           `json:"product_id"`
	ProductName  string          `json:"product_name"`
	ProductPrice decimal.Decimal `json:"product_price"`
	Quantity     int             `json:"quantity"`
	LineTotal    decimal.Decimal `json:"line_total"`
	AddedAt      time.Time       `json:"added_at"`
}

// CartSummary proyección del carrito con los derivados recalculados.
type CartSummary struct {
	ID         int64           `json:"id"`
	Items      []ItemSummary   `json:"items"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	IsEmpty    bool            `json:"is_empty"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// CartMutationResponse respuesta de add/update/remove/clear.
type CartMutationResponse struct {
	Message string      `json:"message"`
	Cart    CartSummary `json:"cart"`
}
