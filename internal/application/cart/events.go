package cart

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de evento del carrito.
const (
	EventItemAdded   = "cart.item_added"
	EventItemUpdated = "cart.item_updated"
	EventItemRemoved = "cart.item_removed"
	EventCleared     = "cart.cleared"
)

// CartEvent describe una mutación confirmada del carrito.
type CartEvent struct {
	EventID    string          `json:"event_id"`
	EventType  string          `json:"event_type"`
	SessionKey string          `json:"session_key"`
	CartID     int64           `json:"cart_id"`
	ProductID  int64           `json:"product_id,omitempty"`
	ItemID     int64           `json:"item_id,omitempty"`
	Quantity   int             `json:"quantity,omitempty"`
	TotalItems int             `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
	Timestamp  time.Time       `json:"timestamp"`
}

// NopPublisher descarta los eventos (Kafka no configurado).
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CartEvent) error { return nil }
