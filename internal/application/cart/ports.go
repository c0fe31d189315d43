package cart

import (
	"context"
)

// EventPublisher publica los eventos del carrito tras el commit (Kafka, no-op en tests).
// Los eventos de una sesión llegan en el orden de sus commits dentro de un mismo proceso.
type EventPublisher interface {
	Publish(ctx context.Context, event CartEvent) error
}

// QuoteRenderer genera el documento de cotización (PDF) de un carrito.
type QuoteRenderer interface {
	Render(quote Quote) ([]byte, error)
}

// Observer recibe el resultado de cada operación (métricas).
type Observer interface {
	CartOperation(operation, outcome string)
}
