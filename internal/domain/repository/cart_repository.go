package repository

import (
	"context"
	"time"

	"github.com/jhoicas/eshop-api/internal/domain/entity"
)

// CartRepository define el puerto de persistencia para Cart y sus líneas.
// Los carritos se devuelven con Items y Product cargados.
type CartRepository interface {
	// Create inserta el carrito si no existe otro con la misma SessionKey (idempotente).
	Create(ctx context.Context, cart *entity.Cart) error
	GetBySessionKey(ctx context.Context, sessionKey string) (*entity.Cart, error)
	// GetForUpdate igual que GetBySessionKey pero bloquea el carrito hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, sessionKey string) (*entity.Cart, error)
	Touch(ctx context.Context, cartID int64, at time.Time) error

	AddItem(ctx context.Context, item *entity.CartItem) error
	UpdateItemQuantity(ctx context.Context, itemID int64, quantity int, at time.Time) error
	DeleteItem(ctx context.Context, cartID, itemID int64) error
	DeleteItems(ctx context.Context, cartID int64) error
	// DeleteItemsByProduct elimina las líneas (de todos los carritos) que referencian el producto.
	DeleteItemsByProduct(ctx context.Context, productID int64) (int, error)
}
