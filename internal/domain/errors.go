package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrUnavailable       = errors.New("producto no disponible")
	ErrInsufficientStock = errors.New("stock insuficiente")
)

// StockError detalla un rechazo por stock: cuánto hay disponible y cuánto ya estaba en el carrito.
// errors.Is(err, ErrInsufficientStock) es verdadero para cualquier *StockError.
type StockError struct {
	ProductID int64
	Requested int
	Available int
	InCart    int
}

func (e *StockError) Error() string {
	if e.InCart > 0 {
		return fmt.Sprintf("stock insuficiente. Stock disponible: %d, cantidad en el carrito: %d", e.Available, e.InCart)
	}
	return fmt.Sprintf("stock insuficiente. Stock disponible: %d", e.Available)
}

func (e *StockError) Unwrap() error { return ErrInsufficientStock }
