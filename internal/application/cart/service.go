package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jhoicas/eshop-api/internal/application/ports"
	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
	"github.com/jhoicas/eshop-api/pkg/logger"
)

// Nombres de operación (métricas y spans).
const (
	OpGet    = "get"
	OpAdd    = "add_item"
	OpUpdate = "update_item"
	OpRemove = "remove_item"
	OpClear  = "clear"
	OpQuote  = "quote"
)

// Result carrito actualizado más el mensaje de confirmación para el cliente.
type Result struct {
	Cart    *entity.Cart
	Message string
}

// Service aplica las operaciones del carrito contra el stock vigente del catálogo.
// Cada mutación corre en una transacción que bloquea el carrito (GetForUpdate):
// dos peticiones sobre el mismo carrito se serializan y nunca superan el stock.
type Service struct {
	tx       ports.TxRunner
	events   EventPublisher
	quotes   QuoteRenderer
	observer Observer
	order    *eventQueue
	log      *logger.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// Option configura colaboradores opcionales del servicio.
type Option func(*Service)

// WithEvents publica un CartEvent tras cada mutación confirmada.
func WithEvents(p EventPublisher) Option {
	return func(s *Service) { s.events = p }
}

// WithQuoteRenderer habilita QuotePDF.
func WithQuoteRenderer(r QuoteRenderer) Option {
	return func(s *Service) { s.quotes = r }
}

// WithObserver registra el resultado de cada operación.
func WithObserver(o Observer) Option {
	return func(s *Service) { s.observer = o }
}

// WithClock reemplaza time.Now (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService construye el servicio del carrito.
func NewService(tx ports.TxRunner, log *logger.Logger, opts ...Option) *Service {
	s := &Service{
		tx:     tx,
		events: NopPublisher{},
		order:  newEventQueue(),
		log:    log,
		tracer: otel.Tracer("cart-service"),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.Nop()
	}
	return s
}

// GetOrCreateCart devuelve el carrito de la sesión, creándolo vacío si no existe.
func (s *Service) GetOrCreateCart(ctx context.Context, sessionKey string) (cart *entity.Cart, err error) {
	if strings.TrimSpace(sessionKey) == "" {
		return nil, domain.ErrInvalidInput
	}
	ctx, span := s.start(ctx, OpGet, sessionKey)
	defer func() { s.finish(ctx, span, OpGet, err) }()

	err = s.tx.Run(ctx, func(_ repository.CategoryRepository, _ repository.ProductRepository, carts repository.CartRepository) error {
		c, err := s.loadOrCreate(ctx, carts, sessionKey, false)
		cart = c
		return err
	})
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem añade quantity unidades del producto. Si ya hay línea para el producto
// se suma a ella; si el total supera el stock la línea queda intacta.
func (s *Service) AddItem(ctx context.Context, sessionKey string, productID int64, quantity int) (res *Result, err error) {
	if strings.TrimSpace(sessionKey) == "" || productID <= 0 || quantity < 1 {
		return nil, domain.ErrInvalidInput
	}
	ctx, span := s.start(ctx, OpAdd, sessionKey,
		attribute.Int64("product.id", productID),
		attribute.Int("cart.quantity", quantity),
	)
	defer func() { s.finish(ctx, span, OpAdd, err) }()

	var ev CartEvent
	var turn *eventTurn
	err = s.tx.Run(ctx, func(_ repository.CategoryRepository, products repository.ProductRepository, carts repository.CartRepository) error {
		c, err := s.loadOrCreate(ctx, carts, sessionKey, true)
		if err != nil {
			return err
		}
		turn = s.order.take(sessionKey)
		product, err := products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if !product.IsAvailable {
			return domain.ErrUnavailable
		}

		now := s.now()
		var itemID int64
		newQty := quantity
		if existing := c.ItemForProduct(productID); existing != nil {
			newQty = existing.Quantity + quantity
			if newQty > product.Stock {
				return &domain.StockError{ProductID: productID, Requested: newQty, Available: product.Stock, InCart: existing.Quantity}
			}
			if err := carts.UpdateItemQuantity(ctx, existing.ID, newQty, now); err != nil {
				return err
			}
			itemID = existing.ID
		} else {
			if quantity > product.Stock {
				return &domain.StockError{ProductID: productID, Requested: quantity, Available: product.Stock}
			}
			item := &entity.CartItem{
				CartID:    c.ID,
				ProductID: productID,
				Quantity:  quantity,
				AddedAt:   now,
				UpdatedAt: now,
			}
			if err := carts.AddItem(ctx, item); err != nil {
				return err
			}
			itemID = item.ID
		}

		updated, err := s.commitTouch(ctx, carts, c, now)
		if err != nil {
			return err
		}
		res = &Result{Cart: updated, Message: fmt.Sprintf("%s añadido al carrito", product.Name)}
		ev = s.event(EventItemAdded, updated, productID, itemID, newQty, now)
		return nil
	})
	if err != nil {
		turn.release(nil)
		return nil, err
	}
	s.log.WithContext(ctx).Debug().
		Str("session", sessionKey).
		Int64("product_id", productID).
		Int("quantity", quantity).
		Msg("cart: producto añadido")
	turn.release(func() { s.publish(ctx, ev) })
	return res, nil
}

// UpdateItem fija la cantidad de una línea del carrito. quantity debe ser ≥ 1;
// para quitar la línea se usa RemoveItem.
func (s *Service) UpdateItem(ctx context.Context, sessionKey string, itemID int64, quantity int) (res *Result, err error) {
	if strings.TrimSpace(sessionKey) == "" || itemID <= 0 || quantity < 1 {
		return nil, domain.ErrInvalidInput
	}
	ctx, span := s.start(ctx, OpUpdate, sessionKey,
		attribute.Int64("cart.item_id", itemID),
		attribute.Int("cart.quantity", quantity),
	)
	defer func() { s.finish(ctx, span, OpUpdate, err) }()

	var ev CartEvent
	var turn *eventTurn
	err = s.tx.Run(ctx, func(_ repository.CategoryRepository, products repository.ProductRepository, carts repository.CartRepository) error {
		c, err := s.loadOrCreate(ctx, carts, sessionKey, true)
		if err != nil {
			return err
		}
		turn = s.order.take(sessionKey)
		// La búsqueda se limita a este carrito: IDs de otros carritos dan NotFound.
		item := c.Item(itemID)
		if item == nil {
			return domain.ErrNotFound
		}
		product, err := products.GetByID(ctx, item.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}
		if quantity > product.Stock {
			return &domain.StockError{ProductID: product.ID, Requested: quantity, Available: product.Stock}
		}

		now := s.now()
		if err := carts.UpdateItemQuantity(ctx, item.ID, quantity, now); err != nil {
			return err
		}
		updated, err := s.commitTouch(ctx, carts, c, now)
		if err != nil {
			return err
		}
		res = &Result{Cart: updated, Message: "Cantidad actualizada"}
		ev = s.event(EventItemUpdated, updated, product.ID, item.ID, quantity, now)
		return nil
	})
	if err != nil {
		turn.release(nil)
		return nil, err
	}
	s.log.WithContext(ctx).Debug().
		Str("session", sessionKey).
		Int64("item_id", itemID).
		Int("quantity", quantity).
		Msg("cart: cantidad actualizada")
	turn.release(func() { s.publish(ctx, ev) })
	return res, nil
}

// RemoveItem elimina una línea del carrito sin comprobar stock.
func (s *Service) RemoveItem(ctx context.Context, sessionKey string, itemID int64) (res *Result, err error) {
	if strings.TrimSpace(sessionKey) == "" || itemID <= 0 {
		return nil, domain.ErrInvalidInput
	}
	ctx, span := s.start(ctx, OpRemove, sessionKey, attribute.Int64("cart.item_id", itemID))
	defer func() { s.finish(ctx, span, OpRemove, err) }()

	var ev CartEvent
	var turn *eventTurn
	err = s.tx.Run(ctx, func(_ repository.CategoryRepository, _ repository.ProductRepository, carts repository.CartRepository) error {
		c, err := s.loadOrCreate(ctx, carts, sessionKey, true)
		if err != nil {
			return err
		}
		turn = s.order.take(sessionKey)
		item := c.Item(itemID)
		if item == nil {
			return domain.ErrNotFound
		}
		name := ""
		if item.Product != nil {
			name = item.Product.Name
		}
		productID := item.ProductID

		if err := carts.DeleteItem(ctx, c.ID, itemID); err != nil {
			return err
		}
		now := s.now()
		updated, err := s.commitTouch(ctx, carts, c, now)
		if err != nil {
			return err
		}
		res = &Result{Cart: updated, Message: fmt.Sprintf("%s eliminado del carrito", name)}
		ev = s.event(EventItemRemoved, updated, productID, itemID, 0, now)
		return nil
	})
	if err != nil {
		turn.release(nil)
		return nil, err
	}
	s.log.WithContext(ctx).Debug().
		Str("session", sessionKey).
		Int64("item_id", itemID).
		Msg("cart: línea eliminada")
	turn.release(func() { s.publish(ctx, ev) })
	return res, nil
}

// Clear vacía el carrito. Sobre un carrito vacío no hace nada y no falla.
func (s *Service) Clear(ctx context.Context, sessionKey string) (res *Result, err error) {
	if strings.TrimSpace(sessionKey) == "" {
		return nil, domain.ErrInvalidInput
	}
	ctx, span := s.start(ctx, OpClear, sessionKey)
	defer func() { s.finish(ctx, span, OpClear, err) }()

	var ev CartEvent
	var turn *eventTurn
	err = s.tx.Run(ctx, func(_ repository.CategoryRepository, _ repository.ProductRepository, carts repository.CartRepository) error {
		c, err := s.loadOrCreate(ctx, carts, sessionKey, true)
		if err != nil {
			return err
		}
		turn = s.order.take(sessionKey)
		if err := carts.DeleteItems(ctx, c.ID); err != nil {
			return err
		}
		now := s.now()
		updated, err := s.commitTouch(ctx, carts, c, now)
		if err != nil {
			return err
		}
		res = &Result{Cart: updated, Message: "Carrito vaciado"}
		ev = s.event(EventCleared, updated, 0, 0, 0, now)
		return nil
	})
	if err != nil {
		turn.release(nil)
		return nil, err
	}
	s.log.WithContext(ctx).Debug().Str("session", sessionKey).Msg("cart: vaciado")
	turn.release(func() { s.publish(ctx, ev) })
	return res, nil
}

// QuotePDF genera la cotización del carrito actual. Un carrito vacío es ErrInvalidInput.
func (s *Service) QuotePDF(ctx context.Context, sessionKey string) (pdf []byte, err error) {
	if s.quotes == nil {
		return nil, fmt.Errorf("cart: generador de cotizaciones no configurado")
	}
	c, err := s.GetOrCreateCart(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	ctx, span := s.start(ctx, OpQuote, sessionKey)
	defer func() { s.finish(ctx, span, OpQuote, err) }()

	if c.IsEmpty() {
		return nil, domain.ErrInvalidInput
	}
	q := toQuote(c)
	q.IssuedAt = s.now()
	q.Reference = quoteReference(sessionKey)
	return s.quotes.Render(q)
}

// loadOrCreate obtiene el carrito de la sesión (bloqueado si lock) o lo crea vacío.
func (s *Service) loadOrCreate(ctx context.Context, carts repository.CartRepository, sessionKey string, lock bool) (*entity.Cart, error) {
	get := carts.GetBySessionKey
	if lock {
		get = carts.GetForUpdate
	}
	c, err := get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if c != nil {
		return c, nil
	}
	now := s.now()
	if err := carts.Create(ctx, &entity.Cart{SessionKey: sessionKey, CreatedAt: now, UpdatedAt: now}); err != nil {
		return nil, err
	}
	// Otra petición pudo crearlo en paralelo; se relee el que quedó persistido.
	c, err = get(ctx, sessionKey)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("cart: carrito %q no encontrado tras crearlo", sessionKey)
	}
	return c, nil
}

// commitTouch marca el carrito como actualizado y lo relee con los derivados frescos.
func (s *Service) commitTouch(ctx context.Context, carts repository.CartRepository, c *entity.Cart, now time.Time) (*entity.Cart, error) {
	if err := carts.Touch(ctx, c.ID, now); err != nil {
		return nil, err
	}
	updated, err := carts.GetBySessionKey(ctx, c.SessionKey)
	if err != nil {
		return nil, err
	}
	if updated == nil {
		return nil, domain.ErrNotFound
	}
	return updated, nil
}

func (s *Service) event(typ string, c *entity.Cart, productID, itemID int64, quantity int, at time.Time) CartEvent {
	return CartEvent{
		EventID:    uuid.New().String(),
		EventType:  typ,
		SessionKey: c.SessionKey,
		CartID:     c.ID,
		ProductID:  productID,
		ItemID:     itemID,
		Quantity:   quantity,
		TotalItems: c.TotalItems(),
		TotalPrice: c.TotalPrice(),
		Timestamp:  at,
	}
}

// publish es best effort: un fallo se registra y la operación sigue siendo exitosa.
// Se invoca con el turno de la sesión, en el orden de commit.
func (s *Service) publish(ctx context.Context, ev CartEvent) {
	if err := s.events.Publish(ctx, ev); err != nil {
		s.log.WithContext(ctx).Error().
			Err(err).
			Str("event_type", ev.EventType).
			Str("event_id", ev.EventID).
			Msg("cart: no se pudo publicar el evento")
	}
}

func (s *Service) start(ctx context.Context, op, sessionKey string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("cart.session", quoteReference(sessionKey)))
	return s.tracer.Start(ctx, "cart."+op, trace.WithAttributes(attrs...))
}

func (s *Service) finish(ctx context.Context, span trace.Span, op string, err error) {
	defer span.End()
	out := Outcome(err)
	if s.observer != nil {
		s.observer.CartOperation(op, out)
	}
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, out)

	var stockErr *domain.StockError
	if errors.As(err, &stockErr) {
		s.log.WithContext(ctx).Warn().
			Str("operation", op).
			Int64("product_id", stockErr.ProductID).
			Int("requested", stockErr.Requested).
			Int("available", stockErr.Available).
			Msg("cart: stock insuficiente")
	}
}

// Outcome clasifica el error de una operación para métricas.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domain.ErrUnavailable):
		return "unavailable"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrInvalidInput):
		return "invalid_input"
	default:
		return "error"
	}
}

// quoteReference acorta la clave de sesión para mostrarla sin exponerla completa.
func quoteReference(sessionKey string) string {
	ref := strings.ReplaceAll(sessionKey, "-", "")
	if len(ref) > 8 {
		ref = ref[:8]
	}
	return strings.ToUpper(ref)
}
