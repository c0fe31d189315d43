package cart_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/eshop-api/internal/application/cart"
	"github.com/jhoicas/eshop-api/internal/domain"
	"github.com/jhoicas/eshop-api/internal/domain/entity"
	"github.com/jhoicas/eshop-api/internal/infrastructure/memory"
	"github.com/jhoicas/eshop-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Dobles de test
// ──────────────────────────────────────────────────────────────────────────────

type recordingPublisher struct {
	mu     sync.Mutex
	events []cart.CartEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev cart.CartEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

type recordingObserver struct {
	mu       sync.Mutex
	outcomes map[string][]string
}

func (o *recordingObserver) CartOperation(operation, outcome string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.outcomes == nil {
		o.outcomes = map[string][]string{}
	}
	o.outcomes[operation] = append(o.outcomes[operation], outcome)
}

type fakeRenderer struct{ last cart.Quote }

func (r *fakeRenderer) Render(q cart.Quote) ([]byte, error) {
	r.last = q
	return []byte("%PDF-fake"), nil
}

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

const session = "5f0c7a3e-1d2b-4c8e-9a71-2b3c4d5e6f70"

type fixture struct {
	store *memory.Store
	svc   *cart.Service
	pub   *recordingPublisher
	obs   *recordingObserver
	pdf   *fakeRenderer
	cat   *entity.Category
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store: memory.NewStore(),
		pub:   &recordingPublisher{},
		obs:   &recordingObserver{},
		pdf:   &fakeRenderer{},
	}
	clock := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	f.svc = cart.NewService(f.store.TxRunner(), logger.Nop(),
		cart.WithEvents(f.pub),
		cart.WithObserver(f.obs),
		cart.WithQuoteRenderer(f.pdf),
		cart.WithClock(func() time.Time {
			clock = clock.Add(time.Second)
			return clock
		}),
	)
	f.cat = &entity.Category{Name: "General", Slug: "general"}
	require.NoError(t, f.store.Categories().Create(context.Background(), f.cat))
	return f
}

func (f *fixture) product(t *testing.T, name, price string, stock int, available bool) *entity.Product {
	t.Helper()
	p := &entity.Product{
		CategoryID:  f.cat.ID,
		Name:        name,
		Price:       decimal.RequireFromString(price),
		Stock:       stock,
		IsAvailable: available,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, f.store.Products().Create(context.Background(), p))
	return p
}

func quantities(c *entity.Cart) map[int64]int {
	out := map[int64]int{}
	for _, it := range c.Items {
		out[it.ProductID] = it.Quantity
	}
	return out
}

// ──────────────────────────────────────────────────────────────────────────────
// get_or_create_cart
// ──────────────────────────────────────────────────────────────────────────────

func TestGetOrCreateCart_Idempotente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	a, err := f.svc.GetOrCreateCart(ctx, session)
	require.NoError(t, err)
	b, err := f.svc.GetOrCreateCart(ctx, session)
	require.NoError(t, err)

	assert.Equal(t, a.ID, b.ID)
	assert.True(t, b.IsEmpty())

	other, err := f.svc.GetOrCreateCart(ctx, "otra-sesion")
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, other.ID)
}

func TestGetOrCreateCart_SesionVacia(t *testing.T) {
	_, err := newFixture(t).svc.GetOrCreateCart(context.Background(), "  ")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// ──────────────────────────────────────────────────────────────────────────────
// add_item
// ──────────────────────────────────────────────────────────────────────────────

// Escenario A: carrito vacío, stock 5, añadir 3.
func TestAddItem_CarritoVacio(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Taza", "4.50", 5, true)

	res, err := f.svc.AddItem(context.Background(), session, p.ID, 3)
	require.NoError(t, err)

	require.Len(t, res.Cart.Items, 1)
	assert.Equal(t, 3, res.Cart.Items[0].Quantity)
	assert.Equal(t, 3, res.Cart.TotalItems())
	assert.True(t, decimal.RequireFromString("13.5").Equal(res.Cart.TotalPrice()))
	assert.Equal(t, "Taza añadido al carrito", res.Message)
}

// Escenario B: 3 en el carrito + 3 > stock 5 → rechazo y carrito intacto.
func TestAddItem_SuperaStockDejaLaLineaIntacta(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Taza", "4.50", 5, true)
	_, err := f.svc.AddItem(ctx, session, p.ID, 3)
	require.NoError(t, err)

	_, err = f.svc.AddItem(ctx, session, p.ID, 3)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 5, stockErr.Available)
	assert.Equal(t, 3, stockErr.InCart)

	c, err := f.svc.GetOrCreateCart(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, map[int64]int{p.ID: 3}, quantities(c))
}

func TestAddItem_AcumulaEnLaMismaLinea(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Lápiz", "0.80", 10, true)

	for range 4 {
		_, err := f.svc.AddItem(ctx, session, p.ID, 2)
		require.NoError(t, err)
	}
	c, err := f.svc.GetOrCreateCart(ctx, session)
	require.NoError(t, err)
	require.Len(t, c.Items, 1, "una sola línea por producto")
	assert.Equal(t, 8, c.Items[0].Quantity)
}

func TestAddItem_PrimeraLineaSinStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Agotado", "1", 0, true)

	_, err := f.svc.AddItem(context.Background(), session, p.ID, 1)
	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 0, stockErr.Available)
	assert.Equal(t, 0, stockErr.InCart)
}

// Escenario E: producto inexistente.
func TestAddItem_ProductoInexistente(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.AddItem(context.Background(), session, 9999, 1)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAddItem_ProductoNoDisponible(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Retirado", "1", 10, false)

	_, err := f.svc.AddItem(context.Background(), session, p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrUnavailable)
}

func TestAddItem_EntradaInvalida(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Taza", "1", 10, true)
	ctx := context.Background()

	_, err := f.svc.AddItem(ctx, session, p.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.AddItem(ctx, session, p.ID, -2)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.AddItem(ctx, session, 0, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.AddItem(ctx, "", p.ID, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

// Dos pestañas añadiendo a la vez nunca superan el stock.
func TestAddItem_ConcurrenteNoSuperaElStock(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Edición limitada", "30", 5, true)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	ok, rejected := 0, 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.AddItem(ctx, session, p.ID, 1)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				ok++
			} else if errors.Is(err, domain.ErrInsufficientStock) {
				rejected++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 5, ok)
	assert.Equal(t, workers-5, rejected)

	c, err := f.svc.GetOrCreateCart(ctx, session)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
}

// ──────────────────────────────────────────────────────────────────────────────
// update_item / remove_item / clear
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Libreta", "3", 4, true)
	res, err := f.svc.AddItem(ctx, session, p.ID, 1)
	require.NoError(t, err)
	itemID := res.Cart.Items[0].ID

	res, err = f.svc.UpdateItem(ctx, session, itemID, 4)
	require.NoError(t, err)
	assert.Equal(t, "Cantidad actualizada", res.Message)
	assert.Equal(t, 4, res.Cart.TotalItems())

	_, err = f.svc.UpdateItem(ctx, session, itemID, 5)
	var stockErr *domain.StockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 4, stockErr.Available)
	assert.Zero(t, stockErr.InCart)

	c, err := f.svc.GetOrCreateCart(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 4, c.Items[0].Quantity, "el rechazo no modifica la línea")
}

// Escenario D: cantidad 0 es entrada inválida, no un borrado implícito.
func TestUpdateItem_CantidadCero(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Libreta", "3", 4, true)
	res, err := f.svc.AddItem(ctx, session, p.ID, 2)
	require.NoError(t, err)

	_, err = f.svc.UpdateItem(ctx, session, res.Cart.Items[0].ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	c, err := f.svc.GetOrCreateCart(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Items[0].Quantity)
}

func TestUpdateItem_LineaDeOtroCarrito(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Libreta", "3", 4, true)
	res, err := f.svc.AddItem(ctx, "ajena", p.ID, 1)
	require.NoError(t, err)

	_, err = f.svc.UpdateItem(ctx, session, res.Cart.Items[0].ID, 2)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.RemoveItem(ctx, session, res.Cart.Items[0].ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Escenario C: quitar A deja solo B.
func TestRemoveItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.product(t, "A", "1", 5, true)
	b := f.product(t, "B", "2", 5, true)
	resA, err := f.svc.AddItem(ctx, session, a.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, session, b.ID, 1)
	require.NoError(t, err)

	res, err := f.svc.RemoveItem(ctx, session, resA.Cart.Items[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "A eliminado del carrito", res.Message)
	assert.Equal(t, map[int64]int{b.ID: 1}, quantities(res.Cart))
	assert.Equal(t, 1, res.Cart.TotalItems())
}

// La baja de stock posterior no impide quitar la línea.
func TestRemoveItem_SinComprobarStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "A", "1", 5, true)
	res, err := f.svc.AddItem(ctx, session, p.ID, 5)
	require.NoError(t, err)

	p.Stock = 0
	require.NoError(t, f.store.Products().Update(ctx, p))

	_, err = f.svc.RemoveItem(ctx, session, res.Cart.Items[0].ID)
	assert.NoError(t, err)
}

// Escenario F: vaciar un carrito con 3 líneas.
func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for _, name := range []string{"A", "B", "C"} {
		p := f.product(t, name, "1.10", 3, true)
		_, err := f.svc.AddItem(ctx, session, p.ID, 1)
		require.NoError(t, err)
	}

	res, err := f.svc.Clear(ctx, session)
	require.NoError(t, err)
	assert.True(t, res.Cart.IsEmpty())
	assert.Zero(t, res.Cart.TotalItems())
	assert.True(t, res.Cart.TotalPrice().IsZero())
	assert.Equal(t, "Carrito vaciado", res.Message)

	// vaciar otra vez no falla
	_, err = f.svc.Clear(ctx, session)
	assert.NoError(t, err)
}

// ──────────────────────────────────────────────────────────────────────────────
// Eventos, métricas y cotización
// ──────────────────────────────────────────────────────────────────────────────

func TestEventos_SoloTrasMutacionesConfirmadas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Taza", "2", 2, true)

	res, err := f.svc.AddItem(ctx, session, p.ID, 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, session, p.ID, 1)
	require.Error(t, err)
	_, err = f.svc.Clear(ctx, session)
	require.NoError(t, err)

	require.Len(t, f.pub.events, 2)
	added := f.pub.events[0]
	assert.Equal(t, cart.EventItemAdded, added.EventType)
	assert.Equal(t, session, added.SessionKey)
	assert.Equal(t, res.Cart.ID, added.CartID)
	assert.Equal(t, p.ID, added.ProductID)
	assert.Equal(t, 2, added.Quantity)
	assert.True(t, decimal.NewFromInt(4).Equal(added.TotalPrice))
	assert.NotEmpty(t, added.EventID)

	assert.Equal(t, cart.EventCleared, f.pub.events[1].EventType)
	assert.Zero(t, f.pub.events[1].TotalItems)
}

func TestEventos_FalloAlPublicarNoFallaLaOperacion(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker caído")
	p := f.product(t, "Taza", "2", 2, true)

	res, err := f.svc.AddItem(context.Background(), session, p.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Cart.TotalItems())
}

func TestEventos_OrdenDeCommitPorSesion(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Taza", "4", 15, true)
	ctx := context.Background()

	// 20 altas concurrentes sobre 15 de stock: las 5 rechazadas no bloquean la cola
	const workers = 20
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = f.svc.AddItem(ctx, session, p.ID, 1)
		}()
	}
	wg.Wait()

	f.pub.mu.Lock()
	defer f.pub.mu.Unlock()
	require.Len(t, f.pub.events, 15)
	for i, ev := range f.pub.events {
		assert.Equal(t, i+1, ev.TotalItems, "evento %d fuera de orden", i)
		assert.Equal(t, i+1, ev.Quantity)
	}
}

func TestObserver_RegistraResultados(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.product(t, "Taza", "2", 1, true)

	_, _ = f.svc.AddItem(ctx, session, p.ID, 1)
	_, _ = f.svc.AddItem(ctx, session, p.ID, 1)
	_, _ = f.svc.AddItem(ctx, session, 777, 1)

	assert.Equal(t, []string{"ok", "insufficient_stock", "not_found"}, f.obs.outcomes[cart.OpAdd])
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", cart.Outcome(nil))
	assert.Equal(t, "insufficient_stock", cart.Outcome(&domain.StockError{}))
	assert.Equal(t, "unavailable", cart.Outcome(domain.ErrUnavailable))
	assert.Equal(t, "not_found", cart.Outcome(domain.ErrNotFound))
	assert.Equal(t, "invalid_input", cart.Outcome(domain.ErrInvalidInput))
	assert.Equal(t, "error", cart.Outcome(errors.New("x")))
}

func TestQuotePDF(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.QuotePDF(ctx, session)
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "carrito vacío")

	p := f.product(t, "Taza", "2.25", 5, true)
	_, err = f.svc.AddItem(ctx, session, p.ID, 2)
	require.NoError(t, err)

	out, err := f.svc.QuotePDF(ctx, session)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-fake"), out)

	q := f.pdf.last
	assert.Equal(t, "5F0C7A3E", q.Reference)
	require.Len(t, q.Lines, 1)
	assert.Equal(t, "Taza", q.Lines[0].ProductName)
	assert.True(t, decimal.RequireFromString("4.5").Equal(q.TotalPrice))
}

func TestToCartSummary(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Taza", "2.25", 5, true)
	res, err := f.svc.AddItem(context.Background(), session, p.ID, 2)
	require.NoError(t, err)

	s := cart.ToCartSummary(res.Cart)
	require.Len(t, s.Items, 1)
	assert.Equal(t, "Taza", s.Items[0].ProductName)
	assert.True(t, decimal.RequireFromString("4.5").Equal(s.Items[0].LineTotal))
	assert.Equal(t, 2, s.TotalItems)
	assert.False(t, s.IsEmpty)
}
