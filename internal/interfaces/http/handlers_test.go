package http_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/eshop-api/internal/application/cart"
	"github.com/jhoicas/eshop-api/internal/application/dto"
	"github.com/jhoicas/eshop-api/internal/application/usecase"
	"github.com/jhoicas/eshop-api/internal/infrastructure/feed"
	"github.com/jhoicas/eshop-api/internal/infrastructure/memory"
	"github.com/jhoicas/eshop-api/internal/infrastructure/metrics"
	"github.com/jhoicas/eshop-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/eshop-api/internal/interfaces/http"
	"github.com/jhoicas/eshop-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

// buildApp monta la API completa sobre el almacén en memoria.
func buildApp(t *testing.T) *fiber.App {
	t.Helper()
	store := memory.NewStore()
	tx := store.TxRunner()
	m := metrics.New()

	categoryUC := usecase.NewCategoryUseCase(store.Categories(), store.Products(), tx, usecase.Cache{})
	productUC := usecase.NewProductUseCase(store.Products(), store.Categories(), tx, usecase.Cache{},
		feed.NewRSSEncoder("Tienda", "http://shop.test", "Catálogo", "EUR"), "http://shop.test")
	cartSvc := cart.NewService(tx, logger.Nop(),
		cart.WithQuoteRenderer(pdf.NewQuoteGenerator("Tienda")),
		cart.WithObserver(m),
	)

	app := fiber.New()
	app.Use(apphttp.TracingMiddleware())
	app.Use(apphttp.RequestLogger(logger.Nop()))
	app.Use(apphttp.MetricsMiddleware(m))
	apphttp.Router(app, apphttp.RouterDeps{
		CategoryUC: categoryUC,
		ProductUC:  productUC,
		CartSvc:    cartSvc,
		Session:    testSessionConfig(),
		Metrics:    m.Handler(),
	})
	return app
}

// client conserva la cookie de sesión entre peticiones, como un navegador.
type client struct {
	t      *testing.T
	app    *fiber.App
	cookie *http.Cookie
}

func newClient(t *testing.T, app *fiber.App) *client {
	return &client{t: t, app: app}
}

func (cl *client) do(method, path string, body any) (*http.Response, []byte) {
	cl.t.Helper()
	var r io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(cl.t, err)
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if cl.cookie != nil {
		req.AddCookie(cl.cookie)
	}
	resp, err := cl.app.Test(req, -1)
	require.NoError(cl.t, err)
	if ck := sessionCookie(resp); ck != nil {
		cl.cookie = ck
	}
	out, err := io.ReadAll(resp.Body)
	require.NoError(cl.t, err)
	return resp, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func seedCategory(t *testing.T, cl *client, name string) dto.CategorySummary {
	t.Helper()
	resp, body := cl.do(http.MethodPost, "/api/categories", dto.CreateCategoryRequest{Name: name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.CategorySummary](t, body)
}

func seedProduct(t *testing.T, cl *client, categoryID int64, name, price string, stock int) dto.ProductDetail {
	t.Helper()
	resp, body := cl.do(http.MethodPost, "/api/products", dto.CreateProductRequest{
		CategoryID: categoryID,
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      stock,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	return decode[dto.ProductDetail](t, body)
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestHealth(t *testing.T) {
	resp, body := newClient(t, buildApp(t)).do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", decode[dto.HealthResponse](t, body).Status)
}

func TestCategorias_CrearObtenerYDuplicado(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cat := seedCategory(t, cl, "Café & Té")
	assert.Equal(t, "cafe-te", cat.Slug)

	resp, body := cl.do(http.MethodGet, "/api/categories/cafe-te", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, cat.ID, decode[dto.CategorySummary](t, body).ID)

	resp, body = cl.do(http.MethodPost, "/api/categories", dto.CreateCategoryRequest{Name: "Cafe Te"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", decode[dto.ErrorResponse](t, body).Code)

	resp, _ = cl.do(http.MethodGet, "/api/categories/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCategorias_BorradoEnCascada(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cat := seedCategory(t, cl, "Libros")
	p := seedProduct(t, cl, cat.ID, "Novela", "12.00", 5)

	resp, _ := cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, _ = cl.do(http.MethodDelete, "/api/categories/libros", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = cl.do(http.MethodGet, fmt.Sprintf("/api/products/%d", p.ID), nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body := cl.do(http.MethodGet, "/api/cart", nil)
	assert.True(t, decode[dto.CartSummary](t, body).IsEmpty)
}

func TestProductos_ListadoFiltrosYValidacion(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cat := seedCategory(t, cl, "Audio")
	seedProduct(t, cl, cat.ID, "Auriculares", "59.90", 3)
	seedProduct(t, cl, cat.ID, "Altavoz", "120.00", 0)

	_, body := cl.do(http.MethodGet, "/api/products?category=audio&in_stock_only=true", nil)
	list := decode[dto.ProductListResponse](t, body)
	require.Len(t, list.Items, 1)
	assert.Equal(t, "Auriculares", list.Items[0].Name)
	assert.Equal(t, 1, list.Page.Total)

	// filtros mal formados se ignoran
	resp, body := cl.do(http.MethodGet, "/api/products?min_price=abc&is_available=quizas&ordering=precio", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, decode[dto.ProductListResponse](t, body).Items, 2)

	_, body = cl.do(http.MethodGet, "/api/products/search_advanced?q=altav", nil)
	assert.Len(t, decode[dto.ProductListResponse](t, body).Items, 1)

	resp, body = cl.do(http.MethodPost, "/api/products", map[string]any{
		"category_id": cat.ID, "name": "Negativo", "price": "-1", "stock": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", decode[dto.ErrorResponse](t, body).Code)

	resp, _ = cl.do(http.MethodPost, "/api/products", map[string]any{
		"category_id": 999, "name": "Huérfano", "price": "1", "stock": 1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = cl.do(http.MethodGet, "/api/products/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestProductos_DestacadosIgnoranFiltrosDelListado(t *testing.T) {
	cl := newClient(t, buildApp(t))
	audio := seedCategory(t, cl, "Audio")
	hogar := seedCategory(t, cl, "Hogar")
	for _, in := range []struct {
		category int64
		name     string
	}{{audio.ID, "Auriculares"}, {hogar.ID, "Lámpara"}} {
		resp, body := cl.do(http.MethodPost, "/api/products", map[string]any{
			"category_id": in.category, "name": in.name, "price": "10", "stock": 1, "featured": true,
		})
		require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	}
	seedProduct(t, cl, audio.ID, "Cable", "3", 10)

	resp, body := cl.do(http.MethodGet, "/api/products/featured?category=audio&min_price=1000&search=cable", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decode[[]dto.ProductSummary](t, body)
	require.Len(t, out, 2)
	assert.ElementsMatch(t, []string{"Auriculares", "Lámpara"}, []string{out[0].Name, out[1].Name})
}

func TestProductos_Feed(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cat := seedCategory(t, cl, "Hogar")
	seedProduct(t, cl, cat.ID, "Lámpara", "25.00", 2)

	resp, body := cl.do(http.MethodGet, "/api/products/feed.xml", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/rss+xml")
	assert.Contains(t, string(body), "Lámpara")
	assert.Contains(t, string(body), "25.00 EUR")
}

// ──────────────────────────────────────────────────────────────────────────────
// Carrito
// ──────────────────────────────────────────────────────────────────────────────

func TestCarrito_LaCookieIdentificaElMismoCarrito(t *testing.T) {
	cl := newClient(t, buildApp(t))

	_, body := cl.do(http.MethodGet, "/api/cart", nil)
	first := decode[dto.CartSummary](t, body)
	require.NotNil(t, cl.cookie)
	assert.True(t, first.IsEmpty)

	resp, body := cl.do(http.MethodGet, "/api/cart", nil)
	assert.Nil(t, sessionCookie(resp), "la cookie no se reemite")
	assert.Equal(t, first.ID, decode[dto.CartSummary](t, body).ID)
}

func TestCarrito_FlujoCompleto(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cat := seedCategory(t, cl, "Papelería")
	p := seedProduct(t, cl, cat.ID, "Cuaderno", "2.50", 5)

	resp, body := cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	added := decode[dto.CartMutationResponse](t, body)
	assert.Equal(t, "Cuaderno añadido al carrito", added.Message)
	require.Len(t, added.Cart.Items, 1)
	assert.Equal(t, 2, added.Cart.TotalItems)
	assert.True(t, decimal.RequireFromString("5").Equal(added.Cart.TotalPrice))

	// misma línea: se acumula
	_, body = cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID})
	again := decode[dto.CartMutationResponse](t, body)
	require.Len(t, again.Cart.Items, 1)
	assert.Equal(t, 3, again.Cart.Items[0].Quantity)

	itemID := again.Cart.Items[0].ID
	resp, body = cl.do(http.MethodPut, "/api/cart/update_item", dto.UpdateItemRequest{ItemID: itemID, Quantity: 5})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Cantidad actualizada", decode[dto.CartMutationResponse](t, body).Message)

	resp, _ = cl.do(http.MethodGet, "/api/cart/quote.pdf", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))

	resp, body = cl.do(http.MethodDelete, fmt.Sprintf("/api/cart/remove_item?item_id=%d", itemID), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	removed := decode[dto.CartMutationResponse](t, body)
	assert.Equal(t, "Cuaderno eliminado del carrito", removed.Message)
	assert.True(t, removed.Cart.IsEmpty)

	resp, _ = cl.do(http.MethodGet, "/api/cart/quote.pdf", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, body = cl.do(http.MethodDelete, "/api/cart/clear", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Carrito vaciado", decode[dto.CartMutationResponse](t, body).Message)
}

func TestCarrito_StockInsuficienteDevuelve409(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cat := seedCategory(t, cl, "Juguetes")
	p := seedProduct(t, cl, cat.ID, "Peonza", "3.00", 2)

	resp, body := cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 3})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	stockErr := decode[dto.StockErrorResponse](t, body)
	assert.Equal(t, "INSUFFICIENT_STOCK", stockErr.Code)
	assert.Equal(t, 2, stockErr.Available)

	resp, _ = cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID, "quantity": 2})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp, body = cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID})
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	stockErr = decode[dto.StockErrorResponse](t, body)
	assert.Equal(t, 2, stockErr.Available)
	assert.Equal(t, 2, stockErr.InCart)
}

func TestCarrito_ErroresDeEntrada(t *testing.T) {
	cl := newClient(t, buildApp(t))

	resp, body := cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": 404})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", decode[dto.ErrorResponse](t, body).Code)

	resp, _ = cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": 1, "quantity": 0})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = cl.do(http.MethodPut, "/api/cart/update_item", dto.UpdateItemRequest{ItemID: 77, Quantity: 1})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	req := httptest.NewRequest(http.MethodPost, "/api/cart/add_item", strings.NewReader("{no json"))
	req.Header.Set("Content-Type", "application/json")
	raw, err := cl.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, raw.StatusCode)
}

func TestCarrito_ProductoNoDisponible(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cat := seedCategory(t, cl, "Ropa")
	p := seedProduct(t, cl, cat.ID, "Camiseta", "10.00", 4)

	resp, _ := cl.do(http.MethodPut, fmt.Sprintf("/api/products/%d", p.ID), map[string]any{"is_available": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := cl.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "PRODUCT_UNAVAILABLE", decode[dto.ErrorResponse](t, body).Code)
}

// Dos sesiones distintas no ven las líneas de la otra.
func TestCarrito_AisladoPorSesion(t *testing.T) {
	app := buildApp(t)
	alice, bob := newClient(t, app), newClient(t, app)
	cat := seedCategory(t, alice, "Deportes")
	p := seedProduct(t, alice, cat.ID, "Balón", "15.00", 3)

	_, body := alice.do(http.MethodPost, "/api/cart/add_item", map[string]any{"product_id": p.ID})
	itemID := decode[dto.CartMutationResponse](t, body).Cart.Items[0].ID

	resp, _ := bob.do(http.MethodDelete, "/api/cart/remove_item", dto.RemoveItemRequest{ItemID: itemID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	_, body = alice.do(http.MethodGet, "/api/cart", nil)
	assert.Equal(t, 1, decode[dto.CartSummary](t, body).TotalItems)
}

func TestMetricas_Expuestas(t *testing.T) {
	cl := newClient(t, buildApp(t))
	cl.do(http.MethodGet, "/api/cart", nil)

	resp, body := cl.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "eshop_cart_operations_total")
	assert.Contains(t, string(body), "eshop_http_requests_total")
}
