package http

import (
	stdhttp "net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/eshop-api/internal/application/cart"
	"github.com/jhoicas/eshop-api/internal/application/usecase"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	CategoryUC *usecase.CategoryUseCase
	ProductUC  *usecase.ProductUseCase
	CartSvc    *cart.Service
	Session    SessionConfig
	// Metrics es opcional: si es nil no se expone /metrics.
	Metrics stdhttp.Handler
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", HealthHandler)
	if deps.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics))
	}

	api := app.Group("/api")

	// Categories
	categories := api.Group("/categories")
	categoryHandler := NewCategoryHandler(deps.CategoryUC)
	categories.Get("/", categoryHandler.List)
	categories.Post("/", categoryHandler.Create)
	categories.Get("/:slug", categoryHandler.Get)
	categories.Put("/:slug", categoryHandler.Update)
	categories.Delete("/:slug", categoryHandler.Delete)
	categories.Get("/:slug/products", categoryHandler.Products)

	// Products (las rutas fijas van antes de /:id)
	products := api.Group("/products")
	productHandler := NewProductHandler(deps.ProductUC)
	products.Get("/", productHandler.List)
	products.Post("/", productHandler.Create)
	products.Get("/featured", productHandler.Featured)
	products.Get("/search_advanced", productHandler.SearchAdvanced)
	products.Get("/feed.xml", productHandler.Feed)
	products.Get("/:id", productHandler.Get)
	products.Put("/:id", productHandler.Update)
	products.Delete("/:id", productHandler.Delete)

	// Cart (sesión anónima)
	carts := api.Group("/cart", SessionMiddleware(deps.Session))
	cartHandler := NewCartHandler(deps.CartSvc)
	carts.Get("/", cartHandler.Get)
	carts.Post("/add_item", cartHandler.AddItem)
	carts.Put("/update_item", cartHandler.UpdateItem)
	carts.Delete("/remove_item", cartHandler.RemoveItem)
	carts.Delete("/clear", cartHandler.Clear)
	carts.Get("/quote.pdf", cartHandler.QuotePDF)
}
