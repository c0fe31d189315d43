package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/jhoicas/eshop-api/internal/application/cart"
	"github.com/jhoicas/eshop-api/internal/application/ports"
	"github.com/jhoicas/eshop-api/internal/application/usecase"
	"github.com/jhoicas/eshop-api/internal/domain/repository"
	"github.com/jhoicas/eshop-api/internal/infrastructure/cache"
	"github.com/jhoicas/eshop-api/internal/infrastructure/events"
	"github.com/jhoicas/eshop-api/internal/infrastructure/feed"
	"github.com/jhoicas/eshop-api/internal/infrastructure/memory"
	"github.com/jhoicas/eshop-api/internal/infrastructure/metrics"
	infrapdf "github.com/jhoicas/eshop-api/internal/infrastructure/pdf"
	"github.com/jhoicas/eshop-api/internal/infrastructure/postgres"
	httpRouter "github.com/jhoicas/eshop-api/internal/interfaces/http"
	"github.com/jhoicas/eshop-api/pkg/config"
	"github.com/jhoicas/eshop-api/pkg/logger"
	"github.com/jhoicas/eshop-api/pkg/tracing"
)

const swaggerFile = "./docs/swagger.json"

// storage repositorios y transacciones del backend elegido.
type storage struct {
	categories repository.CategoryRepository
	products   repository.ProductRepository
	tx         ports.TxRunner
	close      func()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:     cfg.App.Env,
		Level:   cfg.App.LogLevel,
		Service: cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.Storage.Driver).
		Msg("iniciando aplicación")

	ctx := context.Background()

	tp, err := tracing.Init(ctx, cfg.App.Name, cfg.Tracing.JaegerEndpoint, cfg.Tracing.Enabled)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar tracing")
	}

	store, err := openStorage(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("inicializar almacenamiento")
	}
	defer store.close()

	// Caché del catálogo: opcional, sin Redis las lecturas van directo al almacén.
	var cacheStore ports.CatalogCache
	if cfg.Redis.Enabled() {
		client, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Str("addr", cfg.Redis.Addr).Msg("redis no disponible, caché desactivada")
		} else {
			defer client.Close()
			cacheStore = cache.NewRedisCache(client)
		}
	}
	catalogCache := usecase.NewCache(cacheStore, cfg.Redis.TTL, log)

	var publisher cart.EventPublisher = cart.NopPublisher{}
	if cfg.Kafka.Enabled() {
		kp, err := events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
		if err != nil {
			log.Fatal().Err(err).Strs("brokers", cfg.Kafka.Brokers).Msg("productor kafka")
		}
		defer kp.Close()
		publisher = kp
	}

	m := metrics.New()

	categoryUC := usecase.NewCategoryUseCase(store.categories, store.products, store.tx, catalogCache)
	productUC := usecase.NewProductUseCase(
		store.products, store.categories, store.tx, catalogCache,
		feed.NewRSSEncoder(cfg.App.Name, cfg.App.SiteBaseURL, "Catálogo de productos", cfg.App.Currency),
		cfg.App.SiteBaseURL,
	)
	cartSvc := cart.NewService(store.tx, log,
		cart.WithEvents(publisher),
		cart.WithQuoteRenderer(infrapdf.NewQuoteGenerator(cfg.App.Name)),
		cart.WithObserver(m),
	)

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())
	app.Use(httpRouter.TracingMiddleware())
	app.Use(httpRouter.RequestLogger(log))
	app.Use(httpRouter.MetricsMiddleware(m))

	// Swagger UI en local: http://localhost:<port>/docs
	if _, err := os.Stat(swaggerFile); err == nil {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: swaggerFile,
			Path:     "docs",
			Title:    "eShop API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		CategoryUC: categoryUC,
		ProductUC:  productUC,
		CartSvc:    cartSvc,
		Session: httpRouter.SessionConfig{
			Secret:     cfg.Session.Secret,
			CookieName: cfg.Session.CookieName,
			Issuer:     cfg.App.Name,
			TTL:        cfg.Session.TTL,
			Secure:     cfg.App.Env == "production",
		},
		Metrics: m.Handler(),
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		log.Error().Err(err).Msg("cierre del tracer")
	}

	log.Info().Msg("aplicación detenida")
}

// openStorage conecta el backend configurado. Con postgres aplica el esquema si DB_AUTO_MIGRATE.
func openStorage(ctx context.Context, cfg *config.Config, log *logger.Logger) (*storage, error) {
	if cfg.Storage.Driver == "memory" {
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
		s := memory.NewStore()
		return &storage{
			categories: s.Categories(),
			products:   s.Products(),
			tx:         s.TxRunner(),
			close:      func() {},
		}, nil
	}

	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	if cfg.DB.AutoMigrate {
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		log.Info().Msg("esquema de base de datos aplicado")
	}
	return &storage{
		categories: postgres.NewCategoryRepository(pool),
		products:   postgres.NewProductRepository(pool),
		tx:         postgres.NewTxRunner(pool),
		close:      pool.Close,
	}, nil
}
