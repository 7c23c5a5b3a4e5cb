// Package bootstrap wires configuration, storage and HTTP handlers into a gin engine.
package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"

	"storefront/cache"
	"storefront/config"
	"storefront/controllers"
	"storefront/database"
	_ "storefront/docs"
	"storefront/events"
	"storefront/middleware"
	"storefront/repositories"
	"storefront/routes"
	"storefront/services"
	"storefront/utils"
)

// Stores is the persistence the HTTP layer runs on; *repositories.Store and
// *memstore.Store both satisfy it.
type Stores interface {
	repositories.TxRunner
	Carts() repositories.CartStore
	Products() repositories.ProductStore
	Orders() repositories.OrderStore
	Users() repositories.UserStore
}

type Deps struct {
	Stores    Stores
	Cache     cache.CartCache
	Publisher events.OrderPublisher
	Verifier  services.PaymentVerifier
}

type App struct {
	Router  *gin.Engine
	closers []func()
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
}

// New connects to Postgres, applies migrations and picks the cart cache and
// event publisher from configuration. Redis and AMQP are optional.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	pool, err := config.ConnectDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app := &App{closers: []func(){pool.Close}}

	if err := database.Migrate(cfg.DSN(), logger); err != nil {
		app.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	var cartCache cache.CartCache = cache.NewMemory(cfg.CartCacheTTL)
	if client := config.ConnectRedis(ctx, cfg, logger); client != nil {
		cartCache = cache.NewRedis(client, cfg.CartCacheTTL, logger)
		app.closers = append(app.closers, func() { _ = client.Close() })
	}

	var publisher events.OrderPublisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, logger)
		if err != nil {
			logger.Warn("amqp unavailable, order events disabled", "error", err)
		} else {
			publisher = amqpPublisher
			app.closers = append(app.closers, func() { _ = amqpPublisher.Close() })
		}
	}

	app.Router = NewRouter(cfg, logger, Deps{
		Stores:    repositories.NewStore(pool),
		Cache:     cartCache,
		Publisher: publisher,
		Verifier:  services.TrustingVerifier{},
	})
	return app, nil
}

func NewRouter(cfg *config.Config, logger *slog.Logger, deps Deps) *gin.Engine {
	tokens := utils.NewJWTIssuer(cfg.JWTSecret, cfg.JWTExpiry)
	stores := deps.Stores

	cartService := services.NewCartService(stores.Carts(), stores.Products(), stores.Users(), deps.Cache, tokens, logger)
	orderService := services.NewOrderService(stores, stores.Orders(), deps.Cache, deps.Verifier, deps.Publisher, logger)
	authService := services.NewAuthService(stores.Users(), tokens, logger)
	productService := services.NewProductService(stores.Products())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.CORSMiddleware(cfg.OriginURL))

	routes.SetupRoutes(router, routes.Handlers{
		Auth:    controllers.NewAuthController(authService, logger),
		Product: controllers.NewProductController(productService, logger),
		Cart:    controllers.NewCartController(cartService, logger, tokens.Expiry(), cfg.CookieSecure),
		Order:   controllers.NewOrderController(orderService, logger),
	}, tokens)
	return router
}
