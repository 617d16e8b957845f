package httpserver

import (
	"context"
	"log"

	"storefront/internal/domain"
	orderrepo "storefront/internal/repository/order"
	productrepo "storefront/internal/repository/product"
	"storefront/internal/service/catalog"
	"storefront/internal/service/checkout"
	"storefront/internal/service/contact"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type catalogService interface {
	List(ctx context.Context, f productrepo.ListFilter) (*catalog.ListResult, error)
	GetBySlug(ctx context.Context, slug string) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	CreateProduct(ctx context.Context, in catalog.CreateProductInput) (*domain.Product, error)
	PatchProduct(ctx context.Context, id string, in catalog.PatchProductInput) (*domain.Product, error)
}

type checkoutService interface {
	PlaceOrder(ctx context.Context, in checkout.PlaceOrderInput) (*domain.Order, error)
}

type contactService interface {
	Submit(ctx context.Context, in contact.SubmitInput) (*contact.SubmitResult, error)
	SetHandled(ctx context.Context, id string, handled bool) (*domain.ContactMessage, error)
	List(ctx context.Context) ([]domain.ContactMessage, error)
}

type orderReader interface {
	List(ctx context.Context, limit int) ([]domain.Order, error)
	GetByID(ctx context.Context, id string) (*domain.Order, error)
}

// Deps carries the services the router exposes.
type Deps struct {
	Catalog  catalogService
	Checkout checkoutService
	Contact  contactService
	Orders   orderReader
	Uploader *Uploader

	// Bcrypt hash of the admin bearer token; empty leaves admin routes open.
	AdminTokenHash string
}

var _ orderReader = (orderrepo.Repository)(nil)

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.Default())

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	api := router.Group("/api")
	{
		api.GET("/products", listProductsHandler(deps.Catalog))
		api.GET("/products/:slug", getProductHandler(deps.Catalog))
		api.GET("/categories", listCategoriesHandler(deps.Catalog))
		api.POST("/orders", placeOrderHandler(deps.Checkout, logger))
		api.POST("/contact", submitContactHandler(deps.Contact))
		api.PATCH("/contact", patchContactHandler(deps.Contact))
		api.POST("/uploads", uploadHandler(deps.Uploader))

		admin := api.Group("/admin", adminAuth(deps.AdminTokenHash))
		{
			admin.POST("/products", createProductHandler(deps.Catalog))
			admin.PATCH("/products/:id", patchProductHandler(deps.Catalog))
			admin.GET("/orders", listOrdersHandler(deps.Orders))
			admin.GET("/orders/:id", getOrderHandler(deps.Orders))
			admin.GET("/contacts", listContactsHandler(deps.Contact))
		}
	}

	return router
}
