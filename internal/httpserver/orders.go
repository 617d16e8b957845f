package httpserver

import (
	"errors"
	"log"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/checkout"

	"github.com/gin-gonic/gin"
)

// Error kinds exposed to clients. Only stock_conflict and product_not_found
// carry detail; everything else stays generic.
const (
	codeValidation      = "validation"
	codeProductNotFound = "product_not_found"
	codeStockConflict   = "stock_conflict"
)

func placeOrderHandler(svc checkoutService, logger *log.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in checkout.PlaceOrderInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json", "code": codeValidation})
			return
		}

		ord, err := svc.PlaceOrder(c.Request.Context(), in)
		if err != nil {
			var (
				vErr  *domain.ValidationError
				pnf   *domain.ProductNotFoundError
				stock *domain.StockConflictError
			)
			switch {
			case errors.As(err, &vErr):
				c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error(), "code": codeValidation})
			case errors.As(err, &pnf):
				c.JSON(http.StatusConflict, gin.H{"error": pnf.Error(), "code": codeProductNotFound, "productId": pnf.ProductID})
			case errors.As(err, &stock):
				c.JSON(http.StatusConflict, gin.H{"error": stock.Error(), "code": codeStockConflict, "productId": stock.ProductID})
			default:
				logger.Printf("orders: place failed error=%v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to place order"})
			}
			return
		}

		c.JSON(http.StatusCreated, gin.H{"ok": true, "orderId": ord.ID, "totalCents": ord.TotalCents})
	}
}

func listOrdersHandler(repo orderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		orders, err := repo.List(c.Request.Context(), intQuery(c, "limit", 100))
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		if orders == nil {
			orders = []domain.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"items": orders})
	}
}

func getOrderHandler(repo orderReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		ord, err := repo.GetByID(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, ord)
	}
}
