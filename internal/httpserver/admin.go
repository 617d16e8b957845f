package httpserver

import (
	"errors"
	"net/http"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/service/catalog"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
)

// adminAuth guards admin routes with a bearer token checked against a bcrypt
// hash. An empty hash leaves the routes open for local development.
func adminAuth(tokenHash string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenHash == "" {
			c.Next()
			return
		}
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		if err := bcrypt.CompareHashAndPassword([]byte(tokenHash), []byte(token)); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Next()
	}
}

func createProductHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.CreateProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		p, err := svc.CreateProduct(c.Request.Context(), in)
		if err != nil {
			if err.Error() == "invalid input" {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create product"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"ok": true, "product": p})
	}
}

func patchProductHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in catalog.PatchProductInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		p, err := svc.PatchProduct(c.Request.Context(), c.Param("id"), in)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
			case err.Error() == "no fields to update" || err.Error() == "quantity must not be negative":
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "product": p})
	}
}
