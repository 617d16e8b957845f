package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"storefront/internal/domain"
	productrepo "storefront/internal/repository/product"

	"github.com/gin-gonic/gin"
)

func listProductsHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f := productrepo.ListFilter{
			Query:    c.Query("q"),
			Category: c.Query("category"),
			Sort:     c.DefaultQuery("sort", productrepo.SortNewest),
			Page:     intQuery(c, "page", 1),
			PageSize: intQuery(c, "pageSize", 20),
		}
		switch c.Query("inStock") {
		case "true":
			v := true
			f.InStock = &v
		case "false":
			v := false
			f.InStock = &v
		}

		result, err := svc.List(c.Request.Context(), f)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

func getProductHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := svc.GetBySlug(c.Request.Context(), c.Param("slug"))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "product not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, p)
	}
}

func listCategoriesHandler(svc catalogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		cats, err := svc.Categories(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": cats})
	}
}

func intQuery(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil || n < 1 {
		return def
	}
	return n
}
