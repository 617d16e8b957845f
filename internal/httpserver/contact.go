package httpserver

import (
	"errors"
	"net/http"

	"storefront/internal/domain"
	"storefront/internal/service/contact"

	"github.com/gin-gonic/gin"
)

func submitContactHandler(svc contactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in contact.SubmitInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		result, err := svc.Submit(c.Request.Context(), in)
		if err != nil {
			if err.Error() == "missing fields" {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to save message"})
			return
		}
		c.JSON(http.StatusCreated, result)
	}
}

type patchContactRequest struct {
	ID      string `json:"id"`
	Handled bool   `json:"handled"`
}

func patchContactHandler(svc contactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in patchContactRequest
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		msg, err := svc.SetHandled(c.Request.Context(), in.ID, in.Handled)
		if err != nil {
			switch {
			case errors.Is(err, domain.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
			case err.Error() == "missing id":
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "unable to update"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"ok": true, "handled": msg.Handled})
	}
}

func listContactsHandler(svc contactService) gin.HandlerFunc {
	return func(c *gin.Context) {
		msgs, err := svc.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"items": msgs})
	}
}
