package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ResourceHandler selects default addresses and payment methods.
type ResourceHandler struct {
	facade ResourceFacade
}

// NewResourceHandler constructs ResourceHandler.
func NewResourceHandler(facade ResourceFacade) *ResourceHandler {
	return &ResourceHandler{facade: facade}
}

// DefaultAddress handles PUT /api/addresses/:id/default.
func (h *ResourceHandler) DefaultAddress(c *gin.Context) {
	h.setDefault(c, h.facade.SetDefaultAddress)
}

// DefaultPaymentMethod handles PUT /api/payment-methods/:id/default.
func (h *ResourceHandler) DefaultPaymentMethod(c *gin.Context) {
	h.setDefault(c, h.facade.SetDefaultPaymentMethod)
}

func (h *ResourceHandler) setDefault(c *gin.Context, set func(context.Context, uuid.UUID, uuid.UUID) error) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := set(c.Request.Context(), CurrentUserID(c), id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
