package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/server/http/dto"
)

// OrderHandler manages order-related endpoints.
type OrderHandler struct {
	facade OrderFacade
}

// NewOrderHandler constructs OrderHandler.
func NewOrderHandler(facade OrderFacade) *OrderHandler {
	return &OrderHandler{facade: facade}
}

// Place handles POST /api/orders.
func (h *OrderHandler) Place(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	order, err := h.facade.PlaceOrder(c.Request.Context(), toOrderRequest(CurrentUserID(c), req))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Quote handles POST /api/orders/quote.
func (h *OrderHandler) Quote(c *gin.Context) {
	var req dto.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}

	quote, err := h.facade.QuoteOrder(c.Request.Context(), toOrderRequest(CurrentUserID(c), req))
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*quote))
}

// List handles GET /api/orders.
func (h *OrderHandler) List(c *gin.Context) {
	filter, err := orderFilter(c)
	if err != nil {
		abortWithError(c, err)
		return
	}
	orders, err := h.facade.Orders(c.Request.Context(), CurrentUserID(c), filter, queryInt(c, "page"), queryInt(c, "limit"))
	if err != nil {
		abortWithError(c, err)
		return
	}
	if len(orders) == 0 {
		c.Status(http.StatusNoContent)
		return
	}

	response := make([]dto.OrderResponse, 0, len(orders))
	for _, o := range orders {
		response = append(response, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, response)
}

// Get handles GET /api/orders/:id.
func (h *OrderHandler) Get(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	order, err := h.facade.GetOrder(c.Request.Context(), CurrentUserID(c), orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// History handles GET /api/orders/:id/history.
func (h *OrderHandler) History(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	entries, err := h.facade.OrderHistory(c.Request.Context(), CurrentUserID(c), orderID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := make([]dto.StatusHistoryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, dto.StatusHistoryResponse{Status: string(e.Status), Note: e.Note, CreatedAt: e.CreatedAt})
	}
	c.JSON(http.StatusOK, response)
}

// Reorder handles POST /api/orders/:id/reorder. The body is optional.
func (h *OrderHandler) Reorder(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.ReorderRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
			return
		}
	}

	order, err := h.facade.Reorder(c.Request.Context(), model.ReorderRequest{
		UserID:          CurrentUserID(c),
		SourceOrderID:   orderID,
		ItemIDs:         req.ItemIDs,
		Quantities:      req.Quantities,
		AddressID:       req.AddressID,
		PaymentMethodID: req.PaymentMethodID,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(*order))
}

// Transition handles POST /api/operator/orders/:id/status.
func (h *OrderHandler) Transition(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
		return
	}
	status, err := model.ParseOrderStatus(req.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}

	order, err := h.facade.TransitionStatus(c.Request.Context(), orderID, status, req.Note)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}

// Cancel handles POST /api/orders/:id/cancel. The body is optional.
func (h *OrderHandler) Cancel(c *gin.Context) {
	orderID, ok := pathID(c)
	if !ok {
		return
	}
	var req dto.CancelRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed request body"})
			return
		}
	}

	order, err := h.facade.CancelOrder(c.Request.Context(), CurrentUserID(c), orderID, req.Reason)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(*order))
}
