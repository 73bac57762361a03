package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/server/http/dto"
	"github.com/polkiloo/orderengine/internal/server/http/middleware"
)

// CurrentUserID extracts the caller identifier from context.
func CurrentUserID(c *gin.Context) uuid.UUID {
	val, ok := c.Get(middleware.UserIDContextKey)
	if !ok {
		return uuid.Nil
	}
	id, _ := val.(uuid.UUID)
	return id
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "malformed id"})
		return uuid.Nil, false
	}
	return id, true
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

// statusFor maps domain errors to HTTP status codes. Promotion errors are
// checked first since an unknown code is also reported as not found.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domainErrors.ErrPromotionInvalid):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domainErrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domainErrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domainErrors.ErrInsufficientPoints):
		return http.StatusPaymentRequired
	case errors.Is(err, domainErrors.ErrInvalidTransition), errors.Is(err, domainErrors.ErrConcurrencyConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func abortWithError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: "internal error"})
		return
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: err.Error()})
}

func toOrderRequest(userID uuid.UUID, req dto.PlaceOrderRequest) model.OrderRequest {
	items := make([]model.LineRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, model.LineRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return model.OrderRequest{
		UserID:          userID,
		AddressID:       req.AddressID,
		PaymentMethodID: req.PaymentMethodID,
		Items:           items,
		PromotionCode:   req.PromotionCode,
		PointsToUse:     req.PointsToUse,
		Notes:           req.Notes,
	}
}

// orderFilter reads the optional status and payment_status query parameters.
func orderFilter(c *gin.Context) (model.OrderFilter, error) {
	var filter model.OrderFilter
	if raw := c.Query("status"); raw != "" {
		status, err := model.ParseOrderStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = status
	}
	if raw := c.Query("payment_status"); raw != "" {
		status, err := model.ParsePaymentStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.PaymentStatus = status
	}
	return filter, nil
}

func toOrderResponse(order model.Order) dto.OrderResponse {
	resp := dto.OrderResponse{
		ID:             order.ID,
		Number:         order.Number,
		Status:         string(order.Status),
		PaymentStatus:  string(order.PaymentStatus),
		Progress:       order.Status.Progress(),
		PromotionID:    order.PromotionID,
		Subtotal:       order.Subtotal,
		DeliveryFee:    order.DeliveryFee,
		DiscountAmount: order.DiscountAmount,
		TotalAmount:    order.TotalAmount,
		PointsUsed:     order.PointsUsed,
		PointsEarned:   order.PointsEarned,
		Notes:          order.Notes,
		DeliveredAt:    order.DeliveredAt,
	}
	if !order.CreatedAt.IsZero() {
		created := order.CreatedAt
		resp.CreatedAt = &created
	}
	for _, item := range order.Items {
		resp.Items = append(resp.Items, dto.OrderItemResponse{
			ID:         item.ID,
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return resp
}
