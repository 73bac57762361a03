package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItemRequest describes a requested product line.
type OrderItemRequest struct {
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int64     `json:"quantity"`
}

// PlaceOrderRequest is the payload of order placement and quoting.
type PlaceOrderRequest struct {
	AddressID       uuid.UUID          `json:"address_id"`
	PaymentMethodID uuid.UUID          `json:"payment_method_id"`
	Items           []OrderItemRequest `json:"items"`
	PromotionCode   string             `json:"promotion_code,omitempty"`
	PointsToUse     int64              `json:"points_to_use,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

// OrderItemResponse describes a priced order line.
type OrderItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	ProductID  uuid.UUID       `json:"product_id"`
	Quantity   int64           `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// OrderResponse describes an order and its financial summary. Money is
// rendered as decimal strings.
type OrderResponse struct {
	ID             uuid.UUID           `json:"id"`
	Number         string              `json:"number,omitempty"`
	Status         string              `json:"status,omitempty"`
	PaymentStatus  string              `json:"payment_status,omitempty"`
	Progress       int                 `json:"progress"`
	PromotionID    *uuid.UUID          `json:"promotion_id,omitempty"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	DeliveryFee    decimal.Decimal     `json:"delivery_fee"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PointsUsed     int64               `json:"points_used"`
	PointsEarned   int64               `json:"points_earned"`
	Notes          string              `json:"notes,omitempty"`
	CreatedAt      *time.Time          `json:"created_at,omitempty"`
	DeliveredAt    *time.Time          `json:"delivered_at,omitempty"`
	Items          []OrderItemResponse `json:"items,omitempty"`
}

// StatusHistoryResponse describes one entry of the status log.
type StatusHistoryResponse struct {
	Status    string    `json:"status"`
	Note      string    `json:"note,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// TransitionRequest moves an order to another status.
type TransitionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// ReorderRequest picks items of an earlier order. An empty selection takes
// every item; quantities are keyed by item id.
type ReorderRequest struct {
	ItemIDs         []uuid.UUID         `json:"item_ids,omitempty"`
	Quantities      map[uuid.UUID]int64 `json:"quantities,omitempty"`
	AddressID       uuid.UUID           `json:"address_id"`
	PaymentMethodID uuid.UUID           `json:"payment_method_id"`
}

// CancelRequest carries the optional cancellation reason.
type CancelRequest struct {
	Reason string `json:"reason,omitempty"`
}

// ErrorResponse is returned with every non-2xx answer that has a body.
type ErrorResponse struct {
	Error string `json:"error"`
}
