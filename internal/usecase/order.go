package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	noteOrderCreated = "Order created"
	noteReorderOf    = "Reorder of order "
)

// OrderUseCase assembles orders and serves order reads.
type OrderUseCase struct {
	tx         repository.Transactor
	store      repository.Store
	catalog    repository.CatalogRepository
	fees       DeliveryFeeResolver
	numbers    *OrderNumberGenerator
	promotions *PromotionUseCase
	points     *PointsLedger
	policy     PointsPolicy
	logger     *slog.Logger
	now        func() time.Time
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(
	tx repository.Transactor,
	store repository.Store,
	catalog repository.CatalogRepository,
	fees DeliveryFeeResolver,
	numbers *OrderNumberGenerator,
	promotions *PromotionUseCase,
	points *PointsLedger,
	policy PointsPolicy,
	logger *slog.Logger,
) *OrderUseCase {
	return &OrderUseCase{
		tx:         tx,
		store:      store,
		catalog:    catalog,
		fees:       fees,
		numbers:    numbers,
		promotions: promotions,
		points:     points,
		policy:     policy,
		logger:     logger,
		now:        time.Now,
	}
}

// Place prices the cart, consumes the promotion and points, and persists the
// order with its first history entry in one transaction.
func (u *OrderUseCase) Place(ctx context.Context, cmd model.OrderRequest) (*model.Order, error) {
	if err := validatePlaceOrder(cmd); err != nil {
		return nil, err
	}
	now := u.now().UTC()

	draft, err := u.draft(ctx, cmd)
	if err != nil {
		return nil, err
	}
	number, err := u.numbers.Next(ctx, now)
	if err != nil {
		return nil, err
	}
	draft.ID = uuid.New()
	draft.Number = number
	draft.Status = model.OrderStatusPending
	draft.PaymentStatus = model.PaymentStatusPending
	draft.CreatedAt = now
	draft.UpdatedAt = now
	for i := range draft.Items {
		draft.Items[i].ID = uuid.New()
		draft.Items[i].OrderID = draft.ID
	}

	var placed model.Order
	err = u.tx.Atomically(ctx, func(ctx context.Context, store repository.Store) error {
		placed = *draft

		user, err := store.Users().GetForUpdate(ctx, cmd.UserID)
		if err != nil {
			return err
		}
		if err := ensureOwned(ctx, store, model.ResourceAddress, cmd.AddressID, cmd.UserID); err != nil {
			return err
		}
		if err := ensureOwned(ctx, store, model.ResourcePaymentMethod, cmd.PaymentMethodID, cmd.UserID); err != nil {
			return err
		}

		if cmd.PromotionCode != "" {
			promo, discount, err := u.promotions.ValidateAndReserve(ctx, store, cmd.PromotionCode, placed.Subtotal, now)
			if err != nil {
				return err
			}
			placed.PromotionID = &promo.ID
			placed.DiscountAmount = discount
		}

		if err := u.points.Reserve(ctx, store, user, cmd.PointsToUse, now); err != nil {
			return err
		}
		placed.PointsUsed = cmd.PointsToUse

		u.total(&placed)
		if err := placed.CheckInvariants(); err != nil {
			u.logger.Error("order invariant violated",
				slog.String("order", placed.Number),
				slog.String("error", err.Error()),
				slog.Bool("alert", true),
			)
			return err
		}

		if err := store.Orders().Create(ctx, &placed); err != nil {
			return err
		}
		return store.History().Append(ctx, &model.StatusHistoryEntry{
			ID:        uuid.New(),
			OrderID:   placed.ID,
			Status:    model.OrderStatusPending,
			Note:      noteOrderCreated,
			CreatedAt: now,
		})
	})
	if err != nil {
		return nil, err
	}

	u.logger.Info("order placed",
		slog.String("order", placed.Number),
		slog.String("user", placed.UserID.String()),
		slog.String("total", placed.TotalAmount.StringFixed(2)),
	)
	return &placed, nil
}

// Quote computes what Place would charge without reserving anything.
func (u *OrderUseCase) Quote(ctx context.Context, cmd model.OrderRequest) (*model.Order, error) {
	if err := validatePlaceOrder(cmd); err != nil {
		return nil, err
	}
	now := u.now().UTC()

	quote, err := u.draft(ctx, cmd)
	if err != nil {
		return nil, err
	}

	if cmd.PromotionCode != "" {
		promo, discount, err := u.promotions.Preview(ctx, cmd.PromotionCode, quote.Subtotal, now)
		if err != nil {
			return nil, err
		}
		quote.PromotionID = &promo.ID
		quote.DiscountAmount = discount
	}

	if cmd.PointsToUse > 0 {
		user, err := u.store.Users().GetByID(ctx, cmd.UserID)
		if err != nil {
			return nil, err
		}
		if user.PointsExpired(now) || cmd.PointsToUse > user.PointsBalance {
			return nil, fmt.Errorf("%w: requested %d, available %d", domainErrors.ErrInsufficientPoints, cmd.PointsToUse, user.PointsBalance)
		}
		quote.PointsUsed = cmd.PointsToUse
	}

	u.total(quote)
	if err := quote.CheckInvariants(); err != nil {
		return nil, err
	}
	return quote, nil
}

// draft prices the items and resolves the delivery fee. It runs before any
// transaction so no row lock is held during collaborator calls.
func (u *OrderUseCase) draft(ctx context.Context, cmd model.OrderRequest) (*model.Order, error) {
	ids := make([]uuid.UUID, 0, len(cmd.Items))
	seen := make(map[uuid.UUID]struct{}, len(cmd.Items))
	for _, item := range cmd.Items {
		if _, ok := seen[item.ProductID]; ok {
			continue
		}
		seen[item.ProductID] = struct{}{}
		ids = append(ids, item.ProductID)
	}

	prices, err := u.catalog.Prices(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("lookup prices: %w", err)
	}

	order := &model.Order{
		UserID:          cmd.UserID,
		AddressID:       cmd.AddressID,
		PaymentMethodID: cmd.PaymentMethodID,
		Notes:           cmd.Notes,
		Subtotal:        decimal.Zero,
		DiscountAmount:  decimal.Zero,
		Items:           make([]model.OrderItem, 0, len(cmd.Items)),
	}
	for _, item := range cmd.Items {
		price, ok := prices[item.ProductID]
		if !ok {
			return nil, fmt.Errorf("%w: product %s is not available", domainErrors.ErrValidation, item.ProductID)
		}
		line := price.Mul(decimal.NewFromInt(item.Quantity))
		order.Items = append(order.Items, model.OrderItem{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  price,
			TotalPrice: line,
		})
		order.Subtotal = order.Subtotal.Add(line)
	}

	fee, err := u.fees.DeliveryFee(ctx, cmd.AddressID)
	if err != nil {
		return nil, fmt.Errorf("resolve delivery fee: %w", err)
	}
	order.DeliveryFee = fee
	return order, nil
}

func (u *OrderUseCase) total(o *model.Order) {
	o.TotalAmount = o.Subtotal.Add(o.DeliveryFee).Sub(o.DiscountAmount)
	o.PointsEarned = u.policy.Earned(o.TotalAmount)
}

func ensureOwned(ctx context.Context, store repository.Store, kind model.ResourceKind, id, userID uuid.UUID) error {
	res, err := store.Resources().Get(ctx, kind, id)
	if err != nil {
		return err
	}
	if res.UserID != userID {
		return fmt.Errorf("%w: %s %s", domainErrors.ErrNotFound, kind, id)
	}
	return nil
}

// Get returns the order with its items.
func (u *OrderUseCase) Get(ctx context.Context, orderID uuid.UUID) (*model.Order, error) {
	return u.store.Orders().GetByID(ctx, orderID)
}

// History returns the status log of an existing order, oldest first.
func (u *OrderUseCase) History(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	if _, err := u.store.Orders().GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return u.store.History().ListByOrder(ctx, orderID)
}

// ListByUser returns a page of the user's orders matching filter, newest
// first. Pages start at 1.
func (u *OrderUseCase) ListByUser(ctx context.Context, userID uuid.UUID, filter model.OrderFilter, page, limit int) ([]model.Order, error) {
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	return u.store.Orders().ListByUser(ctx, userID, filter, limit, (page-1)*limit)
}

// Reorder places a new order with items of an earlier one. Prices are read
// from the catalog again and promotions or points are not carried over.
func (u *OrderUseCase) Reorder(ctx context.Context, req model.ReorderRequest) (*model.Order, error) {
	source, err := u.store.Orders().GetByID(ctx, req.SourceOrderID)
	if err != nil {
		return nil, err
	}
	if source.UserID != req.UserID {
		return nil, fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, req.SourceOrderID)
	}

	selected := make(map[uuid.UUID]struct{}, len(req.ItemIDs))
	for _, id := range req.ItemIDs {
		selected[id] = struct{}{}
	}

	lines := make([]model.LineRequest, 0, len(source.Items))
	for _, item := range source.Items {
		if len(selected) > 0 {
			if _, ok := selected[item.ID]; !ok {
				continue
			}
			delete(selected, item.ID)
		}
		quantity := item.Quantity
		if q, ok := req.Quantities[item.ID]; ok {
			quantity = q
		}
		lines = append(lines, model.LineRequest{ProductID: item.ProductID, Quantity: quantity})
	}
	if len(selected) > 0 {
		return nil, fmt.Errorf("%w: %d selected items are not part of order %s", domainErrors.ErrValidation, len(selected), source.Number)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: no items selected for reorder", domainErrors.ErrValidation)
	}

	cmd := model.OrderRequest{
		UserID:          req.UserID,
		AddressID:       source.AddressID,
		PaymentMethodID: source.PaymentMethodID,
		Items:           lines,
		Notes:           noteReorderOf + source.Number,
	}
	if req.AddressID != uuid.Nil {
		cmd.AddressID = req.AddressID
	}
	if req.PaymentMethodID != uuid.Nil {
		cmd.PaymentMethodID = req.PaymentMethodID
	}
	return u.Place(ctx, cmd)
}
