package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
)

type orderRepository struct {
	q querier
}

const orderColumns = `id, number, user_id, address_id, payment_method_id, promotion_id, status, payment_status,
                      subtotal, delivery_fee, discount_amount, total_amount, points_used, points_earned,
                      points_credited_at, delivered_at, notes, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(row scanner) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.Number, &o.UserID, &o.AddressID, &o.PaymentMethodID, &o.PromotionID, &o.Status, &o.PaymentStatus,
		&o.Subtotal, &o.DeliveryFee, &o.DiscountAmount, &o.TotalAmount, &o.PointsUsed, &o.PointsEarned,
		&o.PointsCreditedAt, &o.DeliveredAt, &o.Notes, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	const insertOrder = `INSERT INTO orders (` + orderColumns + `)
                         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, insertOrder,
		order.ID, order.Number, order.UserID, order.AddressID, order.PaymentMethodID, order.PromotionID,
		order.Status, order.PaymentStatus, order.Subtotal, order.DeliveryFee, order.DiscountAmount, order.TotalAmount,
		order.PointsUsed, order.PointsEarned, order.PointsCreditedAt, order.DeliveredAt, order.Notes,
		order.CreatedAt, order.UpdatedAt,
	)
	if err != nil {
		return err
	}

	const insertItem = `INSERT INTO order_items (id, order_id, product_id, quantity, unit_price, total_price)
                        VALUES ($1, $2, $3, $4, $5, $6)`
	for _, item := range order.Items {
		if _, err := r.q.Exec(ctx, insertItem, item.ID, order.ID, item.ProductID, item.Quantity, item.UnitPrice, item.TotalPrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1`, id))
	if err != nil {
		return nil, notFound(err, "order")
	}
	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items
	return order, nil
}

func (r *orderRepository) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := scanOrder(r.q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id=$1 FOR UPDATE`, id))
	if err != nil {
		return nil, notFound(err, "order")
	}
	return order, nil
}

func (r *orderRepository) items(ctx context.Context, orderID uuid.UUID) ([]model.OrderItem, error) {
	const query = `SELECT id, order_id, product_id, quantity, unit_price, total_price
                   FROM order_items WHERE order_id=$1 ORDER BY id`
	rows, err := r.q.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []model.OrderItem
	for rows.Next() {
		var it model.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.TotalPrice); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *orderRepository) ListByUser(ctx context.Context, userID uuid.UUID, filter model.OrderFilter, limit, offset int) ([]model.Order, error) {
	const query = `SELECT ` + orderColumns + ` FROM orders WHERE user_id=$1
                   AND ($2::text = '' OR status = $2)
                   AND ($3::text = '' OR payment_status = $3)
                   ORDER BY created_at DESC LIMIT $4 OFFSET $5`
	return r.list(ctx, query, userID, string(filter.Status), string(filter.PaymentStatus), limit, offset)
}

func (r *orderRepository) list(ctx context.Context, query string, args ...any) ([]model.Order, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) error {
	const query = `UPDATE orders SET status=$2, updated_at=$3,
                   delivered_at = CASE WHEN $2 = 'DELIVERED' THEN $3 ELSE delivered_at END
                   WHERE id=$1`
	tag, err := r.q.Exec(ctx, query, id, status, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", domainErrors.ErrNotFound)
	}
	return nil
}

func (r *orderRepository) MarkPointsCredited(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE orders SET points_credited_at=$2, updated_at=$2 WHERE id=$1 AND points_credited_at IS NULL`
	tag, err := r.q.Exec(ctx, query, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: points already credited", domainErrors.ErrInvalidTransition)
	}
	return nil
}

func (r *orderRepository) SelectBatchForPayment(ctx context.Context, limit int) ([]model.Order, error) {
	const selectQuery = `SELECT ` + orderColumns + ` FROM orders
                         WHERE status='PENDING' AND payment_status IN ('PENDING', 'PROCESSING')
                         ORDER BY created_at
                         LIMIT $1
                         FOR UPDATE SKIP LOCKED`
	orders, err := r.list(ctx, selectQuery, limit)
	if err != nil || len(orders) == 0 {
		return orders, err
	}

	ids := make([]uuid.UUID, 0, len(orders))
	for i := range orders {
		ids = append(ids, orders[i].ID)
		orders[i].PaymentStatus = model.PaymentStatusProcessing
	}
	if _, err := r.q.Exec(ctx, `UPDATE orders SET payment_status='PROCESSING' WHERE id = ANY($1)`, ids); err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *orderRepository) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	tag, err := r.q.Exec(ctx, `UPDATE orders SET payment_status=$2 WHERE id=$1`, id, status)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: order", domainErrors.ErrNotFound)
	}
	return nil
}
