package postgres

import (
	"context"
	"fmt"
)

const (
	indexAddressDefault       = "uq_addresses_default"
	indexPaymentMethodDefault = "uq_payment_methods_default"
	checkUserPoints           = "ck_users_points_balance"
	checkPromotionUsage       = "ck_promotions_usage"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
            id UUID PRIMARY KEY,
            points_balance BIGINT NOT NULL DEFAULT 0,
            points_expiry_date TIMESTAMPTZ,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
            CONSTRAINT ck_users_points_balance CHECK (points_balance >= 0)
        )`,
	`CREATE TABLE IF NOT EXISTS addresses (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id),
            label TEXT NOT NULL DEFAULT '',
            is_default BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS payment_methods (
            id UUID PRIMARY KEY,
            user_id UUID NOT NULL REFERENCES users(id),
            type TEXT NOT NULL DEFAULT 'CARD' CHECK (type IN ('CARD', 'APPLE_PAY', 'CASH')),
            is_default BOOLEAN NOT NULL DEFAULT FALSE,
            created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
        )`,
	`CREATE TABLE IF NOT EXISTS products (
            id UUID PRIMARY KEY,
            name TEXT NOT NULL,
            price NUMERIC(12,2) NOT NULL CHECK (price >= 0),
            is_available BOOLEAN NOT NULL DEFAULT TRUE
        )`,
	`CREATE TABLE IF NOT EXISTS promotions (
            id UUID PRIMARY KEY,
            code TEXT UNIQUE NOT NULL,
            discount_type TEXT NOT NULL CHECK (discount_type IN ('PERCENTAGE', 'FIXED_AMOUNT')),
            discount_value NUMERIC(12,2) NOT NULL CHECK (discount_value > 0),
            minimum_order_amount NUMERIC(12,2) NOT NULL DEFAULT 0,
            maximum_discount_amount NUMERIC(12,2),
            usage_limit BIGINT CHECK (usage_limit IS NULL OR usage_limit > 0),
            usage_count BIGINT NOT NULL DEFAULT 0,
            start_date TIMESTAMPTZ NOT NULL,
            end_date TIMESTAMPTZ NOT NULL,
            is_active BOOLEAN NOT NULL DEFAULT TRUE,
            CONSTRAINT ck_promotions_usage CHECK (usage_count >= 0 AND (usage_limit IS NULL OR usage_count <= usage_limit)),
            CONSTRAINT ck_promotions_window CHECK (end_date > start_date)
        )`,
	`CREATE TABLE IF NOT EXISTS orders (
            id UUID PRIMARY KEY,
            number TEXT UNIQUE NOT NULL,
            user_id UUID NOT NULL REFERENCES users(id),
            address_id UUID NOT NULL REFERENCES addresses(id),
            payment_method_id UUID NOT NULL REFERENCES payment_methods(id),
            promotion_id UUID REFERENCES promotions(id),
            status TEXT NOT NULL CHECK (status IN ('PENDING', 'CONFIRMED', 'PREPARING', 'OUT_FOR_DELIVERY', 'DELIVERED', 'CANCELLED')),
            payment_status TEXT NOT NULL CHECK (payment_status IN ('PENDING', 'PROCESSING', 'CAPTURED', 'DECLINED')),
            subtotal NUMERIC(12,2) NOT NULL CHECK (subtotal >= 0),
            delivery_fee NUMERIC(12,2) NOT NULL CHECK (delivery_fee >= 0),
            discount_amount NUMERIC(12,2) NOT NULL CHECK (discount_amount >= 0 AND discount_amount <= subtotal),
            total_amount NUMERIC(12,2) NOT NULL,
            points_used BIGINT NOT NULL DEFAULT 0 CHECK (points_used >= 0),
            points_earned BIGINT NOT NULL DEFAULT 0 CHECK (points_earned >= 0),
            points_credited_at TIMESTAMPTZ,
            delivered_at TIMESTAMPTZ,
            notes TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL,
            updated_at TIMESTAMPTZ NOT NULL,
            CONSTRAINT ck_orders_total CHECK (total_amount = subtotal + delivery_fee - discount_amount)
        )`,
	`CREATE TABLE IF NOT EXISTS order_items (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            product_id UUID NOT NULL REFERENCES products(id),
            quantity BIGINT NOT NULL CHECK (quantity > 0),
            unit_price NUMERIC(12,2) NOT NULL CHECK (unit_price >= 0),
            total_price NUMERIC(12,2) NOT NULL,
            CONSTRAINT ck_order_items_total CHECK (total_price = quantity * unit_price)
        )`,
	`CREATE TABLE IF NOT EXISTS order_status_history (
            id UUID PRIMARY KEY,
            order_id UUID NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
            status TEXT NOT NULL,
            note TEXT NOT NULL DEFAULT '',
            created_at TIMESTAMPTZ NOT NULL
        )`,
	`CREATE TABLE IF NOT EXISTS counters (
            name TEXT PRIMARY KEY,
            value BIGINT NOT NULL
        )`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_addresses_default ON addresses(user_id) WHERE is_default`,
	`CREATE UNIQUE INDEX IF NOT EXISTS uq_payment_methods_default ON payment_methods(user_id) WHERE is_default`,
	`CREATE INDEX IF NOT EXISTS idx_orders_user ON orders(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_orders_payment ON orders(created_at) WHERE status = 'PENDING' AND payment_status IN ('PENDING', 'PROCESSING')`,
	`CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`,
	`CREATE INDEX IF NOT EXISTS idx_order_status_history_order ON order_status_history(order_id, created_at)`,
}

func (s *Storage) initSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}

	return nil
}
