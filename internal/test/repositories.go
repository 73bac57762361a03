package test

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
	"github.com/polkiloo/orderengine/internal/domain/repository"
)

// MemoryStore is an in-memory database for use case tests. Transactions are
// serialized by a single mutex and rolled back by restoring a snapshot.
type MemoryStore struct {
	mu   sync.Mutex
	data memoryData

	// Failures makes the named operation (e.g. "Orders.Create") return the error.
	Failures map[string]error
	// Attempts counts Atomically invocations.
	Attempts int
}

type memoryData struct {
	users      map[uuid.UUID]model.User
	resources  map[model.ResourceKind]map[uuid.UUID]model.Resource
	promotions map[string]model.Promotion
	orders     map[uuid.UUID]model.Order
	history    []model.StatusHistoryEntry
	counters   map[string]int64
	products   map[uuid.UUID]decimal.Decimal
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		data: memoryData{
			users: make(map[uuid.UUID]model.User),
			resources: map[model.ResourceKind]map[uuid.UUID]model.Resource{
				model.ResourceAddress:       {},
				model.ResourcePaymentMethod: {},
			},
			promotions: make(map[string]model.Promotion),
			orders:     make(map[uuid.UUID]model.Order),
			counters:   make(map[string]int64),
			products:   make(map[uuid.UUID]decimal.Decimal),
		},
		Failures: make(map[string]error),
	}
}

func (d memoryData) clone() memoryData {
	c := memoryData{
		users:      make(map[uuid.UUID]model.User, len(d.users)),
		resources:  make(map[model.ResourceKind]map[uuid.UUID]model.Resource, len(d.resources)),
		promotions: make(map[string]model.Promotion, len(d.promotions)),
		orders:     make(map[uuid.UUID]model.Order, len(d.orders)),
		history:    append([]model.StatusHistoryEntry(nil), d.history...),
		counters:   make(map[string]int64, len(d.counters)),
		products:   make(map[uuid.UUID]decimal.Decimal, len(d.products)),
	}
	for k, v := range d.users {
		c.users[k] = v
	}
	for kind, set := range d.resources {
		c.resources[kind] = make(map[uuid.UUID]model.Resource, len(set))
		for k, v := range set {
			c.resources[kind][k] = v
		}
	}
	for k, v := range d.promotions {
		c.promotions[k] = v
	}
	for k, v := range d.orders {
		v.Items = append([]model.OrderItem(nil), v.Items...)
		c.orders[k] = v
	}
	for k, v := range d.counters {
		c.counters[k] = v
	}
	for k, v := range d.products {
		c.products[k] = v
	}
	return c
}

// AddUser seeds a user with balance points.
func (s *MemoryStore) AddUser(balance int64, expiry *time.Time) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.data.users[id] = model.User{ID: id, PointsBalance: balance, PointsExpiryDate: expiry}
	return id
}

// AddResource seeds an address or payment method owned by userID.
func (s *MemoryStore) AddResource(kind model.ResourceKind, userID uuid.UUID, isDefault bool) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.data.resources[kind][id] = model.Resource{ID: id, UserID: userID, Kind: kind, IsDefault: isDefault}
	return id
}

// AddProduct seeds an available product priced at price.
func (s *MemoryStore) AddProduct(price string) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := uuid.New()
	s.data.products[id] = decimal.RequireFromString(price)
	return id
}

// SetPrice reprices a product.
func (s *MemoryStore) SetPrice(id uuid.UUID, price string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.products[id] = decimal.RequireFromString(price)
}

// AddPromotion seeds p, assigning an ID when missing.
func (s *MemoryStore) AddPromotion(p model.Promotion) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	s.data.promotions[p.Code] = p
	return p.ID
}

// PutOrder stores o as is, bypassing placement.
func (s *MemoryStore) PutOrder(o model.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o.Items = append([]model.OrderItem(nil), o.Items...)
	s.data.orders[o.ID] = o
}

// User returns the committed state of a user.
func (s *MemoryStore) User(id uuid.UUID) model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.users[id]
}

// Promotion returns the committed state of a promotion.
func (s *MemoryStore) Promotion(code string) model.Promotion {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.promotions[code]
}

// Order returns the committed state of an order.
func (s *MemoryStore) Order(id uuid.UUID) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.data.orders[id]
	return o, ok
}

// OrderCount returns the number of stored orders.
func (s *MemoryStore) OrderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.data.orders)
}

// Defaults returns the IDs of the user's default resources of kind.
func (s *MemoryStore) Defaults(kind model.ResourceKind, userID uuid.UUID) []uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []uuid.UUID
	for _, r := range s.data.resources[kind] {
		if r.UserID == userID && r.IsDefault {
			ids = append(ids, r.ID)
		}
	}
	return ids
}

// HistoryOf returns the committed history of an order.
func (s *MemoryStore) HistoryOf(orderID uuid.UUID) []model.StatusHistoryEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view(true).historyOf(orderID)
}

// Atomically runs fn under the store lock and restores the previous state when fn fails.
func (s *MemoryStore) Atomically(ctx context.Context, fn func(ctx context.Context, store repository.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Attempts++
	if err := s.Failures["Atomically"]; err != nil {
		return err
	}
	snapshot := s.data.clone()
	if err := fn(ctx, s.view(true)); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Users and the other accessors serve reads outside a transaction.
func (s *MemoryStore) Users() repository.UserRepository           { return s.view(false) }
func (s *MemoryStore) Resources() repository.ResourceRepository   { return s.view(false).resources() }
func (s *MemoryStore) Promotions() repository.PromotionRepository { return s.view(false).promotions() }
func (s *MemoryStore) Orders() repository.OrderRepository         { return s.view(false).orders() }
func (s *MemoryStore) History() repository.HistoryRepository      { return s.view(false).history() }

// Next implements repository.CounterRepository.
func (s *MemoryStore) Next(ctx context.Context, name string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Failures["Counters.Next"]; err != nil {
		return 0, err
	}
	s.data.counters[name]++
	return s.data.counters[name], nil
}

// Prices implements repository.CatalogRepository.
func (s *MemoryStore) Prices(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.Failures["Catalog.Prices"]; err != nil {
		return nil, err
	}
	prices := make(map[uuid.UUID]decimal.Decimal, len(ids))
	for _, id := range ids {
		if p, ok := s.data.products[id]; ok {
			prices[id] = p
		}
	}
	return prices, nil
}

func (s *MemoryStore) view(held bool) *memoryView {
	return &memoryView{s: s, held: held}
}

// memoryView implements every repository. Views created inside Atomically
// already hold the store lock.
type memoryView struct {
	s    *MemoryStore
	held bool
}

type (
	memoryResources  struct{ *memoryView }
	memoryPromotions struct{ *memoryView }
	memoryOrders     struct{ *memoryView }
	memoryHistory    struct{ *memoryView }
)

func (v *memoryView) Users() repository.UserRepository           { return v }
func (v *memoryView) Resources() repository.ResourceRepository   { return v.resources() }
func (v *memoryView) Promotions() repository.PromotionRepository { return v.promotions() }
func (v *memoryView) Orders() repository.OrderRepository         { return v.orders() }
func (v *memoryView) History() repository.HistoryRepository      { return v.history() }

func (v *memoryView) resources() memoryResources   { return memoryResources{v} }
func (v *memoryView) promotions() memoryPromotions { return memoryPromotions{v} }
func (v *memoryView) orders() memoryOrders         { return memoryOrders{v} }
func (v *memoryView) history() memoryHistory       { return memoryHistory{v} }

func (v *memoryView) enter(op string) (func(), error) {
	unlock := func() {}
	if !v.held {
		v.s.mu.Lock()
		unlock = v.s.mu.Unlock
	}
	if err := v.s.Failures[op]; err != nil {
		unlock()
		return func() {}, err
	}
	return unlock, nil
}

func (v *memoryView) data() *memoryData { return &v.s.data }

func (v *memoryView) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	unlock, err := v.enter("Users.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return v.user(id)
}

func (v *memoryView) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.User, error) {
	unlock, err := v.enter("Users.GetForUpdate")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return v.user(id)
}

func (v *memoryView) user(id uuid.UUID) (*model.User, error) {
	u, ok := v.data().users[id]
	if !ok {
		return nil, fmt.Errorf("%w: user %s", domainErrors.ErrNotFound, id)
	}
	return &u, nil
}

func (v *memoryView) AdjustPoints(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	unlock, err := v.enter("Users.AdjustPoints")
	if err != nil {
		return 0, err
	}
	defer unlock()
	u, ok := v.data().users[id]
	if !ok {
		return 0, fmt.Errorf("%w: user %s", domainErrors.ErrNotFound, id)
	}
	if u.PointsBalance+delta < 0 {
		return 0, fmt.Errorf("%w: balance %d, delta %d", domainErrors.ErrInsufficientPoints, u.PointsBalance, delta)
	}
	u.PointsBalance += delta
	v.data().users[id] = u
	return u.PointsBalance, nil
}

func (r memoryResources) Get(ctx context.Context, kind model.ResourceKind, id uuid.UUID) (*model.Resource, error) {
	unlock, err := r.enter("Resources.Get")
	if err != nil {
		return nil, err
	}
	defer unlock()
	res, ok := r.data().resources[kind][id]
	if !ok {
		return nil, fmt.Errorf("%w: %s %s", domainErrors.ErrNotFound, kind, id)
	}
	return &res, nil
}

func (r memoryResources) ClearDefaults(ctx context.Context, kind model.ResourceKind, userID, keepID uuid.UUID) (int64, error) {
	unlock, err := r.enter("Resources.ClearDefaults")
	if err != nil {
		return 0, err
	}
	defer unlock()
	var cleared int64
	set := r.data().resources[kind]
	for id, res := range set {
		if res.UserID == userID && id != keepID && res.IsDefault {
			res.IsDefault = false
			set[id] = res
			cleared++
		}
	}
	return cleared, nil
}

func (r memoryResources) MarkDefault(ctx context.Context, kind model.ResourceKind, id uuid.UUID) error {
	unlock, err := r.enter("Resources.MarkDefault")
	if err != nil {
		return err
	}
	defer unlock()
	set := r.data().resources[kind]
	res, ok := set[id]
	if !ok {
		return fmt.Errorf("%w: %s %s", domainErrors.ErrNotFound, kind, id)
	}
	res.IsDefault = true
	set[id] = res
	return nil
}

func (p memoryPromotions) GetByCode(ctx context.Context, code string) (*model.Promotion, error) {
	unlock, err := p.enter("Promotions.GetByCode")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return p.byCode(code)
}

func (p memoryPromotions) GetByCodeForUpdate(ctx context.Context, code string) (*model.Promotion, error) {
	unlock, err := p.enter("Promotions.GetByCodeForUpdate")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return p.byCode(code)
}

func (p memoryPromotions) byCode(code string) (*model.Promotion, error) {
	promo, ok := p.data().promotions[code]
	if !ok {
		return nil, fmt.Errorf("%w: promotion %q", domainErrors.ErrNotFound, code)
	}
	return &promo, nil
}

func (p memoryPromotions) IncrementUsage(ctx context.Context, id uuid.UUID) error {
	unlock, err := p.enter("Promotions.IncrementUsage")
	if err != nil {
		return err
	}
	defer unlock()
	for code, promo := range p.data().promotions {
		if promo.ID != id {
			continue
		}
		if promo.Exhausted() {
			return fmt.Errorf("%w: %s usage limit reached", domainErrors.ErrPromotionInvalid, code)
		}
		promo.UsageCount++
		p.data().promotions[code] = promo
		return nil
	}
	return fmt.Errorf("%w: promotion %s", domainErrors.ErrNotFound, id)
}

func (o memoryOrders) Create(ctx context.Context, order *model.Order) error {
	unlock, err := o.enter("Orders.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if _, exists := o.data().orders[order.ID]; exists {
		return fmt.Errorf("%w: order %s exists", domainErrors.ErrConcurrencyConflict, order.ID)
	}
	for _, existing := range o.data().orders {
		if existing.Number == order.Number {
			return fmt.Errorf("%w: order number %s taken", domainErrors.ErrConcurrencyConflict, order.Number)
		}
	}
	stored := *order
	stored.Items = append([]model.OrderItem(nil), order.Items...)
	o.data().orders[order.ID] = stored
	return nil
}

func (o memoryOrders) GetByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	unlock, err := o.enter("Orders.GetByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return o.byID(id)
}

func (o memoryOrders) GetForUpdate(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	unlock, err := o.enter("Orders.GetForUpdate")
	if err != nil {
		return nil, err
	}
	defer unlock()
	order, err := o.byID(id)
	if err != nil {
		return nil, err
	}
	order.Items = nil
	return order, nil
}

func (o memoryOrders) byID(id uuid.UUID) (*model.Order, error) {
	order, ok := o.data().orders[id]
	if !ok {
		return nil, fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
	}
	order.Items = append([]model.OrderItem(nil), order.Items...)
	return &order, nil
}

func (o memoryOrders) ListByUser(ctx context.Context, userID uuid.UUID, filter model.OrderFilter, limit, offset int) ([]model.Order, error) {
	unlock, err := o.enter("Orders.ListByUser")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var orders []model.Order
	for _, order := range o.data().orders {
		if order.UserID != userID {
			continue
		}
		if filter.Status != "" && order.Status != filter.Status {
			continue
		}
		if filter.PaymentStatus != "" && order.PaymentStatus != filter.PaymentStatus {
			continue
		}
		order.Items = nil
		orders = append(orders, order)
	}
	sort.Slice(orders, func(i, j int) bool {
		if orders[i].CreatedAt.Equal(orders[j].CreatedAt) {
			return orders[i].Number > orders[j].Number
		}
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	if offset >= len(orders) {
		return nil, nil
	}
	orders = orders[offset:]
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (o memoryOrders) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus, at time.Time) error {
	unlock, err := o.enter("Orders.UpdateStatus")
	if err != nil {
		return err
	}
	defer unlock()
	order, ok := o.data().orders[id]
	if !ok {
		return fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
	}
	order.Status = status
	order.UpdatedAt = at
	if status == model.OrderStatusDelivered {
		order.DeliveredAt = &at
	}
	o.data().orders[id] = order
	return nil
}

func (o memoryOrders) MarkPointsCredited(ctx context.Context, id uuid.UUID, at time.Time) error {
	unlock, err := o.enter("Orders.MarkPointsCredited")
	if err != nil {
		return err
	}
	defer unlock()
	order, ok := o.data().orders[id]
	if !ok {
		return fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
	}
	if order.PointsCreditedAt != nil {
		return fmt.Errorf("%w: points of %s already credited", domainErrors.ErrInvalidTransition, order.Number)
	}
	order.PointsCreditedAt = &at
	o.data().orders[id] = order
	return nil
}

func (o memoryOrders) SelectBatchForPayment(ctx context.Context, limit int) ([]model.Order, error) {
	unlock, err := o.enter("Orders.SelectBatchForPayment")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var batch []model.Order
	for _, order := range o.data().orders {
		if order.Status != model.OrderStatusPending {
			continue
		}
		if order.PaymentStatus != model.PaymentStatusPending && order.PaymentStatus != model.PaymentStatusProcessing {
			continue
		}
		order.Items = nil
		batch = append(batch, order)
	}
	sort.Slice(batch, func(i, j int) bool { return batch[i].Number < batch[j].Number })
	if len(batch) > limit {
		batch = batch[:limit]
	}
	for i := range batch {
		stored := o.data().orders[batch[i].ID]
		stored.PaymentStatus = model.PaymentStatusProcessing
		o.data().orders[batch[i].ID] = stored
		batch[i].PaymentStatus = model.PaymentStatusProcessing
	}
	return batch, nil
}

func (o memoryOrders) UpdatePaymentStatus(ctx context.Context, id uuid.UUID, status model.PaymentStatus) error {
	unlock, err := o.enter("Orders.UpdatePaymentStatus")
	if err != nil {
		return err
	}
	defer unlock()
	order, ok := o.data().orders[id]
	if !ok {
		return fmt.Errorf("%w: order %s", domainErrors.ErrNotFound, id)
	}
	order.PaymentStatus = status
	o.data().orders[id] = order
	return nil
}

func (h memoryHistory) Append(ctx context.Context, entry *model.StatusHistoryEntry) error {
	unlock, err := h.enter("History.Append")
	if err != nil {
		return err
	}
	defer unlock()
	h.data().history = append(h.data().history, *entry)
	return nil
}

func (h memoryHistory) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]model.StatusHistoryEntry, error) {
	unlock, err := h.enter("History.ListByOrder")
	if err != nil {
		return nil, err
	}
	defer unlock()
	return h.historyOf(orderID), nil
}

func (v *memoryView) historyOf(orderID uuid.UUID) []model.StatusHistoryEntry {
	var entries []model.StatusHistoryEntry
	for _, e := range v.data().history {
		if e.OrderID == orderID {
			entries = append(entries, e)
		}
	}
	return entries
}

var (
	_ repository.Transactor         = (*MemoryStore)(nil)
	_ repository.Store              = (*MemoryStore)(nil)
	_ repository.CounterRepository  = (*MemoryStore)(nil)
	_ repository.CatalogRepository  = (*MemoryStore)(nil)
	_ repository.Store              = (*memoryView)(nil)
	_ repository.ResourceRepository = memoryResources{}
)
