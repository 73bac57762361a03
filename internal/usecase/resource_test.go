package usecase

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/polkiloo/orderengine/internal/domain/errors"
	"github.com/polkiloo/orderengine/internal/domain/model"
)

func TestResourceSetDefault(t *testing.T) {
	f := newFixture(t, model.TransitionPolicy{})
	ctx := context.Background()
	userID := f.store.AddUser(0, nil)
	home := f.store.AddResource(model.ResourceAddress, userID, true)
	work := f.store.AddResource(model.ResourceAddress, userID, false)
	card := f.store.AddResource(model.ResourcePaymentMethod, userID, true)

	require.NoError(t, f.resources.SetDefault(ctx, userID, work, model.ResourceAddress))
	assert.Equal(t, []uuid.UUID{work}, f.store.Defaults(model.ResourceAddress, userID))
	assert.Equal(t, []uuid.UUID{card}, f.store.Defaults(model.ResourcePaymentMethod, userID))

	require.NoError(t, f.resources.SetDefault(ctx, userID, work, model.ResourceAddress))
	assert.Equal(t, []uuid.UUID{work}, f.store.Defaults(model.ResourceAddress, userID))

	require.NoError(t, f.resources.SetDefault(ctx, userID, home, model.ResourceAddress))
	assert.Equal(t, []uuid.UUID{home}, f.store.Defaults(model.ResourceAddress, userID))
}

func TestResourceSetDefaultRejections(t *testing.T) {
	f := newFixture(t, model.TransitionPolicy{})
	ctx := context.Background()
	owner := f.store.AddUser(0, nil)
	other := f.store.AddUser(0, nil)
	address := f.store.AddResource(model.ResourceAddress, owner, false)

	err := f.resources.SetDefault(ctx, other, address, model.ResourceAddress)
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
	assert.Empty(t, f.store.Defaults(model.ResourceAddress, owner))

	err = f.resources.SetDefault(ctx, owner, address, model.ResourcePaymentMethod)
	require.ErrorIs(t, err, domainErrors.ErrNotFound)

	err = f.resources.SetDefault(ctx, owner, address, "PHONE")
	require.ErrorIs(t, err, domainErrors.ErrValidation)

	err = f.resources.SetDefault(ctx, uuid.New(), address, model.ResourceAddress)
	require.ErrorIs(t, err, domainErrors.ErrNotFound)
}

func TestResourceSetDefaultRepairsDuplicates(t *testing.T) {
	f := newFixture(t, model.TransitionPolicy{})
	userID := f.store.AddUser(0, nil)
	first := f.store.AddResource(model.ResourcePaymentMethod, userID, true)
	f.store.AddResource(model.ResourcePaymentMethod, userID, true)

	require.NoError(t, f.resources.SetDefault(context.Background(), userID, first, model.ResourcePaymentMethod))
	assert.Equal(t, []uuid.UUID{first}, f.store.Defaults(model.ResourcePaymentMethod, userID))
}

func TestResourceSetDefaultConcurrent(t *testing.T) {
	f := newFixture(t, model.TransitionPolicy{})
	userID := f.store.AddUser(0, nil)
	ids := make([]uuid.UUID, 5)
	for i := range ids {
		ids[i] = f.store.AddResource(model.ResourceAddress, userID, i == 0)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			assert.NoError(t, f.resources.SetDefault(context.Background(), userID, id, model.ResourceAddress))
		}(ids[i%len(ids)])
	}
	wg.Wait()

	assert.Len(t, f.store.Defaults(model.ResourceAddress, userID), 1)
}
