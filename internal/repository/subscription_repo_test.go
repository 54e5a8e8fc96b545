package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/bio_go_server/internal/model"
	"github.com/qs3c/bio_go_server/internal/testutil"
)

func TestSubscriptionRepository_Upsert(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewSubscriptionRepository(db)
	user := testutil.TestUser(t, db)
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, &model.Subscription{
		UserID:               user.ID,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
		Status:               model.SubscriptionStatusActive,
	}))
	require.NoError(t, repo.Upsert(ctx, &model.Subscription{
		UserID:               user.ID,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
		Status:               model.SubscriptionStatusActive,
	}))

	var rows int64
	require.NoError(t, db.Model(&model.Subscription{}).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	active, err := repo.CountActiveByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), active)

	require.NoError(t, repo.Upsert(ctx, &model.Subscription{
		UserID:               user.ID,
		StripeCustomerID:     "cus_1",
		StripeSubscriptionID: "sub_1",
		Status:               model.SubscriptionStatusCanceled,
	}))

	sub, err := repo.GetBySubscriptionID(ctx, "sub_1")
	require.NoError(t, err)
	assert.Equal(t, model.SubscriptionStatusCanceled, sub.Status)

	active, err = repo.CountActiveByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), active)

	_, err = repo.GetBySubscriptionID(ctx, "sub_missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBillingEventRepository(t *testing.T) {
	db := testutil.SetupTestDB(t)
	defer testutil.CleanupTestDB(t, db)

	repo := NewBillingEventRepository(db)
	ctx := context.Background()

	processed, err := repo.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.False(t, processed)

	require.NoError(t, repo.MarkProcessed(ctx, "evt_1", "checkout.session.completed"))
	require.NoError(t, repo.MarkProcessed(ctx, "evt_1", "checkout.session.completed"))

	processed, err = repo.IsProcessed(ctx, "evt_1")
	require.NoError(t, err)
	assert.True(t, processed)
}
