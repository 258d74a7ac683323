package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pushscope/pkg/domain"
)

func TestSubscriptionRepository_SaveAndGet(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	sub := &domain.Subscription{
		OwnerID:         "user-1",
		Name:            "go news",
		Keywords:        []string{"golang", "go 1.23"},
		ExcludeKeywords: []string{"job"},
		MinLikes:        5,
		MinRetweets:     1,
		MediaMode:       domain.AttachmentRequired,
		LinkMode:        domain.AttachmentExcluded,
		Languages:       []string{"en", "de"},
		Channels:        []domain.Channel{domain.ChannelTelegram, domain.ChannelWebhook},
		Frequency:       domain.Frequency{Kind: domain.FrequencyInterval, Interval: 15 * time.Minute},
		ActiveHours:     domain.ActiveHours{Start: 22, End: 6},
		Timezone:        "Europe/Berlin",
		IsActive:        true,
		CreatedAt:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repos.Subscription.SaveSubscription(ctx, sub))
	require.NotZero(t, sub.ID)

	got, err := repos.Subscription.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, sub.Keywords, got.Keywords)
	assert.Equal(t, sub.ExcludeKeywords, got.ExcludeKeywords)
	assert.Equal(t, sub.Languages, got.Languages)
	assert.Equal(t, sub.Channels, got.Channels)
	assert.Equal(t, sub.Frequency, got.Frequency)
	assert.Equal(t, sub.ActiveHours, got.ActiveHours)
	assert.Equal(t, sub.MediaMode, got.MediaMode)
	assert.Equal(t, sub.LinkMode, got.LinkMode)
	assert.Equal(t, "Europe/Berlin", got.Timezone)
	assert.Equal(t, int64(5), got.MinLikes)
	assert.True(t, got.IsActive)
	assert.True(t, sub.CreatedAt.Equal(got.CreatedAt))

	t.Run("update keeps statistics", func(t *testing.T) {
		require.NoError(t, repos.Subscription.IncrementMatch(ctx, sub.ID, time.Now()))
		sub.Name = "renamed"
		sub.Keywords = []string{"rust"}
		require.NoError(t, repos.Subscription.SaveSubscription(ctx, sub))

		got, err := repos.Subscription.GetSubscription(ctx, sub.ID)
		require.NoError(t, err)
		assert.Equal(t, "renamed", got.Name)
		assert.Equal(t, []string{"rust"}, got.Keywords)
		assert.Equal(t, int64(1), got.Stats.MatchCount)
	})

	t.Run("invalid subscription rejected", func(t *testing.T) {
		bad := &domain.Subscription{OwnerID: "u", IsActive: true, Channels: []domain.Channel{domain.ChannelEmail},
			Frequency: domain.Frequency{Kind: domain.FrequencyRealtime}}
		err := repos.Subscription.SaveSubscription(ctx, bad)
		require.Error(t, err)
		assert.True(t, domain.IsValidation(err))
		assert.Zero(t, bad.ID)
	})

	t.Run("update of missing subscription", func(t *testing.T) {
		missing := *sub
		missing.ID = 9999
		require.ErrorIs(t, repos.Subscription.SaveSubscription(ctx, &missing), ErrNotFound)
	})

	t.Run("get missing subscription", func(t *testing.T) {
		_, err := repos.Subscription.GetSubscription(ctx, 9999)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubscriptionRepository_ActiveSubscriptions(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()

	first := createTestSubscription(t, repos)
	second := createTestSubscription(t, repos)
	inactive := &domain.Subscription{OwnerID: "user-2", Frequency: domain.Frequency{Kind: domain.FrequencyDaily}}
	require.NoError(t, repos.Subscription.SaveSubscription(ctx, inactive))

	subs, err := repos.Subscription.ActiveSubscriptions(ctx)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, first.ID, subs[0].ID)
	assert.Equal(t, second.ID, subs[1].ID)

	total, active, err := repos.Subscription.CountSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, int64(2), active)
}

func TestSubscriptionRepository_ConcurrentIncrements(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	sub := createTestSubscription(t, repos)
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	const workers = 20
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, repos.Subscription.IncrementMatch(ctx, sub.ID, now.Add(time.Duration(i)*time.Second)))
			assert.NoError(t, repos.Subscription.IncrementPush(ctx, sub.ID, now))
		}()
	}
	wg.Wait()

	got, err := repos.Subscription.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(workers), got.Stats.MatchCount)
	assert.Equal(t, int64(workers), got.Stats.PushCount)
	require.NotNil(t, got.Stats.LastMatchAt)
	require.NotNil(t, got.Stats.LastPushAt)
	assert.True(t, now.Equal(*got.Stats.LastPushAt))
}

func TestSubscriptionRepository_UpdateLastProcessed(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	sub := createTestSubscription(t, repos)

	require.NoError(t, repos.Subscription.UpdateLastProcessed(ctx, sub.ID, "tw-42"))
	got, err := repos.Subscription.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "tw-42", got.LastProcessedItemID)
}

func TestSubscriptionRepository_Deactivate(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	sub := createTestSubscription(t, repos)
	item := createTestItem(t, repos, "tw-1", now)

	pending := newRepoAttempt(t, item.ID, sub.ID, now)
	sending := newRepoAttempt(t, item.ID, sub.ID, now)
	failed := newRepoAttempt(t, item.ID, sub.ID, now)
	done := newRepoAttempt(t, item.ID, sub.ID, now)
	require.NoError(t, repos.Attempt.CreateAttempts(ctx, []*domain.DeliveryAttempt{pending, sending, failed, done}))

	require.NoError(t, repos.Attempt.ClaimAttempt(ctx, sending, now))
	require.NoError(t, repos.Attempt.ClaimAttempt(ctx, failed, now))
	require.NoError(t, failed.MarkFailed(now, "timeout", "timeout", ""))
	require.NoError(t, repos.Attempt.SaveAttempt(ctx, failed, domain.StatusSending))
	require.NoError(t, repos.Attempt.ClaimAttempt(ctx, done, now))
	require.NoError(t, done.MarkSuccess(now, "m1", 0, ""))
	require.NoError(t, repos.Attempt.SaveAttempt(ctx, done, domain.StatusSending))

	cancelled, err := repos.Subscription.DeactivateSubscription(ctx, sub.ID, now.Add(time.Minute), "subscription deactivated")
	require.NoError(t, err)
	assert.Equal(t, int64(2), cancelled)

	got, err := repos.Subscription.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.False(t, got.IsActive)

	for _, a := range []*domain.DeliveryAttempt{pending, sending} {
		stored, err := repos.Attempt.GetAttempt(ctx, a.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, stored.Status)
		assert.Equal(t, "subscription deactivated", stored.CancelReason)
	}

	storedFailed, err := repos.Attempt.GetAttempt(ctx, failed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, storedFailed.Status)
	assert.False(t, storedFailed.CanRetry())

	storedDone, err := repos.Attempt.GetAttempt(ctx, done.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSuccess, storedDone.Status)

	t.Run("late dispatcher result loses", func(t *testing.T) {
		require.NoError(t, sending.MarkSuccess(now.Add(2*time.Minute), "m2", 0, ""))
		err := repos.Attempt.SaveAttempt(ctx, sending, domain.StatusSending)
		require.ErrorIs(t, err, ErrStateConflict)
		stored, err := repos.Attempt.GetAttempt(ctx, sending.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.StatusCancelled, stored.Status)
	})

	t.Run("missing subscription", func(t *testing.T) {
		_, err := repos.Subscription.DeactivateSubscription(ctx, 9999, now, "x")
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestSubscriptionRepository_SaveInactiveCancelsAttempts(t *testing.T) {
	repos := setupTestDB(t)
	ctx := context.Background()
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	sub := createTestSubscription(t, repos)
	other := createTestSubscription(t, repos)
	item := createTestItem(t, repos, "tw-1", now)

	pending := newRepoAttempt(t, item.ID, sub.ID, now)
	otherPending := newRepoAttempt(t, item.ID, other.ID, now)
	require.NoError(t, repos.Attempt.CreateAttempts(ctx, []*domain.DeliveryAttempt{pending, otherPending}))

	due, err := repos.Attempt.DueAttempts(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 2)

	sub.IsActive = false
	require.NoError(t, repos.Subscription.SaveSubscription(ctx, sub))

	stored, err := repos.Attempt.GetAttempt(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCancelled, stored.Status)
	assert.Equal(t, "subscription deactivated", stored.CancelReason)

	storedOther, err := repos.Attempt.GetAttempt(ctx, otherPending.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, storedOther.Status)

	due, err = repos.Attempt.DueAttempts(ctx, now, 10)
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, otherPending.ID, due[0].ID)

	t.Run("due attempts skip inactive subscriptions", func(t *testing.T) {
		// attempt created after deactivation, bypassing the cancellation
		late := newRepoAttempt(t, item.ID, sub.ID, now)
		require.NoError(t, repos.Attempt.CreateAttempts(ctx, []*domain.DeliveryAttempt{late}))

		due, err := repos.Attempt.DueAttempts(ctx, now, 10)
		require.NoError(t, err)
		require.Len(t, due, 1)
		assert.Equal(t, otherPending.ID, due[0].ID)
	})
}
