package server

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/repository"
)

func setupAdapter(t *testing.T) (*RepositoryAdapter, *repository.Repositories) {
	t.Helper()
	repos, err := repository.NewRepositories(context.Background(), repository.Config{
		DSN:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = repos.Close() })
	return NewRepositoryAdapter(repos), repos
}

func TestRepositoryAdapter_SubscriptionAndAttempts(t *testing.T) {
	adapter, repos := setupAdapter(t)
	ctx := context.Background()

	sub := &domain.Subscription{
		OwnerID:     "alice",
		Name:        "ai",
		Keywords:    []string{"ai"},
		Channels:    []domain.Channel{domain.ChannelTelegram},
		Frequency:   domain.Frequency{Kind: domain.FrequencyRealtime},
		ActiveHours: domain.ActiveHours{Start: 0, End: 23},
		IsActive:    true,
	}
	require.NoError(t, adapter.SaveSubscription(ctx, sub))
	require.NotZero(t, sub.ID)

	got, err := adapter.GetSubscription(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, "ai", got.Name)

	_, err = adapter.GetSubscription(ctx, 999)
	require.ErrorIs(t, err, repository.ErrNotFound)

	item := &domain.Item{ExternalID: "x1", Text: "ai news", CreatedAt: time.Now()}
	_, err = repos.Item.CreateItem(ctx, item)
	require.NoError(t, err)

	a, err := domain.NewDeliveryAttempt(domain.AttemptParams{ItemID: item.ID, SubscriptionID: sub.ID,
		OwnerID: "alice", Channel: domain.ChannelTelegram, Content: domain.Content{Title: "t", Body: "b"}})
	require.NoError(t, err)
	require.NoError(t, repos.Attempt.CreateAttempts(ctx, []*domain.DeliveryAttempt{a}))

	stored, err := adapter.GetAttempt(ctx, a.ID)
	require.NoError(t, err)
	require.NoError(t, stored.UpdateInteraction(domain.InteractionFeedback, "useful", time.Now()))
	require.NoError(t, adapter.SaveInteraction(ctx, stored))

	list, err := adapter.SubscriptionAttempts(ctx, sub.ID, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "useful", list[0].Interaction.Feedback)

	items, err := adapter.CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), items)
	total, active, err := adapter.CountSubscriptions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, int64(1), active)
	byStatus, err := adapter.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), byStatus[domain.StatusPending])

	require.NoError(t, repos.Setting.SetSetting(ctx, repository.SettingLastIngest, "2024-06-01T12:00:00Z"))
	v, err := adapter.GetSetting(ctx, repository.SettingLastIngest)
	require.NoError(t, err)
	assert.Equal(t, "2024-06-01T12:00:00Z", v)
}
