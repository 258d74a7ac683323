package server

import (
	"context"

	"github.com/umputun/pushscope/pkg/domain"
	"github.com/umputun/pushscope/pkg/repository"
)

// RepositoryAdapter adapts repositories to server.Database interface
type RepositoryAdapter struct {
	repos *repository.Repositories
}

// NewRepositoryAdapter creates a new repository adapter
func NewRepositoryAdapter(repos *repository.Repositories) *RepositoryAdapter {
	return &RepositoryAdapter{repos: repos}
}

// GetAttempt returns attempt by id
func (r *RepositoryAdapter) GetAttempt(ctx context.Context, id string) (*domain.DeliveryAttempt, error) {
	return r.repos.Attempt.GetAttempt(ctx, id)
}

// SaveInteraction stores interaction fields of the attempt
func (r *RepositoryAdapter) SaveInteraction(ctx context.Context, a *domain.DeliveryAttempt) error {
	return r.repos.Attempt.SaveInteraction(ctx, a)
}

// GetSubscription returns subscription by id
func (r *RepositoryAdapter) GetSubscription(ctx context.Context, id int64) (*domain.Subscription, error) {
	return r.repos.Subscription.GetSubscription(ctx, id)
}

// SaveSubscription creates or updates subscription rules
func (r *RepositoryAdapter) SaveSubscription(ctx context.Context, sub *domain.Subscription) error {
	return r.repos.Subscription.SaveSubscription(ctx, sub)
}

// SubscriptionAttempts returns recent attempts of the subscription
func (r *RepositoryAdapter) SubscriptionAttempts(ctx context.Context, subscriptionID int64, limit int) ([]*domain.DeliveryAttempt, error) {
	return r.repos.Attempt.SubscriptionAttempts(ctx, subscriptionID, limit)
}

// CountItems returns number of stored items
func (r *RepositoryAdapter) CountItems(ctx context.Context) (int64, error) {
	return r.repos.Item.CountItems(ctx)
}

// CountSubscriptions returns total and active subscription counts
func (r *RepositoryAdapter) CountSubscriptions(ctx context.Context) (total, active int64, err error) {
	return r.repos.Subscription.CountSubscriptions(ctx)
}

// CountByStatus returns attempt counts grouped by status
func (r *RepositoryAdapter) CountByStatus(ctx context.Context) (map[domain.AttemptStatus]int64, error) {
	return r.repos.Attempt.CountByStatus(ctx)
}

// GetSetting returns a setting value, empty if not set
func (r *RepositoryAdapter) GetSetting(ctx context.Context, key string) (string, error) {
	return r.repos.Setting.GetSetting(ctx, key)
}
