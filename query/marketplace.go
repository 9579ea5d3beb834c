package query

import (
	"context"
	"strconv"

	"github.com/campuscash/campuscash-go/services"
)

// MarketplaceQueries caches the public catalog reads. There are no write
// paths here, so no invalidation edges either.
type MarketplaceQueries struct {
	svc     *services.MarketplaceService
	queries *Client
}

// NewMarketplaceQueries constructs the marketplace wrapper.
func NewMarketplaceQueries(svc *services.MarketplaceService, queries *Client) *MarketplaceQueries {
	return &MarketplaceQueries{svc: svc, queries: queries}
}

// Rewards returns the cached reward listing, keyed per filter combination.
func (q *MarketplaceQueries) Rewards(ctx context.Context, filters *services.RewardFilters) ([]services.Reward, error) {
	key := KeyMarketplaceRewards
	if encoded := filters.Encode(); encoded != "" {
		key = K("marketplace", "rewards", encoded)
	}

	var rewards []services.Reward
	err := q.queries.Fetch(ctx, key, &rewards, func(ctx context.Context) (interface{}, error) {
		return q.svc.Rewards(ctx, filters)
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

// RewardByID returns one cached catalog entry.
func (q *MarketplaceQueries) RewardByID(ctx context.Context, id int64) (*services.Reward, error) {
	reward := &services.Reward{}
	key := K("marketplace", "reward", strconv.FormatInt(id, 10))
	err := q.queries.Fetch(ctx, key, reward, func(ctx context.Context) (interface{}, error) {
		return q.svc.RewardByID(ctx, id)
	})
	if err != nil {
		return nil, err
	}
	return reward, nil
}

// Institutions returns the cached institution catalog.
func (q *MarketplaceQueries) Institutions(ctx context.Context) ([]services.Institution, error) {
	var institutions []services.Institution
	err := q.queries.Fetch(ctx, KeyMarketplaceInstitutions, &institutions, func(ctx context.Context) (interface{}, error) {
		return q.svc.Institutions(ctx)
	})
	if err != nil {
		return nil, err
	}
	return institutions, nil
}
