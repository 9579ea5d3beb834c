package services

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
)

// MarketplaceService maps the public catalog reads onto backend endpoints.
// None of them require authentication.
type MarketplaceService struct {
	client *client.Client
	logger *zap.Logger
}

// NewMarketplaceService constructs the marketplace service.
func NewMarketplaceService(c *client.Client, logger *zap.Logger) *MarketplaceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MarketplaceService{client: c, logger: logger}
}

// Rewards lists active rewards, optionally filtered and sorted.
func (s *MarketplaceService) Rewards(ctx context.Context, filters *RewardFilters) ([]Reward, error) {
	endpoint := epMarketplaceRewards
	if query := filters.Encode(); query != "" {
		endpoint += "?" + query
	}

	var rewards []Reward
	if err := s.client.Get(ctx, endpoint, &rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

// RewardByID returns a single catalog entry.
func (s *MarketplaceService) RewardByID(ctx context.Context, id int64) (*Reward, error) {
	reward := &Reward{}
	if err := s.client.Get(ctx, fmt.Sprintf("%s/%d", epMarketplaceRewards, id), reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// Institutions lists institutions for the signup forms.
func (s *MarketplaceService) Institutions(ctx context.Context) ([]Institution, error) {
	var institutions []Institution
	if err := s.client.Get(ctx, epMarketplaceInstitutions, &institutions); err != nil {
		return nil, err
	}
	return institutions, nil
}

// Encode builds the wire-level query string the backend expects. The "todas"
// category sentinel means no category filter. The encoding is stable, so it
// doubles as a cache key segment for filtered listings.
func (f *RewardFilters) Encode() string {
	if f == nil {
		return ""
	}

	params := url.Values{}
	if f.Category != "" && f.Category != "todas" {
		params.Set("categoria", f.Category)
	}
	if f.PriceMin > 0 {
		params.Set("precoMin", strconv.FormatInt(f.PriceMin, 10))
	}
	if f.PriceMax > 0 {
		params.Set("precoMax", strconv.FormatInt(f.PriceMax, 10))
	}
	if f.Sort != "" {
		params.Set("ordenacao", string(f.Sort))
	}
	return params.Encode()
}
