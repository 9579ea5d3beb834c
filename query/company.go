package query

import (
	"context"
	"io"

	"github.com/campuscash/campuscash-go/services"
)

// CompanyQueries wraps the company service in cached queries and declares
// the invalidation edges of the reward catalog write paths.
type CompanyQueries struct {
	svc     *services.CompanyService
	queries *Client
}

// NewCompanyQueries constructs the company wrapper.
func NewCompanyQueries(svc *services.CompanyService, queries *Client) *CompanyQueries {
	return &CompanyQueries{svc: svc, queries: queries}
}

// Profile returns the cached company profile.
func (q *CompanyQueries) Profile(ctx context.Context) (*services.Company, error) {
	company := &services.Company{}
	err := q.queries.Fetch(ctx, KeyCompanyProfile, company, func(ctx context.Context) (interface{}, error) {
		return q.svc.Profile(ctx)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

// Statistics returns the cached dashboard aggregates.
func (q *CompanyQueries) Statistics(ctx context.Context) (*services.Statistics, error) {
	stats := &services.Statistics{}
	err := q.queries.Fetch(ctx, KeyCompanyStatistics, stats, func(ctx context.Context) (interface{}, error) {
		return q.svc.Statistics(ctx)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Rewards returns the cached reward catalog, active and inactive alike.
func (q *CompanyQueries) Rewards(ctx context.Context) ([]services.Reward, error) {
	var rewards []services.Reward
	err := q.queries.Fetch(ctx, KeyCompanyRewards, &rewards, func(ctx context.Context) (interface{}, error) {
		return q.svc.Rewards(ctx)
	})
	if err != nil {
		return nil, err
	}
	return rewards, nil
}

// Validations returns the cached coupon validation history.
func (q *CompanyQueries) Validations(ctx context.Context) ([]services.Coupon, error) {
	var validations []services.Coupon
	err := q.queries.Fetch(ctx, KeyCompanyValidations, &validations, func(ctx context.Context) (interface{}, error) {
		return q.svc.Validations(ctx)
	})
	if err != nil {
		return nil, err
	}
	return validations, nil
}

// History returns the cached transaction history.
func (q *CompanyQueries) History(ctx context.Context) ([]services.Transaction, error) {
	var history []services.Transaction
	err := q.queries.Fetch(ctx, KeyCompanyHistory, &history, func(ctx context.Context) (interface{}, error) {
		return q.svc.History(ctx)
	})
	if err != nil {
		return nil, err
	}
	return history, nil
}

// UpdateProfile edits the profile and refreshes the cached copy.
func (q *CompanyQueries) UpdateProfile(ctx context.Context, req services.UpdateProfileRequest) (*services.Company, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "company.update_profile",
		Invalidates:    []Key{KeyCompanyProfile},
		SuccessMessage: "profile updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UpdateProfile(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Company), nil
}

// UploadLogo replaces the logo and refreshes the cached profile.
func (q *CompanyQueries) UploadLogo(ctx context.Context, filename string, r io.Reader) (*services.Company, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "company.upload_logo",
		Invalidates:    []Key{KeyCompanyProfile},
		SuccessMessage: "logo updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UploadLogo(ctx, filename, r)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Company), nil
}

// CreateReward adds a catalog entry. The catalog count changed, so the
// statistics go stale along with the listing.
func (q *CompanyQueries) CreateReward(ctx context.Context, req services.CreateRewardRequest) (*services.Reward, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "company.create_reward",
		Invalidates:    []Key{KeyCompanyRewards, KeyCompanyStatistics},
		SuccessMessage: "reward created",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.CreateReward(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Reward), nil
}

// UpdateReward edits a catalog entry.
func (q *CompanyQueries) UpdateReward(ctx context.Context, rewardID int64, req services.UpdateRewardRequest) (*services.Reward, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "company.update_reward",
		Invalidates:    []Key{KeyCompanyRewards},
		SuccessMessage: "reward updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UpdateReward(ctx, rewardID, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Reward), nil
}

// UpdateRewardStatus toggles a catalog entry between active and inactive.
func (q *CompanyQueries) UpdateRewardStatus(ctx context.Context, rewardID int64, active bool) (*services.Reward, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "company.update_reward_status",
		Invalidates:    []Key{KeyCompanyRewards},
		SuccessMessage: "reward status updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UpdateRewardStatus(ctx, rewardID, active)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Reward), nil
}

// DeleteReward removes a catalog entry, invalidating the listing and the
// statistics whose count it changed.
func (q *CompanyQueries) DeleteReward(ctx context.Context, rewardID int64) error {
	_, err := q.queries.Mutate(ctx, Mutation{
		Name:           "company.delete_reward",
		Invalidates:    []Key{KeyCompanyRewards, KeyCompanyStatistics},
		SuccessMessage: "reward deleted",
	}, func(ctx context.Context) (interface{}, error) {
		return nil, q.svc.DeleteReward(ctx, rewardID)
	})
	return err
}

// UploadRewardImage replaces a catalog entry's image.
func (q *CompanyQueries) UploadRewardImage(ctx context.Context, rewardID int64, filename string, r io.Reader) (*services.Reward, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "company.upload_reward_image",
		Invalidates:    []Key{KeyCompanyRewards},
		SuccessMessage: "reward image updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UploadRewardImage(ctx, rewardID, filename, r)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Reward), nil
}

// ValidateCoupon checks a coupon at the point of sale. It invalidates
// nothing: validity is reported in the response itself, and the validation
// history is refreshed on its own schedule.
func (q *CompanyQueries) ValidateCoupon(ctx context.Context, req services.ValidateCouponRequest) (*services.ValidateCouponResponse, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name: "company.validate_coupon",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.ValidateCoupon(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.ValidateCouponResponse), nil
}
