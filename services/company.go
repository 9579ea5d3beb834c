package services

import (
	"context"
	"fmt"
	"io"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// CompanyService maps company operations onto backend endpoints, including
// the reward catalog CRUD and point-of-sale coupon validation.
type CompanyService struct {
	client    *client.Client
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCompanyService constructs the company service.
func NewCompanyService(c *client.Client, validate *validator.Validate, logger *zap.Logger) *CompanyService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompanyService{client: c, validator: validate, logger: logger}
}

// Profile returns the authenticated company's profile.
func (s *CompanyService) Profile(ctx context.Context) (*Company, error) {
	company := &Company{}
	if err := s.client.Get(ctx, epCompanyProfile, company); err != nil {
		return nil, err
	}
	return company, nil
}

// UpdateProfile edits the authenticated company's profile.
func (s *CompanyService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Company, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid profile payload")
	}
	company := &Company{}
	if err := s.client.Put(ctx, epCompanyProfile, req, company); err != nil {
		return nil, err
	}
	return company, nil
}

// UploadLogo replaces the company logo image.
func (s *CompanyService) UploadLogo(ctx context.Context, filename string, r io.Reader) (*Company, error) {
	company := &Company{}
	if err := s.client.Upload(ctx, epCompanyLogo, "file", filename, r, company); err != nil {
		return nil, err
	}
	return company, nil
}

// Statistics returns the company dashboard aggregates.
func (s *CompanyService) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	if err := s.client.Get(ctx, epCompanyStatistics, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Validations lists the company's past coupon validations.
func (s *CompanyService) Validations(ctx context.Context) ([]Coupon, error) {
	var validations []Coupon
	if err := s.client.Get(ctx, epCompanyValidations, &validations); err != nil {
		return nil, err
	}
	return validations, nil
}

// Rewards lists the company's own catalog, active and inactive alike.
func (s *CompanyService) Rewards(ctx context.Context) ([]Reward, error) {
	var rewards []Reward
	if err := s.client.Get(ctx, epCompanyRewards, &rewards); err != nil {
		return nil, err
	}
	return rewards, nil
}

// CreateReward adds a catalog entry.
func (s *CompanyService) CreateReward(ctx context.Context, req CreateRewardRequest) (*Reward, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid reward payload")
	}
	reward := &Reward{}
	if err := s.client.Post(ctx, epCompanyRewards, req, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// UpdateReward edits a catalog entry.
func (s *CompanyService) UpdateReward(ctx context.Context, rewardID int64, req UpdateRewardRequest) (*Reward, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid reward payload")
	}
	reward := &Reward{}
	if err := s.client.Patch(ctx, fmt.Sprintf("%s/%d", epCompanyRewards, rewardID), req, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// UpdateRewardStatus toggles a catalog entry between active and inactive.
func (s *CompanyService) UpdateRewardStatus(ctx context.Context, rewardID int64, active bool) (*Reward, error) {
	reward := &Reward{}
	body := map[string]bool{"active": active}
	if err := s.client.Patch(ctx, fmt.Sprintf("%s/%d/status", epCompanyRewards, rewardID), body, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// DeleteReward removes a catalog entry.
func (s *CompanyService) DeleteReward(ctx context.Context, rewardID int64) error {
	return s.client.Delete(ctx, fmt.Sprintf("%s/%d", epCompanyRewards, rewardID), nil)
}

// UploadRewardImage replaces a catalog entry's image.
func (s *CompanyService) UploadRewardImage(ctx context.Context, rewardID int64, filename string, r io.Reader) (*Reward, error) {
	reward := &Reward{}
	endpoint := fmt.Sprintf("%s/%d/image", epCompanyRewards, rewardID)
	if err := s.client.Upload(ctx, endpoint, "file", filename, r, reward); err != nil {
		return nil, err
	}
	return reward, nil
}

// History returns the company's transaction history.
func (s *CompanyService) History(ctx context.Context) ([]Transaction, error) {
	var history []Transaction
	if err := s.client.Get(ctx, epCompanyHistory, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// ValidateCoupon checks a coupon code at the point of sale and marks it used
// when valid.
func (s *CompanyService) ValidateCoupon(ctx context.Context, req ValidateCouponRequest) (*ValidateCouponResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid coupon payload")
	}
	resp := &ValidateCouponResponse{}
	if err := s.client.Post(ctx, epCompanyValidateCoupon, req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// CouponByHash looks a coupon up by its code hash without consuming it.
func (s *CompanyService) CouponByHash(ctx context.Context, hash string) (*Coupon, error) {
	coupon := &Coupon{}
	endpoint := epCompanyCouponByHash + "/" + url.PathEscape(hash)
	if err := s.client.Get(ctx, endpoint, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}
