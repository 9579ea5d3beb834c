package services

import (
	"context"
	"fmt"
	"io"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// StudentService maps student operations onto backend endpoints.
type StudentService struct {
	client    *client.Client
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentService constructs the student service.
func NewStudentService(c *client.Client, validate *validator.Validate, logger *zap.Logger) *StudentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentService{client: c, validator: validate, logger: logger}
}

// Profile returns the authenticated student's profile.
func (s *StudentService) Profile(ctx context.Context) (*Student, error) {
	student := &Student{}
	if err := s.client.Get(ctx, epStudentProfile, student); err != nil {
		return nil, err
	}
	return student, nil
}

// UpdateProfile edits the authenticated student's profile.
func (s *StudentService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Student, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid profile payload")
	}
	student := &Student{}
	if err := s.client.Put(ctx, epStudentProfile, req, student); err != nil {
		return nil, err
	}
	return student, nil
}

// UploadAvatar replaces the student's avatar image.
func (s *StudentService) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*Student, error) {
	student := &Student{}
	if err := s.client.Upload(ctx, epStudentAvatar, "file", filename, r, student); err != nil {
		return nil, err
	}
	return student, nil
}

// Balance returns the student coin balance.
func (s *StudentService) Balance(ctx context.Context) (*Balance, error) {
	balance := &Balance{}
	if err := s.client.Get(ctx, epStudentBalance, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// Statistics returns the student dashboard aggregates.
func (s *StudentService) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	if err := s.client.Get(ctx, epStudentStatistics, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Transactions returns the student's transaction history.
func (s *StudentService) Transactions(ctx context.Context) ([]Transaction, error) {
	var transactions []Transaction
	if err := s.client.Get(ctx, epStudentTransactions, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Redeem exchanges coins for a reward. The coupon and its redeem transaction
// are created atomically by the backend.
func (s *StudentService) Redeem(ctx context.Context, rewardID int64) (*Coupon, error) {
	req := RedeemRequest{RewardID: rewardID}
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid redeem payload")
	}
	coupon := &Coupon{}
	if err := s.client.Post(ctx, epStudentRedeem, req, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

// Coupons returns the student's issued coupons.
func (s *StudentService) Coupons(ctx context.Context) ([]Coupon, error) {
	var coupons []Coupon
	if err := s.client.Get(ctx, epStudentCoupons, &coupons); err != nil {
		return nil, err
	}
	return coupons, nil
}

// Notifications returns the student's notifications.
func (s *StudentService) Notifications(ctx context.Context) ([]Notification, error) {
	var notifications []Notification
	if err := s.client.Get(ctx, epStudentNotifications, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags one notification as read.
func (s *StudentService) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.client.Patch(ctx, fmt.Sprintf("%s/%d/read", epStudentNotifications, id), nil, nil)
}

// MarkAllNotificationsRead flags every notification as read.
func (s *StudentService) MarkAllNotificationsRead(ctx context.Context) error {
	return s.client.Patch(ctx, epStudentNotifications+"/read-all", nil, nil)
}

// UnreadNotificationsCount returns the number of unread notifications.
func (s *StudentService) UnreadNotificationsCount(ctx context.Context) (*UnreadCount, error) {
	count := &UnreadCount{}
	if err := s.client.Get(ctx, epStudentNotifications+"/unread/count", count); err != nil {
		return nil, err
	}
	return count, nil
}
