package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/campuscash/campuscash-go/client"
	apperrors "github.com/campuscash/campuscash-go/pkg/errors"
)

// ProfessorService maps professor operations onto backend endpoints.
type ProfessorService struct {
	client    *client.Client
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProfessorService constructs the professor service.
func NewProfessorService(c *client.Client, validate *validator.Validate, logger *zap.Logger) *ProfessorService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfessorService{client: c, validator: validate, logger: logger}
}

// Profile returns the authenticated professor's profile.
func (s *ProfessorService) Profile(ctx context.Context) (*Professor, error) {
	professor := &Professor{}
	if err := s.client.Get(ctx, epProfessorProfile, professor); err != nil {
		return nil, err
	}
	return professor, nil
}

// UpdateProfile edits the authenticated professor's profile.
func (s *ProfessorService) UpdateProfile(ctx context.Context, req UpdateProfileRequest) (*Professor, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid profile payload")
	}
	professor := &Professor{}
	if err := s.client.Put(ctx, epProfessorProfile, req, professor); err != nil {
		return nil, err
	}
	return professor, nil
}

// Balance returns the professor's distributable coin balance.
func (s *ProfessorService) Balance(ctx context.Context) (*Balance, error) {
	balance := &Balance{}
	if err := s.client.Get(ctx, epProfessorBalance, balance); err != nil {
		return nil, err
	}
	return balance, nil
}

// Statistics returns the professor dashboard aggregates.
func (s *ProfessorService) Statistics(ctx context.Context) (*Statistics, error) {
	stats := &Statistics{}
	if err := s.client.Get(ctx, epProfessorStatistics, stats); err != nil {
		return nil, err
	}
	return stats, nil
}

// Transactions returns the professor's transaction history.
func (s *ProfessorService) Transactions(ctx context.Context) ([]Transaction, error) {
	var transactions []Transaction
	if err := s.client.Get(ctx, epProfessorTransactions, &transactions); err != nil {
		return nil, err
	}
	return transactions, nil
}

// Students lists students the professor can award coins to.
func (s *ProfessorService) Students(ctx context.Context) ([]Student, error) {
	var students []Student
	if err := s.client.Get(ctx, epProfessorStudents, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// SearchStudents filters students by name or registration.
func (s *ProfessorService) SearchStudents(ctx context.Context, query string) ([]Student, error) {
	var students []Student
	endpoint := epProfessorSearchStudents + "?q=" + url.QueryEscape(query)
	if err := s.client.Get(ctx, endpoint, &students); err != nil {
		return nil, err
	}
	return students, nil
}

// GiveCoins awards coins to a student; the backend records a give-type
// transaction against both balances.
func (s *ProfessorService) GiveCoins(ctx context.Context, req GiveCoinsRequest) (*Transaction, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrValidation.Code, apperrors.ErrValidation.Status, "invalid give-coins payload")
	}
	tx := &Transaction{}
	if err := s.client.Post(ctx, epProfessorGiveCoins, req, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// Notifications returns the professor's notifications.
func (s *ProfessorService) Notifications(ctx context.Context) ([]Notification, error) {
	var notifications []Notification
	if err := s.client.Get(ctx, epProfessorNotifications, &notifications); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkNotificationRead flags one notification as read.
func (s *ProfessorService) MarkNotificationRead(ctx context.Context, id int64) error {
	return s.client.Patch(ctx, fmt.Sprintf("%s/%d/read", epProfessorNotifications, id), nil, nil)
}

// MarkAllNotificationsRead flags every notification as read.
func (s *ProfessorService) MarkAllNotificationsRead(ctx context.Context) error {
	return s.client.Patch(ctx, epProfessorNotifications+"/read-all", nil, nil)
}

// UnreadNotificationsCount returns the number of unread notifications.
func (s *ProfessorService) UnreadNotificationsCount(ctx context.Context) (*UnreadCount, error) {
	count := &UnreadCount{}
	if err := s.client.Get(ctx, epProfessorNotifications+"/unread/count", count); err != nil {
		return nil, err
	}
	return count, nil
}
