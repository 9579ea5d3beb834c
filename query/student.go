package query

import (
	"context"
	"io"

	"github.com/campuscash/campuscash-go/services"
)

// StudentQueries wraps the student service in cached queries and declares
// the invalidation edges of the student write paths.
type StudentQueries struct {
	svc     *services.StudentService
	queries *Client
}

// NewStudentQueries constructs the student wrapper.
func NewStudentQueries(svc *services.StudentService, queries *Client) *StudentQueries {
	return &StudentQueries{svc: svc, queries: queries}
}

// Profile returns the cached student profile.
func (q *StudentQueries) Profile(ctx context.Context) (*services.Student, error) {
	student := &services.Student{}
	err := q.queries.Fetch(ctx, KeyStudentProfile, student, func(ctx context.Context) (interface{}, error) {
		return q.svc.Profile(ctx)
	})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// Balance returns the cached coin balance.
func (q *StudentQueries) Balance(ctx context.Context) (*services.Balance, error) {
	balance := &services.Balance{}
	err := q.queries.Fetch(ctx, KeyStudentBalance, balance, func(ctx context.Context) (interface{}, error) {
		return q.svc.Balance(ctx)
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// Statistics returns the cached dashboard aggregates.
func (q *StudentQueries) Statistics(ctx context.Context) (*services.Statistics, error) {
	stats := &services.Statistics{}
	err := q.queries.Fetch(ctx, KeyStudentStatistics, stats, func(ctx context.Context) (interface{}, error) {
		return q.svc.Statistics(ctx)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Transactions returns the cached transaction history.
func (q *StudentQueries) Transactions(ctx context.Context) ([]services.Transaction, error) {
	var transactions []services.Transaction
	err := q.queries.Fetch(ctx, KeyStudentTransactions, &transactions, func(ctx context.Context) (interface{}, error) {
		return q.svc.Transactions(ctx)
	})
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// Coupons returns the cached issued coupons.
func (q *StudentQueries) Coupons(ctx context.Context) ([]services.Coupon, error) {
	var coupons []services.Coupon
	err := q.queries.Fetch(ctx, KeyStudentCoupons, &coupons, func(ctx context.Context) (interface{}, error) {
		return q.svc.Coupons(ctx)
	})
	if err != nil {
		return nil, err
	}
	return coupons, nil
}

// UpdateProfile edits the profile and refreshes the cached copy.
func (q *StudentQueries) UpdateProfile(ctx context.Context, req services.UpdateProfileRequest) (*services.Student, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "student.update_profile",
		Invalidates:    []Key{KeyStudentProfile},
		SuccessMessage: "profile updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UpdateProfile(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Student), nil
}

// UploadAvatar replaces the avatar and refreshes the cached profile.
func (q *StudentQueries) UploadAvatar(ctx context.Context, filename string, r io.Reader) (*services.Student, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "student.upload_avatar",
		Invalidates:    []Key{KeyStudentProfile},
		SuccessMessage: "avatar updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UploadAvatar(ctx, filename, r)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Student), nil
}

// Redeem exchanges coins for a reward. On success the balance, transaction
// history, and coupon list are all stale and get invalidated together; on
// failure none of them are touched.
func (q *StudentQueries) Redeem(ctx context.Context, rewardID int64) (*services.Coupon, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "student.redeem",
		Invalidates:    []Key{KeyStudentBalance, KeyStudentTransactions, KeyStudentCoupons},
		SuccessMessage: "reward redeemed",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.Redeem(ctx, rewardID)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Coupon), nil
}
