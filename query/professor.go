package query

import (
	"context"

	"github.com/campuscash/campuscash-go/services"
)

// ProfessorQueries wraps the professor service in cached queries and
// declares the invalidation edges of the give-coins write path.
type ProfessorQueries struct {
	svc     *services.ProfessorService
	queries *Client
}

// NewProfessorQueries constructs the professor wrapper.
func NewProfessorQueries(svc *services.ProfessorService, queries *Client) *ProfessorQueries {
	return &ProfessorQueries{svc: svc, queries: queries}
}

// Profile returns the cached professor profile.
func (q *ProfessorQueries) Profile(ctx context.Context) (*services.Professor, error) {
	professor := &services.Professor{}
	err := q.queries.Fetch(ctx, KeyProfessorProfile, professor, func(ctx context.Context) (interface{}, error) {
		return q.svc.Profile(ctx)
	})
	if err != nil {
		return nil, err
	}
	return professor, nil
}

// Balance returns the cached distributable balance.
func (q *ProfessorQueries) Balance(ctx context.Context) (*services.Balance, error) {
	balance := &services.Balance{}
	err := q.queries.Fetch(ctx, KeyProfessorBalance, balance, func(ctx context.Context) (interface{}, error) {
		return q.svc.Balance(ctx)
	})
	if err != nil {
		return nil, err
	}
	return balance, nil
}

// Statistics returns the cached dashboard aggregates.
func (q *ProfessorQueries) Statistics(ctx context.Context) (*services.Statistics, error) {
	stats := &services.Statistics{}
	err := q.queries.Fetch(ctx, KeyProfessorStatistics, stats, func(ctx context.Context) (interface{}, error) {
		return q.svc.Statistics(ctx)
	})
	if err != nil {
		return nil, err
	}
	return stats, nil
}

// Transactions returns the cached transaction history.
func (q *ProfessorQueries) Transactions(ctx context.Context) ([]services.Transaction, error) {
	var transactions []services.Transaction
	err := q.queries.Fetch(ctx, KeyProfessorTransactions, &transactions, func(ctx context.Context) (interface{}, error) {
		return q.svc.Transactions(ctx)
	})
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// Students returns the cached student roster.
func (q *ProfessorQueries) Students(ctx context.Context) ([]services.Student, error) {
	var students []services.Student
	err := q.queries.Fetch(ctx, KeyProfessorStudents, &students, func(ctx context.Context) (interface{}, error) {
		return q.svc.Students(ctx)
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// SearchStudents returns a cached filtered roster, keyed per search term.
func (q *ProfessorQueries) SearchStudents(ctx context.Context, term string) ([]services.Student, error) {
	var students []services.Student
	key := K("professor", "search-students", term)
	err := q.queries.Fetch(ctx, key, &students, func(ctx context.Context) (interface{}, error) {
		return q.svc.SearchStudents(ctx, term)
	})
	if err != nil {
		return nil, err
	}
	return students, nil
}

// UpdateProfile edits the profile and refreshes the cached copy.
func (q *ProfessorQueries) UpdateProfile(ctx context.Context, req services.UpdateProfileRequest) (*services.Professor, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "professor.update_profile",
		Invalidates:    []Key{KeyProfessorProfile},
		SuccessMessage: "profile updated",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.UpdateProfile(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Professor), nil
}

// GiveCoins awards coins to a student. Success invalidates the professor's
// balance, transaction history, and statistics together.
func (q *ProfessorQueries) GiveCoins(ctx context.Context, req services.GiveCoinsRequest) (*services.Transaction, error) {
	value, err := q.queries.Mutate(ctx, Mutation{
		Name:           "professor.give_coins",
		Invalidates:    []Key{KeyProfessorBalance, KeyProfessorTransactions, KeyProfessorStatistics},
		SuccessMessage: "coins awarded",
	}, func(ctx context.Context) (interface{}, error) {
		return q.svc.GiveCoins(ctx, req)
	})
	if err != nil {
		return nil, err
	}
	return value.(*services.Transaction), nil
}
