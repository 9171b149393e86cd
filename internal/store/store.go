// internal/store/store.go
package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	custom_errors "repo-tracker/internal/errors"
	"repo-tracker/internal/model"
)

// SubscriptionStore defines the persistence operations for subscription records.
type SubscriptionStore interface {
	ListByUser(ctx context.Context, userID string) ([]model.Subscription, error)
	Create(ctx context.Context, userID, repo, plan string) (model.Subscription, error)
	GetByID(ctx context.Context, id string) (model.Subscription, error)
	Update(ctx context.Context, id string, fields UpdateFields) (model.Subscription, error)
	Delete(ctx context.Context, id string) error
}

// UpdateFields carries the optional fields of a partial update. Nil
// fields are left unchanged.
type UpdateFields struct {
	Repo   *string `json:"repo"`
	Plan   *string `json:"plan"`
	Status *string `json:"status"`
}

// Store is a pgx-backed SubscriptionStore. The pool is created once in
// main and shared across all requests.
type Store struct {
	pool *pgxpool.Pool
}

// New creates a new Store backed by the given connection pool.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

const subscriptionColumns = `id, user_id, repo, plan, status, start_date, created_at, updated_at`

// ListByUser returns all subscriptions owned by the given user.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]model.Subscription, error) {
	const q = `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE user_id = $1
        ORDER BY created_at DESC
    `
	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	subs := []model.Subscription{}
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, err
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Create inserts a new subscription for the user. Plan defaults to
// "basic", status to "active", start date to now.
func (s *Store) Create(ctx context.Context, userID, repo, plan string) (model.Subscription, error) {
	if err := validateRepo(repo); err != nil {
		return model.Subscription{}, err
	}
	if plan == "" {
		plan = "basic"
	}

	const q = `
        INSERT INTO subscriptions (user_id, repo, plan, status, start_date)
        VALUES ($1, $2, $3, 'active', NOW())
        RETURNING ` + subscriptionColumns + `
    `
	return scanSubscription(s.pool.QueryRow(ctx, q, userID, repo, plan))
}

// GetByID looks a subscription up by id. Returns pgx.ErrNoRows when the
// id is unknown.
func (s *Store) GetByID(ctx context.Context, id string) (model.Subscription, error) {
	const q = `
        SELECT ` + subscriptionColumns + `
        FROM subscriptions
        WHERE id = $1
    `
	return scanSubscription(s.pool.QueryRow(ctx, q, id))
}

// Update applies a partial update by id.
// TODO: verify the caller owns the record before mutating; currently
// any authenticated session may update any subscription id.
func (s *Store) Update(ctx context.Context, id string, fields UpdateFields) (model.Subscription, error) {
	if fields.Repo != nil {
		if err := validateRepo(*fields.Repo); err != nil {
			return model.Subscription{}, err
		}
	}

	const q = `
        UPDATE subscriptions
        SET repo = COALESCE($2, repo),
            plan = COALESCE($3, plan),
            status = COALESCE($4, status),
            updated_at = NOW()
        WHERE id = $1
        RETURNING ` + subscriptionColumns + `
    `
	return scanSubscription(s.pool.QueryRow(ctx, q, id, fields.Repo, fields.Plan, fields.Status))
}

// Delete removes a subscription by id. Returns pgx.ErrNoRows when the
// id is unknown.
// TODO: verify the caller owns the record before deleting.
func (s *Store) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM subscriptions WHERE id = $1`
	tag, err := s.pool.Exec(ctx, q, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanSubscription(row pgx.Row) (model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.Repo,
		&sub.Plan,
		&sub.Status,
		&sub.StartDate,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)
	if err != nil {
		return model.Subscription{}, err
	}
	return sub, nil
}

func validateRepo(repo string) error {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return &custom_errors.ErrInvalidRepoFormat{Repo: repo}
	}
	return nil
}
