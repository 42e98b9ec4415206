package paymentMethodRepo

import (
	"context"
	"fmt"
	"time"

	"traceaq/database"
	"traceaq/models"

	"github.com/jmoiron/sqlx"
)

type PostgresPaymentMethodRepo struct {
	db *sqlx.DB
}

func NewPostgresPaymentMethodRepo(db *sqlx.DB) *PostgresPaymentMethodRepo {
	return &PostgresPaymentMethodRepo{db: db}
}

// EnsureTable creates the payment_methods table if it does not exist.
func (r *PostgresPaymentMethodRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS payment_methods (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  stripe_payment_method_id TEXT NOT NULL,
  last4 TEXT NOT NULL,
  brand TEXT NOT NULL,
  expiry_month INTEGER NOT NULL,
  expiry_year INTEGER NOT NULL,
  is_default BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  UNIQUE (user_id, stripe_payment_method_id)
);`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const pmColumns = `id, user_id, stripe_payment_method_id, last4, brand, expiry_month, expiry_year, is_default, created_at`

func (r *PostgresPaymentMethodRepo) Create(ctx context.Context, pm *models.PaymentMethod) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	const q = `INSERT INTO payment_methods (` + pmColumns + `) VALUES (
		:id, :user_id, :stripe_payment_method_id, :last4, :brand, :expiry_month, :expiry_year, :is_default, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, q, pm); err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("payment method %s: %w", pm.StripePaymentMethodID, models.ErrConflict)
		}
		return fmt.Errorf("failed to save payment method: %w", err)
	}
	return nil
}

func (r *PostgresPaymentMethodRepo) ListByUser(ctx context.Context, userID string) ([]models.PaymentMethod, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	methods := []models.PaymentMethod{}
	q := `SELECT ` + pmColumns + ` FROM payment_methods WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	if err := r.db.SelectContext(ctx, &methods, q, userID); err != nil {
		return nil, fmt.Errorf("failed to list payment methods: %w", err)
	}
	return methods, nil
}

func (r *PostgresPaymentMethodRepo) Delete(ctx context.Context, userID, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete payment method %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment method %s: %w", id, models.ErrNotFound)
	}
	return nil
}

// SetDefault runs the unset and set in one transaction.
func (r *PostgresPaymentMethodRepo) SetDefault(ctx context.Context, userID, id string) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default = false WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("failed to clear default payment method: %w", err)
	}
	res, err := tx.ExecContext(ctx, `UPDATE payment_methods SET is_default = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to set default payment method: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("payment method %s: %w", id, models.ErrNotFound)
	}
	return tx.Commit()
}
