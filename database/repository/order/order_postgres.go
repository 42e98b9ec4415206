package orderRepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"traceaq/database"
	"traceaq/models"

	"github.com/jmoiron/sqlx"
)

// PostgresOrderRepo implements OrderRepository with sqlx.
type PostgresOrderRepo struct {
	db *sqlx.DB
}

func NewPostgresOrderRepo(db *sqlx.DB) *PostgresOrderRepo {
	return &PostgresOrderRepo{db: db}
}

// EnsureTable creates the orders table if it does not exist.
func (r *PostgresOrderRepo) EnsureTable(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  amount INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'usd',
  status TEXT NOT NULL DEFAULT 'pending',
  stripe_payment_intent_id TEXT NOT NULL DEFAULT '',
  email TEXT NOT NULL,
  full_name TEXT NOT NULL,
  address_line1 TEXT NOT NULL,
  address_line2 TEXT NOT NULL DEFAULT '',
  city TEXT NOT NULL,
  state TEXT NOT NULL DEFAULT '',
  zip_code TEXT NOT NULL,
  country TEXT NOT NULL,
  is_researcher BOOLEAN NOT NULL DEFAULT false,
  agree_to_terms BOOLEAN NOT NULL DEFAULT false,
  created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_orders_user_created ON orders(user_id, created_at DESC);`
	_, err := r.db.ExecContext(ctx, ddl)
	return err
}

const orderColumns = `id, user_id, amount, currency, status, stripe_payment_intent_id, email, full_name,
	address_line1, address_line2, city, state, zip_code, country, is_researcher, agree_to_terms, created_at, updated_at`

func (r *PostgresOrderRepo) Create(ctx context.Context, order *models.Order) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	const q = `INSERT INTO orders (` + orderColumns + `) VALUES (
		:id, :user_id, :amount, :currency, :status, :stripe_payment_intent_id, :email, :full_name,
		:address_line1, :address_line2, :city, :state, :zip_code, :country, :is_researcher, :agree_to_terms, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, q, order); err != nil {
		if database.IsDuplicate(err) {
			return fmt.Errorf("order %s: %w", order.ID, models.ErrConflict)
		}
		return fmt.Errorf("failed to create order: %w", err)
	}
	return nil
}

func (r *PostgresOrderRepo) GetByID(ctx context.Context, id string) (*models.Order, error) {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	var order models.Order
	if err := r.db.GetContext(ctx, &order, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch order %s: %w", id, err)
	}
	return &order, nil
}

func (r *PostgresOrderRepo) ListByUser(ctx context.Context, userID string) ([]models.Order, error) {
	ctx, cancel := database.NewContext(ctx, 10*time.Second)
	defer cancel()

	orders := []models.Order{}
	err := r.db.SelectContext(ctx, &orders, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	return orders, nil
}

func (r *PostgresOrderRepo) UpdateStatus(ctx context.Context, id string, status models.OrderStatus) error {
	ctx, cancel := database.NewContext(ctx, 5*time.Second)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update order %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("order %s: %w", id, models.ErrNotFound)
	}
	return nil
}
