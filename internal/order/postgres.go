package order

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/storefront/internal/apperr"
	"github.com/safar/storefront/internal/database"
	"github.com/safar/storefront/internal/models"
)

// PostgresRepository persists orders in the orders and order_lines
// tables. Identity comes from the orders bigserial sequence; the append
// is transactional so a failed line insert never leaves a partial order
// behind.
type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, o *models.Order) error {
	return database.WithRetry(ctx, r.db, database.TxOptions{
		IsolationLevel: sql.LevelReadCommitted,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, order_number, status, subtotal, shipping, tax, total,
			                     ship_name, ship_street, ship_city, ship_state, ship_zip, ship_country,
			                     payment_method, idempotency_key, created_at, updated_at, version)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, NULLIF($15, ''), $16, $16, 1)
			 RETURNING id`,
			o.UserID, o.OrderNumber, o.Status, o.Subtotal, o.Shipping, o.Tax, o.Total,
			o.ShippingAddr.Name, o.ShippingAddr.Street, o.ShippingAddr.City,
			o.ShippingAddr.State, o.ShippingAddr.Zip, o.ShippingAddr.Country,
			o.PaymentMethod, o.IdempotencyKey, o.CreatedAt).Scan(&o.ID)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for i := range o.Lines {
			o.Lines[i].OrderID = o.ID
			err := tx.QueryRowContext(ctx,
				`INSERT INTO order_lines (order_id, product_id, quantity, price_snapshot, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6)
				 RETURNING id`,
				o.ID, o.Lines[i].ProductID, o.Lines[i].Quantity,
				o.Lines[i].PriceSnapshot, o.Lines[i].Subtotal, o.CreatedAt).Scan(&o.Lines[i].ID)
			if err != nil {
				return fmt.Errorf("create order line: %w", err)
			}
		}

		return nil
	})
}

const orderColumns = `id, user_id, order_number, status, subtotal, shipping, tax, total,
	ship_name, ship_street, ship_city, ship_state, ship_zip, ship_country,
	payment_method, COALESCE(idempotency_key, ''), created_at, updated_at, version`

func scanOrder(row interface{ Scan(...any) error }, o *models.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.OrderNumber,
		&o.Status,
		&o.Subtotal,
		&o.Shipping,
		&o.Tax,
		&o.Total,
		&o.ShippingAddr.Name,
		&o.ShippingAddr.Street,
		&o.ShippingAddr.City,
		&o.ShippingAddr.State,
		&o.ShippingAddr.Zip,
		&o.ShippingAddr.Country,
		&o.PaymentMethod,
		&o.IdempotencyKey,
		&o.CreatedAt,
		&o.UpdatedAt,
		&o.Version,
	)
}

func (r *PostgresRepository) Find(ctx context.Context, id int64) (*models.Order, error) {
	o := &models.Order{}

	err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id), o)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at, id`)
}

func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE user_id = $1 ORDER BY created_at, id`, userID)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var o models.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	for i := range orders {
		if err := r.loadLines(ctx, &orders[i]); err != nil {
			return nil, err
		}
	}

	return orders, nil
}

func (r *PostgresRepository) loadLines(ctx context.Context, o *models.Order) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, order_id, product_id, quantity, price_snapshot, subtotal, created_at
		 FROM order_lines
		 WHERE order_id = $1
		 ORDER BY id`, o.ID)
	if err != nil {
		return fmt.Errorf("get order lines: %w", err)
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var line models.OrderLine
		err := rows.Scan(
			&line.ID,
			&line.OrderID,
			&line.ProductID,
			&line.Quantity,
			&line.PriceSnapshot,
			&line.Subtotal,
			&line.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("scan order line: %w", err)
		}
		lines = append(lines, line)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("rows error: %w", err)
	}

	o.Lines = lines
	return nil
}

func (r *PostgresRepository) UpdateStatus(ctx context.Context, id int64, status models.OrderStatus) (*models.Order, error) {
	result, err := r.db.ExecContext(ctx,
		`UPDATE orders
		 SET status = $1, updated_at = NOW(), version = version + 1
		 WHERE id = $2`,
		status, id)
	if err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, apperr.ErrOrderNotFound
	}

	return r.Find(ctx, id)
}

func (r *PostgresRepository) FindByIdempotencyKey(ctx context.Context, userID int64, key string) (*models.Order, error) {
	o := &models.Order{}

	err := scanOrder(r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE user_id = $1 AND idempotency_key = $2`,
		userID, key), o)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order by idempotency key: %w", err)
	}

	if err := r.loadLines(ctx, o); err != nil {
		return nil, err
	}

	return o, nil
}
