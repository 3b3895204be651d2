package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-marketplace/internal/database"
	"github.com/safar/go-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

const userColumns = `id, full_name, email, password_hash, phone, is_seller,
	total_sales, total_orders, created_at, updated_at, version`

func scanUser(row *sql.Row) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.FullName,
		&user.Email,
		&user.PasswordHash,
		&user.Phone,
		&user.IsSeller,
		&user.TotalSales,
		&user.TotalOrders,
		&user.CreatedAt,
		&user.UpdatedAt,
		&user.Version,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func CreateUser(ctx context.Context, db *sql.DB, fullName, email, passwordHash string, isSeller bool) (*models.User, error) {
	query := `
		INSERT INTO users (full_name, email, password_hash, phone, is_seller, total_sales, total_orders, created_at, updated_at, version)
		VALUES ($1, $2, $3, '', $4, 0, 0, NOW(), NOW(), 1)
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, fullName, email, passwordHash, isSeller))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func GetUser(ctx context.Context, db *sql.DB, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func GetUserByEmail(ctx context.Context, db *sql.DB, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(db.QueryRowContext(ctx, query, email))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by email: %w", err)
	}

	return user, nil
}

// UpdateProfile updates the editable profile fields. Empty fullName or
// email means keep the current value; phone is always overwritten so it
// can be cleared.
func UpdateProfile(ctx context.Context, db *sql.DB, id int64, fullName, email, phone string) (*models.User, error) {
	current, err := GetUser(ctx, db, id)
	if err != nil {
		return nil, err
	}

	if fullName == "" {
		fullName = current.FullName
	}
	if email == "" {
		email = current.Email
	}

	query := `
		UPDATE users
		SET full_name = $1, email = $2, phone = $3, updated_at = NOW(), version = version + 1
		WHERE id = $4
		RETURNING ` + userColumns

	user, err := scanUser(db.QueryRowContext(ctx, query, fullName, email, phone, id))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("update profile: %w", err)
	}

	return user, nil
}

// incrementSellerCounters applies one seller bucket from an order:
// the bucket amount onto total_sales and exactly one order onto
// total_orders, no matter how many line items the seller contributed.
func incrementSellerCounters(ctx context.Context, tx *sql.Tx, sellerID int64, amount decimal.Decimal) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE users
		 SET total_sales = total_sales + $1,
		     total_orders = total_orders + 1,
		     updated_at = NOW()
		 WHERE id = $2`,
		amount, sellerID)
	if err != nil {
		return fmt.Errorf("increment seller counters: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return database.ErrUserNotFound
	}

	return nil
}

// ReconcileSellerCounters recomputes the denormalized seller counters
// from the order ledger, replacing whatever the cache held.
func ReconcileSellerCounters(ctx context.Context, db *sql.DB, sellerID int64) (*models.User, error) {
	var user *models.User

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var totalSales decimal.Decimal
		var totalOrders int

		err := tx.QueryRowContext(ctx,
			`SELECT COALESCE(SUM(subtotal), 0), COUNT(DISTINCT order_id)
			 FROM order_items
			 WHERE seller_id = $1`,
			sellerID).Scan(&totalSales, &totalOrders)
		if err != nil {
			return fmt.Errorf("sum seller ledger: %w", err)
		}

		row := tx.QueryRowContext(ctx,
			`UPDATE users
			 SET total_sales = $1, total_orders = $2, updated_at = NOW(), version = version + 1
			 WHERE id = $3
			 RETURNING `+userColumns,
			totalSales, totalOrders, sellerID)

		user, err = scanUser(row)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrUserNotFound
			}
			return fmt.Errorf("write seller counters: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}
