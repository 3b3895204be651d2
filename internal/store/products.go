package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/safar/go-marketplace/internal/database"
	"github.com/safar/go-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

type UpdateProductRequest struct {
	Name        *string
	Description *string
	Price       *decimal.Decimal
	Quantity    *int
	Image       *string
}

const productColumns = `p.id, p.name, p.description, p.price, p.quantity, p.image,
	p.seller_id, u.full_name, u.email, p.created_at, p.updated_at, p.version`

func scanProduct(row *sql.Row) (*models.Product, error) {
	product := &models.Product{}
	err := row.Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
		&product.Image,
		&product.SellerID,
		&product.SellerName,
		&product.SellerEmail,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, err
	}
	return product, nil
}

func CreateProduct(ctx context.Context, db *sql.DB, sellerID int64, name, description string, price decimal.Decimal, quantity int, image string) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (name, description, price, quantity, image, seller_id, created_at, updated_at, version)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW(), 1)
		RETURNING id, name, description, price, quantity, image, seller_id, created_at, updated_at, version`

	err := db.QueryRowContext(ctx, query, name, description, price, quantity, image, sellerID).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
		&product.Image,
		&product.SellerID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func GetProduct(ctx context.Context, db *sql.DB, id int64) (*models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN users u ON u.id = p.seller_id
		WHERE p.id = $1`

	product, err := scanProduct(db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

func ListProducts(ctx context.Context, db *sql.DB, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN users u ON u.id = p.seller_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1 OFFSET $2`

	rows, err := db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products, err := collectProducts(rows)
	if err != nil {
		return nil, err
	}

	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}

	return &OffsetPage{
		Items:      products,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

func ListSellerProducts(ctx context.Context, db *sql.DB, sellerID int64) ([]models.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products p
		JOIN users u ON u.id = p.seller_id
		WHERE p.seller_id = $1
		ORDER BY p.created_at DESC, p.id DESC`

	rows, err := db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller products: %w", err)
	}
	defer rows.Close()

	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var p models.Product
		err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.Description,
			&p.Price,
			&p.Quantity,
			&p.Image,
			&p.SellerID,
			&p.SellerName,
			&p.SellerEmail,
			&p.CreatedAt,
			&p.UpdatedAt,
			&p.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return products, nil
}

// UpdateProduct applies a partial edit. Only the owning seller may
// update a product.
func UpdateProduct(ctx context.Context, db *sql.DB, sellerID, productID int64, req UpdateProductRequest) (*models.Product, error) {
	current, err := GetProduct(ctx, db, productID)
	if err != nil {
		return nil, err
	}
	if current.SellerID != sellerID {
		return nil, database.ErrNotOwner
	}

	name := current.Name
	description := current.Description
	price := current.Price
	quantity := current.Quantity
	image := current.Image

	if req.Name != nil {
		name = *req.Name
	}
	if req.Description != nil {
		description = *req.Description
	}
	if req.Price != nil {
		price = *req.Price
	}
	if req.Quantity != nil {
		quantity = *req.Quantity
	}
	if req.Image != nil {
		image = *req.Image
	}

	if price.IsNegative() {
		return nil, database.ErrNegativePrice
	}
	if quantity < 0 {
		return nil, database.ErrNegativeStock
	}

	product := &models.Product{}
	query := `
		UPDATE products
		SET name = $1, description = $2, price = $3, quantity = $4, image = $5,
		    updated_at = NOW(), version = version + 1
		WHERE id = $6
		RETURNING id, name, description, price, quantity, image, seller_id, created_at, updated_at, version`

	err = db.QueryRowContext(ctx, query, name, description, price, quantity, image, productID).Scan(
		&product.ID,
		&product.Name,
		&product.Description,
		&product.Price,
		&product.Quantity,
		&product.Image,
		&product.SellerID,
		&product.CreatedAt,
		&product.UpdatedAt,
		&product.Version,
	)
	if err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

// DeleteProduct removes a product. Only the owning seller may delete it.
func DeleteProduct(ctx context.Context, db *sql.DB, sellerID, productID int64) error {
	product, err := GetProduct(ctx, db, productID)
	if err != nil {
		return err
	}
	if product.SellerID != sellerID {
		return database.ErrNotOwner
	}

	if _, err := db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, productID); err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	return nil
}

// BuyProduct is the direct single-product purchase: a conditional
// decrement that never takes the quantity below zero. It does not write
// an order ledger entry.
func BuyProduct(ctx context.Context, db *sql.DB, productID int64, quantity int) (*models.Product, error) {
	if quantity <= 0 {
		return nil, database.ErrInvalidQuantity
	}

	product, err := GetProduct(ctx, db, productID)
	if err != nil {
		return nil, err
	}

	result, err := db.ExecContext(ctx,
		`UPDATE products
		 SET quantity = quantity - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND quantity >= $1`,
		quantity, productID)
	if err != nil {
		return nil, fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return nil, &database.InsufficientStockError{
			ProductName: product.Name,
			Available:   product.Quantity,
		}
	}

	return GetProduct(ctx, db, productID)
}

// decrementStock applies one line item's stock decrement inside the
// order placement transaction. The quantity >= $1 guard keeps stock
// non-negative even with duplicate product ids in one order.
func decrementStock(ctx context.Context, tx *sql.Tx, productID int64, quantity int, productName string) error {
	result, err := tx.ExecContext(ctx,
		`UPDATE products
		 SET quantity = quantity - $1,
		     updated_at = NOW()
		 WHERE id = $2
		   AND quantity >= $1`,
		quantity, productID)
	if err != nil {
		return fmt.Errorf("decrement stock: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		var available int
		if err := tx.QueryRowContext(ctx, `SELECT quantity FROM products WHERE id = $1`, productID).Scan(&available); err != nil {
			return fmt.Errorf("reread stock: %w", err)
		}
		return &database.InsufficientStockError{ProductName: productName, Available: available}
	}

	return nil
}
