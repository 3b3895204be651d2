package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"
	"github.com/safar/go-marketplace/internal/database"
	"github.com/safar/go-marketplace/internal/models"
	"github.com/shopspring/decimal"
)

type PlaceOrderRequest struct {
	CustomerID int64
	Items      []OrderItemRequest
}

type OrderItemRequest struct {
	ProductID int64
	Quantity  int
}

// lineSource is one requested item after the product row has been read
// and locked: everything needed to build the line item and its errors.
type lineSource struct {
	ProductID int64
	SellerID  int64
	Name      string
	Price     decimal.Decimal
	Quantity  int
}

// buildOrderLines turns validated sources into line items with
// price-at-purchase snapshots, the order total, and one accumulated
// amount per seller. Duplicate product ids stay separate line items.
func buildOrderLines(sources []lineSource) ([]models.OrderItem, map[int64]decimal.Decimal, decimal.Decimal) {
	items := make([]models.OrderItem, 0, len(sources))
	buckets := make(map[int64]decimal.Decimal)
	total := decimal.Zero

	for _, src := range sources {
		lineTotal := src.Price.Mul(decimal.NewFromInt(int64(src.Quantity)))

		items = append(items, models.OrderItem{
			ProductID: src.ProductID,
			SellerID:  src.SellerID,
			Quantity:  src.Quantity,
			UnitPrice: src.Price,
			Subtotal:  lineTotal,
		})

		buckets[src.SellerID] = buckets[src.SellerID].Add(lineTotal)
		total = total.Add(lineTotal)
	}

	return items, buckets, total
}

// PlaceOrder validates every requested item, writes the order and its
// line items, decrements stock, and bumps each touched seller's
// counters by the per-seller bucket amount and exactly one order. The
// whole sequence runs in one serializable transaction with row locks,
// so a failure on any item leaves no partial decrements behind.
func PlaceOrder(ctx context.Context, db *sql.DB, req PlaceOrderRequest) (*models.Order, error) {
	if len(req.Items) == 0 {
		return nil, database.ErrEmptyOrder
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, database.ErrInvalidQuantity
		}
	}

	var order *models.Order

	err := database.WithRetry(ctx, db, database.TxOptions{
		IsolationLevel: sql.LevelSerializable,
		MaxRetries:     3,
	}, func(tx *sql.Tx) error {
		var exists bool
		err := tx.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)",
			req.CustomerID).Scan(&exists)
		if err != nil {
			return fmt.Errorf("check customer exists: %w", err)
		}
		if !exists {
			return database.ErrUserNotFound
		}

		// Validation pass: lock and check every product before any
		// mutation is applied.
		sources := make([]lineSource, 0, len(req.Items))
		for _, item := range req.Items {
			var src lineSource
			var available int

			err := tx.QueryRowContext(ctx,
				`SELECT id, seller_id, name, price, quantity
				 FROM products
				 WHERE id = $1
				 FOR UPDATE NOWAIT`,
				item.ProductID).Scan(&src.ProductID, &src.SellerID, &src.Name, &src.Price, &available)
			if err != nil {
				if err == sql.ErrNoRows {
					return fmt.Errorf("product %d: %w", item.ProductID, database.ErrProductNotFound)
				}
				return fmt.Errorf("lock product %d: %w", item.ProductID, err)
			}

			if available < item.Quantity {
				return &database.InsufficientStockError{
					ProductName: src.Name,
					Available:   available,
				}
			}

			src.Quantity = item.Quantity
			sources = append(sources, src)
		}

		items, buckets, totalAmount := buildOrderLines(sources)

		order = &models.Order{}
		err = tx.QueryRowContext(ctx,
			`INSERT INTO orders (customer_id, status, total_amount, created_at, updated_at, version)
			 VALUES ($1, $2, $3, NOW(), NOW(), 1)
			 RETURNING id, customer_id, status, total_amount, created_at, updated_at, version`,
			req.CustomerID, models.OrderStatusPending, totalAmount).Scan(
			&order.ID,
			&order.CustomerID,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Version,
		)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for i := range items {
			items[i].OrderID = order.ID
			err = tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, seller_id, quantity, unit_price, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, NOW())
				 RETURNING id, created_at`,
				items[i].OrderID, items[i].ProductID, items[i].SellerID,
				items[i].Quantity, items[i].UnitPrice, items[i].Subtotal).Scan(&items[i].ID, &items[i].CreatedAt)
			if err != nil {
				return fmt.Errorf("create order item: %w", err)
			}
		}

		for _, src := range sources {
			if err := decrementStock(ctx, tx, src.ProductID, src.Quantity, src.Name); err != nil {
				return err
			}
		}

		for sellerID, amount := range buckets {
			if err := incrementSellerCounters(ctx, tx, sellerID, amount); err != nil {
				return err
			}
		}

		order.Items = items
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

const orderColumns = `id, customer_id, status, total_amount, created_at, updated_at, version`

func GetOrder(ctx context.Context, db *sql.DB, id int64) (*models.Order, error) {
	order := &models.Order{}

	err := db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id).Scan(
		&order.ID,
		&order.CustomerID,
		&order.Status,
		&order.TotalAmount,
		&order.CreatedAt,
		&order.UpdatedAt,
		&order.Version,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := loadOrderItems(ctx, db, []int64{id}, 0)
	if err != nil {
		return nil, err
	}
	order.Items = items[id]

	return order, nil
}

// loadOrderItems fetches line items for a set of orders, keyed by order
// id. A non-zero sellerID restricts the result to that seller's items.
func loadOrderItems(ctx context.Context, db *sql.DB, orderIDs []int64, sellerID int64) (map[int64][]models.OrderItem, error) {
	if len(orderIDs) == 0 {
		return map[int64][]models.OrderItem{}, nil
	}

	query := `
		SELECT id, order_id, product_id, seller_id, quantity, unit_price, subtotal, created_at
		FROM order_items
		WHERE order_id = ANY($1)
		  AND ($2 = 0 OR seller_id = $2)
		ORDER BY order_id, id`

	rows, err := db.QueryContext(ctx, query, pq.Array(orderIDs), sellerID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	items := make(map[int64][]models.OrderItem)
	for rows.Next() {
		var item models.OrderItem
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.SellerID,
			&item.Quantity,
			&item.UnitPrice,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items[item.OrderID] = append(items[item.OrderID], item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

type CustomerOrdersPage struct {
	Orders     []models.Order  `json:"orders"`
	TotalSpent decimal.Decimal `json:"total_spent"`
	NextCursor string          `json:"next_cursor,omitempty"`
	HasMore    bool            `json:"has_more"`
}

// CustomerOrders returns the customer's order history, newest first,
// cursor-paginated. TotalSpent covers all the customer's orders, not
// just the page.
func CustomerOrders(ctx context.Context, db *sql.DB, customerID int64, cursor string, limit int) (*CustomerOrdersPage, error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, fmt.Errorf("decode cursor: %w", err)
	}

	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE customer_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := db.QueryContext(ctx, query, customerID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list customer orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	if err := attachItems(ctx, db, orders, 0); err != nil {
		return nil, err
	}

	var totalSpent decimal.Decimal
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(total_amount), 0) FROM orders WHERE customer_id = $1`,
		customerID).Scan(&totalSpent)
	if err != nil {
		return nil, fmt.Errorf("sum customer orders: %w", err)
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		last := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}

	return &CustomerOrdersPage{
		Orders:     orders,
		TotalSpent: totalSpent,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

type SellerOrdersResult struct {
	Orders        []models.Order  `json:"orders"`
	TotalEarnings decimal.Decimal `json:"total_earnings"`
}

// SellerOrders returns every order containing one of the seller's line
// items, with the items filtered to that seller. TotalEarnings is the
// sum of those subtotals.
func SellerOrders(ctx context.Context, db *sql.DB, sellerID int64) (*SellerOrdersResult, error) {
	query := `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE id IN (SELECT DISTINCT order_id FROM order_items WHERE seller_id = $1)
		ORDER BY created_at DESC, id DESC`

	rows, err := db.QueryContext(ctx, query, sellerID)
	if err != nil {
		return nil, fmt.Errorf("list seller orders: %w", err)
	}
	defer rows.Close()

	orders, err := collectOrders(rows)
	if err != nil {
		return nil, err
	}

	if err := attachItems(ctx, db, orders, sellerID); err != nil {
		return nil, err
	}

	var totalEarnings decimal.Decimal
	err = db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(subtotal), 0) FROM order_items WHERE seller_id = $1`,
		sellerID).Scan(&totalEarnings)
	if err != nil {
		return nil, fmt.Errorf("sum seller earnings: %w", err)
	}

	return &SellerOrdersResult{Orders: orders, TotalEarnings: totalEarnings}, nil
}

type SellerSalesSummary struct {
	TotalSales  decimal.Decimal `json:"total_sales"`
	TotalOrders int             `json:"total_orders"`
	Orders      []models.Order  `json:"orders"`
}

// SellerSales reads the denormalized counters from the account record.
// This is the cached tier: fast, and only as fresh as the last
// placement or reconciliation.
func SellerSales(ctx context.Context, db *sql.DB, sellerID int64) (*SellerSalesSummary, error) {
	seller, err := GetUser(ctx, db, sellerID)
	if err != nil {
		return nil, err
	}

	result, err := SellerOrders(ctx, db, sellerID)
	if err != nil {
		return nil, err
	}

	return &SellerSalesSummary{
		TotalSales:  seller.TotalSales,
		TotalOrders: seller.TotalOrders,
		Orders:      result.Orders,
	}, nil
}

type SellerStats struct {
	TotalSales   decimal.Decimal `json:"total_sales"`
	ActiveOrders int             `json:"active_orders"`
}

// SellerStatsLive recomputes sales from the order ledger and counts the
// seller's not-yet-completed orders. This is the live tier.
func SellerStatsLive(ctx context.Context, db *sql.DB, sellerID int64) (*SellerStats, error) {
	stats := &SellerStats{}

	err := db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(unit_price * quantity), 0)
		 FROM order_items
		 WHERE seller_id = $1`,
		sellerID).Scan(&stats.TotalSales)
	if err != nil {
		return nil, fmt.Errorf("sum seller line items: %w", err)
	}

	err = db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT o.id)
		 FROM orders o
		 JOIN order_items oi ON oi.order_id = o.id
		 WHERE oi.seller_id = $1
		   AND o.status <> $2`,
		sellerID, models.OrderStatusCompleted).Scan(&stats.ActiveOrders)
	if err != nil {
		return nil, fmt.Errorf("count active orders: %w", err)
	}

	return stats, nil
}

// CompleteOrder marks a pending order completed. Only the owning
// customer may complete it, and completed is terminal.
func CompleteOrder(ctx context.Context, db *sql.DB, customerID, orderID int64) (*models.Order, error) {
	order := &models.Order{}

	err := database.WithTransaction(ctx, db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		var ownerID int64
		var status string

		err := tx.QueryRowContext(ctx,
			`SELECT customer_id, status FROM orders WHERE id = $1 FOR UPDATE`,
			orderID).Scan(&ownerID, &status)
		if err != nil {
			if err == sql.ErrNoRows {
				return database.ErrOrderNotFound
			}
			return fmt.Errorf("lock order: %w", err)
		}

		if ownerID != customerID {
			return database.ErrNotOwner
		}
		if status == models.OrderStatusCompleted {
			return database.ErrOrderCompleted
		}

		return tx.QueryRowContext(ctx,
			`UPDATE orders
			 SET status = $1, updated_at = NOW(), version = version + 1
			 WHERE id = $2
			 RETURNING `+orderColumns,
			models.OrderStatusCompleted, orderID).Scan(
			&order.ID,
			&order.CustomerID,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Version,
		)
	})
	if err != nil {
		return nil, err
	}

	items, err := loadOrderItems(ctx, db, []int64{orderID}, 0)
	if err != nil {
		return nil, err
	}
	order.Items = items[orderID]

	return order, nil
}

func collectOrders(rows *sql.Rows) ([]models.Order, error) {
	var orders []models.Order
	for rows.Next() {
		var order models.Order
		err := rows.Scan(
			&order.ID,
			&order.CustomerID,
			&order.Status,
			&order.TotalAmount,
			&order.CreatedAt,
			&order.UpdatedAt,
			&order.Version,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return orders, nil
}

func attachItems(ctx context.Context, db *sql.DB, orders []models.Order, sellerID int64) error {
	ids := make([]int64, 0, len(orders))
	for _, order := range orders {
		ids = append(ids, order.ID)
	}

	items, err := loadOrderItems(ctx, db, ids, sellerID)
	if err != nil {
		return err
	}

	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}

	return nil
}
