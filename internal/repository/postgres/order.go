package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/pkg/database"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

const orderColumns = `id, email, first_name, last_name, company, address, city, state, country, zip_code, phone,
	subtotal::text, total::text, created_at`

// OrderRepository implements repository.OrderRepository using PostgreSQL.
type OrderRepository struct {
	db database.DBTX
}

// NewOrderRepository creates a new PostgreSQL-backed order repository.
func NewOrderRepository(db database.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts the order header and fills in its ID and CreatedAt.
func (r *OrderRepository) CreateOrder(ctx context.Context, o *domain.Order) (err error) {
	query := `
		INSERT INTO orders (email, first_name, last_name, company, address, city, state, country, zip_code, phone,
			subtotal, total)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, created_at`

	ctx, end := database.TraceQuery(ctx, "insert_order", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		o.Email,
		o.FirstName,
		o.LastName,
		o.Company,
		o.Address,
		o.City,
		o.State,
		o.Country,
		o.ZipCode,
		o.Phone,
		o.Subtotal,
		o.Total,
	).Scan(&o.ID, &o.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// CreateItems inserts all items of an order with a single statement.
func (r *OrderRepository) CreateItems(ctx context.Context, orderID string, items []domain.OrderItem) (err error) {
	if len(items) == 0 {
		return nil
	}

	const cols = 7
	values := make([]string, 0, len(items))
	args := make([]any, 0, len(items)*cols)
	for i, item := range items {
		n := i * cols
		values = append(values, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d)", n+1, n+2, n+3, n+4, n+5, n+6, n+7))
		args = append(args, orderID, item.ProductID, item.Name, item.Price, item.Quantity, item.Size, item.Image)
	}

	query := `INSERT INTO order_items (order_id, product_id, name, price, quantity, size, image) VALUES ` +
		strings.Join(values, ", ")

	ctx, end := database.TraceQuery(ctx, "insert_order_items", query)
	defer func() { end(err) }()

	if _, err = r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("insert order items: %w", err)
	}
	return nil
}

// GetByID returns an order header with its items.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (_ *domain.Order, err error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "get_order", query)
	defer func() { end(err) }()

	o, err := scanOrder(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.NotFound("order", id)
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	itemsQuery := `
		SELECT id::text, order_id, product_id, name, price::text, quantity, size, image
		FROM order_items
		WHERE order_id = $1
		ORDER BY id`

	rows, err := r.db.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	o.Items = []domain.OrderItem{}
	for rows.Next() {
		var (
			item  domain.OrderItem
			price string
		)
		if err = rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.Name, &price, &item.Quantity, &item.Size, &item.Image); err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if item.Price, err = decimal.NewFromString(price); err != nil {
			return nil, fmt.Errorf("parse order item price: %w", err)
		}
		o.Items = append(o.Items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return o, nil
}

// List returns one page of order headers, newest first, with the total count.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) (_ []domain.Order, _ int, err error) {
	query := `
		SELECT ` + orderColumns + `, count(*) OVER() AS total_count
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`

	ctx, end := database.TraceQuery(ctx, "list_orders", query)
	defer func() { end(err) }()

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var (
		orders = []domain.Order{}
		total  int
	)
	for rows.Next() {
		o, err := scanOrder(rows, &total)
		if err != nil {
			return nil, 0, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, *o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate order rows: %w", err)
	}
	return orders, total, nil
}

func scanOrder(row pgx.Row, extra ...any) (*domain.Order, error) {
	var (
		o               domain.Order
		subtotal, total string
	)
	dest := []any{
		&o.ID, &o.Email, &o.FirstName, &o.LastName, &o.Company, &o.Address, &o.City, &o.State,
		&o.Country, &o.ZipCode, &o.Phone, &subtotal, &total, &o.CreatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}

	var err error
	if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
		return nil, fmt.Errorf("parse subtotal: %w", err)
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, fmt.Errorf("parse total: %w", err)
	}
	return &o, nil
}
