package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"

	"github.com/utafrali/apparelstore/internal/domain"
	"github.com/utafrali/apparelstore/pkg/database"
	apperrors "github.com/utafrali/apparelstore/pkg/errors"
)

// Numeric columns are read as text and parsed into decimals.
const productColumns = `id, name, slug, description, price::text, original_price::text, discount_type,
	discount_value::text, category, images, sizes, status, stock, is_new_arrival, created_at, updated_at`

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	db database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(db database.DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create inserts a new product and fills in its generated ID and timestamps.
func (r *ProductRepository) Create(ctx context.Context, p *domain.Product) (err error) {
	query := `
		INSERT INTO products (name, slug, description, price, original_price, discount_type, discount_value,
			category, images, sizes, status, stock, is_new_arrival)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "insert_product", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.OriginalPrice,
		p.DiscountType,
		p.DiscountValue,
		p.Category,
		p.Images,
		p.Sizes,
		p.Status,
		p.Stock,
		p.IsNewArrival,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("insert product: %w", err)
	}
	return nil
}

// GetByID retrieves a product by its ID.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.Product, err error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "get_product", query)
	defer func() { end(err) }()

	p, err := scanProduct(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Update overwrites the editable fields of a product and refreshes UpdatedAt.
func (r *ProductRepository) Update(ctx context.Context, p *domain.Product) (err error) {
	query := `
		UPDATE products
		SET name = $2, slug = $3, description = $4, price = $5, original_price = $6, discount_type = $7,
			discount_value = $8, category = $9, images = $10, sizes = $11, status = $12, stock = $13,
			is_new_arrival = $14, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	ctx, end := database.TraceQuery(ctx, "update_product", query)
	defer func() { end(err) }()

	err = r.db.QueryRow(ctx, query,
		p.ID,
		p.Name,
		p.Slug,
		p.Description,
		p.Price,
		p.OriginalPrice,
		p.DiscountType,
		p.DiscountValue,
		p.Category,
		p.Images,
		p.Sizes,
		p.Status,
		p.Stock,
		p.IsNewArrival,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		switch {
		case isMissing(err):
			return apperrors.NotFound("product", p.ID)
		case isUniqueViolation(err):
			return apperrors.AlreadyExists("product", "slug", p.Slug)
		}
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Delete removes a product by its ID.
func (r *ProductRepository) Delete(ctx context.Context, id string) (err error) {
	query := `DELETE FROM products WHERE id = $1`

	ctx, end := database.TraceQuery(ctx, "delete_product", query)
	defer func() { end(err) }()

	tag, err := r.db.Exec(ctx, query, id)
	if isMissing(err) {
		return apperrors.NotFound("product", id)
	}
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("product", id)
	}
	return nil
}

// List returns products matching the back-office filter, newest first.
func (r *ProductRepository) List(ctx context.Context, filter domain.ProductFilter) (_ []domain.Product, err error) {
	var (
		conditions []string
		args       []any
	)

	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, len(args)))
	}

	switch filter.Filter {
	case domain.FilterActive, domain.FilterDraft:
		args = append(args, filter.Filter)
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)))
	case domain.FilterOutOfStock:
		conditions = append(conditions, "stock = 0")
	case domain.FilterLowStock:
		args = append(args, domain.LowStockThreshold)
		conditions = append(conditions, fmt.Sprintf("stock > 0 AND stock < $%d", len(args)))
	}

	query := `SELECT ` + productColumns + ` FROM products` + where(conditions) + ` ORDER BY created_at DESC`

	ctx, end := database.TraceQuery(ctx, "list_products", query)
	defer func() { end(err) }()

	return r.queryProducts(ctx, query, args...)
}

// ListActive returns active products for the storefront. Category matches
// case-insensitively; search matches a literal name substring.
// Price sorts use the discounted price.
func (r *ProductRepository) ListActive(ctx context.Context, filter domain.CatalogFilter) (_ []domain.Product, err error) {
	args := []any{domain.ProductStatusActive}
	conditions := []string{"status = $1"}

	if filter.Category != "" {
		args = append(args, filter.Category)
		conditions = append(conditions, fmt.Sprintf("LOWER(category) = LOWER($%d)", len(args)))
	}
	if filter.Search != "" {
		args = append(args, containsPattern(filter.Search))
		conditions = append(conditions, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, len(args)))
	}

	order := "created_at DESC"
	switch filter.Sort {
	case domain.SortPriceLow:
		order = finalPriceExpr + " ASC, created_at DESC"
	case domain.SortPriceHigh:
		order = finalPriceExpr + " DESC, created_at DESC"
	}

	query := `SELECT ` + productColumns + ` FROM products` + where(conditions) + ` ORDER BY ` + order
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	ctx, end := database.TraceQuery(ctx, "list_active_products", query)
	defer func() { end(err) }()

	return r.queryProducts(ctx, query, args...)
}

const finalPriceExpr = `(CASE
		WHEN discount_value IS NULL THEN price
		WHEN discount_type = 'fixed' THEN price - discount_value
		ELSE price - price * discount_value / 100
	END)`

// Counts returns how many products are active and how many are out of stock.
func (r *ProductRepository) Counts(ctx context.Context) (_ domain.ProductCounts, err error) {
	query := `
		SELECT COUNT(*) FILTER (WHERE status = 'active'),
		       COUNT(*) FILTER (WHERE stock = 0)
		FROM products`

	ctx, end := database.TraceQuery(ctx, "count_products", query)
	defer func() { end(err) }()

	var c domain.ProductCounts
	if err = r.db.QueryRow(ctx, query).Scan(&c.Active, &c.OutOfStock); err != nil {
		return domain.ProductCounts{}, fmt.Errorf("count products: %w", err)
	}
	return c, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]domain.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product rows: %w", err)
	}
	return products, nil
}

func scanProduct(row pgx.Row) (*domain.Product, error) {
	var (
		p                            domain.Product
		price                        string
		originalPrice, discountValue *string
	)
	if err := row.Scan(
		&p.ID,
		&p.Name,
		&p.Slug,
		&p.Description,
		&price,
		&originalPrice,
		&p.DiscountType,
		&discountValue,
		&p.Category,
		&p.Images,
		&p.Sizes,
		&p.Status,
		&p.Stock,
		&p.IsNewArrival,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if p.Price, err = decimal.NewFromString(price); err != nil {
		return nil, fmt.Errorf("parse price: %w", err)
	}
	if p.OriginalPrice, err = parseNullDecimal(originalPrice); err != nil {
		return nil, fmt.Errorf("parse original_price: %w", err)
	}
	if p.DiscountValue, err = parseNullDecimal(discountValue); err != nil {
		return nil, fmt.Errorf("parse discount_value: %w", err)
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	return &p, nil
}

func parseNullDecimal(s *string) (decimal.NullDecimal, error) {
	if s == nil {
		return decimal.NullDecimal{}, nil
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func where(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern turns s into an ILIKE pattern matching s literally
// anywhere in the value. Pair it with ESCAPE '\'.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isMissing reports a lookup that matched nothing. An id that is not a UUID
// (SQLSTATE 22P02) cannot match any row either.
func isMissing(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
