package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sahalat/booking-engine/pkg/money"
)

// Repository handles database operations for products, rate cards and
// discounts
type Repository struct {
	db *pgxpool.Pool
}

// Ensure Repository implements CatalogRepository.
var _ CatalogRepository = (*Repository)(nil)

// NewRepository creates a new catalog repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateProduct creates a new product
func (r *Repository) CreateProduct(ctx context.Context, product *Product) error {
	query := `
		INSERT INTO products (id, product_type, name, rate_per_person, duration_days, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	product.ID = uuid.New()
	now := time.Now()
	product.CreatedAt = now
	product.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		product.ID,
		product.Type,
		product.Name,
		moneyPtrToUnits(product.RatePerPerson),
		product.DurationDays,
		product.IsActive,
		product.CreatedAt,
		product.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}

	return nil
}

// GetProduct retrieves a product by ID. Returns nil when the product does
// not exist.
func (r *Repository) GetProduct(ctx context.Context, productID uuid.UUID) (*Product, error) {
	query := `
		SELECT id, product_type, name, rate_per_person, duration_days, is_active, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	product := &Product{}
	var ratePerPerson *int64
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&product.ID,
		&product.Type,
		&product.Name,
		&ratePerPerson,
		&product.DurationDays,
		&product.IsActive,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get product: %w", err)
	}

	product.RatePerPerson = unitsToMoneyPtr(ratePerPerson)
	return product, nil
}

// ListProducts retrieves all products with pagination
func (r *Repository) ListProducts(ctx context.Context, limit, offset int) ([]*Product, int, error) {
	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := `
		SELECT id, product_type, name, rate_per_person, duration_days, is_active, created_at, updated_at
		FROM products
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	defer rows.Close()

	products := []*Product{}
	for rows.Next() {
		product := &Product{}
		var ratePerPerson *int64
		err := rows.Scan(
			&product.ID,
			&product.Type,
			&product.Name,
			&ratePerPerson,
			&product.DurationDays,
			&product.IsActive,
			&product.CreatedAt,
			&product.UpdatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		product.RatePerPerson = unitsToMoneyPtr(ratePerPerson)
		products = append(products, product)
	}

	return products, total, nil
}

// GetTierRates retrieves a product's rate card. Returns nil when the
// product has no rate card.
func (r *Repository) GetTierRates(ctx context.Context, productID uuid.UUID) (*TierRates, error) {
	query := `
		SELECT product_id, per_day, per_week, per_month,
			per_day_with_driver, per_week_with_driver, per_month_with_driver, updated_at
		FROM tier_rates
		WHERE product_id = $1
	`

	rates := &TierRates{}
	var perDay, perWeek, perMonth, perDayDrv, perWeekDrv, perMonthDrv *int64
	err := r.db.QueryRow(ctx, query, productID).Scan(
		&rates.ProductID,
		&perDay,
		&perWeek,
		&perMonth,
		&perDayDrv,
		&perWeekDrv,
		&perMonthDrv,
		&rates.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get tier rates: %w", err)
	}

	rates.PerDay = unitsToMoneyPtr(perDay)
	rates.PerWeek = unitsToMoneyPtr(perWeek)
	rates.PerMonth = unitsToMoneyPtr(perMonth)
	rates.PerDayWithDriver = unitsToMoneyPtr(perDayDrv)
	rates.PerWeekWithDriver = unitsToMoneyPtr(perWeekDrv)
	rates.PerMonthWithDriver = unitsToMoneyPtr(perMonthDrv)

	return rates, nil
}

// PutTierRates inserts or replaces a product's rate card
func (r *Repository) PutTierRates(ctx context.Context, rates *TierRates) error {
	query := `
		INSERT INTO tier_rates (product_id, per_day, per_week, per_month,
			per_day_with_driver, per_week_with_driver, per_month_with_driver, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
		ON CONFLICT (product_id) DO UPDATE SET
			per_day = EXCLUDED.per_day,
			per_week = EXCLUDED.per_week,
			per_month = EXCLUDED.per_month,
			per_day_with_driver = EXCLUDED.per_day_with_driver,
			per_week_with_driver = EXCLUDED.per_week_with_driver,
			per_month_with_driver = EXCLUDED.per_month_with_driver,
			updated_at = NOW()
	`

	_, err := r.db.Exec(ctx, query,
		rates.ProductID,
		moneyPtrToUnits(rates.PerDay),
		moneyPtrToUnits(rates.PerWeek),
		moneyPtrToUnits(rates.PerMonth),
		moneyPtrToUnits(rates.PerDayWithDriver),
		moneyPtrToUnits(rates.PerWeekWithDriver),
		moneyPtrToUnits(rates.PerMonthWithDriver),
	)

	if err != nil {
		return fmt.Errorf("failed to put tier rates: %w", err)
	}

	return nil
}

// GetActiveDiscount retrieves the discount active for a product at the
// given instant. Returns nil when none applies. When several windows
// overlap the most recently created one wins.
func (r *Repository) GetActiveDiscount(ctx context.Context, productID uuid.UUID, now time.Time) (*Discount, error) {
	query := `
		SELECT id, product_id, discount_type, percent_bp, amount, valid_from, valid_to, is_active, created_at, updated_at
		FROM discounts
		WHERE product_id = $1 AND is_active = TRUE AND valid_from <= $2 AND valid_to > $2
		ORDER BY created_at DESC
		LIMIT 1
	`

	discount := &Discount{}
	var percentBP *int64
	var amount *int64
	err := r.db.QueryRow(ctx, query, productID, now).Scan(
		&discount.ID,
		&discount.ProductID,
		&discount.Type,
		&percentBP,
		&amount,
		&discount.ValidFrom,
		&discount.ValidTo,
		&discount.IsActive,
		&discount.CreatedAt,
		&discount.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get active discount: %w", err)
	}

	discount.Percent = unitsToPercentPtr(percentBP)
	discount.Amount = unitsToMoneyPtr(amount)
	return discount, nil
}

// CreateDiscount creates a new discount
func (r *Repository) CreateDiscount(ctx context.Context, discount *Discount) error {
	query := `
		INSERT INTO discounts (id, product_id, discount_type, percent_bp, amount,
			valid_from, valid_to, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	discount.ID = uuid.New()
	now := time.Now()
	discount.CreatedAt = now
	discount.UpdatedAt = now

	_, err := r.db.Exec(ctx, query,
		discount.ID,
		discount.ProductID,
		discount.Type,
		percentPtrToUnits(discount.Percent),
		moneyPtrToUnits(discount.Amount),
		discount.ValidFrom,
		discount.ValidTo,
		discount.IsActive,
		discount.CreatedAt,
		discount.UpdatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to create discount: %w", err)
	}

	return nil
}

// UpdateDiscount updates an existing discount
func (r *Repository) UpdateDiscount(ctx context.Context, discount *Discount) error {
	query := `
		UPDATE discounts
		SET discount_type = $2,
		    percent_bp = $3,
		    amount = $4,
		    valid_from = $5,
		    valid_to = $6,
		    is_active = $7,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query,
		discount.ID,
		discount.Type,
		percentPtrToUnits(discount.Percent),
		moneyPtrToUnits(discount.Amount),
		discount.ValidFrom,
		discount.ValidTo,
		discount.IsActive,
	)

	if err != nil {
		return fmt.Errorf("failed to update discount: %w", err)
	}

	return nil
}

// DeactivateDiscount deactivates a discount
func (r *Repository) DeactivateDiscount(ctx context.Context, discountID uuid.UUID) error {
	query := `
		UPDATE discounts
		SET is_active = FALSE,
		    updated_at = NOW()
		WHERE id = $1
	`

	_, err := r.db.Exec(ctx, query, discountID)
	if err != nil {
		return fmt.Errorf("failed to deactivate discount: %w", err)
	}

	return nil
}

// ListDiscounts retrieves all discounts for a product
func (r *Repository) ListDiscounts(ctx context.Context, productID uuid.UUID) ([]*Discount, error) {
	query := `
		SELECT id, product_id, discount_type, percent_bp, amount, valid_from, valid_to, is_active, created_at, updated_at
		FROM discounts
		WHERE product_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list discounts: %w", err)
	}
	defer rows.Close()

	discounts := []*Discount{}
	for rows.Next() {
		discount := &Discount{}
		var percentBP *int64
		var amount *int64
		err := rows.Scan(
			&discount.ID,
			&discount.ProductID,
			&discount.Type,
			&percentBP,
			&amount,
			&discount.ValidFrom,
			&discount.ValidTo,
			&discount.IsActive,
			&discount.CreatedAt,
			&discount.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan discount: %w", err)
		}
		discount.Percent = unitsToPercentPtr(percentBP)
		discount.Amount = unitsToMoneyPtr(amount)
		discounts = append(discounts, discount)
	}

	return discounts, nil
}

func moneyPtrToUnits(m *money.Money) *int64 {
	if m == nil {
		return nil
	}
	units := m.Units()
	return &units
}

func unitsToMoneyPtr(units *int64) *money.Money {
	if units == nil {
		return nil
	}
	m := money.FromUnits(*units)
	return &m
}

func percentPtrToUnits(p *money.Percent) *int64 {
	if p == nil {
		return nil
	}
	bp := int64(*p)
	return &bp
}

func unitsToPercentPtr(bp *int64) *money.Percent {
	if bp == nil {
		return nil
	}
	p := money.Percent(*bp)
	return &p
}
