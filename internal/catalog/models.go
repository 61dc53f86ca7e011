package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/sahalat/booking-engine/pkg/money"
)

// ProductType distinguishes the two bookable product families.
type ProductType string

const (
	ProductCar  ProductType = "car"
	ProductTrip ProductType = "trip"
)

// Product is a bookable item: a rental car billed by tier, or a trip billed
// per person.
type Product struct {
	ID            uuid.UUID    `json:"id"`
	Type          ProductType  `json:"product_type"`
	Name          string       `json:"name"`
	RatePerPerson *money.Money `json:"rate_per_person,omitempty"` // trips only
	DurationDays  *int         `json:"duration_days,omitempty"`   // trips only
	IsActive      bool         `json:"is_active"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}

// TierRates is a car product's rate card. A nil tier means the product does
// not bill by that unit and the calculator falls through to the next smaller
// one. The per-day rate for the requested driver mode is the mandatory
// fallback unit.
type TierRates struct {
	ProductID          uuid.UUID    `json:"product_id"`
	PerDay             *money.Money `json:"per_day,omitempty"`
	PerWeek            *money.Money `json:"per_week,omitempty"`
	PerMonth           *money.Money `json:"per_month,omitempty"`
	PerDayWithDriver   *money.Money `json:"per_day_with_driver,omitempty"`
	PerWeekWithDriver  *money.Money `json:"per_week_with_driver,omitempty"`
	PerMonthWithDriver *money.Money `json:"per_month_with_driver,omitempty"`
	UpdatedAt          time.Time    `json:"updated_at"`
}

// ForDriverMode returns the (day, week, month) rates for the requested
// driver mode.
func (t *TierRates) ForDriverMode(withDriver bool) (day, week, month *money.Money) {
	if withDriver {
		return t.PerDayWithDriver, t.PerWeekWithDriver, t.PerMonthWithDriver
	}
	return t.PerDay, t.PerWeek, t.PerMonth
}

// DiscountType tags how a discount value is interpreted.
type DiscountType string

const (
	DiscountPercentage DiscountType = "percentage"
	DiscountFixed      DiscountType = "fixed"
)

// Discount is an admin-configured, time-windowed promotional markdown
// attached to a product.
type Discount struct {
	ID        uuid.UUID      `json:"id"`
	ProductID uuid.UUID      `json:"product_id"`
	Type      DiscountType   `json:"discount_type"`
	Percent   *money.Percent `json:"percent,omitempty"` // percentage type
	Amount    *money.Money   `json:"amount,omitempty"`  // fixed type
	ValidFrom time.Time      `json:"valid_from"`
	ValidTo   time.Time      `json:"valid_to"`
	IsActive  bool           `json:"is_active"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// ActiveAt reports whether the discount applies at the given instant.
// ValidFrom is inclusive, ValidTo exclusive.
func (d *Discount) ActiveAt(now time.Time) bool {
	return d.IsActive && !now.Before(d.ValidFrom) && now.Before(d.ValidTo)
}
