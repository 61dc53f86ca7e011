package pricing

import (
	"time"

	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/money"
)

const (
	daysPerMonth = 30
	daysPerWeek  = 7
)

// Calculator computes the undiscounted base price of a booking span.
type Calculator struct{}

// NewCalculator creates a new tier calculator
func NewCalculator() *Calculator {
	return &Calculator{}
}

// TotalDays returns the billable day count of a span. Both endpoints are
// billable, so a same-day rental is one day. Timestamps are reduced to UTC
// calendar dates first, so mixed client offsets cannot shift the count.
func TotalDays(req *Request) int {
	start := utcDate(req.StartDate)
	end := utcDate(req.EndDate)
	return int(end.Sub(start).Hours()/24) + 1
}

func utcDate(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// CarBase decomposes a rental span into billing tiers and sums them. The
// split is greedy by calendar size: whole 30-day months first, whole weeks
// next, leftover days last. Missing month or week tiers fall through to the
// next smaller unit; a missing day rate for the requested driver mode is an
// error because leftovers then can't be billed.
func (c *Calculator) CarBase(rates *catalog.TierRates, req *Request) (money.Money, *TierBreakdown, error) {
	totalDays := TotalDays(req)
	if totalDays <= 0 {
		return 0, nil, common.NewUnprocessableError(common.CodeInvalidSpan, "end date must not be before start date", nil)
	}

	dayRate, weekRate, monthRate := rates.ForDriverMode(req.WithDriver)
	if dayRate == nil {
		return 0, nil, common.NewUnprocessableError(common.CodeNoApplicableRate, "no day rate configured for the requested driver mode", nil)
	}

	breakdown := &TierBreakdown{}
	remaining := totalDays

	if monthRate != nil {
		breakdown.Months = remaining / daysPerMonth
		remaining %= daysPerMonth
		breakdown.MonthSubtotal = monthRate.MulInt(int64(breakdown.Months))
	}

	if weekRate != nil {
		breakdown.Weeks = remaining / daysPerWeek
		remaining %= daysPerWeek
		breakdown.WeekSubtotal = weekRate.MulInt(int64(breakdown.Weeks))
	}

	breakdown.Days = remaining
	breakdown.DaySubtotal = dayRate.MulInt(int64(remaining))

	base := breakdown.MonthSubtotal.Add(breakdown.WeekSubtotal).Add(breakdown.DaySubtotal)
	return base, breakdown, nil
}

// TripBase prices a trip as the per-person rate times the participant count.
func (c *Calculator) TripBase(product *catalog.Product, req *Request) (money.Money, error) {
	if req.Participants <= 0 {
		return 0, common.NewValidationError("participants must be positive")
	}
	if product.RatePerPerson == nil {
		return 0, common.NewUnprocessableError(common.CodeNoApplicableRate, "trip has no per-person rate", nil)
	}

	return product.RatePerPerson.MulInt(int64(req.Participants)), nil
}
