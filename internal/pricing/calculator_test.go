package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sahalat/booking-engine/internal/catalog"
	"github.com/sahalat/booking-engine/pkg/common"
	"github.com/sahalat/booking-engine/pkg/money"
)

func day(d int) time.Time {
	return time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, d)
}

func moneyPtr(s string) *money.Money {
	m := money.MustFromString(s)
	return &m
}

func spanRequest(days int) *Request {
	// A span of N billable days runs from day 0 through day N-1 inclusive.
	return &Request{StartDate: day(0), EndDate: day(days - 1)}
}

func TestCarBaseGreedyDecomposition(t *testing.T) {
	calc := NewCalculator()
	rates := &catalog.TierRates{
		PerDay:   moneyPtr("10.000"),
		PerWeek:  moneyPtr("60.000"),
		PerMonth: moneyPtr("200.000"),
	}

	tests := []struct {
		name   string
		days   int
		months int
		weeks  int
		rest   int
		base   string
	}{
		{"single day", 1, 0, 0, 1, "10.000"},
		{"six days", 6, 0, 0, 6, "60.000"},
		{"exactly one week", 7, 0, 1, 0, "60.000"},
		{"ten days", 10, 0, 1, 3, "90.000"},
		{"four weeks stays weekly", 28, 0, 4, 0, "240.000"},
		{"exactly one month", 30, 1, 0, 0, "200.000"},
		{"month plus week plus days", 40, 1, 1, 3, "290.000"},
		{"two months", 60, 2, 0, 0, "400.000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			base, breakdown, err := calc.CarBase(rates, spanRequest(tt.days))
			assert.NoError(t, err)
			assert.Equal(t, tt.months, breakdown.Months)
			assert.Equal(t, tt.weeks, breakdown.Weeks)
			assert.Equal(t, tt.rest, breakdown.Days)
			assert.Equal(t, money.MustFromString(tt.base), base)
		})
	}
}

func TestCarBaseGreedyEvenWhenCheaperSplitExists(t *testing.T) {
	// 7 days at a week rate dearer than 7 day rates still bills the week.
	calc := NewCalculator()
	rates := &catalog.TierRates{
		PerDay:  moneyPtr("10.000"),
		PerWeek: moneyPtr("100.000"),
	}

	base, breakdown, err := calc.CarBase(rates, spanRequest(7))
	assert.NoError(t, err)
	assert.Equal(t, 1, breakdown.Weeks)
	assert.Equal(t, 0, breakdown.Days)
	assert.Equal(t, money.MustFromString("100.000"), base)
}

func TestCarBaseMissingWeekTierFallsToDays(t *testing.T) {
	calc := NewCalculator()
	rates := &catalog.TierRates{PerDay: moneyPtr("10.000")}

	base, breakdown, err := calc.CarBase(rates, spanRequest(10))
	assert.NoError(t, err)
	assert.Equal(t, 0, breakdown.Months)
	assert.Equal(t, 0, breakdown.Weeks)
	assert.Equal(t, 10, breakdown.Days)
	assert.Equal(t, money.MustFromString("100.000"), base)
}

func TestCarBaseMissingMonthTierFallsToWeeks(t *testing.T) {
	calc := NewCalculator()
	rates := &catalog.TierRates{
		PerDay:  moneyPtr("10.000"),
		PerWeek: moneyPtr("60.000"),
	}

	base, breakdown, err := calc.CarBase(rates, spanRequest(30))
	assert.NoError(t, err)
	assert.Equal(t, 0, breakdown.Months)
	assert.Equal(t, 4, breakdown.Weeks)
	assert.Equal(t, 2, breakdown.Days)
	assert.Equal(t, money.MustFromString("260.000"), base)
}

func TestCarBaseDriverModeUsesDriverRates(t *testing.T) {
	calc := NewCalculator()
	rates := &catalog.TierRates{
		PerDay:           moneyPtr("10.000"),
		PerDayWithDriver: moneyPtr("18.000"),
	}

	req := spanRequest(2)
	req.WithDriver = true

	base, _, err := calc.CarBase(rates, req)
	assert.NoError(t, err)
	assert.Equal(t, money.MustFromString("36.000"), base)
}

func TestCarBaseNoDayRateForDriverMode(t *testing.T) {
	calc := NewCalculator()
	rates := &catalog.TierRates{PerDay: moneyPtr("10.000")}

	req := spanRequest(2)
	req.WithDriver = true

	_, _, err := calc.CarBase(rates, req)
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeNoApplicableRate, appErr.ErrorCode)
}

func TestCarBaseEndBeforeStart(t *testing.T) {
	calc := NewCalculator()
	rates := &catalog.TierRates{PerDay: moneyPtr("10.000")}

	_, _, err := calc.CarBase(rates, &Request{StartDate: day(5), EndDate: day(2)})
	var appErr *common.AppError
	assert.ErrorAs(t, err, &appErr)
	assert.Equal(t, common.CodeInvalidSpan, appErr.ErrorCode)
}

func TestCarBaseSameDayIsOneDay(t *testing.T) {
	calc := NewCalculator()
	rates := &catalog.TierRates{PerDay: moneyPtr("10.000")}

	base, breakdown, err := calc.CarBase(rates, &Request{StartDate: day(3), EndDate: day(3)})
	assert.NoError(t, err)
	assert.Equal(t, 1, breakdown.Days)
	assert.Equal(t, money.MustFromString("10.000"), base)
}

func TestTotalDaysNormalizesMixedOffsets(t *testing.T) {
	// Gulf Standard Time start, UTC end. The count follows UTC calendar
	// dates, not the raw duration between the instants.
	gst := time.FixedZone("GST", 4*60*60)
	req := &Request{
		StartDate: time.Date(2026, 3, 1, 23, 0, 0, 0, gst), // Mar 1 19:00 UTC
		EndDate:   time.Date(2026, 3, 3, 1, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 3, TotalDays(req))
}

func TestTotalDaysOffsetShiftsCalendarDate(t *testing.T) {
	// 02:00 at +04:00 is still the previous UTC day.
	gst := time.FixedZone("GST", 4*60*60)
	req := &Request{
		StartDate: time.Date(2026, 3, 2, 2, 0, 0, 0, gst), // Mar 1 22:00 UTC
		EndDate:   time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, 2, TotalDays(req))
}

func TestTripBase(t *testing.T) {
	calc := NewCalculator()
	product := &catalog.Product{Type: catalog.ProductTrip, RatePerPerson: moneyPtr("35.000")}

	base, err := calc.TripBase(product, &Request{Participants: 4})
	assert.NoError(t, err)
	assert.Equal(t, money.MustFromString("140.000"), base)
}

func TestTripBaseRequiresParticipants(t *testing.T) {
	calc := NewCalculator()
	product := &catalog.Product{Type: catalog.ProductTrip, RatePerPerson: moneyPtr("35.000")}

	_, err := calc.TripBase(product, &Request{Participants: 0})
	assert.Error(t, err)
}
