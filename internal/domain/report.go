package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// SalesTotals is the raw aggregate of one reporting window.
type SalesTotals struct {
	PaidOrders   int
	UnpaidOrders int
	TotalSales   decimal.Decimal
}

// DailyReport summarizes one calendar day. PaidCount always equals
// TotalOrders: only paid orders count as sales.
type DailyReport struct {
	Date        time.Time
	TotalOrders int
	PaidCount   int
	UnpaidCount int
	TotalSales  decimal.Decimal
}

func NewDailyReport(day time.Time, totals SalesTotals) *DailyReport {
	return &DailyReport{
		Date:        day,
		TotalOrders: totals.PaidOrders,
		PaidCount:   totals.PaidOrders,
		UnpaidCount: totals.UnpaidOrders,
		TotalSales:  totals.TotalSales,
	}
}

// DayBounds returns the half-open interval [start, end) covering the calendar
// day of t in loc.
func DayBounds(t time.Time, loc *time.Location) (time.Time, time.Time) {
	t = t.In(loc)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 0, 1)
}
