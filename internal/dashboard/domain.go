package dashboard

import "time"

// DayRevenue is one day's slice of a revenue breakdown.
type DayRevenue struct {
	Date    string `json:"date"`
	Revenue int64  `json:"revenue"`
}

// RangeStats aggregates order revenue over a date range. Revenue here is
// unconditional: every order counts regardless of payment status, so the
// number reads as booked sales, not collected cash.
type RangeStats struct {
	StartDate    time.Time    `json:"startDate"`
	EndDate      time.Time    `json:"endDate"`
	TotalRevenue int64        `json:"totalRevenue"`
	OrderCount   int64        `json:"orderCount"`
	RevenueData  []DayRevenue `json:"revenueData"`
}

// TodayStats is the landing-page overview for the current day.
type TodayStats struct {
	Date             time.Time `json:"date"`
	TotalRevenue     int64     `json:"totalRevenue"`
	OrderCount       int64     `json:"orderCount"`
	PaidOrders       int64     `json:"paidOrders"`
	ReservationCount int64     `json:"reservationCount"`
}

// ProfitStats sets paid-only revenue against import spend. Unlike
// RangeStats it ignores unpaid orders, so the two totals can disagree for
// the same range and both are right.
type ProfitStats struct {
	Period       string    `json:"period"`
	StartDate    time.Time `json:"startDate"`
	EndDate      time.Time `json:"endDate"`
	TotalRevenue int64     `json:"totalRevenue"`
	TotalCost    int64     `json:"totalCost"`
	GrossProfit  int64     `json:"grossProfit"`
	ProfitMargin float64   `json:"profitMargin"`
}

// TopItem is one row of the best-seller ranking.
type TopItem struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	QuantitySold int64  `json:"quantity"`
	Revenue      int64  `json:"revenue"`
}
