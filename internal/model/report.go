package model

import "time"

// SalesTotals aggregates purchases in a reporting window.
type SalesTotals struct {
	RevenueCents   int64 `json:"revenue_cents"`
	TicketsSold    int64 `json:"tickets_sold"`
	PurchaseCount  int64 `json:"purchase_count"`
	DistinctBuyers int64 `json:"distinct_buyers"`
}

// PeriodSales is one bucket of a monthly or yearly series.  Period is
// "2006-01" for months and "2006" for years.
type PeriodSales struct {
	Period       string `json:"period"`
	RevenueCents int64  `json:"revenue_cents"`
	TicketsSold  int64  `json:"tickets_sold"`
}

// TopEvent ranks an event by revenue in the window.
type TopEvent struct {
	EventID      uint64 `json:"event_id"`
	EventName    string `json:"event_name"`
	Category     string `json:"category"`
	RevenueCents int64  `json:"revenue_cents"`
	TicketsSold  int64  `json:"tickets_sold"`
}

// TopBuyer ranks a buyer by revenue in the window.
type TopBuyer struct {
	BuyerID       string `json:"buyer_id"`
	RevenueCents  int64  `json:"revenue_cents"`
	TicketsSold   int64  `json:"tickets_sold"`
	PurchaseCount int64  `json:"purchase_count"`
}

// SalesReport is the admin dashboard payload.
type SalesReport struct {
	From      time.Time     `json:"from"`
	To        time.Time     `json:"to"`
	Totals    SalesTotals   `json:"totals"`
	Monthly   []PeriodSales `json:"monthly"`
	Yearly    []PeriodSales `json:"yearly"`
	TopEvents []TopEvent    `json:"top_events"`
	TopBuyers []TopBuyer    `json:"top_buyers"`
}
