package reports

import (
	"errors"
	"time"
)

// BalanceSheet is the point-in-time position assembled from the materialized
// balances: wallet cash, stock valued at variant cost, unpaid sales orders as
// receivables and unpaid purchase orders as payables.
type BalanceSheet struct {
	AsOf           time.Time `json:"as_of"`
	Cash           float64   `json:"cash"`
	InventoryValue float64   `json:"inventory_value"`
	Receivables    float64   `json:"receivables"`
	Payables       float64   `json:"payables"`
	TotalAssets    float64   `json:"total_assets"`
	NetPosition    float64   `json:"net_position"`
}

// AccountAmount is one chart-of-accounts line with its period total.
type AccountAmount struct {
	Code   string  `json:"code"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// ProfitLoss is the period result: sales against cost of goods, plus manual
// journal entries grouped by their revenue and expense categories.
type ProfitLoss struct {
	From         time.Time       `json:"from"`
	To           time.Time       `json:"to"`
	SalesRevenue float64         `json:"sales_revenue"`
	COGS         float64         `json:"cogs"`
	GrossProfit  float64         `json:"gross_profit"`
	OtherRevenue []AccountAmount `json:"other_revenue"`
	Expenses     []AccountAmount `json:"expenses"`
	NetProfit    float64         `json:"net_profit"`
}

// SalesSummary aggregates committed sales for a period.
type SalesSummary struct {
	From       time.Time `json:"from"`
	To         time.Time `json:"to"`
	OrderCount int64     `json:"order_count"`
	Gross      float64   `json:"gross"`
	Discount   float64   `json:"discount"`
	Net        float64   `json:"net"`
}

// ErrInvalidPeriod rejects reversed date ranges.
var ErrInvalidPeriod = errors.New("reports: from must not be after to")
