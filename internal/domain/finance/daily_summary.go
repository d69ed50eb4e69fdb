package finance

import (
	"github.com/erp/cashdesk/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

// PaymentDaySummary is the per-method aggregation of one day's sale payments
type PaymentDaySummary struct {
	ByMethod         map[PaymentMethod]decimal.Decimal
	TransactionCount int
}

// DailySummary is the sales and cash movement of one business date.
// It is derived on demand and never stored.
type DailySummary struct {
	BusinessDate     valueobject.BusinessDate          `json:"business_date"`
	Currency         valueobject.Currency              `json:"currency"`
	TotalSales       decimal.Decimal                   `json:"total_sales"`
	CashSales        decimal.Decimal                   `json:"cash_sales"`
	SalesByMethod    map[PaymentMethod]decimal.Decimal `json:"sales_by_method"`
	TransactionCount int                               `json:"transaction_count"`
	CashExpenses     decimal.Decimal                   `json:"cash_expenses"`
	ExpenseCount     int                               `json:"expense_count"`
}

// NewDailySummary builds a summary from payment and expense aggregates.
// A nil payment summary means the day had no sales.
func NewDailySummary(
	date valueobject.BusinessDate,
	currency valueobject.Currency,
	payments *PaymentDaySummary,
	cashExpenses decimal.Decimal,
	expenseCount int,
) *DailySummary {
	s := &DailySummary{
		BusinessDate:  date,
		Currency:      currency,
		TotalSales:    decimal.Zero,
		CashSales:     decimal.Zero,
		SalesByMethod: make(map[PaymentMethod]decimal.Decimal),
		CashExpenses:  cashExpenses,
		ExpenseCount:  expenseCount,
	}
	if payments == nil {
		return s
	}

	for method, amount := range payments.ByMethod {
		s.SalesByMethod[method] = amount
		s.TotalSales = s.TotalSales.Add(amount)
		if method.IsCash() {
			s.CashSales = s.CashSales.Add(amount)
		}
	}
	s.TransactionCount = payments.TransactionCount
	return s
}

// NonCashSales returns sales collected through any channel other than cash
func (s *DailySummary) NonCashSales() decimal.Decimal {
	return s.TotalSales.Sub(s.CashSales)
}

// HasSales reports whether any sale was collected on the date
func (s *DailySummary) HasSales() bool {
	return s.TotalSales.IsPositive()
}
