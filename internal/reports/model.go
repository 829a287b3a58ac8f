package reports

// ProfitMarginRatio is the assumed gross margin applied to sales when
// estimating profit. Per-unit cost is not tracked, so every report derives
// profit as sales multiplied by this constant.
const ProfitMarginRatio = 0.40

// SalesByDayRow aggregates paid invoices per calendar day.
type SalesByDayRow struct {
	Date         string  `json:"date"`
	Sales        float64 `json:"sales"`
	Transactions int64   `json:"transactions"`
	Profit       float64 `json:"profit"`
}

// SalesByProductRow aggregates sold quantities and revenue per product.
type SalesByProductRow struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Quantity  int64   `json:"quantity"`
	Sales     float64 `json:"sales"`
	Profit    float64 `json:"profit"`
}

// SalesByCashierRow aggregates revenue per cashier. Invoices without a
// cashier are grouped under a nil CashierID.
type SalesByCashierRow struct {
	CashierID    *int64  `json:"cashier_id"`
	CashierName  string  `json:"cashier_name"`
	Transactions int64   `json:"transactions"`
	Sales        float64 `json:"sales"`
	Profit       float64 `json:"profit"`
}
