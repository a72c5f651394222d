package api

import (
	"time"

	"github.com/shopspring/decimal"
)

// User is the identity record returned by /auth/login and /auth/me.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Vendor is a supplier master record.
type Vendor struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Customer is a buyer master record.
type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// Product is a catalog item. Quantity is the current stock level maintained
// by the remote API; prices are per unit.
type Product struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	VendorID      string          `json:"vendor_id"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	CreatedAt     time.Time       `json:"created_at"`
}

// SaleItem is one line of a sale. ProductName and SellingPrice are
// denormalized copies of the catalog values at composition time.
type SaleItem struct {
	ProductID    string          `json:"product_id"`
	ProductName  string          `json:"product_name"`
	Quantity     int             `json:"quantity"`
	SellingPrice decimal.Decimal `json:"selling_price"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
}

// Sale is a persisted order. TotalAmount is server-assigned; the client
// never sends a precomputed order total.
type Sale struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	CustomerName string          `json:"customer_name"`
	Items        []SaleItem      `json:"items"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	CreatedAt    time.Time       `json:"created_at"`
}

// SaleInput is the atomic order submission payload for POST /sales.
type SaleInput struct {
	CustomerID string     `json:"customer_id"`
	Items      []SaleItem `json:"items"`
}

// Company is the issuer profile rendered on invoices.
type Company struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Phone     string    `json:"phone,omitempty"`
	Email     string    `json:"email,omitempty"`
	TaxNumber string    `json:"tax_number,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CompanyInput is the PUT /company payload.
type CompanyInput struct {
	Name      string `json:"name"`
	Address   string `json:"address"`
	Phone     string `json:"phone,omitempty"`
	Email     string `json:"email,omitempty"`
	TaxNumber string `json:"tax_number,omitempty"`
}

// DashboardStats is the pre-aggregated summary from GET /dashboard/stats.
type DashboardStats struct {
	VendorsCount       int                        `json:"vendors_count"`
	CustomersCount     int                        `json:"customers_count"`
	ProductsCount      int                        `json:"products_count"`
	TotalSales         decimal.Decimal            `json:"total_sales"`
	TotalPurchaseValue decimal.Decimal            `json:"total_purchase_value"`
	TotalStockValue    decimal.Decimal            `json:"total_stock_value"`
	MonthlySales       map[string]decimal.Decimal `json:"monthly_sales"`
}

// StockItem is one product's valuation row from GET /stock.
type StockItem struct {
	ProductID     string          `json:"product_id"`
	ProductName   string          `json:"product_name"`
	Quantity      int             `json:"quantity"`
	PurchasePrice decimal.Decimal `json:"purchase_price"`
	SellingPrice  decimal.Decimal `json:"selling_price"`
	StockValue    decimal.Decimal `json:"stock_value"`
}

// StockReport is the full stock valuation from GET /stock.
type StockReport struct {
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	Products        []StockItem     `json:"products"`
}

// Record is an opaque entity record: field name → scalar value, plus the
// server-assigned "id" key. The entity manager works on these; typed models
// above exist for flows that need real numeric and time semantics.
type Record map[string]any

// ID returns the server-assigned identifier, or "" for an unsaved record.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// Clone returns a shallow copy. Form state uses this to avoid aliasing the
// fetched list.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}
