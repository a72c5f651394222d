package web

import (
	"log"
	"net/http"
	"sort"

	"backoffice/internal/api"
	"backoffice/internal/manager"
)

// monthRowView is one month's aggregated sales.
type monthRowView struct {
	Month  string
	Amount string
}

// dashboardView feeds the dashboard template; every figure is pre-aggregated
// by the remote API and displayed as-is.
type dashboardView struct {
	VendorsCount       int
	CustomersCount     int
	ProductsCount      int
	TotalSales         string
	TotalPurchaseValue string
	TotalStockValue    string
	Monthly            []monthRowView
}

// dashboardPage handles GET /.
func (h *Handler) dashboardPage(w http.ResponseWriter, r *http.Request) {
	client, _ := h.clientFor(r)

	d := h.newPageData(r, "Dashboard", "dashboard", nil)
	stats, err := client.DashboardStats(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		log.Printf("dashboard stats: %v", err)
		d.FlashMsg, d.FlashKind = "Failed to load dashboard statistics", "error"
		stats = &api.DashboardStats{}
	}

	view := dashboardView{
		VendorsCount:       stats.VendorsCount,
		CustomersCount:     stats.CustomersCount,
		ProductsCount:      stats.ProductsCount,
		TotalSales:         manager.FormatCurrency(h.cfg.CurrencySymbol, stats.TotalSales),
		TotalPurchaseValue: manager.FormatCurrency(h.cfg.CurrencySymbol, stats.TotalPurchaseValue),
		TotalStockValue:    manager.FormatCurrency(h.cfg.CurrencySymbol, stats.TotalStockValue),
	}

	months := make([]string, 0, len(stats.MonthlySales))
	for m := range stats.MonthlySales {
		months = append(months, m)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(months))) // "2026-08" keys sort newest first
	for _, m := range months {
		view.Monthly = append(view.Monthly, monthRowView{
			Month:  m,
			Amount: manager.FormatCurrency(h.cfg.CurrencySymbol, stats.MonthlySales[m]),
		})
	}

	d.Data = view
	h.render(w, "dashboard", d)
}

// stockRowView is one product's valuation row.
type stockRowView struct {
	Name          string
	Quantity      int
	PurchasePrice string
	SellingPrice  string
	Value         string
}

// stockView feeds the stock template.
type stockView struct {
	TotalValue string
	Rows       []stockRowView
}

// stockPage handles GET /stock.
func (h *Handler) stockPage(w http.ResponseWriter, r *http.Request) {
	client, _ := h.clientFor(r)

	d := h.newPageData(r, "Stock", "stock", nil)
	report, err := client.Stock(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		log.Printf("stock report: %v", err)
		d.FlashMsg, d.FlashKind = "Failed to load stock report", "error"
		report = &api.StockReport{}
	}

	view := stockView{
		TotalValue: manager.FormatCurrency(h.cfg.CurrencySymbol, report.TotalStockValue),
	}
	for _, p := range report.Products {
		view.Rows = append(view.Rows, stockRowView{
			Name:          p.ProductName,
			Quantity:      p.Quantity,
			PurchasePrice: manager.FormatCurrency(h.cfg.CurrencySymbol, p.PurchasePrice),
			SellingPrice:  manager.FormatCurrency(h.cfg.CurrencySymbol, p.SellingPrice),
			Value:         manager.FormatCurrency(h.cfg.CurrencySymbol, p.StockValue),
		})
	}

	d.Data = view
	h.render(w, "stock", d)
}

// companyPage handles GET /company — admin only. For everyone else the nav
// link is absent and the route 404s, matching the fail-closed delete gating.
func (h *Handler) companyPage(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil || claims.Role != api.RoleAdmin {
		http.NotFound(w, r)
		return
	}
	client, _ := h.clientFor(r)

	d := h.newPageData(r, "Company Profile", "company", nil)
	company, err := client.Company(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		log.Printf("company profile: %v", err)
		d.FlashMsg, d.FlashKind = "Failed to load company profile", "error"
		company = &api.Company{}
	}

	d.Data = company
	h.render(w, "company", d)
}

// companyUpdateAction handles POST /company — admin only.
func (h *Handler) companyUpdateAction(w http.ResponseWriter, r *http.Request) {
	claims := claimsFromContext(r.Context())
	if claims == nil || claims.Role != api.RoleAdmin {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	input := api.CompanyInput{
		Name:      r.FormValue("name"),
		Address:   r.FormValue("address"),
		Phone:     r.FormValue("phone"),
		Email:     r.FormValue("email"),
		TaxNumber: r.FormValue("tax_number"),
	}
	if input.Name == "" || input.Address == "" {
		flashRedirect(w, r, "/company", "error", "Name and address are required")
		return
	}

	client, _ := h.clientFor(r)
	if _, err := client.UpdateCompany(r.Context(), input); err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		flashRedirect(w, r, "/company", "error", "Failed to save company profile")
		return
	}
	flashRedirect(w, r, "/company", "success", "Company profile saved")
}
