package web

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"backoffice/internal/api"
	"backoffice/internal/composer"
	"backoffice/internal/invoice"
	"backoffice/internal/manager"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// saleRowView is one row of the sales list.
type saleRowView struct {
	ID           string
	Reference    string
	CustomerName string
	ItemCount    int
	Total        string
	Date         string
}

// saleLineView is one composer line as rendered into the order form.
type saleLineView struct {
	Index     int
	ProductID string
	Quantity  int
	Price     string // raw number for the input field
	Total     string // currency-formatted display
}

// saleNewView feeds the sale_new template.
type saleNewView struct {
	Customers    []api.Customer
	Products     []api.Product
	CustomerID   string
	Lines        []saleLineView
	LineCount    int
	CanRemove    bool
	RunningTotal string
}

// salesListPage handles GET /sales.
func (h *Handler) salesListPage(w http.ResponseWriter, r *http.Request) {
	client, _ := h.clientFor(r)

	d := h.newPageData(r, "Sales", "sales", nil)
	sales, err := client.Sales(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		log.Printf("list sales: %v", err)
		d.FlashMsg, d.FlashKind = "Failed to load sales", "error"
	}

	rows := make([]saleRowView, 0, len(sales))
	for i := range sales {
		s := &sales[i]
		rows = append(rows, saleRowView{
			ID:           s.ID,
			Reference:    invoice.Reference(s),
			CustomerName: s.CustomerName,
			ItemCount:    len(s.Items),
			Total:        manager.FormatCurrency(h.cfg.CurrencySymbol, s.TotalAmount),
			Date:         s.CreatedAt.Format("02 Jan 2006"),
		})
	}
	d.Data = rows
	h.render(w, "sales_list", d)
}

// saleNewPage handles GET /sales/new — the composer in its initial
// one-empty-line state over freshly fetched catalogs.
func (h *Handler) saleNewPage(w http.ResponseWriter, r *http.Request) {
	client, _ := h.clientFor(r)
	customers, products, err := h.fetchCatalogs(w, r, client)
	if err != nil {
		return
	}
	comp := composer.New(client, products)
	h.renderComposer(w, r, comp, customers, products, "")
}

// saleNewAction handles POST /sales/new. The composer is rebuilt from the
// posted form each round-trip; add/remove/reprice actions re-render the form
// and only the submit action posts the order to the remote API.
func (h *Handler) saleNewAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	client, _ := h.clientFor(r)
	customers, products, err := h.fetchCatalogs(w, r, client)
	if err != nil {
		return
	}

	comp := composer.New(client, products)
	rebuildComposer(comp, r)

	action := r.FormValue("action")
	switch {
	case action == "add":
		comp.AddLine()
		h.renderComposer(w, r, comp, customers, products, "")
		return
	case strings.HasPrefix(action, "remove-"):
		if i, err := strconv.Atoi(strings.TrimPrefix(action, "remove-")); err == nil {
			comp.RemoveLine(i)
		}
		h.renderComposer(w, r, comp, customers, products, "")
		return
	case action == "reprice":
		// Selection changes were already applied by the rebuild.
		h.renderComposer(w, r, comp, customers, products, "")
		return
	}

	if _, err := comp.Submit(r.Context()); err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		// Blocking notification; composer state untouched for retry.
		h.renderComposer(w, r, comp, customers, products, err.Error())
		return
	}
	flashRedirect(w, r, "/sales", "success", "Sale recorded")
}

// invoiceDownload handles GET /sales/{id}/invoice — renders the persisted
// sale as a downloadable document.
func (h *Handler) invoiceDownload(w http.ResponseWriter, r *http.Request) {
	client, _ := h.clientFor(r)

	sale, err := client.Sale(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		flashRedirect(w, r, "/sales", "error", "Sale not found")
		return
	}
	company, err := client.Company(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		flashRedirect(w, r, "/sales", "error", "Failed to load company profile")
		return
	}

	doc, err := invoice.Generate(sale, company, h.cfg.CurrencySymbol)
	if err != nil {
		log.Printf("invoice %s: %v", sale.ID, err)
		flashRedirect(w, r, "/sales", "error", "Failed to generate invoice")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+invoice.Filename(sale)+`"`)
	_, _ = w.Write(doc)
}

// fetchCatalogs loads the customer and product collections the composer
// depends on. Reports nil slices with the response already written on
// unauthorized; other failures render as an empty composer with a banner.
func (h *Handler) fetchCatalogs(w http.ResponseWriter, r *http.Request, client *api.Client) ([]api.Customer, []api.Product, error) {
	customers, err := client.Customers(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return nil, nil, err
		}
		log.Printf("list customers: %v", err)
		customers = nil
	}
	products, err := client.Products(r.Context())
	if err != nil {
		if h.handleUnauthorized(w, r, err) {
			return nil, nil, err
		}
		log.Printf("list products: %v", err)
		products = nil
	}
	return customers, products, nil
}

// rebuildComposer rehydrates the composer from the posted form. A line whose
// product selection changed since the last render goes through SelectProduct
// and gets the catalog's current name and price; unchanged lines keep the
// posted (possibly hand-edited) price.
func rebuildComposer(comp *composer.Composer, r *http.Request) {
	comp.SelectCustomer(r.FormValue("customer_id"))

	count, _ := strconv.Atoi(r.FormValue("line_count"))
	for len(comp.Lines()) < count {
		comp.AddLine()
	}

	for i := 0; i < count; i++ {
		idx := strconv.Itoa(i)

		if qty, err := strconv.Atoi(r.FormValue("quantity_" + idx)); err == nil {
			comp.SetQuantity(i, qty)
		}
		if price, err := decimal.NewFromString(r.FormValue("price_" + idx)); err == nil {
			comp.SetPrice(i, price)
		}

		product := r.FormValue("product_" + idx)
		previous := r.FormValue("prev_product_" + idx)
		if product != previous {
			comp.SelectProduct(i, product)
		} else {
			comp.BindProduct(i, product)
		}
	}
}

// renderComposer renders the order form from the composer's current state.
func (h *Handler) renderComposer(w http.ResponseWriter, r *http.Request, comp *composer.Composer, customers []api.Customer, products []api.Product, errMsg string) {
	view := saleNewView{
		Customers:    customers,
		Products:     products,
		CustomerID:   comp.CustomerID(),
		LineCount:    len(comp.Lines()),
		CanRemove:    comp.CanRemove(),
		RunningTotal: manager.FormatCurrency(h.cfg.CurrencySymbol, comp.Total()),
	}
	for i, l := range comp.Lines() {
		view.Lines = append(view.Lines, saleLineView{
			Index:     i,
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     l.SellingPrice.String(),
			Total:     manager.FormatCurrency(h.cfg.CurrencySymbol, l.TotalAmount),
		})
	}

	d := h.newPageData(r, "New Sale", "sales", view)
	if errMsg != "" {
		d.FlashMsg, d.FlashKind = errMsg, "error"
	}
	h.render(w, "sale_new", d)
}
