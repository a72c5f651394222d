// Package composer builds a multi-line sales order: line items bound to
// product references, denormalized name/price copies taken at selection
// time, per-line totals, and a single atomic submission to the remote API.
package composer

import (
	"context"
	"fmt"

	"backoffice/internal/api"

	"github.com/shopspring/decimal"
)

// Line is one product/quantity/price row of the order being composed.
// ProductName and SellingPrice are copies of the catalog values at selection
// time; they are not re-synced if the catalog changes afterwards — only the
// submission pass re-resolves them.
type Line struct {
	ProductID    string
	ProductName  string
	Quantity     int
	SellingPrice decimal.Decimal
	TotalAmount  decimal.Decimal
}

// SalesAPI is the slice of the remote client the composer submits through.
type SalesAPI interface {
	CreateSale(ctx context.Context, input api.SaleInput) (*api.Sale, error)
}

// Composer holds the order-in-progress. One instance per composition flow;
// not safe for concurrent use.
type Composer struct {
	client     SalesAPI
	catalog    []api.Product
	customerID string
	lines      []Line
}

// New builds a composer over the currently loaded product catalog, starting
// from the initial one-empty-line state.
func New(client SalesAPI, catalog []api.Product) *Composer {
	c := &Composer{client: client, catalog: catalog}
	c.Reset()
	return c
}

// Reset returns to the initial state: no customer, exactly one empty line.
func (c *Composer) Reset() {
	c.customerID = ""
	c.lines = []Line{{Quantity: 1}}
}

// Lines returns the current line items in order.
func (c *Composer) Lines() []Line { return c.lines }

// CustomerID returns the selected customer, or "".
func (c *Composer) CustomerID() string { return c.customerID }

// SelectCustomer binds the order to a customer.
func (c *Composer) SelectCustomer(id string) { c.customerID = id }

// AddLine appends one empty line item.
func (c *Composer) AddLine() {
	c.lines = append(c.lines, Line{Quantity: 1})
}

// CanRemove reports whether any line may be removed. The sequence never
// shrinks below one line; at the floor the remove control is disabled, not
// hidden, so the user can see the limit.
func (c *Composer) CanRemove() bool { return len(c.lines) > 1 }

// RemoveLine removes the line at index i. A no-op at the one-line floor or
// for an out-of-range index.
func (c *Composer) RemoveLine(i int) {
	if !c.CanRemove() || i < 0 || i >= len(c.lines) {
		return
	}
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
}

// BindProduct rehydrates line i's product reference from a posted form
// without re-copying catalog values. Used when the selection has not changed
// since the last render; a changed selection goes through SelectProduct.
func (c *Composer) BindProduct(i int, productID string) {
	if i < 0 || i >= len(c.lines) {
		return
	}
	c.lines[i].ProductID = productID
	if p, ok := c.lookup(productID); ok {
		c.lines[i].ProductName = p.Name
	}
	c.recompute(&c.lines[i])
}

// SelectProduct binds line i to a product. When the id resolves against the
// loaded catalog, the line's name and price are overwritten with the
// catalog's current values — deliberately clobbering any hand-edited price
// in that slot ("always trust catalog price"). Re-selecting the same
// product is idempotent.
func (c *Composer) SelectProduct(i int, productID string) {
	if i < 0 || i >= len(c.lines) {
		return
	}
	line := &c.lines[i]
	line.ProductID = productID
	if p, ok := c.lookup(productID); ok {
		line.ProductName = p.Name
		line.SellingPrice = p.SellingPrice
	}
	c.recompute(line)
}

// SetQuantity overwrites line i's quantity and recomputes that line's total
// only. Quantity is floored at 1, mirroring the input-level minimum.
func (c *Composer) SetQuantity(i, n int) {
	if i < 0 || i >= len(c.lines) {
		return
	}
	if n < 1 {
		n = 1
	}
	c.lines[i].Quantity = n
	c.recompute(&c.lines[i])
}

// SetPrice overwrites line i's unit price and recomputes that line's total
// only. Negative input is floored at zero, mirroring the input-level bound.
func (c *Composer) SetPrice(i int, p decimal.Decimal) {
	if i < 0 || i >= len(c.lines) {
		return
	}
	if p.IsNegative() {
		p = decimal.Zero
	}
	c.lines[i].SellingPrice = p
	c.recompute(&c.lines[i])
}

// recompute refreshes one line's total from its own quantity and price.
// Other lines are never touched.
func (c *Composer) recompute(line *Line) {
	line.TotalAmount = line.SellingPrice.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// Total returns the displayed running total across lines. The persisted
// order total is server-assigned; this value is never submitted.
func (c *Composer) Total() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.TotalAmount)
	}
	return sum
}

// Submit re-derives every line's product name and total from the current
// catalog and the current quantity/price — an authoritative second pass,
// independent of whatever the lines display — then posts the whole order as
// one request. On success the composer resets to its initial state; on
// failure the lines are left untouched for retry.
func (c *Composer) Submit(ctx context.Context) (*api.Sale, error) {
	if c.customerID == "" {
		return nil, fmt.Errorf("no customer selected")
	}

	items := make([]api.SaleItem, 0, len(c.lines))
	for idx, l := range c.lines {
		if l.ProductID == "" {
			return nil, fmt.Errorf("line %d: no product selected", idx+1)
		}
		name := l.ProductName
		if p, ok := c.lookup(l.ProductID); ok {
			name = p.Name
		}
		items = append(items, api.SaleItem{
			ProductID:    l.ProductID,
			ProductName:  name,
			Quantity:     l.Quantity,
			SellingPrice: l.SellingPrice,
			TotalAmount:  l.SellingPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
		})
	}

	sale, err := c.client.CreateSale(ctx, api.SaleInput{CustomerID: c.customerID, Items: items})
	if err != nil {
		return nil, fmt.Errorf("submit sale: %w", err)
	}
	c.Reset()
	return sale, nil
}

func (c *Composer) lookup(productID string) (api.Product, bool) {
	for _, p := range c.catalog {
		if p.ID == productID {
			return p, true
		}
	}
	return api.Product{}, false
}
