package composer_test

import (
	"context"
	"errors"
	"testing"

	"backoffice/internal/api"
	"backoffice/internal/composer"

	"github.com/shopspring/decimal"
)

type fakeSales struct {
	got  *api.SaleInput
	err  error
	sale *api.Sale
}

func (f *fakeSales) CreateSale(_ context.Context, input api.SaleInput) (*api.Sale, error) {
	f.got = &input
	if f.err != nil {
		return nil, f.err
	}
	if f.sale != nil {
		return f.sale, nil
	}
	return &api.Sale{ID: "s1", CustomerID: input.CustomerID, Items: input.Items}, nil
}

func catalog() []api.Product {
	return []api.Product{
		{ID: "p1", Name: "Widget", VendorID: "v1", Quantity: 10, SellingPrice: decimal.NewFromInt(100)},
		{ID: "p2", Name: "Gadget", VendorID: "v1", Quantity: 5, SellingPrice: decimal.NewFromInt(50)},
	}
}

func TestStartsWithOneEmptyLine(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	lines := c.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].ProductID != "" || lines[0].Quantity != 1 {
		t.Errorf("unexpected initial line %+v", lines[0])
	}
}

func TestPerLineTotalsAndRunningTotal(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())

	c.SelectProduct(0, "p1")
	c.SetQuantity(0, 2)
	c.AddLine()
	c.SelectProduct(1, "p2")

	lines := c.Lines()
	if !lines[0].TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("line 0 total = %s, want 200", lines[0].TotalAmount)
	}
	if !lines[1].TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("line 1 total = %s, want 50", lines[1].TotalAmount)
	}
	if !c.Total().Equal(decimal.NewFromInt(250)) {
		t.Errorf("running total = %s, want 250", c.Total())
	}
}

func TestEditingOneLineLeavesOthersUntouched(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	c.SelectProduct(0, "p1")
	c.AddLine()
	c.SelectProduct(1, "p2")

	c.SetQuantity(1, 3)

	if !c.Lines()[0].TotalAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("line 0 must not be recomputed, got %s", c.Lines()[0].TotalAmount)
	}
	if !c.Lines()[1].TotalAmount.Equal(decimal.NewFromInt(150)) {
		t.Errorf("line 1 total = %s, want 150", c.Lines()[1].TotalAmount)
	}
}

func TestRemoveLineFloor(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	if c.CanRemove() {
		t.Error("CanRemove must be false at one line")
	}
	c.RemoveLine(0)
	if len(c.Lines()) != 1 {
		t.Fatalf("removal at the floor must be a no-op, got %d lines", len(c.Lines()))
	}

	c.AddLine()
	if !c.CanRemove() {
		t.Error("CanRemove must be true at two lines")
	}
	c.RemoveLine(0)
	if len(c.Lines()) != 1 {
		t.Errorf("expected 1 line after removal, got %d", len(c.Lines()))
	}
	// Out-of-range indexes are ignored too.
	c.RemoveLine(5)
	c.RemoveLine(-1)
	if len(c.Lines()) != 1 {
		t.Errorf("expected 1 line, got %d", len(c.Lines()))
	}
}

func TestSelectProductCopiesCatalogValues(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	c.SelectProduct(0, "p1")

	l := c.Lines()[0]
	if l.ProductName != "Widget" {
		t.Errorf("name = %q", l.ProductName)
	}
	if !l.SellingPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("price = %s", l.SellingPrice)
	}
	if !l.TotalAmount.Equal(decimal.NewFromInt(100)) {
		t.Errorf("total = %s", l.TotalAmount)
	}
}

func TestReselectOverwritesHandEditedPrice(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	c.SelectProduct(0, "p1")
	c.SetPrice(0, decimal.NewFromInt(75))

	// Selecting again, same product, pulls the catalog price back in.
	c.SelectProduct(0, "p1")
	if !c.Lines()[0].SellingPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("re-select must restore the catalog price, got %s", c.Lines()[0].SellingPrice)
	}

	// Repeating the selection changes nothing further.
	c.SelectProduct(0, "p1")
	if !c.Lines()[0].SellingPrice.Equal(decimal.NewFromInt(100)) {
		t.Errorf("re-select must be idempotent, got %s", c.Lines()[0].SellingPrice)
	}
}

func TestBindProductPreservesPostedPrice(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	c.SelectProduct(0, "p1")
	c.SetPrice(0, decimal.NewFromInt(75))

	// Rehydration after a round-trip keeps the hand-edited price.
	c.BindProduct(0, "p1")
	if !c.Lines()[0].SellingPrice.Equal(decimal.NewFromInt(75)) {
		t.Errorf("bind must keep the posted price, got %s", c.Lines()[0].SellingPrice)
	}
}

func TestQuantityAndPriceFloors(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	c.SelectProduct(0, "p1")

	c.SetQuantity(0, 0)
	if c.Lines()[0].Quantity != 1 {
		t.Errorf("quantity floored at 1, got %d", c.Lines()[0].Quantity)
	}
	c.SetPrice(0, decimal.NewFromInt(-10))
	if !c.Lines()[0].SellingPrice.Equal(decimal.Zero) {
		t.Errorf("price floored at 0, got %s", c.Lines()[0].SellingPrice)
	}
}

func TestSubmitRecomputesAndOmitsOrderTotal(t *testing.T) {
	f := &fakeSales{}
	c := composer.New(f, catalog())
	c.SelectCustomer("c1")
	c.SelectProduct(0, "p1")
	c.SetQuantity(0, 2)
	c.AddLine()
	c.SelectProduct(1, "p2")

	sale, err := c.Submit(context.Background())
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if sale == nil || sale.ID != "s1" {
		t.Fatalf("unexpected sale %+v", sale)
	}

	if f.got.CustomerID != "c1" {
		t.Errorf("customer = %q", f.got.CustomerID)
	}
	if len(f.got.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(f.got.Items))
	}
	if !f.got.Items[0].TotalAmount.Equal(decimal.NewFromInt(200)) {
		t.Errorf("item 0 total = %s, want 200", f.got.Items[0].TotalAmount)
	}
	if !f.got.Items[1].TotalAmount.Equal(decimal.NewFromInt(50)) {
		t.Errorf("item 1 total = %s, want 50", f.got.Items[1].TotalAmount)
	}
	// The payload carries per-line data only; the order total is the server's.
	if f.got.Items[0].ProductName != "Widget" {
		t.Errorf("item 0 name = %q", f.got.Items[0].ProductName)
	}
}

func TestSubmitUsesCurrentCatalogName(t *testing.T) {
	cat := catalog()
	f := &fakeSales{}
	c := composer.New(f, cat)
	c.SelectCustomer("c1")
	c.SelectProduct(0, "p1")

	// The catalog shifted under the open composer; submission re-resolves.
	cat[0].Name = "Widget Mk2"

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if f.got.Items[0].ProductName != "Widget Mk2" {
		t.Errorf("submission must re-resolve names, got %q", f.got.Items[0].ProductName)
	}
}

func TestSubmitFailureLeavesStateForRetry(t *testing.T) {
	f := &fakeSales{err: errors.New("stock too low")}
	c := composer.New(f, catalog())
	c.SelectCustomer("c1")
	c.SelectProduct(0, "p1")
	c.SetQuantity(0, 4)

	if _, err := c.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}
	if c.CustomerID() != "c1" || len(c.Lines()) != 1 || c.Lines()[0].Quantity != 4 {
		t.Errorf("state must survive a failed submit: customer=%q lines=%+v", c.CustomerID(), c.Lines())
	}
}

func TestSubmitSuccessResets(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	c.SelectCustomer("c1")
	c.SelectProduct(0, "p1")
	c.AddLine()
	c.SelectProduct(1, "p2")

	if _, err := c.Submit(context.Background()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if c.CustomerID() != "" || len(c.Lines()) != 1 || c.Lines()[0].ProductID != "" {
		t.Errorf("composer must reset after success: customer=%q lines=%+v", c.CustomerID(), c.Lines())
	}
}

func TestSubmitValidation(t *testing.T) {
	c := composer.New(&fakeSales{}, catalog())
	if _, err := c.Submit(context.Background()); err == nil {
		t.Error("expected error without a customer")
	}
	c.SelectCustomer("c1")
	if _, err := c.Submit(context.Background()); err == nil {
		t.Error("expected error with an empty line")
	}
}
