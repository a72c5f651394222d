package schema_test

import (
	"testing"

	"backoffice/internal/schema"
)

func TestBuiltInSchemasValidate(t *testing.T) {
	for _, s := range schema.All {
		if err := s.Validate(); err != nil {
			t.Errorf("%s: %v", s.Entity, err)
		}
	}
}

func TestValidateRejectsDuplicates(t *testing.T) {
	s := schema.Schema{
		Entity: "Broken",
		Fields: []schema.Field{
			{Name: "name", Label: "Name", Kind: schema.Text{}},
			{Name: "name", Label: "Name Again", Kind: schema.Text{}},
		},
	}
	if err := s.Validate(); err == nil {
		t.Error("expected duplicate-field error")
	}
	if err := (schema.Schema{Entity: "Empty"}).Validate(); err == nil {
		t.Error("expected no-fields error")
	}
}

func TestIsPriceMatchesBySubstring(t *testing.T) {
	cases := map[string]bool{
		"selling_price":  true,
		"purchase_price": true,
		"price":          true,
		"quantity":       false,
		"name":           false,
	}
	for name, want := range cases {
		f := schema.Field{Name: name, Kind: schema.Number{}}
		if got := f.IsPrice(); got != want {
			t.Errorf("IsPrice(%q)=%v, want %v", name, got, want)
		}
	}
}

func TestProductsReferencesVendors(t *testing.T) {
	refs := schema.Products.References()
	if len(refs) != 1 {
		t.Fatalf("expected 1 reference, got %d", len(refs))
	}
	if refs[0].Entity != "vendors" || refs[0].Endpoint != "/vendors" {
		t.Errorf("unexpected reference %+v", refs[0])
	}

	f, ok := schema.Products.Field("vendor_id")
	if !ok || !f.IsReference() {
		t.Errorf("vendor_id must be a reference field")
	}
}

func TestReferencesDeduplicates(t *testing.T) {
	ref := schema.Reference{Entity: "vendors", Endpoint: "/vendors"}
	s := schema.Schema{
		Entity: "Pair",
		Fields: []schema.Field{
			{Name: "a", Label: "A", Kind: ref},
			{Name: "b", Label: "B", Kind: ref},
		},
	}
	if got := len(s.References()); got != 1 {
		t.Errorf("expected 1 distinct reference, got %d", got)
	}
}

func TestBySlug(t *testing.T) {
	if s, ok := schema.BySlug("products"); !ok || s.Entity != "Product" {
		t.Errorf("BySlug(products) = %+v, %v", s, ok)
	}
	if _, ok := schema.BySlug("sales"); ok {
		t.Error("sales is not an entity-manager schema")
	}
}
