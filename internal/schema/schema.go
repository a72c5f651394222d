// Package schema declares the field descriptors that drive the generic
// entity manager: which columns an entity has, how each is edited and
// displayed, and which collections its reference fields resolve against.
package schema

import (
	"fmt"
	"strings"
)

// Kind is the closed set of field value kinds. It is a sealed interface so
// rendering and coercion can do a total switch over variants; adding a kind
// without handling it everywhere is a compile-or-panic failure, never a
// silent default.
type Kind interface {
	kind()
}

// Text is a free-form string field.
type Text struct{}

// Number is a numeric field; raw input is coerced to a number before storage.
type Number struct{}

// Reference is a foreign-identifier field. Entity names the referenced
// collection for display; Endpoint is its list endpoint for prefetching.
// A Reference field is required unconditionally: an empty selection is not
// representable in the selector.
type Reference struct {
	Entity   string
	Endpoint string
}

func (Text) kind()      {}
func (Number) kind()    {}
func (Reference) kind() {}

// Field describes one column/input. Name is unique within a schema and is
// the key used both for display and for the mutation payload.
type Field struct {
	Name     string
	Label    string
	Kind     Kind
	Required bool
}

// IsPrice reports whether the field holds a monetary value. Any field whose
// name contains "price" is formatted as currency at display time; the stored
// value stays a raw number.
func (f Field) IsPrice() bool {
	return strings.Contains(f.Name, "price")
}

// IsReference reports whether the field resolves against another collection.
func (f Field) IsReference() bool {
	_, ok := f.Kind.(Reference)
	return ok
}

// Schema parameterizes one entity view: its endpoint, its ordered fields,
// and whether the entity supports deletion at all. CanDelete is one of the
// two independent delete gates; the other is the session role.
type Schema struct {
	Entity    string // singular display name, e.g. "Vendor"
	Plural    string // list title, e.g. "Vendors"
	Slug      string // URL segment, e.g. "vendors"
	Endpoint  string // remote collection endpoint
	Fields    []Field
	CanDelete bool
}

// Validate checks the schema's own invariants: non-empty field list and
// unique field names. Called once at startup for the built-in schemas.
func (s Schema) Validate() error {
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s: no fields", s.Entity)
	}
	seen := make(map[string]bool, len(s.Fields))
	for _, f := range s.Fields {
		if seen[f.Name] {
			return fmt.Errorf("schema %s: duplicate field %q", s.Entity, f.Name)
		}
		seen[f.Name] = true
	}
	return nil
}

// Field returns the descriptor for name, or false when the schema lacks it.
func (s Schema) Field(name string) (Field, bool) {
	for _, f := range s.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// References returns the distinct referenced collections, in field order.
// The manager prefetches each exactly once per view mount.
func (s Schema) References() []Reference {
	var refs []Reference
	seen := make(map[string]bool)
	for _, f := range s.Fields {
		if ref, ok := f.Kind.(Reference); ok && !seen[ref.Entity] {
			seen[ref.Entity] = true
			refs = append(refs, ref)
		}
	}
	return refs
}

// ── Built-in entity schemas ──────────────────────────────────────────────────

// Vendors is the supplier master schema.
var Vendors = Schema{
	Entity:   "Vendor",
	Plural:   "Vendors",
	Slug:     "vendors",
	Endpoint: "/vendors",
	Fields: []Field{
		{Name: "name", Label: "Name", Kind: Text{}, Required: true},
		{Name: "address", Label: "Address", Kind: Text{}, Required: true},
		{Name: "phone", Label: "Phone", Kind: Text{}, Required: true},
	},
	CanDelete: true,
}

// Customers is the buyer master schema.
var Customers = Schema{
	Entity:   "Customer",
	Plural:   "Customers",
	Slug:     "customers",
	Endpoint: "/customers",
	Fields: []Field{
		{Name: "name", Label: "Name", Kind: Text{}, Required: true},
		{Name: "address", Label: "Address", Kind: Text{}, Required: true},
		{Name: "phone", Label: "Phone", Kind: Text{}, Required: true},
	},
	CanDelete: true,
}

// Products is the catalog schema. vendor_id resolves against the vendor
// master for display.
var Products = Schema{
	Entity:   "Product",
	Plural:   "Products",
	Slug:     "products",
	Endpoint: "/products",
	Fields: []Field{
		{Name: "name", Label: "Name", Kind: Text{}, Required: true},
		{Name: "vendor_id", Label: "Vendor", Kind: Reference{Entity: "vendors", Endpoint: "/vendors"}, Required: true},
		{Name: "quantity", Label: "Quantity", Kind: Number{}, Required: true},
		{Name: "purchase_price", Label: "Purchase Price", Kind: Number{}, Required: true},
		{Name: "selling_price", Label: "Selling Price", Kind: Number{}, Required: true},
	},
	CanDelete: true,
}

// All lists every built-in schema in navigation order.
var All = []Schema{Vendors, Customers, Products}

// BySlug returns the built-in schema for a URL segment.
func BySlug(slug string) (Schema, bool) {
	for _, s := range All {
		if s.Slug == slug {
			return s, true
		}
	}
	return Schema{}, false
}
