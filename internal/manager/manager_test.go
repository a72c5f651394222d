package manager_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"backoffice/internal/api"
	"backoffice/internal/manager"
	"backoffice/internal/schema"
)

// fakeAPI is an in-memory stand-in for the remote collection endpoints.
// The mount's reference prefetch runs concurrently with the list fetch, so
// every method takes the lock.
type fakeAPI struct {
	mu        sync.Mutex
	lists     map[string][]api.Record
	listErr   map[string]error
	listCalls map[string]int
	mutateErr error
	nextID    int
	deleted   []string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		lists:     make(map[string][]api.Record),
		listErr:   make(map[string]error),
		listCalls: make(map[string]int),
	}
}

func (f *fakeAPI) ListRecords(_ context.Context, endpoint string) ([]api.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listCalls[endpoint]++
	if err := f.listErr[endpoint]; err != nil {
		return nil, err
	}
	return f.lists[endpoint], nil
}

func (f *fakeAPI) CreateRecord(_ context.Context, endpoint string, payload api.Record) (api.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	rec := payload.Clone()
	f.nextID++
	rec["id"] = fmt.Sprintf("id-%d", f.nextID)
	f.lists[endpoint] = append(f.lists[endpoint], rec)
	return rec, nil
}

func (f *fakeAPI) UpdateRecord(_ context.Context, endpoint, id string, payload api.Record) (api.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	for i, r := range f.lists[endpoint] {
		if r.ID() == id {
			f.lists[endpoint][i] = payload.Clone()
			return payload, nil
		}
	}
	return nil, errors.New("not found")
}

func (f *fakeAPI) DeleteRecord(_ context.Context, endpoint, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	recs := f.lists[endpoint]
	for i, r := range recs {
		if r.ID() == id {
			f.lists[endpoint] = append(recs[:i], recs[i+1:]...)
			f.deleted = append(f.deleted, id)
			return nil
		}
	}
	return errors.New("not found")
}

func adminSession() *api.Session {
	s := api.NewSession()
	s.Establish("token", api.User{ID: "u1", Username: "boss", Role: api.RoleAdmin})
	return s
}

func userSession() *api.Session {
	s := api.NewSession()
	s.Establish("token", api.User{ID: "u2", Username: "clerk", Role: api.RoleUser})
	return s
}

func seedProducts(f *fakeAPI) {
	f.lists["/vendors"] = []api.Record{
		{"id": "v1", "name": "Acme Supplies", "address": "Pune", "phone": "111"},
		{"id": "v2", "name": "Global Traders", "address": "Delhi", "phone": "222"},
	}
	f.lists["/products"] = []api.Record{
		{"id": "p1", "name": "Widget", "vendor_id": "v1", "quantity": float64(10), "purchase_price": float64(80), "selling_price": float64(100)},
		{"id": "p2", "name": "Gadget", "vendor_id": "v2", "quantity": float64(5), "purchase_price": float64(40), "selling_price": float64(50)},
	}
}

func TestColumnsIsFieldsPlusActions(t *testing.T) {
	for _, sch := range schema.All {
		m := manager.New(newFakeAPI(), adminSession(), sch, "₹")
		cols := m.Columns()
		if len(cols) != len(sch.Fields)+1 {
			t.Errorf("%s: expected %d columns, got %d", sch.Entity, len(sch.Fields)+1, len(cols))
		}
		if cols[len(cols)-1] != "Actions" {
			t.Errorf("%s: last column should be Actions, got %q", sch.Entity, cols[len(cols)-1])
		}
	}
}

func TestMountFetchesListAndPrefetchesReferencesOnce(t *testing.T) {
	f := newFakeAPI()
	seedProducts(f)

	m := manager.New(f, adminSession(), schema.Products, "₹")
	m.Mount(context.Background())

	if m.State() != manager.StateReady {
		t.Fatalf("expected Ready after mount, got %s", m.State())
	}
	if len(m.Records()) != 2 {
		t.Fatalf("expected 2 products, got %d", len(m.Records()))
	}
	// One list fetch for the entity, one prefetch for the single referenced
	// collection, regardless of record count.
	if f.listCalls["/products"] != 1 {
		t.Errorf("expected 1 products fetch, got %d", f.listCalls["/products"])
	}
	if f.listCalls["/vendors"] != 1 {
		t.Errorf("expected 1 vendors prefetch, got %d", f.listCalls["/vendors"])
	}
}

func TestListFailureKeepsPriorListAndReachesReady(t *testing.T) {
	f := newFakeAPI()
	seedProducts(f)

	m := manager.New(f, adminSession(), schema.Products, "₹")
	m.Mount(context.Background())

	// Second view load with the endpoint down: stale list stays visible.
	f.listErr["/products"] = errors.New("boom")
	m.Mount(context.Background())

	if m.State() != manager.StateReady {
		t.Errorf("loading flag must drop on failure, state=%s", m.State())
	}
	if len(m.Records()) != 2 {
		t.Errorf("prior list must survive a failed fetch, got %d records", len(m.Records()))
	}
}

func TestDeleteGating(t *testing.T) {
	deletable := schema.Vendors
	nonDeletable := deletable
	nonDeletable.CanDelete = false

	cases := []struct {
		name    string
		sch     schema.Schema
		session *api.Session
		want    bool
	}{
		{"deletable admin", deletable, adminSession(), true},
		{"deletable non-admin", deletable, userSession(), false},
		{"non-deletable admin", nonDeletable, adminSession(), false},
		{"non-deletable non-admin", nonDeletable, userSession(), false},
	}
	for _, tc := range cases {
		m := manager.New(newFakeAPI(), tc.session, tc.sch, "₹")
		if got := m.ShowDelete(); got != tc.want {
			t.Errorf("%s: ShowDelete=%v, want %v", tc.name, got, tc.want)
		}
	}
}

func TestDeleteRefusedWhenGated(t *testing.T) {
	f := newFakeAPI()
	seedProducts(f)
	m := manager.New(f, userSession(), schema.Vendors, "₹")
	m.Mount(context.Background())

	if err := m.Delete(context.Background(), "v1"); err == nil {
		t.Fatal("expected delete to be refused for non-admin")
	}
	if len(f.deleted) != 0 {
		t.Fatal("no remote call may be issued when gating fails")
	}
}

func TestDeleteResyncsList(t *testing.T) {
	f := newFakeAPI()
	seedProducts(f)
	m := manager.New(f, adminSession(), schema.Vendors, "₹")
	m.Mount(context.Background())

	if err := m.Delete(context.Background(), "v1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(m.Records()) != 1 || m.Records()[0].ID() != "v2" {
		t.Errorf("list must resync after delete, got %v", m.Records())
	}
}

func TestCreateSuccessClearsFormAndResyncs(t *testing.T) {
	f := newFakeAPI()
	m := manager.New(f, adminSession(), schema.Vendors, "₹")
	m.Mount(context.Background())

	m.OpenCreate()
	if m.State() != manager.StateFormOpen {
		t.Fatalf("expected FormOpen, got %s", m.State())
	}
	for name, v := range map[string]string{"name": "New Vendor", "address": "Kolkata", "phone": "333"} {
		if err := m.SetField(name, v); err != nil {
			t.Fatalf("SetField %s: %v", name, err)
		}
	}
	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if m.State() != manager.StateReady {
		t.Errorf("expected Ready after submit, got %s", m.State())
	}
	if m.FormData() != nil {
		t.Error("formData must clear on success")
	}
	if len(m.Records()) != 1 || m.Records()[0]["name"] != "New Vendor" {
		t.Errorf("list must reflect the created record, got %v", m.Records())
	}
}

func TestCreateFailureLeavesFormOpenWithData(t *testing.T) {
	f := newFakeAPI()
	f.mutateErr = errors.New("remote says no")
	m := manager.New(f, adminSession(), schema.Vendors, "₹")
	m.Mount(context.Background())

	m.OpenCreate()
	_ = m.SetField("name", "Doomed")
	_ = m.SetField("address", "Nowhere")
	_ = m.SetField("phone", "000")

	if err := m.Submit(context.Background()); err == nil {
		t.Fatal("expected submit to fail")
	}
	if m.State() != manager.StateFormOpen {
		t.Errorf("form must stay open on failure, state=%s", m.State())
	}
	if m.FormValue("name") != "Doomed" {
		t.Errorf("formData must be unchanged on failure, name=%q", m.FormValue("name"))
	}
}

func TestSubmitRequiresRequiredFields(t *testing.T) {
	m := manager.New(newFakeAPI(), adminSession(), schema.Vendors, "₹")
	m.Mount(context.Background())
	m.OpenCreate()
	_ = m.SetField("name", "Only Name")

	if err := m.Submit(context.Background()); err == nil {
		t.Fatal("expected required-field error")
	}
	if m.State() != manager.StateFormOpen {
		t.Errorf("form must stay open, state=%s", m.State())
	}
}

func TestEditResendsFullRecord(t *testing.T) {
	f := newFakeAPI()
	seedProducts(f)
	m := manager.New(f, adminSession(), schema.Vendors, "₹")
	m.Mount(context.Background())

	m.OpenEdit(m.Records()[0])
	if m.FormData().ID() != "v1" {
		t.Fatalf("edit form must carry the identifier, got %q", m.FormData().ID())
	}
	_ = m.SetField("phone", "999")
	if err := m.Submit(context.Background()); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	updated := f.lists["/vendors"][0]
	if updated["phone"] != "999" || updated["name"] != "Acme Supplies" {
		t.Errorf("update must send the merged payload, got %v", updated)
	}
}

func TestNumberCoercion(t *testing.T) {
	m := manager.New(newFakeAPI(), adminSession(), schema.Products, "₹")
	m.Mount(context.Background())
	m.OpenCreate()

	if err := m.SetField("quantity", "12"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if v, ok := m.FormData()["quantity"].(float64); !ok || v != 12 {
		t.Errorf("numeric field must be coerced to a number, got %T %v", m.FormData()["quantity"], m.FormData()["quantity"])
	}
	if err := m.SetField("quantity", "not a number"); err == nil {
		t.Error("non-numeric input must be rejected")
	}
}

func TestReferenceResolution(t *testing.T) {
	f := newFakeAPI()
	seedProducts(f)
	m := manager.New(f, adminSession(), schema.Products, "₹")
	m.Mount(context.Background())

	ref := schema.Reference{Entity: "vendors", Endpoint: "/vendors"}
	if got := m.RefLabel(ref, "v1"); got != "Acme Supplies" {
		t.Errorf("RefLabel(v1)=%q", got)
	}
	// A dangling reference resolves to empty, never an error.
	if got := m.RefLabel(ref, "deleted-vendor"); got != "" {
		t.Errorf("dangling reference must resolve to empty, got %q", got)
	}

	opts := m.RefOptions(ref)
	if len(opts) != 2 || opts[0].Name != "Acme Supplies" {
		t.Errorf("unexpected options %v", opts)
	}
}

func TestPriceFieldsRenderAsCurrency(t *testing.T) {
	f := newFakeAPI()
	seedProducts(f)
	m := manager.New(f, adminSession(), schema.Products, "₹")
	m.Mount(context.Background())

	rec := m.Records()[0]
	row := m.Row(rec)
	// Field order: name, vendor_id, quantity, purchase_price, selling_price.
	if row[0] != "Widget" {
		t.Errorf("name cell %q", row[0])
	}
	if row[1] != "Acme Supplies" {
		t.Errorf("vendor reference cell %q", row[1])
	}
	if row[2] != "10" {
		t.Errorf("quantity must render raw, got %q", row[2])
	}
	if row[3] != "₹80.00" || row[4] != "₹100.00" {
		t.Errorf("price cells must be currency-formatted, got %q %q", row[3], row[4])
	}
}

func TestFormatCurrencyGrouping(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{float64(0), "₹0.00"},
		{float64(1234.5), "₹1,234.50"},
		{float64(1234567.89), "₹1,234,567.89"},
		{float64(-42), "-₹42.00"},
		{"250", "₹250.00"},
	}
	for _, tc := range cases {
		if got := manager.FormatCurrency("₹", tc.in); got != tc.want {
			t.Errorf("FormatCurrency(%v)=%q, want %q", tc.in, got, tc.want)
		}
	}
}
