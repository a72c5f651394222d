// Package manager implements the schema-driven entity manager: one generic
// view-model that turns a field schema into a data table, a create/edit form
// with resolved reference lookups, and the mutation flow that keeps the view
// synchronized with the remote collection. It is reused unchanged for
// vendors, customers, and products.
package manager

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"

	"backoffice/internal/api"
	"backoffice/internal/schema"

	"github.com/shopspring/decimal"
)

// State is the per-view-instance lifecycle. A view starts Loading, reaches
// Ready after its first list fetch (successful or not), toggles into
// FormOpen while a record is being edited, and passes through Submitting on
// each mutation. There is no terminal state; navigating away and back
// remounts a fresh instance.
type State string

const (
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateFormOpen   State = "form_open"
	StateSubmitting State = "submitting"
)

// EntityAPI is the slice of the remote client the manager drives.
type EntityAPI interface {
	ListRecords(ctx context.Context, endpoint string) ([]api.Record, error)
	CreateRecord(ctx context.Context, endpoint string, payload api.Record) (api.Record, error)
	UpdateRecord(ctx context.Context, endpoint, id string, payload api.Record) (api.Record, error)
	DeleteRecord(ctx context.Context, endpoint, id string) error
}

// Option is one selectable entry of a reference field.
type Option struct {
	ID   string
	Name string
}

// Manager is one mounted entity view. Not safe for concurrent mutation; the
// reference prefetch is the only internally concurrent piece.
type Manager struct {
	client   EntityAPI
	session  *api.Session
	schema   schema.Schema
	currency string

	state    State
	records  []api.Record
	editing  bool
	formData api.Record

	// refs caches one prefetched collection per referenced entity for the
	// lifetime of the view. Prefetches run concurrently and may complete in
	// any order; each writes a disjoint slot under refsMu.
	refsMu sync.Mutex
	refs   map[string][]api.Record
}

// New builds an unmounted manager for one entity schema.
func New(client EntityAPI, session *api.Session, sch schema.Schema, currencySymbol string) *Manager {
	return &Manager{
		client:   client,
		session:  session,
		schema:   sch,
		currency: currencySymbol,
		state:    StateLoading,
		refs:     make(map[string][]api.Record),
	}
}

// Schema returns the schema the view was mounted with.
func (m *Manager) Schema() schema.Schema { return m.schema }

// State returns the current lifecycle state.
func (m *Manager) State() State { return m.state }

// Records returns the last successfully fetched list (possibly stale).
func (m *Manager) Records() []api.Record { return m.records }

// Mount runs the initial list fetch plus one reference prefetch per
// referenced entity, concurrently. The view reaches Ready when the list
// fetch returns, regardless of outcome. A mount whose caller has already
// moved on simply populates state nobody reads; that is a documented no-op,
// not an error.
func (m *Manager) Mount(ctx context.Context) {
	var wg sync.WaitGroup
	for _, ref := range m.schema.References() {
		wg.Add(1)
		go func(ref schema.Reference) {
			defer wg.Done()
			m.prefetch(ctx, ref)
		}(ref)
	}

	m.refresh(ctx)
	m.state = StateReady
	wg.Wait()
}

// prefetch loads one referenced collection into its cache slot. Issued
// exactly once per view mount per referenced entity, independent of record
// count. Failure is logged; lookups against the missing slot resolve to "".
func (m *Manager) prefetch(ctx context.Context, ref schema.Reference) {
	recs, err := m.client.ListRecords(ctx, ref.Endpoint)
	if err != nil {
		log.Printf("prefetch %s: %v", ref.Entity, err)
		return
	}
	m.refsMu.Lock()
	m.refs[ref.Entity] = recs
	m.refsMu.Unlock()
}

// refresh re-runs the list fetch. On failure the prior list stays visible.
func (m *Manager) refresh(ctx context.Context) {
	recs, err := m.client.ListRecords(ctx, m.schema.Endpoint)
	if err != nil {
		log.Printf("list %s: %v", m.schema.Slug, err)
		return
	}
	m.records = recs
}

// ── Form flow ────────────────────────────────────────────────────────────────

// OpenCreate opens the form on an empty record.
func (m *Manager) OpenCreate() {
	m.formData = api.Record{}
	m.editing = false
	m.state = StateFormOpen
}

// OpenEdit opens the form populated with the full record exactly as fetched,
// identifier included; Submit re-sends this merged payload.
func (m *Manager) OpenEdit(rec api.Record) {
	m.formData = rec.Clone()
	m.editing = true
	m.state = StateFormOpen
}

// CloseForm abandons the form without submitting.
func (m *Manager) CloseForm() {
	m.formData = nil
	m.editing = false
	m.state = StateReady
}

// Editing reports whether the open form targets an existing record.
func (m *Manager) Editing() bool { return m.editing }

// FormData returns the open form's working record, or nil.
func (m *Manager) FormData() api.Record { return m.formData }

// SetField stores one raw input value into the form, coercing per the
// field's kind. Unknown field names are rejected; an unknown kind variant is
// a programming error.
func (m *Manager) SetField(name, raw string) error {
	f, ok := m.schema.Field(name)
	if !ok {
		return fmt.Errorf("%s has no field %q", m.schema.Entity, name)
	}
	if m.formData == nil {
		return fmt.Errorf("no form open")
	}
	switch f.Kind.(type) {
	case schema.Text:
		m.formData[name] = raw
	case schema.Number:
		n, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return fmt.Errorf("field %s: %q is not a number", name, raw)
		}
		m.formData[name] = n
	case schema.Reference:
		m.formData[name] = raw
	default:
		panic(fmt.Sprintf("unhandled field kind %T", f.Kind))
	}
	return nil
}

// FormValue returns the form's current value for a field as an input string.
func (m *Manager) FormValue(name string) string {
	if m.formData == nil {
		return ""
	}
	return rawString(m.formData[name])
}

// MissingRequired returns the labels of required fields the form has not
// populated. The browser's required attribute is the first gate; this is the
// server-side mirror.
func (m *Manager) MissingRequired() []string {
	var missing []string
	for _, f := range m.schema.Fields {
		required := f.Required || f.IsReference()
		if !required {
			continue
		}
		v, ok := m.formData[f.Name]
		if !ok || rawString(v) == "" {
			missing = append(missing, f.Label)
		}
	}
	return missing
}

// Submit sends the open form as a create or update, then resyncs. Exactly
// one list re-fetch follows a successful mutation; there is no optimistic
// local patch. On failure the form stays open with its data intact so the
// user can retry.
func (m *Manager) Submit(ctx context.Context) error {
	if m.formData == nil {
		return fmt.Errorf("no form open")
	}
	if missing := m.MissingRequired(); len(missing) > 0 {
		return fmt.Errorf("required: %s", strings.Join(missing, ", "))
	}

	m.state = StateSubmitting
	var err error
	if m.editing {
		_, err = m.client.UpdateRecord(ctx, m.schema.Endpoint, m.formData.ID(), m.formData)
	} else {
		_, err = m.client.CreateRecord(ctx, m.schema.Endpoint, m.formData)
	}
	if err != nil {
		m.state = StateFormOpen
		return fmt.Errorf("save %s: %w", m.schema.Entity, err)
	}

	m.refresh(ctx)
	m.formData = nil
	m.editing = false
	m.state = StateReady
	return nil
}

// ── Deletion ─────────────────────────────────────────────────────────────────

// ShowDelete reports whether the delete control may be rendered at all:
// the schema must declare the entity deletable AND the session role must be
// admin. Fail-closed — when false the control is absent, not disabled.
func (m *Manager) ShowDelete() bool {
	return m.schema.CanDelete && m.session.IsAdmin()
}

// Delete removes one record, then resyncs. When gating fails the operation
// is refused outright; on remote failure the row stays intact.
func (m *Manager) Delete(ctx context.Context, id string) error {
	if !m.ShowDelete() {
		return fmt.Errorf("delete not permitted for %s", m.schema.Entity)
	}
	m.state = StateSubmitting
	if err := m.client.DeleteRecord(ctx, m.schema.Endpoint, id); err != nil {
		m.state = StateReady
		return fmt.Errorf("delete %s: %w", m.schema.Entity, err)
	}
	m.refresh(ctx)
	m.state = StateReady
	return nil
}

// ── Rendering ────────────────────────────────────────────────────────────────

// Columns returns the table header labels: one per schema field, in schema
// order, plus the trailing actions column.
func (m *Manager) Columns() []string {
	cols := make([]string, 0, len(m.schema.Fields)+1)
	for _, f := range m.schema.Fields {
		cols = append(cols, f.Label)
	}
	return append(cols, "Actions")
}

// CellValue renders one field of one record for display: references resolve
// to the looked-up name, price-named fields format as currency, everything
// else passes through verbatim.
func (m *Manager) CellValue(rec api.Record, f schema.Field) string {
	switch kind := f.Kind.(type) {
	case schema.Text:
		return rawString(rec[f.Name])
	case schema.Number:
		if f.IsPrice() {
			return FormatCurrency(m.currency, rec[f.Name])
		}
		return rawString(rec[f.Name])
	case schema.Reference:
		return m.RefLabel(kind, rawString(rec[f.Name]))
	default:
		panic(fmt.Sprintf("unhandled field kind %T", f.Kind))
	}
}

// Row renders every cell of a record in schema field order.
func (m *Manager) Row(rec api.Record) []string {
	cells := make([]string, 0, len(m.schema.Fields))
	for _, f := range m.schema.Fields {
		cells = append(cells, m.CellValue(rec, f))
	}
	return cells
}

// RefLabel resolves a foreign identifier to the referenced record's name.
// A missing collection or missing id resolves to "" rather than failing the
// render — references can dangle after deletions.
func (m *Manager) RefLabel(ref schema.Reference, id string) string {
	m.refsMu.Lock()
	recs := m.refs[ref.Entity]
	m.refsMu.Unlock()
	for _, r := range recs {
		if r.ID() == id {
			return rawString(r["name"])
		}
	}
	return ""
}

// RefOptions returns the selectable options for a reference field, in the
// prefetched collection's order.
func (m *Manager) RefOptions(ref schema.Reference) []Option {
	m.refsMu.Lock()
	recs := m.refs[ref.Entity]
	m.refsMu.Unlock()
	opts := make([]Option, 0, len(recs))
	for _, r := range recs {
		opts = append(opts, Option{ID: r.ID(), Name: rawString(r["name"])})
	}
	return opts
}

// FormatCurrency renders a raw numeric value as a localized currency string,
// e.g. "₹1,234.50". Purely a display-time transform; stored values are never
// formatted.
func FormatCurrency(symbol string, v any) string {
	d, ok := toDecimal(v)
	if !ok {
		return rawString(v)
	}
	s := d.StringFixed(2)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	dot := strings.Index(s, ".")
	whole, frac := s[:dot], s[dot:]
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := symbol + b.String() + frac
	if neg {
		out = "-" + out
	}
	return out
}

func toDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	case string:
		d, err := decimal.NewFromString(n)
		return d, err == nil
	default:
		return decimal.Decimal{}, false
	}
}

// rawString renders a scalar record value verbatim for display or input.
func rawString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// JSON numbers decode as float64; print integers without a decimal tail.
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprintf("%v", t)
	}
}
