package web

import (
	"fmt"
	"net/http"

	"backoffice/internal/api"
	"backoffice/internal/manager"
	"backoffice/internal/schema"

	"github.com/go-chi/chi/v5"
)

// entityRowView is one rendered table row.
type entityRowView struct {
	ID    string
	Cells []string
}

// entityListView feeds the generic entity_list template.
type entityListView struct {
	Entity     string
	Plural     string
	Slug       string
	Columns    []string
	Rows       []entityRowView
	ShowDelete bool
}

// fieldInputView is one rendered form input. InputType is the HTML input
// type for scalar kinds; reference kinds render a select over Options.
type fieldInputView struct {
	Name      string
	Label     string
	InputType string
	Required  bool
	Value     string
	IsRef     bool
	Options   []manager.Option
}

// entityFormView feeds the generic entity_form template.
type entityFormView struct {
	Entity  string
	Slug    string
	Editing bool
	ID      string
	Fields  []fieldInputView
}

// mountManager resolves the {entity} slug and mounts a fresh manager for
// this request. The second return is false when the slug is unknown (404
// already written).
func (h *Handler) mountManager(w http.ResponseWriter, r *http.Request) (*manager.Manager, bool) {
	sch, ok := schema.BySlug(chi.URLParam(r, "entity"))
	if !ok {
		http.NotFound(w, r)
		return nil, false
	}
	client, session := h.clientFor(r)
	m := manager.New(client, session, sch, h.cfg.CurrencySymbol)
	m.Mount(r.Context())
	return m, true
}

// entityListPage handles GET /{entity} — the schema-driven table.
func (h *Handler) entityListPage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.mountManager(w, r)
	if !ok {
		return
	}
	sch := m.Schema()

	view := entityListView{
		Entity:     sch.Entity,
		Plural:     sch.Plural,
		Slug:       sch.Slug,
		Columns:    m.Columns(),
		ShowDelete: m.ShowDelete(),
	}
	for _, rec := range m.Records() {
		view.Rows = append(view.Rows, entityRowView{ID: rec.ID(), Cells: m.Row(rec)})
	}

	h.render(w, "entity_list", h.newPageData(r, sch.Plural, sch.Slug, view))
}

// entityFormPage handles GET /{entity}/new and GET /{entity}/{id}/edit.
func (h *Handler) entityFormPage(w http.ResponseWriter, r *http.Request) {
	m, ok := h.mountManager(w, r)
	if !ok {
		return
	}
	sch := m.Schema()

	if id := chi.URLParam(r, "id"); id != "" {
		rec, found := findRecord(m, id)
		if !found {
			flashRedirect(w, r, "/"+sch.Slug, "error", sch.Entity+" not found")
			return
		}
		m.OpenEdit(rec)
	} else {
		m.OpenCreate()
	}

	title := "New " + sch.Entity
	if m.Editing() {
		title = "Edit " + sch.Entity
	}
	h.render(w, "entity_form", h.newPageData(r, title, sch.Slug, h.buildFormView(m)))
}

// entitySubmitAction handles the create and update form posts. A failed
// submission re-renders the open form with its data intact; success
// redirects to the resynced list.
func (h *Handler) entitySubmitAction(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	m, ok := h.mountManager(w, r)
	if !ok {
		return
	}
	sch := m.Schema()

	if id := chi.URLParam(r, "id"); id != "" {
		rec, found := findRecord(m, id)
		if !found {
			flashRedirect(w, r, "/"+sch.Slug, "error", sch.Entity+" no longer exists")
			return
		}
		m.OpenEdit(rec)
	} else {
		m.OpenCreate()
	}

	for _, f := range sch.Fields {
		if err := m.SetField(f.Name, r.FormValue(f.Name)); err != nil {
			h.rerenderForm(w, r, m, err)
			return
		}
	}

	if err := m.Submit(r.Context()); err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		h.rerenderForm(w, r, m, err)
		return
	}

	verb := "created"
	if id := chi.URLParam(r, "id"); id != "" {
		verb = "updated"
	}
	flashRedirect(w, r, "/"+sch.Slug, "success", fmt.Sprintf("%s %s", sch.Entity, verb))
}

// entityDeleteAction handles POST /{entity}/{id}/delete. The route exists
// for every entity but the operation is gated exactly like the control:
// schema deletable AND admin role, otherwise 404.
func (h *Handler) entityDeleteAction(w http.ResponseWriter, r *http.Request) {
	sch, ok := schema.BySlug(chi.URLParam(r, "entity"))
	if !ok {
		http.NotFound(w, r)
		return
	}
	client, session := h.clientFor(r)
	m := manager.New(client, session, sch, h.cfg.CurrencySymbol)
	if !m.ShowDelete() {
		http.NotFound(w, r)
		return
	}

	if err := m.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		if h.handleUnauthorized(w, r, err) {
			return
		}
		flashRedirect(w, r, "/"+sch.Slug, "error", err.Error())
		return
	}
	flashRedirect(w, r, "/"+sch.Slug, "success", sch.Entity+" deleted")
}

// rerenderForm shows the still-open form with a blocking error banner.
func (h *Handler) rerenderForm(w http.ResponseWriter, r *http.Request, m *manager.Manager, err error) {
	sch := m.Schema()
	title := "New " + sch.Entity
	if m.Editing() {
		title = "Edit " + sch.Entity
	}
	d := h.newPageData(r, title, sch.Slug, h.buildFormView(m))
	d.FlashMsg, d.FlashKind = err.Error(), "error"
	h.render(w, "entity_form", d)
}

// buildFormView maps the manager's open form onto renderable inputs with a
// total switch over field kinds.
func (h *Handler) buildFormView(m *manager.Manager) entityFormView {
	sch := m.Schema()
	view := entityFormView{
		Entity:  sch.Entity,
		Slug:    sch.Slug,
		Editing: m.Editing(),
		ID:      m.FormData().ID(),
	}
	for _, f := range sch.Fields {
		in := fieldInputView{
			Name:     f.Name,
			Label:    f.Label,
			Required: f.Required,
			Value:    m.FormValue(f.Name),
		}
		switch kind := f.Kind.(type) {
		case schema.Text:
			in.InputType = "text"
		case schema.Number:
			in.InputType = "number"
		case schema.Reference:
			// Reference fields are required regardless of the schema flag:
			// the selector has no empty choice.
			in.IsRef = true
			in.Required = true
			in.Options = m.RefOptions(kind)
		default:
			panic(fmt.Sprintf("unhandled field kind %T", f.Kind))
		}
		view.Fields = append(view.Fields, in)
	}
	return view
}

// findRecord locates a fetched record by id in the mounted list.
func findRecord(m *manager.Manager, id string) (rec api.Record, ok bool) {
	for _, r := range m.Records() {
		if r.ID() == id {
			return r, true
		}
	}
	return nil, false
}
