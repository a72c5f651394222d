// Package web is the browser adapter: a chi router serving server-rendered
// HTML views over the entity manager, the order composer, and the invoice
// generator. All persistence lives behind the remote back-office API.
package web

import (
	"html/template"
	"net/http"

	"backoffice/internal/api"
	"backoffice/internal/config"

	"github.com/go-chi/chi/v5"
)

// Handler wires configuration, parsed templates, and the chi router.
type Handler struct {
	cfg    *config.Config
	router chi.Router
	pages  map[string]*template.Template
	login  *template.Template
}

// NewHandler builds the full route tree.
func NewHandler(cfg *config.Config) http.Handler {
	h := &Handler{cfg: cfg}
	h.pages, h.login = parseTemplates()

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/login", h.loginPage)
	r.Post("/login", h.loginAction)
	r.Post("/logout", h.logoutAction)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuth)

		r.Get("/", h.dashboardPage)
		r.Get("/stock", h.stockPage)
		r.Get("/company", h.companyPage)
		r.Post("/company", h.companyUpdateAction)

		r.Get("/sales", h.salesListPage)
		r.Get("/sales/new", h.saleNewPage)
		r.Post("/sales/new", h.saleNewAction)
		r.Get("/sales/{id}/invoice", h.invoiceDownload)

		// Schema-driven entity routes. Static routes above win over the
		// {entity} parameter; unknown slugs 404 inside the handlers.
		r.Get("/{entity}", h.entityListPage)
		r.Get("/{entity}/new", h.entityFormPage)
		r.Post("/{entity}/new", h.entitySubmitAction)
		r.Get("/{entity}/{id}/edit", h.entityFormPage)
		r.Post("/{entity}/{id}/edit", h.entitySubmitAction)
		r.Post("/{entity}/{id}/delete", h.entityDeleteAction)
	})

	h.router = r
	return r
}

// clientFor builds the per-request remote API client from the session
// claims the auth middleware injected.
func (h *Handler) clientFor(r *http.Request) (*api.Client, *api.Session) {
	claims := claimsFromContext(r.Context())
	session := sessionFor(claims)
	return api.NewClient(h.cfg.APIBaseURL, session), session
}
