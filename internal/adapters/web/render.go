package web

import (
	"html/template"
	"log"
	"net/http"
	"net/url"

	webui "backoffice/web"
)

// pageData is the shell every page template receives.
type pageData struct {
	Title     string
	Username  string
	IsAdmin   bool
	ActiveNav string
	FlashMsg  string
	FlashKind string // "success" or "error"
	Data      any
}

var pageNames = []string{
	"dashboard", "entity_list", "entity_form", "sales_list", "sale_new", "stock", "company",
}

// parseTemplates builds one template per page, each combined with the shared
// layout, plus the standalone login template. Panics on a malformed template
// since that is a build defect, not a runtime condition.
func parseTemplates() (map[string]*template.Template, *template.Template) {
	pages := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		pages[name] = template.Must(template.ParseFS(
			webui.Templates,
			"templates/layout.html",
			"templates/"+name+".html",
		))
	}
	login := template.Must(template.ParseFS(webui.Templates, "templates/login.html"))
	return pages, login
}

// newPageData seeds the shell from the request: identity for the nav, flash
// message from redirect query parameters.
func (h *Handler) newPageData(r *http.Request, title, activeNav string, data any) pageData {
	d := pageData{Title: title, ActiveNav: activeNav, Data: data}
	if claims := claimsFromContext(r.Context()); claims != nil {
		d.Username = claims.Username
		d.IsAdmin = claims.Role == "admin"
	}
	if fe := r.URL.Query().Get("flash_error"); fe != "" {
		d.FlashMsg, d.FlashKind = fe, "error"
	}
	if fs := r.URL.Query().Get("flash_success"); fs != "" {
		d.FlashMsg, d.FlashKind = fs, "success"
	}
	return d
}

// render executes a page template. Render errors are logged, not fatal.
func (h *Handler) render(w http.ResponseWriter, page string, d pageData) {
	tmpl, ok := h.pages[page]
	if !ok {
		log.Printf("render: unknown page %q", page)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "layout", d); err != nil {
		log.Printf("render %s: %v", page, err)
	}
}

// renderLogin executes the standalone login template.
func (h *Handler) renderLogin(w http.ResponseWriter, errMsg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.login.Execute(w, struct{ Error string }{errMsg}); err != nil {
		log.Printf("render login: %v", err)
	}
}

// flashRedirect sends the browser back to path carrying a flash message.
func flashRedirect(w http.ResponseWriter, r *http.Request, path, kind, msg string) {
	sep := "?"
	if u, err := url.Parse(path); err == nil && u.RawQuery != "" {
		sep = "&"
	}
	http.Redirect(w, r, path+sep+"flash_"+kind+"="+url.QueryEscape(msg), http.StatusSeeOther)
}
