// Package controllers serves the blog over HTML and a JSON API.
package controllers

import (
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"quill/app/models"
	"quill/app/observability"
	"quill/app/repositories"

	"github.com/gorilla/mux"
)

// base holds the templates and the response helpers shared by controllers.
type base struct {
	templates map[string]*template.Template
}

// pager feeds the "pager" template. Page is any pagination.Page value.
type pager struct {
	Page    any
	BaseURL string
}

// isAPI reports whether the request wants JSON.
func isAPI(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api") || r.Header.Get("Accept") == "application/json"
}

// pageParam reads ?page=N; anything unparsable is page 1.
func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		return 1
	}
	return page
}

// intVar reads a numeric route variable.
func intVar(r *http.Request, name string) (int, bool) {
	id, err := strconv.Atoi(mux.Vars(r)[name])
	return id, err == nil
}

func (b *base) render(w http.ResponseWriter, r *http.Request, name string, status int, data interface{}) {
	tmpl, ok := b.templates[name]
	if !ok {
		b.sendError(w, r, "Template not found: "+name, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		observability.Logger.ErrorContext(r.Context(), "template error",
			slog.String("template", name),
			slog.String("error", err.Error()),
		)
	}
}

func (b *base) sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (b *base) sendError(w http.ResponseWriter, r *http.Request, message string, status int) {
	if isAPI(r) {
		b.sendJSON(w, status, map[string]string{"error": message})
		return
	}
	http.Error(w, message, status)
}

// fail maps a service error onto a response. Validation errors are left to
// the caller, since HTML pages re-render their form.
func (b *base) fail(w http.ResponseWriter, r *http.Request, err error, what string) {
	if verrs, ok := models.AsValidationErrors(err); ok {
		b.sendJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{"errors": verrs.Fields()})
		return
	}
	if errors.Is(err, repositories.ErrNotFound) {
		b.sendError(w, r, what+" not found", http.StatusNotFound)
		return
	}

	observability.Logger.ErrorContext(r.Context(), "request failed",
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("error", err.Error()),
	)
	b.sendError(w, r, "Internal Server Error", http.StatusInternalServerError)
}
