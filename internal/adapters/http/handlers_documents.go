package httpadapter

import (
	"net/http"
	"strings"

	"github.com/kirillkom/doc-lifecycle/internal/core/domain"
)

type createDocumentRequest struct {
	Title      string `json:"title"`
	CategoryID string `json:"category_id"`
	Original   string `json:"original"`
	AIDraft    string `json:"ai_draft"`
}

func (rt *Router) createDocument(w http.ResponseWriter, r *http.Request) {
	actor, ok := workerID(w, r)
	if !ok {
		return
	}
	var req createDocumentRequest
	if !decodeBody(w, r, &req) {
		return
	}

	result, err := rt.lifecycle.CreateDocument(r.Context(), domain.CreateDocumentRequest{
		Title:           req.Title,
		CategoryID:      req.CategoryID,
		OriginalContent: req.Original,
		AIDraftContent:  req.AIDraft,
		CreatedBy:       actor,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (rt *Router) listDocuments(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	docs, err := rt.reader.List(r.Context(), domain.DocumentFilter{
		Status:     domain.DocumentStatus(strings.ToUpper(strings.TrimSpace(query.Get("status")))),
		CategoryID: strings.TrimSpace(query.Get("category")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func (rt *Router) viewDocument(w http.ResponseWriter, r *http.Request) {
	view, err := rt.reader.View(r.Context(), documentIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (rt *Router) listVersions(w http.ResponseWriter, r *http.Request) {
	versions, err := rt.reader.Versions(r.Context(), documentIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"versions": versions})
}

func (rt *Router) listEvents(w http.ResponseWriter, r *http.Request) {
	if rt.history == nil {
		writeJSON(w, http.StatusOK, map[string]any{"events": []domain.LifecycleEvent{}})
		return
	}
	events, err := rt.history.History(r.Context(), documentIDParam(r))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"events": events})
}
