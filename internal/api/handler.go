package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/brightside-news/brightside/internal/models"
	"github.com/brightside-news/brightside/internal/query"
)

const (
	DEFAULT_PAGE_SIZE  = 15
	categoryDelimiter  = "#"
	defaultSortByField = "date"
)

// Runner triggers one ingestion run.
type Runner interface {
	Run(ctx context.Context) (*models.RunResult, error)
}

// Handler is the transport glue over the query engine and the pipeline.
type Handler struct {
	engine *query.Engine
	runner Runner
}

func NewHandler(engine *query.Engine, runner Runner) *Handler {
	return &Handler{engine: engine, runner: runner}
}

func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/news", h.getNews)
	mux.HandleFunc("POST /api/news/update", h.runUpdate)
}

func (h *Handler) getNews(w http.ResponseWriter, r *http.Request) {
	result, err := h.engine.Query(r.Context(), parseQueryRequest(r))
	if err != nil {
		slog.Error("[API] Query failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "internal server error"})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) runUpdate(w http.ResponseWriter, r *http.Request) {
	result, err := h.runner.Run(r.Context())
	if err != nil {
		slog.Error("[API] Ingestion run failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// parseQueryRequest maps the external query parameters onto a QueryRequest.
// Malformed numbers fall back to defaults; the engine clamps the rest.
func parseQueryRequest(r *http.Request) models.QueryRequest {
	params := r.URL.Query()

	page := 1
	if v, err := strconv.Atoi(params.Get("page")); err == nil {
		page = v
	}
	pageSize := DEFAULT_PAGE_SIZE
	if v, err := strconv.Atoi(params.Get("pageSize")); err == nil {
		pageSize = v
	}

	sortBy := params.Get("sortBy")
	if sortBy == "" {
		sortBy = defaultSortByField
	}

	return models.QueryRequest{
		Keyword:    params.Get("keyword"),
		Categories: parseCategories(params.Get("category")),
		Page:       page,
		PageSize:   pageSize,
		SortBy:     sortBy,
		SortOrder:  params.Get("sortOrder"),
	}
}

// parseCategories splits a #-joined category list, dropping anything outside
// the fixed category set.
func parseCategories(raw string) []models.Category {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var categories []models.Category
	for _, part := range strings.Split(raw, categoryDelimiter) {
		if category, ok := models.ParseCategory(strings.TrimSpace(part)); ok {
			categories = append(categories, category)
		}
	}
	return categories
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("[API] Failed to encode response", slog.String("error", err.Error()))
	}
}
