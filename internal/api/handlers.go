package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/adrkit/internal/record"
)

const maxBody = 1 << 20

// Handler holds API route handlers.
type Handler struct {
	svc *Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// recordPath extracts the record path from the URL (everything after
// /api/records/). Supports encoded slashes (e.g. adr%2F0001-x.md).
func recordPath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// ListRecords handles GET /api/records.
//
//	@Summary		List catalogued records
//	@Tags			records
//	@Produce		json
//	@Param			status	query		string	false	"Filter by status (case-insensitive)"
//	@Param			limit	query		int		false	"Page size"
//	@Param			offset	query		int		false	"Page offset"
//	@Success		200		{object}	RecordListResponse
//	@Security		BearerAuth
//	@Router			/records [get]
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	offset, _ := strconv.Atoi(q.Get("offset"))

	items, total, err := h.svc.ListRecords(r.Context(), q.Get("status"), limit, offset)
	if err != nil {
		writeError(w, "list records", err)
		return
	}
	writeJSON(w, http.StatusOK, RecordListResponse{Records: items, Total: total})
}

// GetRecord handles GET /api/records/*.
//
//	@Summary		Get a single record by path
//	@Tags			records
//	@Produce		json
//	@Param			path	path		string	true	"Record path relative to the repository root"
//	@Success		200		{object}	RecordDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{path} [get]
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	path := recordPath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	rec, err := h.svc.GetRecord(r.Context(), path)
	if err != nil {
		writeError(w, "get record", err, slog.String("path", path))
		return
	}
	w.Header().Set("ETag", `"`+rec.Checksum+`"`)
	writeJSON(w, http.StatusOK, rec)
}

// CreateRecord handles POST /api/records.
//
//	@Summary		Create a new record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateRecordRequest	true	"Record to create"
//	@Success		201		{object}	record.CreateResult
//	@Failure		400		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records [post]
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req CreateRecordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	res, err := h.svc.CreateRecord(r.Context(), req)
	if err != nil {
		writeError(w, "create record", err, slog.String("title", req.Title))
		return
	}
	writeJSON(w, http.StatusCreated, res)
}

// SetStatus handles PUT /api/records/*/status.
//
//	@Summary		Change the status of a record in place
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			path		path	string				true	"Record path relative to the repository root"
//	@Param			If-Match	header	string				false	"SHA-256 checksum for optimistic concurrency"
//	@Param			body		body	SetStatusRequest	true	"New status"
//	@Success		200		{object}	record.StatusResult
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/records/{path}/status [put]
func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	path, ok := strings.CutSuffix(recordPath(r), "/status")
	if !ok || path == "" {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}

	var req SetStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}

	// Strip surrounding quotes if present (standard ETag format).
	ifMatch := strings.Trim(r.Header.Get("If-Match"), `"`)

	res, err := h.svc.SetStatus(r.Context(), record.SetStatusRequest{
		Path:        path,
		Status:      req.Status,
		IfMatch:     ifMatch,
		UpdateIndex: req.UpdateIndex,
	})
	if err != nil {
		writeError(w, "set status", err, slog.String("path", path))
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Bootstrap handles POST /api/bootstrap.
//
//	@Summary		Create the decision log, its index and the first record
//	@Tags			records
//	@Accept			json
//	@Produce		json
//	@Param			body	body		BootstrapRequest	false	"Bootstrap options"
//	@Success		200		{object}	record.BootstrapResult
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/bootstrap [post]
func (h *Handler) Bootstrap(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	var req BootstrapRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
			return
		}
	}
	res, err := h.svc.Bootstrap(r.Context(), req)
	if err != nil {
		writeError(w, "bootstrap", err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across records
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err, slog.String("query", q))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
