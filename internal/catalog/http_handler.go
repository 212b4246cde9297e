package catalog

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"strings"

	"bookcatalog/internal/httpx"

	"go.uber.org/zap"
)

//go:embed templates/index.html
var templatesFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type HTTPHandler struct {
	svc    *Service
	logger *zap.Logger
}

func NewHTTPHandler(svc *Service, logger *zap.Logger) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{svc: svc, logger: logger}
}

// Register mounts the catalog routes on mux.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/catalog/options", h.Options)
	mux.HandleFunc("GET /v1/catalog/search", h.Search)
	mux.HandleFunc("GET /{$}", h.Page)
}

// Options handles GET /v1/catalog/options
func (h *HTTPHandler) Options(w http.ResponseWriter, r *http.Request) {
	opts, err := h.svc.Options()
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, opts, nil)
}

// Search handles GET /v1/catalog/search
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	q := ParseQuery(r.URL.Query())
	if details := httpx.ValidateStruct(q); len(details) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid search parameters", details)
		return
	}

	res, err := h.svc.Search(q)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	meta := map[string]any{
		"total": len(res.Cards),
		"empty": res.Empty,
	}
	if res.Message != "" {
		meta["message"] = res.Message
	}
	httpx.JSONSuccess(w, r, res.Cards, meta)
}

type pageData struct {
	Ready    bool
	Searched bool
	Error    string
	Query    Query
	Selected map[string]bool
	Options  Options
	Results  Results
}

// Page handles GET / and renders the search form with its results.
func (h *HTTPHandler) Page(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()
	q := ParseQuery(values)

	data := pageData{
		Searched: values.Has("q") || values.Has("author") || values.Has("category") || values.Has("categories"),
		Query:    q,
		Selected: make(map[string]bool, len(q.Categories)),
	}
	for _, c := range q.Categories {
		data.Selected[c] = true
	}

	status := http.StatusOK
	if opts, err := h.svc.Options(); err != nil {
		status = http.StatusServiceUnavailable
		data.Error = LoadFailedMessage
	} else {
		data.Ready = true
		data.Options = opts
	}

	if data.Ready && data.Searched {
		if details := httpx.ValidateStruct(q); len(details) > 0 {
			status = http.StatusBadRequest
			data.Error = details[0].Message
		} else if res, err := h.svc.Search(q); err == nil {
			data.Results = res
		}
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.logger.Error("render page", zap.Error(err), zap.String("request_id", httpx.RequestIDFrom(r)))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (h *HTTPHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ErrNotLoaded) {
		httpx.JSONError(w, r, http.StatusServiceUnavailable, "CATALOG_UNAVAILABLE", LoadFailedMessage, nil)
		return
	}
	h.logger.Error("catalog request failed", zap.Error(err), zap.String("request_id", httpx.RequestIDFrom(r)))
	httpx.JSONError(w, r, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error", nil)
}

// ParseQuery reads q, author and the selected categories from a query
// string. Categories may be repeated (category=a&category=b) or given
// as a comma list (categories=a,b).
func ParseQuery(values url.Values) Query {
	q := Query{
		Term:   values.Get("q"),
		Author: values.Get("author"),
	}
	for _, c := range values["category"] {
		if c != "" {
			q.Categories = append(q.Categories, c)
		}
	}
	if list := values.Get("categories"); list != "" {
		for _, c := range strings.Split(list, ",") {
			if c = strings.TrimSpace(c); c != "" {
				q.Categories = append(q.Categories, c)
			}
		}
	}
	return q
}
