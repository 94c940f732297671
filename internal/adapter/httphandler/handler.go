package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/niksmo/egis-bridge/internal/adapter/metrics"
	"github.com/niksmo/egis-bridge/internal/core/domain"
	"github.com/niksmo/egis-bridge/internal/core/port"
)

// POST v1/search JSON SearchRequest (200 OK, 400 Bad request, 502 Bad gateway)
// POST v1/import JSON ImportRequest (200 OK, 400 Bad request, 409 Conflict)
// POST v1/sales-orders/{id}/refresh-prices (200 OK, 404 Not found, 409 Conflict)
// GET v1/mapping (200 OK, 409 Conflict)

type SearchHandler struct {
	searcher port.ProductSearcher
}

func RegisterSearch(mux *http.ServeMux, searcher port.ProductSearcher) {
	h := SearchHandler{searcher}
	mux.HandleFunc("POST /v1/search", h.PostSearch)
}

func (h SearchHandler) PostSearch(w http.ResponseWriter, r *http.Request) {
	const op = "SearchHandler.PostSearch"
	log := slog.With("op", op)

	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	res, err := h.searcher.Search(r.Context(), req.toDomain(), req.StartRow)
	if err != nil {
		writeDomainError(w, err)
		log.Warn("search failed", "term", req.Term, "err", err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponseFromDomain(res))
}

type ImportHandler struct {
	resolver port.MappingResolver
	importer port.ItemImporter
}

func RegisterImport(
	mux *http.ServeMux, resolver port.MappingResolver, importer port.ItemImporter,
) {
	h := ImportHandler{resolver, importer}
	mux.HandleFunc("POST /v1/import", h.PostImport)
}

// PostImport resolves the mapping before touching any record, so a broken
// configuration rejects the whole request.
func (h ImportHandler) PostImport(w http.ResponseWriter, r *http.Request) {
	const op = "ImportHandler.PostImport"
	log := slog.With("op", op)

	var req ImportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON data")
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	m, err := h.resolver.ResolveMapping(r.Context())
	if err != nil {
		writeDomainError(w, err)
		log.Error("failed to resolve mapping", "err", err)
		return
	}

	rs := make([]domain.ProductRecord, len(req.Items))
	for i, p := range req.Items {
		rs[i] = p.toDomain()
	}

	report := h.importer.Import(r.Context(), rs, m)
	metrics.RecordImport(report)

	writeJSON(w, http.StatusOK, importReportFromDomain(report))
	log.Info("import accepted", "nItems", len(rs), "reportID", report.ID)
}

type RefreshHandler struct {
	refresher port.PriceRefresher
}

func RegisterRefresh(mux *http.ServeMux, refresher port.PriceRefresher) {
	h := RefreshHandler{refresher}
	mux.HandleFunc("POST /v1/sales-orders/{id}/refresh-prices", h.PostRefresh)
}

func (h RefreshHandler) PostRefresh(w http.ResponseWriter, r *http.Request) {
	const op = "RefreshHandler.PostRefresh"
	log := slog.With("op", op)

	id := r.PathValue("id")
	report, err := h.refresher.RefreshPrices(r.Context(), id)
	if err != nil {
		writeDomainError(w, err)
		log.Warn("failed to refresh prices", "salesOrderID", id, "err", err)
		return
	}
	metrics.RecordRefresh(report)

	writeJSON(w, http.StatusOK, refreshReportFromDomain(report))
}

type MappingHandler struct {
	resolver port.MappingResolver
}

func RegisterMapping(mux *http.ServeMux, resolver port.MappingResolver) {
	h := MappingHandler{resolver}
	mux.HandleFunc("GET /v1/mapping", h.GetMapping)
}

func (h MappingHandler) GetMapping(w http.ResponseWriter, r *http.Request) {
	const op = "MappingHandler.GetMapping"

	m, err := h.resolver.ResolveMapping(r.Context())
	if err != nil {
		writeDomainError(w, err)
		slog.Warn("mapping is not usable", "op", op, "err", err)
		return
	}
	writeJSON(w, http.StatusOK, mappingFromDomain(m))
}

func RegisterHealth(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

func RegisterMetrics(mux *http.ServeMux) {
	mux.Handle("GET /metrics", metrics.Handler())
}

// statusFor maps the domain error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrConfiguration):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrOrderNotEditable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrCatalog):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeDomainError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	writeError(w, status, publicMessage(status, err))
}

// publicMessage strips the internal op chain from err.
func publicMessage(status int, err error) string {
	var (
		validationErr *domain.ValidationError
		missingErr    *domain.MissingConfigurationError
		referenceErr  *domain.ReferenceNotFoundError
		catalogErr    *domain.CatalogError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Error()
	case errors.As(err, &missingErr):
		return missingErr.Error()
	case errors.As(err, &referenceErr):
		return referenceErr.Error()
	case errors.As(err, &catalogErr):
		return catalogErr.Error()
	case status == http.StatusNotFound:
		return "sales order not found"
	case errors.Is(err, domain.ErrOrderNotEditable):
		return domain.ErrOrderNotEditable.Error()
	default:
		return http.StatusText(status)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	const op = "httphandler.writeJSON"

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response body", "op", op, "err", err)
	}
}
