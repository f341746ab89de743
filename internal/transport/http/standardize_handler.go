package http

import (
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apperrors "factorstd/internal/errors"
	"factorstd/internal/middleware"
	"factorstd/internal/services"
	"factorstd/internal/standardize"
	"factorstd/internal/table"
)

// StandardizeRequest is the JSON body of POST /api/v1/standardize.
// Cells are strings, numbers or null. Identifier and non-selected cells are
// echoed back with their JSON type, so a numeric date stays a number.
type StandardizeRequest struct {
	Method  string          `json:"method" validate:"required,method"`
	Columns []string        `json:"columns" validate:"required,min=1,dive,column"`
	Header  []string        `json:"header" validate:"required,min=2,dive,column"`
	Rows    [][]interface{} `json:"rows" validate:"required"`
}

// StandardizeResponse carries the standardized table and its run report.
// Missing numeric values are null.
type StandardizeResponse struct {
	Header []string            `json:"header"`
	Rows   [][]interface{}     `json:"rows"`
	Report *standardize.Report `json:"report"`
}

// StandardizeHandler handles standardization requests
type StandardizeHandler struct {
	service      *services.StandardizeService
	validator    *middleware.Validator
	logger       *slog.Logger
	errorHandler *apperrors.ErrorHandler
}

// NewStandardizeHandler creates a new standardize handler
func NewStandardizeHandler(service *services.StandardizeService, validator *middleware.Validator, logger *slog.Logger, errorHandler *apperrors.ErrorHandler) *StandardizeHandler {
	return &StandardizeHandler{
		service:      service,
		validator:    validator,
		logger:       logger.With(slog.String("handler", "standardize")),
		errorHandler: errorHandler,
	}
}

// RegisterRoutes registers the standardize routes
func (h *StandardizeHandler) RegisterRoutes(r chi.Router) {
	r.Post("/standardize", h.Standardize)
	r.Post("/standardize/csv", h.StandardizeCSV)
}

// Standardize handles POST /api/v1/standardize
func (h *StandardizeHandler) Standardize(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req StandardizeRequest
	if err := h.validator.DecodeJSON(r, &req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	method, err := standardize.ParseMethod(req.Method)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	columns, err := standardize.NewColumnSet(req.Columns)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	records, err := requestRecords(req.Header, req.Rows)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.DebugContext(ctx, "standardize request decoded",
		slog.String("method", method.String()),
		slog.Int("columns", columns.Len()),
		slog.Int("rows", len(req.Rows)),
	)

	out, report, err := h.service.StandardizeRecords(ctx, method, columns, records)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, StandardizeResponse{
		Header: out.Names(),
		Rows:   responseRows(out, req.Rows),
		Report: report,
	})
}

// StandardizeCSV handles POST /api/v1/standardize/csv?method=...&columns=a,b.
// The report summary is returned in X-Standardize-* headers.
func (h *StandardizeHandler) StandardizeCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	query := r.URL.Query()

	method, err := standardize.ParseMethod(query.Get("method"))
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var names []string
	for _, value := range query["columns"] {
		names = append(names, strings.Split(value, ",")...)
	}
	columns, err := standardize.NewColumnSet(names)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	out, report, err := h.service.StandardizeCSV(ctx, method, columns, r.Body)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("X-Standardize-Method", report.Method.String())
	w.Header().Set("X-Standardize-Rows", strconv.Itoa(report.Rows))
	w.Header().Set("X-Standardize-Partitions", strconv.Itoa(report.Partitions))
	w.Header().Set("X-Standardize-Degenerate", strconv.Itoa(len(report.Degenerate)))
	w.WriteHeader(http.StatusOK)

	if err := table.WriteCSV(w, out); err != nil {
		// Headers are already sent
		h.logger.ErrorContext(ctx, "failed to write CSV response", slog.String("error", err.Error()))
	}
}

// requestRecords turns JSON cells into the raw records the table reader takes
func requestRecords(header []string, rows [][]interface{}) ([][]string, error) {
	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)

	for i, row := range rows {
		if len(row) != len(header) {
			return nil, apperrors.NewParsingError(
				fmt.Sprintf("row %d has %d cells, header has %d", i, len(row), len(header)), nil)
		}
		record := make([]string, len(row))
		for j, cell := range row {
			switch v := cell.(type) {
			case nil:
			case string:
				record[j] = v
			case float64:
				record[j] = table.FormatFloat(v)
			default:
				return nil, apperrors.NewParsingError(
					fmt.Sprintf("row %d column %q: unsupported cell type %T", i, header[j], cell), nil)
			}
		}
		records = append(records, record)
	}

	return records, nil
}

// responseRows renders the table cells for JSON. Text columns pass through
// standardization untouched, so their cells are taken from the request rows
// when given. NaN has no JSON form and becomes null.
func responseRows(t *table.Table, request [][]interface{}) [][]interface{} {
	names := t.Names()
	columns := make([]*table.Column, len(names))
	for j, name := range names {
		columns[j], _ = t.Column(name)
	}

	rows := make([][]interface{}, t.Len())
	for i := range rows {
		row := make([]interface{}, len(columns))
		for j, c := range columns {
			if c.Kind == table.Text {
				if i < len(request) && j < len(request[i]) {
					row[j] = request[i][j]
				} else {
					row[j] = c.Texts[i]
				}
				continue
			}
			if v := c.Floats[i]; !math.IsNaN(v) && !math.IsInf(v, 0) {
				row[j] = v
			}
		}
		rows[i] = row
	}
	return rows
}
