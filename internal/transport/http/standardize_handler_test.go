package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "factorstd/internal/errors"
	"factorstd/internal/middleware"
	"factorstd/internal/services"
	"factorstd/internal/table"
)

func TestRequestRecords(t *testing.T) {
	header := []string{"date", "instrument", "momentum"}

	t.Run("cells", func(t *testing.T) {
		records, err := requestRecords(header, [][]interface{}{
			{"2024-01-02", "BBOB", 1.5},
			{"2024-01-02", "TASC", nil},
			{20240103.0, "IMAP", "7"},
		})
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			header,
			{"2024-01-02", "BBOB", "1.5"},
			{"2024-01-02", "TASC", ""},
			{"20240103", "IMAP", "7"},
		}, records)
	})

	t.Run("errors", func(t *testing.T) {
		for name, rows := range map[string][][]interface{}{
			"short row":   {{"2024-01-02", "BBOB"}},
			"object cell": {{"2024-01-02", "BBOB", map[string]interface{}{}}},
			"bool cell":   {{"2024-01-02", "BBOB", false}},
		} {
			_, err := requestRecords(header, rows)
			assert.True(t, apperrors.IsType(err, apperrors.ErrTypeParsing), name)
		}
	})
}

func TestResponseRows(t *testing.T) {
	tbl := table.New(2)
	require.NoError(t, tbl.AddTexts("date", []string{"2024-01-02", "2024-01-02"}))
	require.NoError(t, tbl.AddFloats("momentum", []float64{0.25, math.NaN()}))
	require.NoError(t, tbl.AddFloats("value", []float64{math.Inf(1), -1}))

	t.Run("from table", func(t *testing.T) {
		assert.Equal(t, [][]interface{}{
			{"2024-01-02", 0.25, nil},
			{"2024-01-02", nil, -1.0},
		}, responseRows(tbl, nil))
	})

	t.Run("request cells keep their type", func(t *testing.T) {
		request := [][]interface{}{
			{20240102.0, 9.0, 1.0},
			{"2024-01-02", 9.0, 2.0},
		}
		assert.Equal(t, [][]interface{}{
			{20240102.0, 0.25, nil},
			{"2024-01-02", nil, -1.0},
		}, responseRows(tbl, request))
	})
}

func TestStandardizeNumericDate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewStandardizeHandler(
		services.NewStandardizeService(1, logger),
		middleware.NewValidator(),
		logger,
		apperrors.NewErrorHandler(logger, false),
	)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	body := `{
		"method": "MinMaxNorm",
		"columns": ["momentum"],
		"header": ["date", "instrument", "momentum", "price"],
		"rows": [
			[20240102, "BBOB", 1, 1.5],
			[20240102, "TASC", 3, null]
		]
	}`
	req := httptest.NewRequest(http.MethodPost, "/standardize", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		Rows [][]interface{} `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, [][]interface{}{
		{20240102.0, "BBOB", 0.0, 1.5},
		{20240102.0, "TASC", 1.0, nil},
	}, resp.Rows)
}

func TestStandardizeCSVQuery(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewStandardizeHandler(
		services.NewStandardizeService(1, logger),
		middleware.NewValidator(),
		logger,
		apperrors.NewErrorHandler(logger, false),
	)
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	body := "date,instrument,a,b\n2024-01-02,X,1,4\n2024-01-02,Y,3,2\n"
	req := httptest.NewRequest(http.MethodPost, "/standardize/csv?method=ZScoreNorm&columns=a&columns=b", strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out, err := table.ReadCSV(rec.Body, table.ReadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"date", "instrument", "a", "b"}, out.Names())

	a, err := out.Floats("a")
	require.NoError(t, err)
	b, err := out.Floats("b")
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{-math.Sqrt2 / 2, math.Sqrt2 / 2}, a, 1e-12)
	assert.InDeltaSlice(t, []float64{math.Sqrt2 / 2, -math.Sqrt2 / 2}, b, 1e-12)
}
