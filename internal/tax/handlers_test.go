package tax_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/taxy/internal/tax"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	handler := tax.NewHandler(tax.HandlerConfig{Service: tax.NewService(tax.ServiceConfig{})})
	r := chi.NewRouter()
	handler.Routes(r)
	return r
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestTaxAmountErrors(t *testing.T) {
	router := newRouter(t)

	t.Run("unknown regime", func(t *testing.T) {
		rec := get(t, router, "/getTaxAmount/unknown/600000?verbose=true")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "No such regime unknown!", rec.Body.String())
	})

	t.Run("regime names are case sensitive", func(t *testing.T) {
		rec := get(t, router, "/getTaxAmount/NEW/600000")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "No such regime NEW!", rec.Body.String())
	})

	t.Run("escaped regime name is decoded", func(t *testing.T) {
		rec := get(t, router, "/getTaxAmount/a%2Fb/1")
		require.Equal(t, http.StatusNotFound, rec.Code)
		require.Equal(t, "No such regime a/b!", rec.Body.String())

		rec = get(t, router, "/getTaxAmount/old%20regime/1")
		require.Equal(t, "No such regime old regime!", rec.Body.String())
	})

	t.Run("no regime name", func(t *testing.T) {
		rec := get(t, router, "/getTaxAmount/600000?verbose=true")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("no amount", func(t *testing.T) {
		rec := get(t, router, "/getTaxAmount/new/?verbose=true")
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	for _, amount := range []string{"abc", "-5", "NaN", "Inf"} {
		t.Run("invalid amount "+amount, func(t *testing.T) {
			rec := get(t, router, "/getTaxAmount/new/"+amount)
			require.Equal(t, http.StatusBadRequest, rec.Code)
			var body struct {
				Error struct {
					Code string `json:"code"`
				} `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Equal(t, "INVALID_AMOUNT", body.Error.Code)
		})
	}
}

func TestEscapedPathSegmentsResolve(t *testing.T) {
	router := newRouter(t)

	rec := get(t, router, "/getTaxAmount/n%65w/600000")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `{"incomeBeforeTaxes":600000,"totalPayableTax":22500,"incomeAfterTaxes":577500}`, rec.Body.String())

	rec = get(t, router, "/regimes/%6Fld")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"old"`)
}

func TestTaxAmountVerbose(t *testing.T) {
	router := newRouter(t)

	rec := get(t, router, "/getTaxAmount/new/150000?verbose=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, `{"incomeBeforeTaxes":150000,"totalPayableTax":0,"incomeAfterTaxes":150000,"slabs":[`+
		`{"taxSlab":{"gt":0,"lte":250000,"rateMultiplier":0,"taxFromPrevSlab":0},"taxInThisSlab":0,"totalTaxesTillNow":0}]}`,
		rec.Body.String())

	rec = get(t, router, "/getTaxAmount/new/1600000?verbose=true")
	require.Equal(t, http.StatusOK, rec.Code)
	var report tax.TaxReport
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, 217500.0, report.TotalPayableTax)
	require.Equal(t, 1382500.0, report.IncomeAfterTaxes)
	require.Len(t, report.Slabs, 7)
	last := report.Slabs[6]
	require.Nil(t, last.TaxSlab.LTE)
	require.Equal(t, 0.3, last.TaxSlab.RateMultiplier)
	require.Contains(t, rec.Body.String(), `{"gt":1500000,"lte":null,"rateMultiplier":0.3,"taxFromPrevSlab":187500}`)

	rec = get(t, router, "/getTaxAmount/old/1600000?verbose=true")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	require.Equal(t, 292500.0, report.TotalPayableTax)
	require.Equal(t, 1307500.0, report.IncomeAfterTaxes)
}

func TestTaxAmountSummary(t *testing.T) {
	router := newRouter(t)

	for _, target := range []string{
		"/getTaxAmount/old/600000",
		"/getTaxAmount/old/600000?verbose=false",
		"/getTaxAmount/old/600000?verbose=maybe",
	} {
		rec := get(t, router, target)
		require.Equal(t, http.StatusOK, rec.Code, target)
		require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
		require.Equal(t, `{"incomeBeforeTaxes":600000,"totalPayableTax":32500,"incomeAfterTaxes":567500}`, rec.Body.String(), target)
	}
}

func TestRegimesEndpoints(t *testing.T) {
	router := newRouter(t)

	rec := get(t, router, "/regimes")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []struct {
			Name  string        `json:"name"`
			Slabs []tax.TaxSlab `json:"slabs"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	require.Equal(t, "new", list.Data[0].Name)
	require.Equal(t, "old", list.Data[1].Name)
	require.Len(t, list.Data[1].Slabs, 7)

	rec = get(t, router, "/regimes/old")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"name":"old"`)

	rec = get(t, router, "/regimes/unknown")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "No such regime unknown!", rec.Body.String())
}

func TestHandlerWithoutService(t *testing.T) {
	handler := tax.NewHandler(tax.HandlerConfig{})
	r := chi.NewRouter()
	handler.Routes(r)

	rec := get(t, r, "/getTaxAmount/new/1")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
