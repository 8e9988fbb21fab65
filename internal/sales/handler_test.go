package sales

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storeledger/backoffice/internal/records"
)

func newTestRouter(t *testing.T) (http.Handler, *mockRepository) {
	t.Helper()
	svc, repo, _ := newTestService(t)
	r := chi.NewRouter()
	NewHandler(nil, svc).MountRoutes(r)
	return r, repo
}

func do(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

const createBody = `{"date":"2024-03-15","product":{"category":"phone","brand":"Acme","model":"X1"},
	"quantity":2,"unitPrice":15000,"paymentMethod":"card","customerName":"Meera"}`

func TestHandlerCreateAndShow(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(router, http.MethodPost, "/sales", createBody)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var created records.Sale
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))
	assert.Equal(t, 30000.0, created.TotalAmount)

	rr = do(router, http.MethodGet, "/sales/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"customerName":"Meera"`)
}

func TestHandlerCreateValidationProblem(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(router, http.MethodPost, "/sales", `{"date":"2024-03-15","quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Body.String(), `"quantity"`)
}

func TestHandlerRejectsUnknownFields(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(router, http.MethodPost, "/sales", `{"discount":5}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerListPassesFilters(t *testing.T) {
	router, repo := newTestRouter(t)

	rr := do(router, http.MethodGet, "/sales?from=2024-03-01&to=2024-03-31&brand=Acme&payment_method=upi&page=2&per_page=10", "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Acme", repo.lastQuery.Filters["product.brand"])
	assert.Equal(t, "upi", repo.lastQuery.Filters["paymentMethod"])
	assert.Equal(t, 2, repo.lastQuery.Page)
	assert.Equal(t, 10, repo.lastQuery.PerPage)
	assert.Equal(t, 31, repo.lastQuery.To.Day())
}

func TestHandlerShowBadIDAndMissing(t *testing.T) {
	router, _ := newTestRouter(t)

	rr := do(router, http.MethodGet, "/sales/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(router, http.MethodGet, "/sales/6f1c1a8e-4b8a-4c5e-9d55-0e3c1f2a7b10", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestHandlerDeleteNeedsConfirm(t *testing.T) {
	router, repo := newTestRouter(t)
	rr := do(router, http.MethodPost, "/sales", createBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created records.Sale
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = do(router, http.MethodDelete, "/sales/"+created.ID.String(), "")
	assert.Equal(t, http.StatusPreconditionRequired, rr.Code)

	rr = do(router, http.MethodDelete, "/sales/"+created.ID.String()+"?confirm="+created.ID.String(), "")
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, repo.sales)
}

func TestHandlerPatch(t *testing.T) {
	router, _ := newTestRouter(t)
	rr := do(router, http.MethodPost, "/sales", createBody)
	require.Equal(t, http.StatusCreated, rr.Code)
	var created records.Sale
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &created))

	rr = do(router, http.MethodPatch, "/sales/"+created.ID.String(), `{"unitPrice":10000}`)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	var updated records.Sale
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &updated))
	assert.Equal(t, 20000.0, updated.TotalAmount)
}
