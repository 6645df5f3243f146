package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/ec-fulfillment/internal/auth"
	"github.com/example/ec-fulfillment/internal/checkout"
	"github.com/example/ec-fulfillment/internal/command"
	"github.com/example/ec-fulfillment/internal/infrastructure/store"
	"github.com/example/ec-fulfillment/internal/query"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	backend := store.NewMemory()
	cmdHandler := command.NewHandler(
		backend,
		checkout.NewOrchestrator(backend),
		auth.NewCredentialService(backend),
	)
	srv := httptest.NewServer(NewRouter(NewHandlers(cmdHandler, query.NewHandler(backend), nil), nil))
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path string, body any) (int, map[string]any) {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, srv.URL+path, reader)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out map[string]any
	if resp.StatusCode != http.StatusNoContent {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp.StatusCode, out
}

var address = map[string]string{"line1": "1 Main St", "city": "Springfield", "postal_code": "12345", "country": "US"}

// ============================================
// Checkout Flow Tests
// ============================================

func TestAPI_CheckoutFlow(t *testing.T) {
	srv := newTestServer(t)

	status, customer := call(t, srv, http.MethodPost, "/customers", map[string]any{
		"email": "alice@example.com", "name": "Alice", "password": "correct-horse", "shipping_address": address,
	})
	require.Equal(t, http.StatusCreated, status)
	customerID := customer["id"].(string)

	status, product := call(t, srv, http.MethodPost, "/products", map[string]any{
		"name": "Widget", "sku": "W-1", "price": "10.00", "stock": 3,
	})
	require.Equal(t, http.StatusCreated, status)
	productID := product["id"].(string)

	status, _ = call(t, srv, http.MethodPost, "/customers/"+customerID+"/cart/items", map[string]any{
		"product_id": productID, "quantity": 2,
	})
	require.Equal(t, http.StatusOK, status)

	status, placed := call(t, srv, http.MethodPost, "/customers/"+customerID+"/checkout", nil)
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "PENDING", placed["status"])

	status, stocked := call(t, srv, http.MethodGet, "/products/"+productID, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, stocked["stock"])

	status, cart := call(t, srv, http.MethodGet, "/customers/"+customerID+"/cart", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Empty(t, cart["items"])
}

// ============================================
// Error Mapping Tests
// ============================================

func TestAPI_InsufficientStockReportsQuantities(t *testing.T) {
	srv := newTestServer(t)
	_, customer := call(t, srv, http.MethodPost, "/customers", map[string]any{
		"email": "alice@example.com", "name": "Alice", "password": "correct-horse",
	})
	_, product := call(t, srv, http.MethodPost, "/products", map[string]any{
		"name": "Widget", "sku": "W-1", "price": "10.00", "stock": 1,
	})

	status, body := call(t, srv, http.MethodPost, "/customers/"+customer["id"].(string)+"/cart/items", map[string]any{
		"product_id": product["id"], "quantity": 5,
	})

	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.EqualValues(t, 5, body["requested"])
	assert.EqualValues(t, 1, body["available"])
}

func TestAPI_ErrorStatuses(t *testing.T) {
	srv := newTestServer(t)
	call(t, srv, http.MethodPost, "/customers", map[string]any{
		"email": "alice@example.com", "name": "Alice", "password": "correct-horse",
	})

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown product", http.MethodGet, "/products/missing", nil, http.StatusNotFound},
		{"unknown order", http.MethodPost, "/orders/missing/confirm", nil, http.StatusNotFound},
		{"duplicate email", http.MethodPost, "/customers", map[string]any{
			"email": "alice@example.com", "name": "Alice", "password": "correct-horse",
		}, http.StatusConflict},
		{"short password", http.MethodPost, "/customers", map[string]any{
			"email": "bob@example.com", "name": "Bob", "password": "short",
		}, http.StatusBadRequest},
		{"bad price", http.MethodPost, "/products", map[string]any{
			"name": "Widget", "sku": "W-1", "price": "ten",
		}, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, srv, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestAPI_MalformedBody(t *testing.T) {
	srv := newTestServer(t)

	resp, err := srv.Client().Post(srv.URL+"/products", "application/json", bytes.NewBufferString("{"))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAPI_Healthz(t *testing.T) {
	srv := newTestServer(t)

	status, body := call(t, srv, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", body["status"])
}
