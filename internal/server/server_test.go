package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pos-service/pkg/config"
	"pos-service/pkg/database"
	"pos-service/pkg/syncapi"
	"pos-service/prometheus"

	"github.com/labstack/echo/v4"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestServer(t *testing.T) *echo.Echo {
	t.Helper()
	db, err := database.OpenMemory()
	require.NoError(t, err)

	reg := prom.NewRegistry()
	cfg := &config.Config{
		ServiceName: "pos-test",
		Server:      config.ServerConfig{CORSOrigins: []string{"*"}},
		JWT:         config.JWTConfig{SigningKey: "test-key", ExpirationHours: 1},
	}
	return New(Deps{
		Config:   cfg,
		DB:       db,
		Logger:   zap.NewNop(),
		Metrics:  prometheus.NewMetrics("test", reg),
		Gatherer: reg,
	})
}

func do(t *testing.T, e *echo.Echo, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, e *echo.Echo, email string) syncapi.AuthResponse {
	t.Helper()
	rec := do(t, e, http.MethodPost, "/api/auth/register", "", syncapi.RegisterRequest{
		Email:    email,
		Password: "s3cret-pass",
		Name:     "Owner",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp syncapi.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp
}

func TestRegisterAndLogin(t *testing.T) {
	e := newTestServer(t)
	reg := register(t, e, "owner@shop.in")

	rec := do(t, e, http.MethodPost, "/api/auth/register", "", syncapi.RegisterRequest{
		Email: "owner@shop.in", Password: "another-pass", Name: "Dup",
	})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/auth/login", "", syncapi.LoginRequest{Email: "owner@shop.in", Password: "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/auth/login", "", syncapi.LoginRequest{Email: "owner@shop.in", Password: "s3cret-pass"})
	require.Equal(t, http.StatusOK, rec.Code)
	var login syncapi.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &login))
	assert.Equal(t, reg.User.ID, login.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	e := newTestServer(t)
	rec := do(t, e, http.MethodPost, "/api/auth/register", "", syncapi.RegisterRequest{Email: "not-an-email", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestSyncRequiresToken(t *testing.T) {
	e := newTestServer(t)
	rec := do(t, e, http.MethodPost, "/api/sync/pull", "", syncapi.PullRequest{UserID: "u1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/sync/pull", "garbage", syncapi.PullRequest{UserID: "u1"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSyncRejectsOtherUser(t *testing.T) {
	e := newTestServer(t)
	auth := register(t, e, "owner@shop.in")

	rec := do(t, e, http.MethodPost, "/api/sync/pull", auth.Token, syncapi.PullRequest{UserID: "someone-else"})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var body syncapi.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Error)
}

func TestPushAndPullOverHTTP(t *testing.T) {
	e := newTestServer(t)
	auth := register(t, e, "owner@shop.in")
	userID := auth.User.ID
	now := syncapi.Now()

	push := syncapi.PushRequest{
		UserID: userID,
		Products: []syncapi.Product{{
			ID: "p1", Code: "8901", Name: "Soap", Quantity: 4, Price: 25, GSTPercent: 18,
			CreatedAt: now, UpdatedAt: now,
		}},
		Transactions: []syncapi.Transaction{{
			ID: "t1", InvoiceNumber: "INV000001",
			Items:    []syncapi.LineItem{{ProductID: "p1", Name: "Soap", Price: 25, GSTPercent: 18, Quantity: 1}},
			Subtotal: 25, TaxTotal: 4.5, Total: 29.5,
			CreatedAt: now, UpdatedAt: now,
		}},
	}

	rec := do(t, e, http.MethodPost, "/api/sync/push", auth.Token, push)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var pushResp syncapi.PushResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pushResp))
	assert.True(t, pushResp.Success)
	assert.Equal(t, 1, pushResp.Results.ProductsCreated)
	assert.Equal(t, 1, pushResp.Results.TransactionsCreated)

	rec = do(t, e, http.MethodPost, "/api/sync/pull", auth.Token, syncapi.PullRequest{UserID: userID})
	require.Equal(t, http.StatusOK, rec.Code)

	var pullResp syncapi.PullResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pullResp))
	require.Len(t, pullResp.Products, 1)
	require.Len(t, pullResp.Transactions, 1)
	assert.Equal(t, "Soap", pullResp.Products[0].Name)
	assert.Equal(t, 29.5, pullResp.Transactions[0].Total)

	// camelCase on the wire
	assert.True(t, strings.Contains(rec.Body.String(), `"syncedAt"`))
	assert.True(t, strings.Contains(rec.Body.String(), `"invoiceNumber"`))

	later := pullResp.SyncedAt.Add(time.Millisecond)
	rec = do(t, e, http.MethodPost, "/api/sync/pull", auth.Token, syncapi.PullRequest{UserID: userID, LastSyncAt: &later})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pullResp))
	assert.Empty(t, pullResp.Products)
	assert.Empty(t, pullResp.Transactions)
}

func TestPushValidatesPayload(t *testing.T) {
	e := newTestServer(t)
	auth := register(t, e, "owner@shop.in")

	rec := do(t, e, http.MethodPost, "/api/sync/push", auth.Token, syncapi.PushRequest{
		UserID:   auth.User.ID,
		Products: []syncapi.Product{{ID: "p1", Name: "Bad", Quantity: -3}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/sync/push", auth.Token, syncapi.PushRequest{
		UserID:       auth.User.ID,
		Transactions: []syncapi.Transaction{{ID: "t1", InvoiceNumber: "INV000001"}},
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStoresEndpoints(t *testing.T) {
	e := newTestServer(t)
	auth := register(t, e, "owner@shop.in")

	rec := do(t, e, http.MethodPost, "/api/stores", auth.Token, syncapi.CreateStoreRequest{Name: "Main Street", GSTNumber: "29ABCDE1234F1Z5"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created syncapi.StoreResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEmpty(t, created.Store.ID)
	assert.Equal(t, auth.User.ID, created.Store.UserID)

	rec = do(t, e, http.MethodGet, "/api/stores/"+auth.User.ID, auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list syncapi.StoresResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Stores, 1)
	assert.Equal(t, "Main Street", list.Stores[0].Name)

	rec = do(t, e, http.MethodGet, "/api/stores/other-user", auth.Token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestFeedbackEndpoints(t *testing.T) {
	e := newTestServer(t)
	auth := register(t, e, "owner@shop.in")

	rec := do(t, e, http.MethodPost, "/api/feedback", auth.Token, syncapi.FeedbackRequest{Rating: 9})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, e, http.MethodPost, "/api/feedback", auth.Token, syncapi.FeedbackRequest{Rating: 4, Message: "works offline"})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, e, http.MethodGet, "/api/feedback/"+auth.User.ID, auth.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "works offline")
}

func TestHealthAndMetrics(t *testing.T) {
	e := newTestServer(t)

	rec := do(t, e, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")

	rec = do(t, e, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "test_http_requests_total")
}

func TestRequestIDIsEchoed(t *testing.T) {
	e := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(echo.HeaderXRequestID, "req-123")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
}
