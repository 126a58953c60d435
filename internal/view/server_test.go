package view

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/prefs"
	"github.com/fjod/go_cart/storefront/internal/store"
	"github.com/fjod/go_cart/storefront/internal/ui"
)

type fakeBackend struct {
	mu          sync.Mutex
	cart        domain.CartSnapshot
	addErr      error
	productCall int
	alerts      []domain.Alert
}

func (f *fakeBackend) Login(ctx context.Context, req domain.LoginRequest) (domain.Tokens, error) {
	if req.Password != "secret" {
		return domain.Tokens{}, &api.Error{Kind: api.KindAuth, StatusCode: http.StatusUnauthorized, Code: "unauthorized", Message: "No active account found"}
	}
	return domain.Tokens{Access: "acc", User: &domain.User{ID: 1, Email: req.Email}}, nil
}

func (f *fakeBackend) Register(ctx context.Context, req domain.RegisterRequest) (domain.Tokens, error) {
	return domain.Tokens{Access: "acc"}, nil
}

func (f *fakeBackend) GetCart(ctx context.Context) (domain.CartSnapshot, error) {
	return f.cart, nil
}

func (f *fakeBackend) AddCartItem(ctx context.Context, req domain.AddItemRequest) (domain.CartItem, error) {
	if f.addErr != nil {
		return domain.CartItem{}, f.addErr
	}
	return domain.CartItem{ID: 1, ProductID: req.ProductID, Price: decimal.NewFromInt(10), Quantity: req.Quantity}, nil
}

func (f *fakeBackend) UpdateCartItem(ctx context.Context, req domain.UpdateItemRequest) (*domain.CartItem, error) {
	if req.Quantity == 0 {
		return nil, nil
	}
	return &domain.CartItem{ID: req.ItemID, Price: decimal.NewFromInt(10), Quantity: req.Quantity}, nil
}

func (f *fakeBackend) ApplyCoupon(ctx context.Context, code string) (domain.CouponResult, error) {
	return domain.CouponResult{Coupon: &domain.Coupon{Code: code}, Total: decimal.NewFromInt(15)}, nil
}

func (f *fakeBackend) RemoveCoupon(ctx context.Context) (domain.TotalResult, error) {
	return domain.TotalResult{Total: decimal.NewFromInt(20)}, nil
}

func (f *fakeBackend) ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	f.mu.Lock()
	f.productCall++
	f.mu.Unlock()
	return domain.ProductPage{Products: []domain.Product{{ID: 1, Name: "Runner", Price: decimal.NewFromInt(90)}}, Count: 30}, nil
}

func (f *fakeBackend) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return []domain.Category{{ID: 1, Name: "Shoes", Slug: "shoes"}}, nil
}

func (f *fakeBackend) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	return domain.DashboardSummary{}, &api.Error{Kind: api.KindTransport, Code: "network_error", Message: "connection refused"}
}

func (f *fakeBackend) InventoryAnalytics(ctx context.Context) ([]domain.InventoryItem, error) {
	return []domain.InventoryItem{{ProductID: 1, Quantity: 3, LowStockThreshold: 5}}, nil
}

func (f *fakeBackend) InventoryAlerts(ctx context.Context) ([]domain.Alert, error) {
	return f.alerts, nil
}

func (f *fakeBackend) ResolveAlert(ctx context.Context, id int64) error {
	return nil
}

type memPrefs struct {
	mu       sync.Mutex
	values   map[string]bool
	writeErr error
}

func (m *memPrefs) GetBool(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return false, prefs.ErrNotFound
	}
	return v, nil
}

func (m *memPrefs) SetBool(ctx context.Context, key string, v bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.values[key] = v
	return nil
}

func setup(t *testing.T, b *fakeBackend) (*store.Store, http.Handler, *memPrefs) {
	t.Helper()
	p := &memPrefs{values: map[string]bool{}}
	st := store.NewWithBackend(b, "", p, zap.NewNop())
	h := NewHandler(st, 5*time.Second, zap.NewNop())
	return st, h.Router(), p
}

func do(t *testing.T, h http.Handler, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, &buf))
	return rec
}

func TestHealthz(t *testing.T) {
	_, h, _ := setup(t, &fakeBackend{})
	rec := do(t, h, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCartIntents(t *testing.T) {
	st, h, _ := setup(t, &fakeBackend{})

	rec := do(t, h, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 7, Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp struct {
		Items      []domain.CartItem `json:"items"`
		TotalItems int               `json:"total_items"`
		ItemCount  int               `json:"item_count"`
		TotalValue decimal.Decimal   `json:"total_value"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Items, 1)
	assert.Equal(t, 2, resp.TotalItems)
	assert.Equal(t, 2, resp.ItemCount)
	assert.True(t, resp.TotalValue.Equal(decimal.NewFromInt(20)))
	assert.Equal(t, "Item added to cart", st.UI.State().Snackbar.Message)

	rec = do(t, h, http.MethodPost, "/cart/coupon", CouponRequestDTO{CouponCode: "SAVE5"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.Cart.State().Discount.Equal(decimal.NewFromInt(5)))

	rec = do(t, h, http.MethodDelete, "/cart/coupon", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, st.Cart.State().Coupon)

	rec = do(t, h, http.MethodPatch, "/cart/items/1", UpdateItemRequestDTO{Quantity: 0})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.Cart.State().Items)
}

func TestAddItem_Validation(t *testing.T) {
	_, h, _ := setup(t, &fakeBackend{})

	rec := do(t, h, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 0, Quantity: 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 3, Quantity: 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(t, h, http.MethodPost, "/cart/items", map[string]any{"product_id": 3, "qty": 1})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddItem_BackendErrorSurfaced(t *testing.T) {
	b := &fakeBackend{addErr: &api.Error{
		Kind: api.KindBackend, StatusCode: http.StatusBadRequest, Code: "bad_request",
		Message: "quantity: Insufficient stock", Details: map[string]any{"quantity": []any{"Insufficient stock"}},
	}}
	st, h, _ := setup(t, b)

	rec := do(t, h, http.MethodPost, "/cart/items", AddItemRequestDTO{ProductID: 3, Quantity: 99})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "quantity: Insufficient stock", resp.Error)
	assert.Contains(t, resp.Details, "quantity")

	assert.Equal(t, "quantity: Insufficient stock", st.UI.State().Snackbar.Message)
	assert.NotNil(t, st.Cart.State().Request.Error)
}

func TestProducts_QueryAndFreshness(t *testing.T) {
	b := &fakeBackend{}
	_, h, _ := setup(t, b)

	rec := do(t, h, http.MethodGet, "/products?category=shoes&sort=price_desc&page=2", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp ProductsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Fetched)
	assert.Equal(t, 2, resp.Page)
	assert.Equal(t, 3, resp.TotalPages)
	assert.Equal(t, "category=shoes&page=2&sort=price_desc", resp.Query)

	rec = do(t, h, http.MethodGet, "/products?category=shoes&sort=price_desc&page=2", nil)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Fetched)

	rec = do(t, h, http.MethodPost, "/products/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, b.productCall)

	rec = do(t, h, http.MethodGet, "/products?sort=cheapest", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCategories(t *testing.T) {
	_, h, _ := setup(t, &fakeBackend{})
	rec := do(t, h, http.MethodGet, "/categories", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[{"id":1,"name":"Shoes","slug":"shoes"}]`, rec.Body.String())
}

func TestDashboard_PartialFailureAndResolve(t *testing.T) {
	b := &fakeBackend{alerts: []domain.Alert{{ID: 4}, {ID: 5}}}
	st, h, _ := setup(t, b)

	rec := do(t, h, http.MethodPost, "/dashboard/refresh", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	ds := st.Dashboard.State()
	assert.NotNil(t, ds.Summary.Request.Error)
	assert.Nil(t, ds.Summary.Data)
	assert.Len(t, ds.Inventory.Data, 1)

	rec = do(t, h, http.MethodPost, "/dashboard/alerts/4/resolve", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, st.Dashboard.State().Alerts.Data, 1)
	assert.Equal(t, int64(5), st.Dashboard.State().Alerts.Data[0].ID)

	rec = do(t, h, http.MethodPost, "/dashboard/alerts/abc/resolve", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUIIntents(t *testing.T) {
	st, h, p := setup(t, &fakeBackend{})

	rec := do(t, h, http.MethodPost, "/ui/dark-mode", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.UI.State().DarkMode)
	assert.True(t, p.values[prefs.DarkModeKey])
	var resp DarkModeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Persisted)
	assert.True(t, resp.DarkMode)

	enabled := false
	rec = do(t, h, http.MethodPost, "/ui/dark-mode", DarkModeRequestDTO{Enabled: &enabled})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, st.UI.State().DarkMode)

	rec = do(t, h, http.MethodPost, "/ui/snackbar", SnackbarRequestDTO{Message: "Saved", Severity: "warning"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.UI.State().Snackbar.Open)

	rec = do(t, h, http.MethodDelete, "/ui/snackbar", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, st.UI.State().Snackbar.Open)
}

func TestAuthIntents(t *testing.T) {
	st, h, _ := setup(t, &fakeBackend{})

	rec := do(t, h, http.MethodPost, "/auth/login", LoginRequestDTO{Email: "a@b.c", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(t, h, http.MethodPost, "/auth/login", LoginRequestDTO{Email: "a@b.c", Password: "secret"})
	require.Equal(t, http.StatusOK, rec.Code)
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Authenticated)
	assert.Equal(t, "a@b.c", resp.User.Email)

	rec = do(t, h, http.MethodGet, "/state", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"acc"`)

	rec = do(t, h, http.MethodPost, "/auth/logout", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, st.Auth.Token())
}

func TestClearCart(t *testing.T) {
	b := &fakeBackend{cart: domain.CartSnapshot{Items: []domain.CartItem{{ID: 1, Price: decimal.NewFromInt(1), Quantity: 1}}}}
	st, h, _ := setup(t, b)

	rec := do(t, h, http.MethodGet, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, st.Cart.State().Items, 1)

	rec = do(t, h, http.MethodDelete, "/cart", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, st.Cart.State().Items)
}

func TestDarkModeWriteFailureIsReported(t *testing.T) {
	st, h, p := setup(t, &fakeBackend{})
	p.writeErr = errors.New("disk full")

	rec := do(t, h, http.MethodPost, "/ui/dark-mode", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DarkModeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Persisted)
	assert.True(t, resp.DarkMode)
	assert.True(t, st.UI.State().DarkMode)
	assert.True(t, st.UI.State().Snackbar.Open)
	assert.Equal(t, ui.SeverityWarning, st.UI.State().Snackbar.Severity)
	assert.NotContains(t, p.values, prefs.DarkModeKey)
}
