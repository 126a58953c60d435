package view

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/ui"
)

type AddItemRequestDTO struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	VariantID *int64 `json:"variant_id,omitempty"`
}

type UpdateItemRequestDTO struct {
	Quantity int `json:"quantity"`
}

type CouponRequestDTO struct {
	CouponCode string `json:"coupon_code"`
}

type DarkModeRequestDTO struct {
	// Enabled toggles the flag when omitted.
	Enabled *bool `json:"enabled,omitempty"`
}

type SnackbarRequestDTO struct {
	Message  string      `json:"message"`
	Severity ui.Severity `json:"severity"`
}

type LoginRequestDTO struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CartResponse struct {
	*cart.State
	ItemCount  int             `json:"item_count"`
	TotalValue decimal.Decimal `json:"total_value"`
}

type ProductsResponse struct {
	Products   []domain.Product `json:"products"`
	Query      string           `json:"query"`
	Page       int              `json:"page"`
	TotalCount int              `json:"total_count"`
	TotalPages int              `json:"total_pages"`
	Fetched    bool             `json:"fetched"`
}

// DarkModeResponse reports whether the new flag reached durable storage.
type DarkModeResponse struct {
	*ui.State
	Persisted bool `json:"persisted"`
}

type AuthResponse struct {
	Authenticated bool         `json:"authenticated"`
	User          *domain.User `json:"user"`
}

func (h *Handler) withTimeout(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) cartResponse() CartResponse {
	st := h.store.Cart.State()
	return CartResponse{State: st, ItemCount: cart.ItemCount(st), TotalValue: cart.TotalValue(st)}
}

func (h *Handler) productsResponse(fetched bool) ProductsResponse {
	st := h.store.Catalog.State()
	return ProductsResponse{
		Products:   st.Products,
		Query:      catalog.URLQuery(st),
		Page:       st.Query.Page,
		TotalCount: st.TotalCount,
		TotalPages: st.TotalPages,
		Fetched:    fetched,
	}
}

func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.store.Snapshot())
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.store.Cart.Fetch(ctx); err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	h.store.Cart.Clear()
	h.respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	var req AddItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.ProductID <= 0 {
		h.respondError(w, http.StatusBadRequest, "invalid_product_id", "product_id must be positive")
		return
	}

	if _, err := h.store.Cart.AddItem(ctx, req.ProductID, req.Quantity, req.VariantID); err != nil {
		h.store.UI.ShowSnackbar(userMessage(err), ui.SeverityError)
		h.handleStoreError(w, err)
		return
	}
	h.store.UI.ShowSnackbar("Item added to cart", ui.SeveritySuccess)
	h.respondJSON(w, http.StatusCreated, h.cartResponse())
}

func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_item_id", "item id must be a positive integer")
		return
	}
	var req UpdateItemRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := h.store.Cart.UpdateItem(ctx, id, req.Quantity); err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) ApplyCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	var req CouponRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.store.Cart.ApplyCoupon(ctx, req.CouponCode); err != nil {
		h.store.UI.ShowSnackbar(userMessage(err), ui.SeverityError)
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.cartResponse())
}

func (h *Handler) RemoveCoupon(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.store.Cart.RemoveCoupon(ctx); err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.cartResponse())
}

// ListProducts takes the storefront URL query (category, search, minPrice,
// maxPrice, sort, featured, page). The fetch is skipped while the same query
// is still fresh.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	q, err := domain.ParseProductQuery(r.URL.Query())
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	fetched, err := h.store.Catalog.FetchProducts(ctx, catalog.FetchOptions{Query: &q})
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.productsResponse(fetched))
}

func (h *Handler) RefreshProducts(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	fetched, err := h.store.Catalog.FetchProducts(ctx, catalog.FetchOptions{Force: true})
	if err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.productsResponse(fetched))
}

func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	if err := h.store.Catalog.FetchCategories(ctx); err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.store.Catalog.State().Categories)
}

// RefreshDashboard always answers with the dashboard state; per-resource
// failures are carried inside it.
func (h *Handler) RefreshDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	_ = h.store.Dashboard.Refresh(ctx)
	h.respondJSON(w, http.StatusOK, h.store.Dashboard.State())
}

func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	id, ok := idParam(r)
	if !ok {
		h.respondError(w, http.StatusBadRequest, "invalid_alert_id", "alert id must be a positive integer")
		return
	}
	if err := h.store.Dashboard.ResolveAlert(ctx, id); err != nil {
		h.handleStoreError(w, err)
		return
	}
	h.respondJSON(w, http.StatusOK, h.store.Dashboard.State().Alerts)
}

// SetDarkMode keeps the new flag even if it could not be persisted; the
// response and a warning snackbar tell the client the write failed.
func (h *Handler) SetDarkMode(w http.ResponseWriter, r *http.Request) {
	var req DarkModeRequestDTO
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	var err error
	if req.Enabled == nil {
		err = h.store.UI.ToggleDarkMode(r.Context())
	} else {
		err = h.store.UI.SetDarkMode(r.Context(), *req.Enabled)
	}
	if err != nil {
		h.store.UI.ShowSnackbar("Dark mode could not be saved", ui.SeverityWarning)
	}
	h.respondJSON(w, http.StatusOK, DarkModeResponse{State: h.store.UI.State(), Persisted: err == nil})
}

func (h *Handler) ShowSnackbar(w http.ResponseWriter, r *http.Request) {
	var req SnackbarRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	h.store.UI.ShowSnackbar(req.Message, req.Severity)
	h.respondJSON(w, http.StatusOK, h.store.UI.State())
}

func (h *Handler) HideSnackbar(w http.ResponseWriter, r *http.Request) {
	h.store.UI.HideSnackbar()
	h.respondJSON(w, http.StatusOK, h.store.UI.State())
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.withTimeout(r)
	defer cancel()

	var req LoginRequestDTO
	if err := decodeJSON(r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if err := h.store.Auth.Login(ctx, req.Email, req.Password); err != nil {
		h.handleStoreError(w, err)
		return
	}
	st := h.store.Auth.State()
	h.respondJSON(w, http.StatusOK, AuthResponse{Authenticated: auth.IsAuthenticated(st), User: auth.CurrentUser(st)})
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	h.store.Auth.Logout()
	w.WriteHeader(http.StatusNoContent)
}
