package view

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lifecycle"
)

type ErrorResponse struct {
	Error   string         `json:"error"`
	Code    string         `json:"code,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{Error: message, Code: code})
}

// handleStoreError maps a slice error to an HTTP response.
func (h *Handler) handleStoreError(w http.ResponseWriter, err error) {
	var apiErr *api.Error
	switch {
	case errors.As(err, &apiErr):
		h.respondJSON(w, statusForAPIError(apiErr), ErrorResponse{
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Details: apiErr.Details,
		})
	case errors.Is(err, lifecycle.ErrSuperseded):
		h.respondError(w, http.StatusConflict, "superseded", err.Error())
	case errors.Is(err, context.Canceled):
		h.respondError(w, http.StatusRequestTimeout, "canceled", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.respondError(w, http.StatusGatewayTimeout, "deadline_exceeded", err.Error())
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, cart.ErrEmptyCoupon),
		errors.Is(err, domain.ErrInvalidQuery),
		errors.Is(err, domain.ErrInvalidCredentials):
		h.respondError(w, http.StatusBadRequest, "invalid_argument", err.Error())
	default:
		h.logger.Error("unhandled store error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func statusForAPIError(e *api.Error) int {
	switch {
	case e.Kind == api.KindAuth && e.StatusCode != 0:
		return e.StatusCode
	case e.Kind == api.KindAuth:
		return http.StatusUnauthorized
	case e.Kind == api.KindTransport && e.Code == "circuit_open":
		return http.StatusServiceUnavailable
	case e.Kind == api.KindTransport:
		return http.StatusBadGateway
	case e.StatusCode >= 500:
		return http.StatusBadGateway
	case e.StatusCode != 0:
		return e.StatusCode
	default:
		return http.StatusBadGateway
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// userMessage is the text shown to the shopper for a failed intent.
func userMessage(err error) string {
	var apiErr *api.Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return err.Error()
}
