// Package cart is the cart slice: the server-confirmed cart plus the status of
// the last cart call.
package cart

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lifecycle"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrEmptyCoupon     = errors.New("coupon code is required")
)

type API interface {
	GetCart(ctx context.Context) (domain.CartSnapshot, error)
	AddCartItem(ctx context.Context, req domain.AddItemRequest) (domain.CartItem, error)
	UpdateCartItem(ctx context.Context, req domain.UpdateItemRequest) (*domain.CartItem, error)
	ApplyCoupon(ctx context.Context, code string) (domain.CouponResult, error)
	RemoveCoupon(ctx context.Context) (domain.TotalResult, error)
}

// State is one immutable cart snapshot. Items keep insertion order.
// TotalItems and Subtotal are derived from Items; Total and Discount are the
// last values the backend confirmed.
type State struct {
	Items      []domain.CartItem `json:"items"`
	TotalItems int               `json:"total_items"`
	Subtotal   decimal.Decimal   `json:"subtotal"`
	Discount   decimal.Decimal   `json:"discount"`
	Total      decimal.Decimal   `json:"total"`
	Coupon     *domain.Coupon    `json:"coupon"`

	Request lifecycle.Request `json:"request"`
}

func (s State) Clone() State {
	s.Items = slices.Clone(s.Items)
	return s
}

type Slice struct {
	slice *lifecycle.Slice[State]
	api   API
}

func New(api API, logger *zap.Logger) *Slice {
	return &Slice{
		slice: lifecycle.NewSlice("cart", State{}, logger),
		api:   api,
	}
}

func (s *Slice) State() *State { return s.slice.State() }

func (s *Slice) OnChange(fn func(name string)) { s.slice.OnChange(fn) }

func request(st *State) *lifecycle.Request { return &st.Request }

// Fetch replaces the whole cart with the server snapshot.
func (s *Slice) Fetch(ctx context.Context) error {
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, domain.CartSnapshot]{
		Name:    "cart.fetch",
		Request: request,
		Call:    s.api.GetCart,
		Apply: func(st *State, snap domain.CartSnapshot) {
			st.Items = slices.Clone(snap.Items)
			st.Subtotal = snap.Subtotal
			st.Total = snap.Total
			st.Coupon = snap.Coupon
			st.Discount = discount(snap.Subtotal, snap.Total)
			st.TotalItems = totalQuantity(st.Items)
		},
	})
	return err
}

// AddItem adds quantity units of a product. The returned line replaces the
// line with the same id or is appended.
func (s *Slice) AddItem(ctx context.Context, productID int64, quantity int, variantID *int64) (domain.CartItem, error) {
	if quantity < 1 {
		return domain.CartItem{}, fmt.Errorf("%w: add requires at least 1, got %d", ErrInvalidQuantity, quantity)
	}
	req := domain.AddItemRequest{ProductID: productID, Quantity: quantity, VariantID: variantID}

	return lifecycle.Run(ctx, s.slice, lifecycle.Op[State, domain.CartItem]{
		Name:    "cart.add_item",
		Request: request,
		Call: func(ctx context.Context) (domain.CartItem, error) {
			return s.api.AddCartItem(ctx, req)
		},
		Apply: func(st *State, item domain.CartItem) {
			upsert(st, item)
		},
	})
}

// UpdateItem sets a line's quantity. Quantity 0 removes the line.
func (s *Slice) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: negative quantity %d", ErrInvalidQuantity, quantity)
	}
	req := domain.UpdateItemRequest{ItemID: itemID, Quantity: quantity}

	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, *domain.CartItem]{
		Name:    "cart.update_item",
		Request: request,
		Call: func(ctx context.Context) (*domain.CartItem, error) {
			return s.api.UpdateCartItem(ctx, req)
		},
		Apply: func(st *State, item *domain.CartItem) {
			if quantity == 0 || item == nil {
				remove(st, itemID)
				return
			}
			upsert(st, *item)
		},
	})
	return err
}

// ApplyCoupon touches only the coupon, total and discount.
func (s *Slice) ApplyCoupon(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)
	if code == "" {
		return ErrEmptyCoupon
	}

	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, domain.CouponResult]{
		Name:    "cart.apply_coupon",
		Request: request,
		Call: func(ctx context.Context) (domain.CouponResult, error) {
			return s.api.ApplyCoupon(ctx, code)
		},
		Apply: func(st *State, res domain.CouponResult) {
			st.Coupon = res.Coupon
			if st.Coupon == nil {
				st.Coupon = &domain.Coupon{Code: code}
			}
			st.Total = res.Total
			st.Discount = discount(st.Subtotal, res.Total)
		},
	})
	return err
}

// RemoveCoupon touches only the coupon, total and discount.
func (s *Slice) RemoveCoupon(ctx context.Context) error {
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, domain.TotalResult]{
		Name:    "cart.remove_coupon",
		Request: request,
		Call:    s.api.RemoveCoupon,
		Apply: func(st *State, res domain.TotalResult) {
			st.Coupon = nil
			st.Discount = decimal.Zero
			st.Total = res.Total
		},
	})
	return err
}

// Clear empties the cart locally. Calls still in flight are discarded when
// they settle.
func (s *Slice) Clear() {
	s.slice.Reset(func(st *State) { *st = State{} })
}

func (s *Slice) ClearError() {
	s.slice.Update(func(st *State) { st.Request.ClearError() })
}

func upsert(st *State, item domain.CartItem) {
	if i := slices.IndexFunc(st.Items, func(it domain.CartItem) bool { return it.ID == item.ID }); i >= 0 {
		st.Items[i] = item
	} else {
		st.Items = append(st.Items, item)
	}
	recompute(st)
}

func remove(st *State, itemID int64) {
	st.Items = slices.DeleteFunc(st.Items, func(it domain.CartItem) bool { return it.ID == itemID })
	recompute(st)
}

func recompute(st *State) {
	st.TotalItems = totalQuantity(st.Items)
	st.Subtotal = subtotal(st.Items)
}

func totalQuantity(items []domain.CartItem) int {
	n := 0
	for _, it := range items {
		n += it.Quantity
	}
	return n
}

func subtotal(items []domain.CartItem) decimal.Decimal {
	sum := decimal.Zero
	for _, it := range items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

func discount(subtotal, total decimal.Decimal) decimal.Decimal {
	d := subtotal.Sub(total)
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}
