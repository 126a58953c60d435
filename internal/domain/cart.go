package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidItem     = errors.New("invalid cart item")
	ErrInvalidSnapshot = errors.New("invalid cart snapshot")
	ErrInvalidTotal    = errors.New("invalid cart total")
)

// CartItem is one cart line as the backend reports it.
type CartItem struct {
	ID          int64           `json:"id"`
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
	VariantID   *int64          `json:"variant_id,omitempty"`
}

// LineTotal is price × quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Validate checks the shape of a line returned by add/update calls.
// Quantity 0 is allowed: update_item uses it to signal removal.
func (i CartItem) Validate() error {
	if i.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidItem, i.ID)
	}
	if i.Quantity < 0 {
		return fmt.Errorf("%w: negative quantity %d for item %d", ErrInvalidItem, i.Quantity, i.ID)
	}
	if i.Price.IsNegative() {
		return fmt.Errorf("%w: negative price for item %d", ErrInvalidItem, i.ID)
	}
	return nil
}

type Coupon struct {
	Code        string `json:"code"`
	Description string `json:"description,omitempty"`
}

// CartSnapshot is the full cart body of GET /cart/.
type CartSnapshot struct {
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
	Total      decimal.Decimal `json:"total"`
	Coupon     *Coupon         `json:"coupon"`
}

func (s CartSnapshot) Validate() error {
	seen := make(map[int64]struct{}, len(s.Items))
	for _, item := range s.Items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
		if item.Quantity < 1 {
			return fmt.Errorf("%w: item %d has quantity %d", ErrInvalidSnapshot, item.ID, item.Quantity)
		}
		if _, dup := seen[item.ID]; dup {
			return fmt.Errorf("%w: duplicate item %d", ErrInvalidSnapshot, item.ID)
		}
		seen[item.ID] = struct{}{}
	}
	return nil
}

type AddItemRequest struct {
	ProductID int64  `json:"product_id"`
	Quantity  int    `json:"quantity"`
	VariantID *int64 `json:"variant_id"`
}

type UpdateItemRequest struct {
	ItemID   int64 `json:"item_id"`
	Quantity int   `json:"quantity"`
}

type ApplyCouponRequest struct {
	CouponCode string `json:"coupon_code"`
}

// CouponResult is the body of POST /cart/apply_coupon/.
type CouponResult struct {
	Coupon *Coupon         `json:"coupon"`
	Total  decimal.Decimal `json:"total"`
}

func (r CouponResult) Validate() error {
	if r.Total.IsNegative() {
		return fmt.Errorf("%w: negative total %s", ErrInvalidTotal, r.Total)
	}
	if r.Coupon != nil && r.Coupon.Code == "" {
		return fmt.Errorf("%w: coupon without code", ErrInvalidTotal)
	}
	return nil
}

// TotalResult is the body of POST /cart/remove_coupon/.
type TotalResult struct {
	Total decimal.Decimal `json:"total"`
}

func (r TotalResult) Validate() error {
	if r.Total.IsNegative() {
		return fmt.Errorf("%w: negative total %s", ErrInvalidTotal, r.Total)
	}
	return nil
}
