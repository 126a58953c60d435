package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) GetCart(ctx context.Context) (domain.CartSnapshot, error) {
	var snap domain.CartSnapshot
	if err := c.get(ctx, "/cart/", nil, &snap); err != nil {
		return domain.CartSnapshot{}, err
	}
	if err := snap.Validate(); err != nil {
		return domain.CartSnapshot{}, invalidResponse(err)
	}
	return snap, nil
}

func (c *Client) AddCartItem(ctx context.Context, req domain.AddItemRequest) (domain.CartItem, error) {
	var item domain.CartItem
	if err := c.post(ctx, "/cart/add_item/", req, &item); err != nil {
		return domain.CartItem{}, err
	}
	if err := item.Validate(); err != nil {
		return domain.CartItem{}, invalidResponse(err)
	}
	if item.Quantity < 1 {
		return domain.CartItem{}, invalidResponse(fmt.Errorf("%w: added item %d has quantity %d", domain.ErrInvalidItem, item.ID, item.Quantity))
	}
	return item, nil
}

// UpdateCartItem returns nil when the backend signals removal: an empty body,
// null, {} or a line with quantity 0.
func (c *Client) UpdateCartItem(ctx context.Context, req domain.UpdateItemRequest) (*domain.CartItem, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "/cart/update_item/", req, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) || bytes.Equal(trimmed, []byte("{}")) {
		return nil, nil
	}

	var item domain.CartItem
	if err := json.Unmarshal(trimmed, &item); err != nil {
		return nil, invalidResponse(err)
	}
	if err := item.Validate(); err != nil {
		return nil, invalidResponse(err)
	}
	if item.Quantity == 0 {
		return nil, nil
	}
	return &item, nil
}

func (c *Client) ApplyCoupon(ctx context.Context, code string) (domain.CouponResult, error) {
	var res domain.CouponResult
	if err := c.post(ctx, "/cart/apply_coupon/", domain.ApplyCouponRequest{CouponCode: code}, &res); err != nil {
		return domain.CouponResult{}, err
	}
	if err := res.Validate(); err != nil {
		return domain.CouponResult{}, invalidResponse(err)
	}
	return res, nil
}

func (c *Client) RemoveCoupon(ctx context.Context) (domain.TotalResult, error) {
	var res domain.TotalResult
	if err := c.post(ctx, "/cart/remove_coupon/", nil, &res); err != nil {
		return domain.TotalResult{}, err
	}
	if err := res.Validate(); err != nil {
		return domain.TotalResult{}, invalidResponse(err)
	}
	return res, nil
}
