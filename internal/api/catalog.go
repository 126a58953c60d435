package api

import (
	"context"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

// ListProducts fetches one backend-filtered page. Filtering, ordering and
// paging all happen server side.
func (c *Client) ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	var page domain.ProductPage
	if err := c.get(ctx, "/products", q.BackendValues(), &page); err != nil {
		return domain.ProductPage{}, err
	}
	if err := page.Validate(); err != nil {
		return domain.ProductPage{}, invalidResponse(err)
	}
	return page, nil
}

func (c *Client) ListCategories(ctx context.Context) ([]domain.Category, error) {
	var list listBody[domain.Category]
	if err := c.get(ctx, "/categories/", nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}
