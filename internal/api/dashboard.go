package api

import (
	"context"
	"fmt"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

func (c *Client) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	var summary domain.DashboardSummary
	if err := c.get(ctx, "/dashboard/summary/", nil, &summary); err != nil {
		return domain.DashboardSummary{}, err
	}
	if err := summary.Validate(); err != nil {
		return domain.DashboardSummary{}, invalidResponse(err)
	}
	return summary, nil
}

func (c *Client) InventoryAnalytics(ctx context.Context) ([]domain.InventoryItem, error) {
	var list listBody[domain.InventoryItem]
	if err := c.get(ctx, "/dashboard/inventory-analytics/", nil, &list); err != nil {
		return nil, err
	}
	return list.Items, nil
}

func (c *Client) InventoryAlerts(ctx context.Context) ([]domain.Alert, error) {
	var list listBody[domain.Alert]
	if err := c.get(ctx, "/inventory-alerts/", nil, &list); err != nil {
		return nil, err
	}
	for _, a := range list.Items {
		if err := a.Validate(); err != nil {
			return nil, invalidResponse(err)
		}
	}
	return list.Items, nil
}

// ResolveAlert succeeds on any 2xx; the body is ignored.
func (c *Client) ResolveAlert(ctx context.Context, id int64) error {
	return c.post(ctx, fmt.Sprintf("/inventory-alerts/%d/resolve/", id), nil, nil)
}
