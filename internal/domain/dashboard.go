package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

type SalesPoint struct {
	Date   string          `json:"date"`
	Amount decimal.Decimal `json:"amount"`
}

// SalesSeries is sales-by-date ordered by date. The backend sends it as an
// object keyed by date; an array of points is accepted as well.
type SalesSeries []SalesPoint

func (s *SalesSeries) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*s = nil
		return nil
	}
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var points []SalesPoint
		if err := json.Unmarshal(trimmed, &points); err != nil {
			return err
		}
		*s = sortedSeries(points)
		return nil
	}

	var byDate map[string]decimal.Decimal
	if err := json.Unmarshal(trimmed, &byDate); err != nil {
		return fmt.Errorf("sales_by_date: %w", err)
	}
	points := make([]SalesPoint, 0, len(byDate))
	for date, amount := range byDate {
		points = append(points, SalesPoint{Date: date, Amount: amount})
	}
	*s = sortedSeries(points)
	return nil
}

func sortedSeries(points []SalesPoint) SalesSeries {
	sort.Slice(points, func(i, j int) bool { return points[i].Date < points[j].Date })
	return points
}

type OrderSummary struct {
	ID          int64           `json:"id"`
	OrderNumber string          `json:"order_number"`
	Customer    string          `json:"customer"`
	Total       decimal.Decimal `json:"total"`
	Status      string          `json:"status"`
	CreatedAt   time.Time       `json:"created_at"`
}

type TopProduct struct {
	ProductID    int64           `json:"product_id"`
	Name         string          `json:"name"`
	Revenue      decimal.Decimal `json:"revenue"`
	QuantitySold int             `json:"quantity_sold"`
}

// DashboardSummary is a read-only aggregate snapshot. It is replaced as a whole
// on every fetch.
type DashboardSummary struct {
	TotalSales        decimal.Decimal `json:"total_sales"`
	TotalOrders       int             `json:"total_orders"`
	AverageOrderValue decimal.Decimal `json:"average_order_value"`
	ActiveUsers       int             `json:"active_users"`
	SalesByDate       SalesSeries     `json:"sales_by_date"`
	RecentOrders      []OrderSummary  `json:"recent_orders"`
	TopProducts       []TopProduct    `json:"top_products"`
}

func (s DashboardSummary) Validate() error {
	if s.TotalOrders < 0 || s.ActiveUsers < 0 {
		return fmt.Errorf("dashboard summary has negative counters")
	}
	return nil
}

type InventoryItem struct {
	ProductID         int64  `json:"product_id"`
	ProductName       string `json:"product_name"`
	SKU               string `json:"sku"`
	Quantity          int    `json:"quantity"`
	LowStockThreshold int    `json:"low_stock_threshold"`
	ReorderPoint      int    `json:"reorder_point"`
	StockStatus       string `json:"stock_status"`
}

// LowStock reports whether the item is at or below its alert threshold.
func (i InventoryItem) LowStock() bool {
	return i.Quantity <= i.LowStockThreshold
}

type AlertType string

const (
	AlertLowStock   AlertType = "low_stock"
	AlertOutOfStock AlertType = "out_of_stock"
	AlertReorder    AlertType = "reorder"
)

type Alert struct {
	ID          int64     `json:"id"`
	ProductID   int64     `json:"product_id"`
	ProductName string    `json:"product_name"`
	AlertType   AlertType `json:"alert_type"`
	Message     string    `json:"message"`
	IsResolved  bool      `json:"is_resolved"`
	CreatedAt   time.Time `json:"created_at"`
}

func (a Alert) Validate() error {
	if a.ID <= 0 {
		return fmt.Errorf("invalid alert id %d", a.ID)
	}
	return nil
}
