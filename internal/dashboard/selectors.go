package dashboard

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/selector"
)

var lowStockMemo = selector.NewMemo(func(st *State) []domain.InventoryItem {
	var low []domain.InventoryItem
	for _, it := range st.Inventory.Data {
		if it.LowStock() {
			low = append(low, it)
		}
	}
	return low
})

// OrderByID looks up an order among the summary's recent orders.
func OrderByID(st *State, id int64) (domain.OrderSummary, bool) {
	if st.Summary.Data == nil {
		return domain.OrderSummary{}, false
	}
	return selector.Find(st.Summary.Data.RecentOrders, id, func(o domain.OrderSummary) int64 { return o.ID })
}

func AlertByID(st *State, id int64) (domain.Alert, bool) {
	return selector.Find(st.Alerts.Data, id, func(a domain.Alert) int64 { return a.ID })
}

// LowStock lists inventory at or below its threshold. The result is shared
// between callers holding the same snapshot and must not be modified.
func LowStock(st *State) []domain.InventoryItem { return lowStockMemo.Get(st) }
