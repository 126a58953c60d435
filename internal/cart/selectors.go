package cart

import (
	"github.com/shopspring/decimal"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/selector"
)

var (
	countMemo = selector.NewMemo(func(st *State) int { return totalQuantity(st.Items) })
	valueMemo = selector.NewMemo(func(st *State) decimal.Decimal { return subtotal(st.Items) })
)

// ItemCount is the sum of quantities across lines.
func ItemCount(st *State) int { return countMemo.Get(st) }

// TotalValue is the sum of price × quantity, before any discount. It is not
// the server-confirmed Total.
func TotalValue(st *State) decimal.Decimal { return valueMemo.Get(st) }

func ItemByID(st *State, id int64) (domain.CartItem, bool) {
	return selector.Find(st.Items, id, func(it domain.CartItem) int64 { return it.ID })
}
