package domain

import (
	"encoding/json"
	"net/url"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartItem_LineTotal(t *testing.T) {
	item := CartItem{ID: 1, Price: decimal.RequireFromString("10.10"), Quantity: 3}
	assert.True(t, item.LineTotal().Equal(decimal.RequireFromString("30.30")))
}

func TestCartSnapshot_Validate(t *testing.T) {
	ok := CartSnapshot{Items: []CartItem{
		{ID: 1, Price: decimal.NewFromInt(10), Quantity: 2},
		{ID: 2, Price: decimal.NewFromInt(5), Quantity: 1},
	}}
	require.NoError(t, ok.Validate())

	dup := CartSnapshot{Items: []CartItem{
		{ID: 1, Price: decimal.NewFromInt(10), Quantity: 2},
		{ID: 1, Price: decimal.NewFromInt(10), Quantity: 1},
	}}
	assert.ErrorIs(t, dup.Validate(), ErrInvalidSnapshot)

	zero := CartSnapshot{Items: []CartItem{{ID: 3, Price: decimal.NewFromInt(1), Quantity: 0}}}
	assert.ErrorIs(t, zero.Validate(), ErrInvalidSnapshot)
}

func TestCartSnapshot_DecodesStringAndNumberPrices(t *testing.T) {
	body := `{"items":[{"id":1,"product_id":7,"price":"19.99","quantity":2}],
		"total_items":2,"subtotal":39.98,"total":"35.98","coupon":{"code":"SAVE4"}}`

	var snap CartSnapshot
	require.NoError(t, json.Unmarshal([]byte(body), &snap))

	assert.Equal(t, 2, snap.TotalItems)
	assert.True(t, snap.Items[0].Price.Equal(decimal.RequireFromString("19.99")))
	assert.True(t, snap.Subtotal.Equal(decimal.RequireFromString("39.98")))
	require.NotNil(t, snap.Coupon)
	assert.Equal(t, "SAVE4", snap.Coupon.Code)
}

func TestProductQuery_URLRoundTrip(t *testing.T) {
	minPrice := decimal.NewFromInt(10)
	maxPrice := decimal.NewFromInt(250)
	q := ProductQuery{
		Category: "shoes",
		Search:   "runner",
		MinPrice: &minPrice,
		MaxPrice: &maxPrice,
		Sort:     SortPriceDesc,
		Page:     3,
	}

	parsed, err := ParseProductQuery(q.URLValues())
	require.NoError(t, err)
	assert.True(t, parsed.Equal(q))
	assert.Equal(t, DefaultPageSize, parsed.PageSize)
}

func TestProductQuery_URLRoundTripKeepsPageSize(t *testing.T) {
	q := ProductQuery{Category: "shoes", Page: 2, PageSize: 24}

	v := q.URLValues()
	assert.Equal(t, "24", v.Get("pageSize"))

	parsed, err := ParseProductQuery(v)
	require.NoError(t, err)
	assert.Equal(t, 24, parsed.PageSize)
	assert.True(t, parsed.Equal(q))

	assert.Empty(t, ProductQuery{PageSize: DefaultPageSize}.URLValues().Get("pageSize"))
}

func TestCouponResults_Validate(t *testing.T) {
	assert.NoError(t, CouponResult{Coupon: &Coupon{Code: "SAVE10"}, Total: decimal.NewFromInt(90)}.Validate())
	assert.ErrorIs(t, CouponResult{Total: decimal.NewFromInt(-1)}.Validate(), ErrInvalidTotal)
	assert.ErrorIs(t, CouponResult{Coupon: &Coupon{}, Total: decimal.NewFromInt(1)}.Validate(), ErrInvalidTotal)
	assert.NoError(t, TotalResult{Total: decimal.Zero}.Validate())
	assert.ErrorIs(t, TotalResult{Total: decimal.NewFromInt(-3)}.Validate(), ErrInvalidTotal)
}

func TestProductQuery_BackendValues(t *testing.T) {
	q := ProductQuery{Category: "hats", Sort: SortNameAsc, Featured: true}
	v := q.BackendValues()

	assert.Equal(t, "hats", v.Get("category"))
	assert.Equal(t, "name", v.Get("ordering"))
	assert.Equal(t, "true", v.Get("is_featured"))
	assert.Equal(t, "1", v.Get("page"))
	assert.Equal(t, "12", v.Get("page_size"))
	assert.Empty(t, v.Get("search"))
}

func TestParseProductQuery_Invalid(t *testing.T) {
	cases := []url.Values{
		{"sort": {"random"}},
		{"minPrice": {"cheap"}},
		{"minPrice": {"50"}, "maxPrice": {"10"}},
		{"page": {"0"}},
	}
	for _, v := range cases {
		_, err := ParseProductQuery(v)
		assert.ErrorIs(t, err, ErrInvalidQuery, v.Encode())
	}
}

func TestProductPage_UnmarshalArrayAndEnvelope(t *testing.T) {
	var bare ProductPage
	require.NoError(t, json.Unmarshal([]byte(`[{"id":1,"name":"A","price":"1.00"},{"id":2,"name":"B","price":"2.00"}]`), &bare))
	assert.Len(t, bare.Products, 2)
	assert.Equal(t, 2, bare.Count)

	var paged ProductPage
	require.NoError(t, json.Unmarshal([]byte(`{"count":25,"results":[{"id":3,"name":"C","price":"3.00"}]}`), &paged))
	assert.Len(t, paged.Products, 1)
	assert.Equal(t, 25, paged.Count)
	assert.Equal(t, 3, paged.TotalPages(10))
	assert.Equal(t, 0, ProductPage{}.TotalPages(10))
}

func TestSalesSeries_ObjectIsSortedByDate(t *testing.T) {
	var s DashboardSummary
	body := `{"total_sales":"300.00","total_orders":3,"average_order_value":"100.00","active_users":2,
		"sales_by_date":{"2024-03-02":"200.00","2024-03-01":"100.00"}}`
	require.NoError(t, json.Unmarshal([]byte(body), &s))

	require.Len(t, s.SalesByDate, 2)
	assert.Equal(t, "2024-03-01", s.SalesByDate[0].Date)
	assert.True(t, s.SalesByDate[1].Amount.Equal(decimal.NewFromInt(200)))
}

func TestLoginRequest_Validate(t *testing.T) {
	assert.ErrorIs(t, LoginRequest{Email: " "}.Validate(), ErrInvalidCredentials)
	assert.NoError(t, LoginRequest{Email: "a@b.c", Password: "secret123"}.Validate())
}
