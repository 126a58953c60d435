package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

const DefaultPageSize = 12

var ErrInvalidQuery = errors.New("invalid product query")

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Images      []string        `json:"images"`
	CategoryID  *int64          `json:"category_id"`
	InStock     bool            `json:"in_stock"`
	IsFeatured  bool            `json:"is_featured"`
}

type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type SortKey string

const (
	SortDefault   SortKey = ""
	SortPriceAsc  SortKey = "price_asc"
	SortPriceDesc SortKey = "price_desc"
	SortNameAsc   SortKey = "name_asc"
	SortNameDesc  SortKey = "name_desc"
)

// ordering maps a sort key to the backend's ordering parameter.
func (k SortKey) ordering() string {
	switch k {
	case SortPriceAsc:
		return "price"
	case SortPriceDesc:
		return "-price"
	case SortNameAsc:
		return "name"
	case SortNameDesc:
		return "-name"
	default:
		return ""
	}
}

func (k SortKey) Valid() bool {
	switch k {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortNameAsc, SortNameDesc:
		return true
	}
	return false
}

// ProductQuery selects which page of products the backend returns. Filtering,
// sorting and paging all happen server side.
type ProductQuery struct {
	Category string           `json:"category,omitempty"`
	Search   string           `json:"search,omitempty"`
	MinPrice *decimal.Decimal `json:"min_price,omitempty"`
	MaxPrice *decimal.Decimal `json:"max_price,omitempty"`
	Sort     SortKey          `json:"sort,omitempty"`
	Featured bool             `json:"featured,omitempty"`
	Page     int              `json:"page"`
	PageSize int              `json:"page_size"`
}

// Normalized fills in paging defaults.
func (q ProductQuery) Normalized() ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = DefaultPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	return q
}

func (q ProductQuery) Validate() error {
	if !q.Sort.Valid() {
		return fmt.Errorf("%w: unknown sort %q", ErrInvalidQuery, q.Sort)
	}
	if q.MinPrice != nil && q.MinPrice.IsNegative() {
		return fmt.Errorf("%w: negative min price", ErrInvalidQuery)
	}
	if q.MinPrice != nil && q.MaxPrice != nil && q.MinPrice.GreaterThan(*q.MaxPrice) {
		return fmt.Errorf("%w: min price above max price", ErrInvalidQuery)
	}
	return nil
}

// Equal compares two queries after normalization.
func (q ProductQuery) Equal(o ProductQuery) bool {
	return q.Key() == o.Key()
}

// Key is a stable identity for the query, used by the freshness gate.
func (q ProductQuery) Key() string {
	return q.Normalized().BackendValues().Encode()
}

// BackendValues renders the query parameters sent to GET /products.
func (q ProductQuery) BackendValues() url.Values {
	q = q.Normalized()
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MinPrice != nil {
		v.Set("min_price", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("max_price", q.MaxPrice.String())
	}
	if o := q.Sort.ordering(); o != "" {
		v.Set("ordering", o)
	}
	if q.Featured {
		v.Set("is_featured", "true")
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("page_size", strconv.Itoa(q.PageSize))
	return v
}

// URLValues renders the query the way the storefront keeps it in its own URL.
// Empty filters and the default page size are omitted.
func (q ProductQuery) URLValues() url.Values {
	v := url.Values{}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.MinPrice != nil {
		v.Set("minPrice", q.MinPrice.String())
	}
	if q.MaxPrice != nil {
		v.Set("maxPrice", q.MaxPrice.String())
	}
	if q.Sort != SortDefault {
		v.Set("sort", string(q.Sort))
	}
	if q.Featured {
		v.Set("featured", "true")
	}
	if q.Page > 1 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 && q.PageSize != DefaultPageSize {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

// ParseProductQuery is the inverse of URLValues.
func ParseProductQuery(v url.Values) (ProductQuery, error) {
	q := ProductQuery{
		Category: v.Get("category"),
		Search:   v.Get("search"),
		Sort:     SortKey(v.Get("sort")),
	}
	var err error
	if q.MinPrice, err = parsePrice(v.Get("minPrice")); err != nil {
		return ProductQuery{}, err
	}
	if q.MaxPrice, err = parsePrice(v.Get("maxPrice")); err != nil {
		return ProductQuery{}, err
	}
	if s := v.Get("featured"); s != "" {
		if q.Featured, err = strconv.ParseBool(s); err != nil {
			return ProductQuery{}, fmt.Errorf("%w: featured: %w", ErrInvalidQuery, err)
		}
	}
	if s := v.Get("page"); s != "" {
		if q.Page, err = strconv.Atoi(s); err != nil || q.Page < 1 {
			return ProductQuery{}, fmt.Errorf("%w: page %q", ErrInvalidQuery, s)
		}
	}
	if s := v.Get("pageSize"); s != "" {
		if q.PageSize, err = strconv.Atoi(s); err != nil || q.PageSize < 1 {
			return ProductQuery{}, fmt.Errorf("%w: pageSize %q", ErrInvalidQuery, s)
		}
	}
	if err := q.Validate(); err != nil {
		return ProductQuery{}, err
	}
	return q.Normalized(), nil
}

func parsePrice(s string) (*decimal.Decimal, error) {
	if s == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: price %q", ErrInvalidQuery, s)
	}
	return &d, nil
}

// ProductPage is one page of GET /products. The backend answers either with a
// bare array or with a paginated envelope {count, results}.
type ProductPage struct {
	Products []Product
	Count    int
}

func (p *ProductPage) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var products []Product
		if err := json.Unmarshal(trimmed, &products); err != nil {
			return err
		}
		p.Products = products
		p.Count = len(products)
		return nil
	}

	var envelope struct {
		Count   *int      `json:"count"`
		Results []Product `json:"results"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return err
	}
	p.Products = envelope.Results
	p.Count = len(envelope.Results)
	if envelope.Count != nil {
		p.Count = *envelope.Count
	}
	return nil
}

func (p ProductPage) Validate() error {
	for _, product := range p.Products {
		if product.ID <= 0 {
			return fmt.Errorf("invalid product id %d", product.ID)
		}
		if product.Price.IsNegative() {
			return fmt.Errorf("product %d has negative price", product.ID)
		}
	}
	return nil
}

// TotalPages derives the page count for the given page size.
func (p ProductPage) TotalPages(pageSize int) int {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if p.Count == 0 {
		return 0
	}
	return (p.Count + pageSize - 1) / pageSize
}
