package catalog

import (
	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/selector"
)

func ProductByID(st *State, id int64) (domain.Product, bool) {
	return selector.Find(st.Products, id, func(p domain.Product) int64 { return p.ID })
}

func CategoryBySlug(st *State, slug string) (domain.Category, bool) {
	for _, c := range st.Categories {
		if c.Slug == slug {
			return c, true
		}
	}
	return domain.Category{}, false
}

// URLQuery is the query string the storefront shows for the current query.
func URLQuery(st *State) string {
	return st.Query.URLValues().Encode()
}
