// Package catalog is the product slice: the current product page, the
// categories list and the query that selected them.
package catalog

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lifecycle"
)

const DefaultFreshness = 5 * time.Minute

type API interface {
	ListProducts(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error)
	ListCategories(ctx context.Context) ([]domain.Category, error)
}

// Clock returns the current time. Tests inject a fake.
type Clock func() time.Time

type State struct {
	Products   []domain.Product    `json:"products"`
	Categories []domain.Category   `json:"categories"`
	Query      domain.ProductQuery `json:"query"`
	TotalCount int                 `json:"total_count"`
	TotalPages int                 `json:"total_pages"`

	// LastFetched and fetchedKey form the staleness marker: the last query
	// fetched successfully and when.
	LastFetched time.Time `json:"last_fetched"`
	fetchedKey  string

	ProductsRequest   lifecycle.Request `json:"products_request"`
	CategoriesRequest lifecycle.Request `json:"categories_request"`
}

func (s State) Clone() State {
	s.Products = slices.Clone(s.Products)
	s.Categories = slices.Clone(s.Categories)
	return s
}

type Slice struct {
	slice     *lifecycle.Slice[State]
	api       API
	now       Clock
	freshness time.Duration
	group     singleflight.Group
	logger    *zap.Logger

	mu      sync.Mutex
	flights map[string]*flight
}

// flight is the shared context of one de-duplicated fetch. It is canceled
// only after every caller waiting on it has given up.
type flight struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	waiters int
}

type Option func(*Slice)

func WithClock(c Clock) Option { return func(s *Slice) { s.now = c } }

func WithFreshness(d time.Duration) Option { return func(s *Slice) { s.freshness = d } }

func New(api API, logger *zap.Logger, opts ...Option) *Slice {
	s := &Slice{
		slice:     lifecycle.NewSlice("catalog", State{Query: domain.ProductQuery{}.Normalized()}, logger),
		api:       api,
		now:       time.Now,
		freshness: DefaultFreshness,
		logger:    logger,
		flights:   make(map[string]*flight),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Slice) State() *State { return s.slice.State() }

func (s *Slice) OnChange(fn func(name string)) { s.slice.OnChange(fn) }

type FetchOptions struct {
	// Query replaces the current query when set.
	Query *domain.ProductQuery
	// Force bypasses the freshness gate.
	Force bool
}

// FetchProducts loads the page for the current (or given) query. It reports
// whether a network call was made. Within the freshness window a repeat of
// the last successful query is a no-op; concurrent identical fetches share
// one call, which is canceled only when every caller sharing it has given up.
func (s *Slice) FetchProducts(ctx context.Context, opts FetchOptions) (bool, error) {
	q := s.State().Query
	if opts.Query != nil {
		q = *opts.Query
	}
	q = q.Normalized()
	if err := q.Validate(); err != nil {
		return false, err
	}

	key := q.Key()
	if !opts.Force && s.fresh(key) {
		s.logger.Debug("products fresh, skipping fetch", zap.String("query", key))
		return false, nil
	}

	fl := s.join(ctx, key)
	ch := s.group.DoChan(key, func() (any, error) {
		return lifecycle.Run(fl.ctx, s.slice, lifecycle.Op[State, domain.ProductPage]{
			Name:    "catalog.fetch_products",
			Request: func(st *State) *lifecycle.Request { return &st.ProductsRequest },
			Call: func(ctx context.Context) (domain.ProductPage, error) {
				return s.api.ListProducts(ctx, q)
			},
			Apply: func(st *State, page domain.ProductPage) {
				st.Products = slices.Clone(page.Products)
				st.Query = q
				st.TotalCount = page.Count
				st.TotalPages = page.TotalPages(q.PageSize)
				st.LastFetched = s.now()
				st.fetchedKey = key
			},
		})
	})

	select {
	case res := <-ch:
		s.leave(key, fl, nil)
		return true, res.Err
	case <-ctx.Done():
		cause := context.Cause(ctx)
		if s.leave(key, fl, cause) {
			// last caller out: the shared call settles under this cause
			res := <-ch
			return true, res.Err
		}
		return true, cause
	}
}

func (s *Slice) join(ctx context.Context, key string) *flight {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl, ok := s.flights[key]
	if !ok {
		shared, cancel := context.WithCancelCause(context.WithoutCancel(ctx))
		fl = &flight{ctx: shared, cancel: cancel}
		s.flights[key] = fl
	}
	fl.waiters++
	return fl
}

// leave reports whether the caller was the last one waiting on fl.
func (s *Slice) leave(key string, fl *flight, cause error) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	fl.waiters--
	if fl.waiters > 0 {
		return false
	}
	if s.flights[key] == fl {
		delete(s.flights, key)
	}
	fl.cancel(cause)
	return true
}

func (s *Slice) fresh(key string) bool {
	st := s.State()
	if st.LastFetched.IsZero() || st.fetchedKey != key {
		return false
	}
	return s.now().Sub(st.LastFetched) < s.freshness
}

func (s *Slice) FetchCategories(ctx context.Context) error {
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, []domain.Category]{
		Name:    "catalog.fetch_categories",
		Request: func(st *State) *lifecycle.Request { return &st.CategoriesRequest },
		Call:    s.api.ListCategories,
		Apply: func(st *State, cats []domain.Category) {
			st.Categories = slices.Clone(cats)
		},
	})
	return err
}

// SetFilters replaces the filters and goes back to the first page. Paging
// size is kept.
func (s *Slice) SetFilters(q domain.ProductQuery) error {
	if err := q.Validate(); err != nil {
		return err
	}
	s.slice.Update(func(st *State) {
		q.Page = 1
		if q.PageSize < 1 {
			q.PageSize = st.Query.PageSize
		}
		st.Query = q.Normalized()
	})
	return nil
}

func (s *Slice) SetPage(page int) {
	s.slice.Update(func(st *State) {
		st.Query.Page = page
		st.Query = st.Query.Normalized()
	})
}

// ClearProducts drops the product page and the staleness marker so the next
// fetch always goes to the backend.
func (s *Slice) ClearProducts() {
	s.slice.Reset(func(st *State) {
		st.Products = nil
		st.TotalCount = 0
		st.TotalPages = 0
		st.LastFetched = time.Time{}
		st.fetchedKey = ""
		st.ProductsRequest = lifecycle.Request{}
	})
}

func (s *Slice) ClearError() {
	s.slice.Update(func(st *State) {
		st.ProductsRequest.ClearError()
		st.CategoriesRequest.ClearError()
	})
}
