// Package store composes the slices into one state tree. It is created once
// at startup and is the only place state is mutated.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/api"
	"github.com/fjod/go_cart/storefront/internal/auth"
	"github.com/fjod/go_cart/storefront/internal/cart"
	"github.com/fjod/go_cart/storefront/internal/catalog"
	"github.com/fjod/go_cart/storefront/internal/dashboard"
	"github.com/fjod/go_cart/storefront/internal/ui"
)

// Backend is everything the slices need from the REST API.
type Backend interface {
	auth.API
	cart.API
	catalog.API
	dashboard.API
}

type Config struct {
	API       api.Config
	Token     string
	Freshness time.Duration
}

type Store struct {
	Auth      *auth.Slice
	Cart      *cart.Slice
	Catalog   *catalog.Slice
	Dashboard *dashboard.Slice
	UI        *ui.Slice

	logger *zap.Logger

	mu   sync.RWMutex
	subs map[int]func(slice string)
	next int
}

// New builds the store on top of a real API client whose bearer token is
// read from the auth slice on every request.
func New(cfg Config, prefs ui.Preferences, logger *zap.Logger) *Store {
	var s *Store
	client := api.NewClient(cfg.API, func() string { return s.Auth.Token() }, logger)

	var opts []catalog.Option
	if cfg.Freshness > 0 {
		opts = append(opts, catalog.WithFreshness(cfg.Freshness))
	}
	s = NewWithBackend(client, cfg.Token, prefs, logger, opts...)
	return s
}

func NewWithBackend(b Backend, token string, prefs ui.Preferences, logger *zap.Logger, opts ...catalog.Option) *Store {
	s := &Store{
		Auth:      auth.New(b, token, logger),
		Cart:      cart.New(b, logger),
		Catalog:   catalog.New(b, logger, opts...),
		Dashboard: dashboard.New(b, logger),
		UI:        ui.New(prefs, logger),
		logger:    logger,
		subs:      make(map[int]func(string)),
	}
	s.Auth.OnChange(s.notify)
	s.Cart.OnChange(s.notify)
	s.Catalog.OnChange(s.notify)
	s.Dashboard.OnChange(s.notify)
	s.UI.OnChange(s.notify)
	return s
}

// Init restores persisted client state. A failed restore is logged and the
// defaults are kept.
func (s *Store) Init(ctx context.Context) {
	if err := s.UI.Restore(ctx); err != nil {
		s.logger.Warn("failed to restore ui preferences", zap.Error(err))
	}
}

// Subscribe registers fn to be called with the slice name after every change.
// The returned func unsubscribes.
func (s *Store) Subscribe(fn func(slice string)) func() {
	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) notify(slice string) {
	s.mu.RLock()
	fns := make([]func(string), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(slice)
	}
}

// State is a consistent-per-slice view of the whole tree.
type State struct {
	Auth      *auth.State      `json:"auth"`
	Cart      *cart.State      `json:"cart"`
	Catalog   *catalog.State   `json:"catalog"`
	Dashboard *dashboard.State `json:"dashboard"`
	UI        *ui.State        `json:"ui"`
}

func (s *Store) Snapshot() State {
	return State{
		Auth:      s.Auth.State(),
		Cart:      s.Cart.State(),
		Catalog:   s.Catalog.State(),
		Dashboard: s.Dashboard.State(),
		UI:        s.UI.State(),
	}
}
