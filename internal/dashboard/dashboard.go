// Package dashboard is the admin dashboard slice. Summary, inventory analytics
// and alerts load independently; a failure in one never blocks the others.
package dashboard

import (
	"context"
	"slices"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lifecycle"
)

type API interface {
	DashboardSummary(ctx context.Context) (domain.DashboardSummary, error)
	InventoryAnalytics(ctx context.Context) ([]domain.InventoryItem, error)
	InventoryAlerts(ctx context.Context) ([]domain.Alert, error)
	ResolveAlert(ctx context.Context, id int64) error
}

// Resource is one independently loading sub-resource.
type Resource[T any] struct {
	Data    T                 `json:"data"`
	Request lifecycle.Request `json:"request"`
}

func (r Resource[T]) Loading() bool { return r.Request.Loading() }

func (r Resource[T]) Err() error {
	if r.Request.Error == nil {
		return nil
	}
	return r.Request.Error
}

type State struct {
	// Summary is nil until the first successful fetch and is replaced whole.
	Summary   Resource[*domain.DashboardSummary] `json:"summary"`
	Inventory Resource[[]domain.InventoryItem]   `json:"inventory"`
	Alerts    Resource[[]domain.Alert]           `json:"alerts"`
	Resolve   lifecycle.Request                  `json:"resolve"`
}

func (s State) Clone() State {
	s.Inventory.Data = slices.Clone(s.Inventory.Data)
	s.Alerts.Data = slices.Clone(s.Alerts.Data)
	return s
}

type Slice struct {
	slice *lifecycle.Slice[State]
	api   API
}

func New(api API, logger *zap.Logger) *Slice {
	return &Slice{
		slice: lifecycle.NewSlice("dashboard", State{}, logger),
		api:   api,
	}
}

func (s *Slice) State() *State { return s.slice.State() }

func (s *Slice) OnChange(fn func(name string)) { s.slice.OnChange(fn) }

func (s *Slice) FetchSummary(ctx context.Context) error {
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, domain.DashboardSummary]{
		Name:    "dashboard.fetch_summary",
		Request: func(st *State) *lifecycle.Request { return &st.Summary.Request },
		Call:    s.api.DashboardSummary,
		Apply: func(st *State, summary domain.DashboardSummary) {
			st.Summary.Data = &summary
		},
	})
	return err
}

func (s *Slice) FetchInventory(ctx context.Context) error {
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, []domain.InventoryItem]{
		Name:    "dashboard.fetch_inventory",
		Request: func(st *State) *lifecycle.Request { return &st.Inventory.Request },
		Call:    s.api.InventoryAnalytics,
		Apply: func(st *State, items []domain.InventoryItem) {
			st.Inventory.Data = slices.Clone(items)
		},
	})
	return err
}

func (s *Slice) FetchAlerts(ctx context.Context) error {
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, []domain.Alert]{
		Name:    "dashboard.fetch_alerts",
		Request: func(st *State) *lifecycle.Request { return &st.Alerts.Request },
		Call:    s.api.InventoryAlerts,
		Apply: func(st *State, alerts []domain.Alert) {
			st.Alerts.Data = slices.Clone(alerts)
		},
	})
	return err
}

// Refresh loads all three sub-resources in parallel. Each settles on its own;
// the first error is returned after all have finished.
func (s *Slice) Refresh(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error { return s.FetchSummary(ctx) })
	g.Go(func() error { return s.FetchInventory(ctx) })
	g.Go(func() error { return s.FetchAlerts(ctx) })
	return g.Wait()
}

// ResolveAlert removes the alert only after the backend confirms.
func (s *Slice) ResolveAlert(ctx context.Context, id int64) error {
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, struct{}]{
		Name:    "dashboard.resolve_alert",
		Request: func(st *State) *lifecycle.Request { return &st.Resolve },
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.ResolveAlert(ctx, id)
		},
		Apply: func(st *State, _ struct{}) {
			st.Alerts.Data = slices.DeleteFunc(st.Alerts.Data, func(a domain.Alert) bool { return a.ID == id })
		},
	})
	return err
}

// Clear drops all dashboard data and discards calls in flight.
func (s *Slice) Clear() {
	s.slice.Reset(func(st *State) { *st = State{} })
}

func (s *Slice) ClearError() {
	s.slice.Update(func(st *State) {
		st.Summary.Request.ClearError()
		st.Inventory.Request.ClearError()
		st.Alerts.Request.ClearError()
		st.Resolve.ClearError()
	})
}
