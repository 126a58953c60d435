// Package ui is the client-local UI slice. Nothing here touches the network;
// only the dark-mode flag is persisted.
package ui

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/lifecycle"
	"github.com/fjod/go_cart/storefront/internal/prefs"
)

type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

func (s Severity) Valid() bool {
	switch s {
	case SeveritySuccess, SeverityError, SeverityWarning, SeverityInfo:
		return true
	}
	return false
}

// Preferences is the durable store the dark-mode flag lives in.
type Preferences interface {
	GetBool(ctx context.Context, key string) (bool, error)
	SetBool(ctx context.Context, key string, v bool) error
}

type Snackbar struct {
	Open     bool     `json:"open"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type Overlay struct {
	Open    bool   `json:"open"`
	Message string `json:"message"`
}

type State struct {
	Snackbar         Snackbar `json:"snackbar"`
	Loading          Overlay  `json:"loading"`
	MobileDrawerOpen bool     `json:"mobile_drawer_open"`
	CartDrawerOpen   bool     `json:"cart_drawer_open"`
	FilterDrawerOpen bool     `json:"filter_drawer_open"`
	SearchModalOpen  bool     `json:"search_modal_open"`
	DarkMode         bool     `json:"dark_mode"`
}

func (s State) Clone() State { return s }

type Slice struct {
	slice  *lifecycle.Slice[State]
	prefs  Preferences
	logger *zap.Logger
}

func New(p Preferences, logger *zap.Logger) *Slice {
	initial := State{Snackbar: Snackbar{Severity: SeverityInfo}}
	return &Slice{
		slice:  lifecycle.NewSlice("ui", initial, logger),
		prefs:  p,
		logger: logger,
	}
}

func (s *Slice) State() *State { return s.slice.State() }

func (s *Slice) OnChange(fn func(name string)) { s.slice.OnChange(fn) }

// Restore loads the persisted dark-mode flag. A missing key keeps the default.
func (s *Slice) Restore(ctx context.Context) error {
	on, err := s.prefs.GetBool(ctx, prefs.DarkModeKey)
	if errors.Is(err, prefs.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restore dark mode: %w", err)
	}
	s.slice.Update(func(st *State) { st.DarkMode = on })
	return nil
}

// ShowSnackbar opens the snackbar. An unknown severity falls back to info.
func (s *Slice) ShowSnackbar(message string, severity Severity) {
	if !severity.Valid() {
		severity = SeverityInfo
	}
	s.slice.Update(func(st *State) {
		st.Snackbar = Snackbar{Open: true, Message: message, Severity: severity}
	})
}

// HideSnackbar closes the snackbar and keeps its last message and severity.
func (s *Slice) HideSnackbar() {
	s.slice.Update(func(st *State) { st.Snackbar.Open = false })
}

func (s *Slice) ShowLoading(message string) {
	s.slice.Update(func(st *State) { st.Loading = Overlay{Open: true, Message: message} })
}

func (s *Slice) HideLoading() {
	s.slice.Update(func(st *State) { st.Loading = Overlay{} })
}

func (s *Slice) ToggleMobileDrawer() {
	s.slice.Update(func(st *State) { st.MobileDrawerOpen = !st.MobileDrawerOpen })
}

func (s *Slice) CloseMobileDrawer() {
	s.slice.Update(func(st *State) { st.MobileDrawerOpen = false })
}

func (s *Slice) ToggleCartDrawer() {
	s.slice.Update(func(st *State) { st.CartDrawerOpen = !st.CartDrawerOpen })
}

func (s *Slice) CloseCartDrawer() {
	s.slice.Update(func(st *State) { st.CartDrawerOpen = false })
}

func (s *Slice) ToggleFilterDrawer() {
	s.slice.Update(func(st *State) { st.FilterDrawerOpen = !st.FilterDrawerOpen })
}

func (s *Slice) CloseFilterDrawer() {
	s.slice.Update(func(st *State) { st.FilterDrawerOpen = false })
}

func (s *Slice) OpenSearchModal() {
	s.slice.Update(func(st *State) { st.SearchModalOpen = true })
}

func (s *Slice) CloseSearchModal() {
	s.slice.Update(func(st *State) { st.SearchModalOpen = false })
}

func (s *Slice) ToggleDarkMode(ctx context.Context) error {
	return s.SetDarkMode(ctx, !s.State().DarkMode)
}

// SetDarkMode updates the flag and writes it through to storage. The
// in-memory flag changes even if the write fails.
func (s *Slice) SetDarkMode(ctx context.Context, on bool) error {
	s.slice.Update(func(st *State) { st.DarkMode = on })
	if err := s.prefs.SetBool(ctx, prefs.DarkModeKey, on); err != nil {
		s.logger.Warn("failed to persist dark mode", zap.Bool("dark_mode", on), zap.Error(err))
		return fmt.Errorf("persist dark mode: %w", err)
	}
	return nil
}
