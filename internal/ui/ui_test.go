package ui

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/prefs"
)

type memPrefs struct {
	values   map[string]bool
	writes   int
	writeErr error
	readErr  error
}

func (m *memPrefs) GetBool(ctx context.Context, key string) (bool, error) {
	if m.readErr != nil {
		return false, m.readErr
	}
	v, ok := m.values[key]
	if !ok {
		return false, prefs.ErrNotFound
	}
	return v, nil
}

func (m *memPrefs) SetBool(ctx context.Context, key string, v bool) error {
	m.writes++
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.values == nil {
		m.values = map[string]bool{}
	}
	m.values[key] = v
	return nil
}

func TestDarkMode_PersistedAndRestored(t *testing.T) {
	store := &memPrefs{}
	ctx := context.Background()

	first := New(store, zap.NewNop())
	require.NoError(t, first.Restore(ctx))
	assert.False(t, first.State().DarkMode)

	require.NoError(t, first.ToggleDarkMode(ctx))
	assert.True(t, first.State().DarkMode)
	assert.Equal(t, 1, store.writes)

	second := New(store, zap.NewNop())
	require.NoError(t, second.Restore(ctx))
	assert.True(t, second.State().DarkMode)

	require.NoError(t, second.SetDarkMode(ctx, false))
	assert.False(t, store.values[prefs.DarkModeKey])
	assert.Equal(t, 2, store.writes)
}

func TestDarkMode_WriteFailureStillFlipsFlag(t *testing.T) {
	store := &memPrefs{writeErr: errors.New("disk full")}
	s := New(store, zap.NewNop())

	err := s.ToggleDarkMode(context.Background())
	assert.Error(t, err)
	assert.True(t, s.State().DarkMode)
}

func TestRestore_ReadFailure(t *testing.T) {
	s := New(&memPrefs{readErr: errors.New("locked")}, zap.NewNop())
	assert.Error(t, s.Restore(context.Background()))
	assert.False(t, s.State().DarkMode)
}

func TestSnackbar(t *testing.T) {
	s := New(&memPrefs{}, zap.NewNop())
	assert.Equal(t, SeverityInfo, s.State().Snackbar.Severity)

	s.ShowSnackbar("Added to cart", SeveritySuccess)
	assert.Equal(t, Snackbar{Open: true, Message: "Added to cart", Severity: SeveritySuccess}, s.State().Snackbar)

	s.ShowSnackbar("hm", "loud")
	assert.Equal(t, SeverityInfo, s.State().Snackbar.Severity)

	s.HideSnackbar()
	assert.False(t, s.State().Snackbar.Open)
	assert.Equal(t, "hm", s.State().Snackbar.Message)
}

func TestOverlayDrawersAndSearch(t *testing.T) {
	s := New(&memPrefs{}, zap.NewNop())

	s.ShowLoading("Placing order")
	assert.Equal(t, Overlay{Open: true, Message: "Placing order"}, s.State().Loading)
	s.HideLoading()
	assert.Equal(t, Overlay{}, s.State().Loading)

	s.ToggleMobileDrawer()
	s.ToggleCartDrawer()
	s.ToggleFilterDrawer()
	s.OpenSearchModal()
	st := s.State()
	assert.True(t, st.MobileDrawerOpen)
	assert.True(t, st.CartDrawerOpen)
	assert.True(t, st.FilterDrawerOpen)
	assert.True(t, st.SearchModalOpen)

	s.CloseMobileDrawer()
	s.CloseCartDrawer()
	s.CloseFilterDrawer()
	s.CloseSearchModal()
	assert.Equal(t, State{Snackbar: Snackbar{Severity: SeverityInfo}}, *s.State())
}
