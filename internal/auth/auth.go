// Package auth holds the bearer token and the signed-in user. The API client
// reads the token from here on every request.
package auth

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"github.com/fjod/go_cart/storefront/internal/lifecycle"
)

type API interface {
	Login(ctx context.Context, req domain.LoginRequest) (domain.Tokens, error)
	Register(ctx context.Context, req domain.RegisterRequest) (domain.Tokens, error)
}

type State struct {
	Token        string       `json:"-"`
	RefreshToken string       `json:"-"`
	User         *domain.User `json:"user"`

	Request lifecycle.Request `json:"request"`
}

func (s State) Clone() State { return s }

type Slice struct {
	slice *lifecycle.Slice[State]
	api   API
}

// New starts with an optional token, e.g. one restored from configuration.
func New(api API, token string, logger *zap.Logger) *Slice {
	return &Slice{
		slice: lifecycle.NewSlice("auth", State{Token: strings.TrimSpace(token)}, logger),
		api:   api,
	}
}

func (s *Slice) State() *State { return s.slice.State() }

func (s *Slice) OnChange(fn func(name string)) { s.slice.OnChange(fn) }

// Token returns the current bearer token; empty when signed out.
func (s *Slice) Token() string { return s.State().Token }

func request(st *State) *lifecycle.Request { return &st.Request }

func applyTokens(st *State, t domain.Tokens) {
	st.Token = t.Access
	st.RefreshToken = t.Refresh
	st.User = t.User
}

func (s *Slice) Login(ctx context.Context, email, password string) error {
	req := domain.LoginRequest{Email: strings.TrimSpace(email), Password: password}
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, domain.Tokens]{
		Name:    "auth.login",
		Request: request,
		Call: func(ctx context.Context) (domain.Tokens, error) {
			return s.api.Login(ctx, req)
		},
		Apply: applyTokens,
	})
	return err
}

func (s *Slice) Register(ctx context.Context, req domain.RegisterRequest) error {
	req.Email = strings.TrimSpace(req.Email)
	if err := req.Validate(); err != nil {
		return err
	}
	_, err := lifecycle.Run(ctx, s.slice, lifecycle.Op[State, domain.Tokens]{
		Name:    "auth.register",
		Request: request,
		Call: func(ctx context.Context) (domain.Tokens, error) {
			return s.api.Register(ctx, req)
		},
		Apply: applyTokens,
	})
	return err
}

// Logout drops the token and user. A login still in flight is discarded.
func (s *Slice) Logout() {
	s.slice.Reset(func(st *State) { *st = State{} })
}

func (s *Slice) ClearError() {
	s.slice.Update(func(st *State) { st.Request.ClearError() })
}

func CurrentUser(st *State) *domain.User { return st.User }

func IsAuthenticated(st *State) bool { return st.Token != "" }
