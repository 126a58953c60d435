package api

import (
	"context"
	"errors"

	"github.com/fjod/go_cart/storefront/internal/domain"
)

var errMissingAccessToken = errors.New("response carries no access token")

func (c *Client) Login(ctx context.Context, req domain.LoginRequest) (domain.Tokens, error) {
	return c.authenticate(ctx, "/auth/login/", req)
}

func (c *Client) Register(ctx context.Context, req domain.RegisterRequest) (domain.Tokens, error) {
	return c.authenticate(ctx, "/auth/register/", req)
}

func (c *Client) authenticate(ctx context.Context, path string, req any) (domain.Tokens, error) {
	var tokens domain.Tokens
	if err := c.post(ctx, path, req, &tokens); err != nil {
		return domain.Tokens{}, err
	}
	if tokens.Access == "" {
		return domain.Tokens{}, invalidResponse(errMissingAccessToken)
	}
	return tokens, nil
}
