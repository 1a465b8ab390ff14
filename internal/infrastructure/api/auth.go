package api

import (
	"context"
	"net/http"

	"github.com/jhoicas/shop-client/internal/domain/entity"
)

// Register crea una cuenta nueva. No inicia sesión.
func (c *Client) Register(ctx context.Context, in RegisterRequest) error {
	return c.do(ctx, http.MethodPost, "/auth/register", nil, in, nil)
}

// Login autentica con email y password; devuelve token + usuario.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*LoginResult, error) {
	var out loginResponseDTO
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, in, &out); err != nil {
		return nil, err
	}
	return &LoginResult{Token: out.Token, User: out.User.toEntity()}, nil
}

// Logout invalida la sesión del lado servidor.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, nil, nil)
}

// Me devuelve el usuario de la sesión actual.
func (c *Client) Me(ctx context.Context) (*entity.User, error) {
	var out userDTO
	if err := c.do(ctx, http.MethodGet, "/auth/me", nil, nil, &out); err != nil {
		return nil, err
	}
	u := out.toEntity()
	return &u, nil
}
