package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/qcom/litelist/internal/models"
)

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	var resp models.TokenResponse
	err := c.do(ctx, http.MethodPost, "/login", "", models.Credentials{
		Username: username,
		Password: password,
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: POST /login: empty token", ErrMalformedResponse)
	}
	return resp.Token, nil
}

func (c *Client) Register(ctx context.Context, username, email, password string) error {
	return c.do(ctx, http.MethodPost, "/register", "", models.Registration{
		Username: username,
		Email:    email,
		Password: password,
	}, nil)
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := c.do(ctx, http.MethodGet, "/me", token, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// RenewToken trades a still valid token for a fresh one.
func (c *Client) RenewToken(ctx context.Context, token string) (string, error) {
	var resp models.TokenResponse
	if err := c.do(ctx, http.MethodGet, "/renew-token", token, nil, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", fmt.Errorf("%w: GET /renew-token: empty token", ErrMalformedResponse)
	}
	return resp.Token, nil
}
