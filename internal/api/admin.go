package api

import (
	"context"
	"net/http"

	"github.com/qcom/litelist/internal/models"
)

// Users lists every account with its usage counts. Admin only.
func (c *Client) Users(ctx context.Context, token string) ([]models.AdminUserInfo, error) {
	var users []models.AdminUserInfo
	if err := c.do(ctx, http.MethodGet, "/admin/users", token, nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) Status(ctx context.Context) (*models.StatusInfo, error) {
	var status models.StatusInfo
	if err := c.do(ctx, http.MethodGet, "/status", "", nil, &status); err != nil {
		return nil, err
	}
	return &status, nil
}
