package marketplace

import (
	"context"
	"net/http"
	"strings"

	"github.com/s/courseMarket/internal/models"
)

// ListCertificates — GET /certificates?email=.
func (c *Client) ListCertificates(ctx context.Context, email string) ([]models.Certificate, error) {
	var certs []models.Certificate
	req := c.request(ctx).SetQueryParam("email", email)
	if err := c.do(req, http.MethodGet, "/certificates", &certs); err != nil {
		return nil, err
	}
	return certs, nil
}

// ListProgress — GET /progress?email=.
func (c *Client) ListProgress(ctx context.Context, email string) ([]models.ProgressEntry, error) {
	var entries []models.ProgressEntry
	req := c.request(ctx).SetQueryParam("email", email)
	if err := c.do(req, http.MethodGet, "/progress", &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// ListUsers — GET /users.
func (c *Client) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := c.do(c.request(ctx), http.MethodGet, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

// FindUser ищет пользователя по email в общем списке (бэкенд не умеет фильтр).
func (c *Client) FindUser(ctx context.Context, email string) (*models.User, error) {
	users, err := c.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}
