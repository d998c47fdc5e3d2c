package marketplace

import (
	"context"
	"net/http"

	"github.com/s/courseMarket/internal/models"
)

// ListCourses — GET /courses (полный каталог).
func (c *Client) ListCourses(ctx context.Context) ([]models.Course, error) {
	var courses []models.Course
	if err := c.do(c.request(ctx), http.MethodGet, "/courses", &courses); err != nil {
		return nil, err
	}
	return courses, nil
}

// GetCourse — GET /courses/{id}.
func (c *Client) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	req := c.request(ctx).SetPathParam("id", id)
	if err := c.do(req, http.MethodGet, "/courses/{id}", &course); err != nil {
		return nil, err
	}
	if course.ID == "" {
		return nil, ErrNotFound
	}
	return &course, nil
}

// CreateCourse — POST /courses. Поля, которые вернул бэкенд, перекрывают отправленные.
func (c *Client) CreateCourse(ctx context.Context, course models.Course) (*models.Course, error) {
	created := course
	req := c.request(ctx).SetBody(course)
	if err := c.do(req, http.MethodPost, "/courses", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// UpdateCourse — PUT /courses/{id}.
func (c *Client) UpdateCourse(ctx context.Context, id string, course models.Course) (*models.Course, error) {
	updated := course
	updated.ID = id
	req := c.request(ctx).SetPathParam("id", id).SetBody(course)
	if err := c.do(req, http.MethodPut, "/courses/{id}", &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteCourse — DELETE /courses/{id}.
func (c *Client) DeleteCourse(ctx context.Context, id string) error {
	req := c.request(ctx).SetPathParam("id", id)
	return c.do(req, http.MethodDelete, "/courses/{id}", nil)
}
