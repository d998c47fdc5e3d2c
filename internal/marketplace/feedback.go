package marketplace

import (
	"context"
	"net/http"

	"github.com/s/courseMarket/internal/models"
)

// --- ОТЗЫВЫ ---

// CreateReview — POST /reviews.
func (c *Client) CreateReview(ctx context.Context, review models.Review) (*models.Review, error) {
	created := review
	if err := c.do(c.request(ctx).SetBody(review), http.MethodPost, "/reviews", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListReviews — GET /reviews?courseId=. Пустой courseID — все отзывы.
func (c *Client) ListReviews(ctx context.Context, courseID string) ([]models.Review, error) {
	var reviews []models.Review
	req := c.request(ctx)
	if courseID != "" {
		req.SetQueryParam("courseId", courseID)
	}
	if err := c.do(req, http.MethodGet, "/reviews", &reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

// DeleteReview — DELETE /reviews/{id}.
func (c *Client) DeleteReview(ctx context.Context, id string) error {
	return c.do(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/reviews/{id}", nil)
}

// --- ЗАМЕТКИ ---

// CreateNote — POST /notes.
func (c *Client) CreateNote(ctx context.Context, note models.Note) (*models.Note, error) {
	created := note
	if err := c.do(c.request(ctx).SetBody(note), http.MethodPost, "/notes", &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// ListNotes — GET /notes?email=&courseId=.
func (c *Client) ListNotes(ctx context.Context, email, courseID string) ([]models.Note, error) {
	var notes []models.Note
	req := c.request(ctx).SetQueryParams(map[string]string{
		"email":    email,
		"courseId": courseID,
	})
	if err := c.do(req, http.MethodGet, "/notes", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// DeleteNote — DELETE /notes/{id}.
func (c *Client) DeleteNote(ctx context.Context, id string) error {
	return c.do(c.request(ctx).SetPathParam("id", id), http.MethodDelete, "/notes/{id}", nil)
}
