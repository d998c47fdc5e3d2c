package marketplace

import (
	"context"
	"net/http"

	"github.com/s/courseMarket/internal/models"
)

// Enroll — POST /enrollments.
// Повторная запись распознаётся через IsAlreadyEnrolled(err).
func (c *Client) Enroll(ctx context.Context, email, courseID string) (*models.EnrollmentRecord, error) {
	record := models.EnrollmentRecord{CourseID: courseID, UserEmail: email}
	req := c.request(ctx).SetBody(map[string]string{
		"courseId":  courseID,
		"userEmail": email,
	})
	if err := c.do(req, http.MethodPost, "/enrollments", &record); err != nil {
		return nil, err
	}
	return &record, nil
}

// ListEnrollments — GET /enrollments?email=.
func (c *Client) ListEnrollments(ctx context.Context, email string) ([]models.EnrollmentRecord, error) {
	var records []models.EnrollmentRecord
	req := c.request(ctx).SetQueryParam("email", email)
	if err := c.do(req, http.MethodGet, "/enrollments", &records); err != nil {
		return nil, err
	}
	return records, nil
}

// CheckEnrollment — GET /enrollments/check?email=&courseId=.
func (c *Client) CheckEnrollment(ctx context.Context, email, courseID string) (bool, error) {
	var resp struct {
		Enrolled bool `json:"enrolled"`
	}
	req := c.request(ctx).SetQueryParams(map[string]string{
		"email":    email,
		"courseId": courseID,
	})
	if err := c.do(req, http.MethodGet, "/enrollments/check", &resp); err != nil {
		return false, err
	}
	return resp.Enrolled, nil
}

// UpdateProgress — PUT /enrollments/progress. Границы проверяет вызывающий код.
func (c *Client) UpdateProgress(ctx context.Context, update models.ProgressUpdate) error {
	req := c.request(ctx).SetBody(update)
	return c.do(req, http.MethodPut, "/enrollments/progress", nil)
}

// Unenroll — DELETE /enrollments?email=&courseId=.
func (c *Client) Unenroll(ctx context.Context, email, courseID string) error {
	req := c.request(ctx).SetQueryParams(map[string]string{
		"email":    email,
		"courseId": courseID,
	})
	return c.do(req, http.MethodDelete, "/enrollments", nil)
}
