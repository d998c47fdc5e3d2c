package models

import "time"

// EnrollmentRecord — запись на курс, источник истины — бэкенд.
type EnrollmentRecord struct {
	ID              string     `json:"id,omitempty"`
	CourseID        string     `json:"courseId"`
	UserEmail       string     `json:"userEmail"`
	ProgressPercent int        `json:"progressPercent"`
	EnrolledAt      *time.Time `json:"enrolledAt,omitempty"`
	LastAccessedAt  *time.Time `json:"lastAccessedAt,omitempty"`

	// Бэкенд может сразу вложить карточку курса
	Course *Course `json:"course,omitempty"`
}

// ProgressUpdate — тело PUT-запроса обновления прогресса.
type ProgressUpdate struct {
	CourseID        string `json:"courseId" validate:"required"`
	UserEmail       string `json:"userEmail" validate:"required,email"`
	ProgressPercent int    `json:"progressPercent" validate:"gte=0,lte=100"`
}

// ProgressEntry — строка сводки прогресса пользователя (GET /progress).
type ProgressEntry struct {
	CourseID        string     `json:"courseId"`
	CourseTitle     string     `json:"courseTitle,omitempty"`
	ProgressPercent int        `json:"progressPercent"`
	LastAccessedAt  *time.Time `json:"lastAccessedAt,omitempty"`
}

// Certificate — сертификат о прохождении курса.
type Certificate struct {
	ID             string     `json:"id"`
	CourseID       string     `json:"courseId"`
	CourseTitle    string     `json:"courseTitle,omitempty"`
	UserEmail      string     `json:"userEmail"`
	IssuedAt       *time.Time `json:"issuedAt,omitempty"`
	CertificateURL string     `json:"certificateUrl,omitempty"`
}
