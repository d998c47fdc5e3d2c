package models

import "time"

// Review - Отзыв к курсу
type Review struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"courseId"`
	UserEmail string     `json:"userEmail"`
	UserName  string     `json:"userName,omitempty"`
	UserPhoto string     `json:"userPhoto,omitempty"`
	Rating    int        `json:"rating"` // 1-5
	Comment   string     `json:"comment"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type ReviewInput struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Comment string `json:"comment" validate:"required,max=2000"`
}

// Note - Личная заметка студента к курсу
type Note struct {
	ID        string     `json:"id"`
	CourseID  string     `json:"courseId"`
	UserEmail string     `json:"userEmail"`
	Content   string     `json:"content"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type NoteInput struct {
	Content string `json:"content" validate:"required,max=10000"`
}
