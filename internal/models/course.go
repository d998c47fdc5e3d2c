package models

import "time"

// Course (Курс) — карточка курса из каталога маркетплейса.
type Course struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	Category        string     `json:"category,omitempty"`
	Level           string     `json:"level,omitempty"`
	Price           float64    `json:"price"`
	ImageURL        string     `json:"imageUrl,omitempty"`
	InstructorName  string     `json:"instructorName,omitempty"`
	InstructorEmail string     `json:"instructorEmail,omitempty"`
	Rating          float64    `json:"rating,omitempty"`
	IsPublished     bool       `json:"isPublished"`
	CreatedAt       *time.Time `json:"createdAt,omitempty"`
}

// CourseInput — тело запроса на создание / обновление курса инструктором.
// Картинка уже загружена на внешний хостинг, сюда приходит только URL.
type CourseInput struct {
	Title       string  `json:"title" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=5000"`
	Category    string  `json:"category" validate:"max=100"`
	Level       string  `json:"level" validate:"omitempty,oneof=beginner intermediate advanced"`
	Price       float64 `json:"price" validate:"gte=0"`
	ImageURL    string  `json:"imageUrl" validate:"omitempty,url"`
	IsPublished bool    `json:"isPublished"`
}

// Apply переносит поля ввода в курс, не трогая идентичность и автора.
func (in CourseInput) Apply(c *Course) {
	c.Title = in.Title
	c.Description = in.Description
	c.Category = in.Category
	c.Level = in.Level
	c.Price = in.Price
	c.ImageURL = in.ImageURL
	c.IsPublished = in.IsPublished
}
