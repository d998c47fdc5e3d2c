package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/s/courseMarket/internal/models"
)

// --- ОТЗЫВЫ ---

// GET /api/courses/{id}/reviews
func (h *Handler) GetReviewsAPI(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Market.ListReviews(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить отзывы")
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(reviews))
}

// POST /api/courses/{id}/reviews
func (h *Handler) AddReviewAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := h.CurrentIdentity(r)
	courseID := mux.Vars(r)["id"]

	var input models.ReviewInput
	if err := h.DecodeJSON(r, &input); err != nil {
		JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	review, err := h.Market.CreateReview(r.Context(), models.Review{
		CourseID:  courseID,
		UserEmail: id.Email,
		UserName:  id.DisplayName,
		UserPhoto: id.PhotoURL,
		Rating:    input.Rating,
		Comment:   input.Comment,
	})
	if err != nil {
		h.Logger.Warn("Не удалось сохранить отзыв",
			slog.String("course_id", courseID),
			slog.String("error", err.Error()),
		)
		JSONError(w, http.StatusBadGateway, "Не удалось отправить отзыв")
		return
	}
	Notify(w, http.StatusCreated, LevelSuccess, "Спасибо за отзыв!", review)
}

// DELETE /api/reviews/{id} — свой отзыв; админ может удалить любой.
func (h *Handler) DeleteReviewAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := h.CurrentIdentity(r)
	reviewID := mux.Vars(r)["id"]

	reviews, err := h.Market.ListReviews(r.Context(), "")
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить отзывы")
		return
	}
	var owner string
	found := false
	for _, rv := range reviews {
		if rv.ID == reviewID {
			owner, found = rv.UserEmail, true
			break
		}
	}
	if !found {
		JSONError(w, http.StatusNotFound, "Отзыв не найден")
		return
	}
	if !strings.EqualFold(owner, id.Email) && id.Role != models.RoleAdmin {
		JSONError(w, http.StatusForbidden, "Можно удалить только свой отзыв")
		return
	}

	if err := h.Market.DeleteReview(r.Context(), reviewID); err != nil {
		h.UpstreamError(w, err, "Не удалось удалить отзыв")
		return
	}
	Notify(w, http.StatusOK, LevelSuccess, "Отзыв удалён", nil)
}

// --- ЗАМЕТКИ ---

// GET /api/courses/{id}/notes — личные заметки к курсу.
func (h *Handler) GetNotesAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := h.CurrentIdentity(r)
	notes, err := h.Market.ListNotes(r.Context(), id.Email, mux.Vars(r)["id"])
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить заметки")
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(notes))
}

// POST /api/courses/{id}/notes
func (h *Handler) AddNoteAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := h.CurrentIdentity(r)

	var input models.NoteInput
	if err := h.DecodeJSON(r, &input); err != nil {
		JSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	note, err := h.Market.CreateNote(r.Context(), models.Note{
		CourseID:  mux.Vars(r)["id"],
		UserEmail: id.Email,
		Content:   input.Content,
	})
	if err != nil {
		h.Logger.Warn("Не удалось сохранить заметку", slog.String("error", err.Error()))
		JSONError(w, http.StatusBadGateway, "Не удалось сохранить заметку")
		return
	}
	Notify(w, http.StatusCreated, LevelSuccess, "Заметка сохранена", note)
}

// DELETE /api/notes/{id} — только свои заметки.
func (h *Handler) DeleteNoteAPI(w http.ResponseWriter, r *http.Request) {
	id, _ := h.CurrentIdentity(r)
	noteID := mux.Vars(r)["id"]

	notes, err := h.Market.ListNotes(r.Context(), id.Email, "")
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить заметки")
		return
	}
	owned := false
	for _, n := range notes {
		if n.ID == noteID {
			owned = true
			break
		}
	}
	if !owned {
		JSONError(w, http.StatusNotFound, "Заметка не найдена")
		return
	}

	if err := h.Market.DeleteNote(r.Context(), noteID); err != nil {
		h.UpstreamError(w, err, "Не удалось удалить заметку")
		return
	}
	Notify(w, http.StatusOK, LevelSuccess, "Заметка удалена", nil)
}
