package handlers

import (
	"net/http"
)

// HandleMyProgress — GET /api/my/progress: сводка прогресса по курсам.
func (h *Handler) HandleMyProgress(w http.ResponseWriter, r *http.Request) {
	id, _ := h.CurrentIdentity(r)
	entries, err := h.Market.ListProgress(r.Context(), id.Email)
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить прогресс")
		return
	}

	total := 0
	completed := 0
	for _, e := range entries {
		total += e.ProgressPercent
		if e.ProgressPercent >= 100 {
			completed++
		}
	}
	average := 0
	if len(entries) > 0 {
		average = total / len(entries)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"entries":   nonNil(entries),
		"average":   average,
		"completed": completed,
	})
}

// HandleMyCertificates — GET /api/my/certificates.
func (h *Handler) HandleMyCertificates(w http.ResponseWriter, r *http.Request) {
	id, _ := h.CurrentIdentity(r)
	certs, err := h.Market.ListCertificates(r.Context(), id.Email)
	if err != nil {
		h.UpstreamError(w, err, "Не удалось загрузить сертификаты")
		return
	}
	WriteJSON(w, http.StatusOK, nonNil(certs))
}
