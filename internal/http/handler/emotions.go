package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"sintiendo/internal/auth"
	"sintiendo/internal/diary"

	"github.com/go-chi/chi/v5"
)

type EmotionHandler struct {
	Svc *diary.Service
}

type updateEmotionReq struct {
	EmotionType *string `json:"emotion_type"`
	Intensity   *int    `json:"intensity"`
	Icon        *string `json:"icon"`
	Notes       *string `json:"notes"`
}

func (h *EmotionHandler) Add(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	entryID, ok := entryIDParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req emotionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	rec, err := h.Svc.AddEmotion(r.Context(), u.ID, entryID, diary.EmotionInput{
		EmotionType: req.EmotionType,
		Intensity:   req.Intensity,
		Icon:        req.Icon,
		Notes:       req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, diary.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, diary.ErrInvalidIntensity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toEmotionDTO(rec))
}

func (h *EmotionHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	emotionID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateEmotionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	rec, err := h.Svc.UpdateEmotion(r.Context(), u.ID, emotionID, diary.EmotionPatch{
		EmotionType: req.EmotionType,
		Intensity:   req.Intensity,
		Icon:        req.Icon,
		Notes:       req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, diary.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, diary.ErrInvalidIntensity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toEmotionDTO(rec))
}

func (h *EmotionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	emotionID, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	deleted, err := h.Svc.DeleteEmotion(r.Context(), u.ID, emotionID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "emotion deleted"})
}

func (h *EmotionHandler) Summary(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	start, err := time.Parse(dateLayout, r.URL.Query().Get("start_date"))
	if err != nil {
		http.Error(w, "invalid start_date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	end, err := time.Parse(dateLayout, r.URL.Query().Get("end_date"))
	if err != nil {
		http.Error(w, "invalid end_date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	summary, err := h.Svc.Summarize(r.Context(), u.ID, start, end)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(summary)
}

func (h *EmotionHandler) Recent(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	emotions, err := h.Svc.RecentEmotions(r.Context(), u.ID, limit)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]emotionDTO, 0, len(emotions))
	for i := range emotions {
		out = append(out, toEmotionDTO(&emotions[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}
