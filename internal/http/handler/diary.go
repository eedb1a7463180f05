package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"sintiendo/internal/auth"
	"sintiendo/internal/diary"

	"github.com/go-chi/chi/v5"
)

type DiaryHandler struct {
	Svc *diary.Service
}

type emotionReq struct {
	EmotionType string  `json:"emotion_type"`
	Intensity   int     `json:"intensity"`
	Icon        *string `json:"icon"`
	Notes       *string `json:"notes"`
}

type createEntryReq struct {
	Title     string       `json:"title"`
	Content   string       `json:"content"`
	EntryDate string       `json:"entry_date"` // YYYY-MM-DD
	Emotions  []emotionReq `json:"emotions"`
}

type updateEntryReq struct {
	Title     *string `json:"title"`
	Content   *string `json:"content"`
	EntryDate *string `json:"entry_date"`
}

func entryIDParam(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *DiaryHandler) Create(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var req createEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" || req.Content == "" {
		http.Error(w, "title and content required", http.StatusBadRequest)
		return
	}

	entryDate, err := time.Parse(dateLayout, req.EntryDate)
	if err != nil {
		http.Error(w, "invalid entry_date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	in := diary.CreateEntryInput{
		Title:     req.Title,
		Content:   req.Content,
		EntryDate: entryDate,
	}
	for _, em := range req.Emotions {
		in.Emotions = append(in.Emotions, diary.EmotionInput{
			EmotionType: em.EmotionType,
			Intensity:   em.Intensity,
			Icon:        em.Icon,
			Notes:       em.Notes,
		})
	}

	entry, err := h.Svc.CreateEntry(r.Context(), u.ID, in)
	if err != nil {
		switch {
		case errors.Is(err, diary.ErrDuplicateDate), errors.Is(err, diary.ErrInvalidIntensity):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toEntryDTO(entry))
}

func (h *DiaryHandler) List(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var (
		entries []diary.DiaryEntry
		err     error
	)

	if emotionType := strings.TrimSpace(r.URL.Query().Get("emotion_type")); emotionType != "" {
		entries, err = h.Svc.ListEntriesByEmotion(r.Context(), u.ID, emotionType)
	} else {
		skip := 0
		if v := r.URL.Query().Get("skip"); v != "" {
			if n, perr := strconv.Atoi(v); perr == nil && n >= 0 {
				skip = n
			}
		}
		limit := 100
		if v := r.URL.Query().Get("limit"); v != "" {
			if n, perr := strconv.Atoi(v); perr == nil && n > 0 {
				limit = n
			}
		}
		entries, err = h.Svc.ListEntries(r.Context(), u.ID, skip, limit)
	}
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]entryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, toEntryDTO(&entries[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func (h *DiaryHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	id, ok := entryIDParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	entry, err := h.Svc.GetEntry(r.Context(), u.ID, id)
	if err != nil {
		if errors.Is(err, diary.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toEntryDTO(entry))
}

func (h *DiaryHandler) GetByDate(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	date, err := time.Parse(dateLayout, chi.URLParam(r, "date"))
	if err != nil {
		http.Error(w, "invalid date (YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	entry, err := h.Svc.GetEntryByDate(r.Context(), u.ID, date)
	if err != nil {
		if errors.Is(err, diary.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toEntryDTO(entry))
}

func (h *DiaryHandler) Update(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	id, ok := entryIDParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	var req updateEntryReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	patch := diary.EntryPatch{Title: req.Title, Content: req.Content}
	if req.EntryDate != nil {
		d, err := time.Parse(dateLayout, *req.EntryDate)
		if err != nil {
			http.Error(w, "invalid entry_date (YYYY-MM-DD)", http.StatusBadRequest)
			return
		}
		patch.EntryDate = &d
	}

	entry, err := h.Svc.UpdateEntry(r.Context(), u.ID, id, patch)
	if err != nil {
		switch {
		case errors.Is(err, diary.ErrNotFound):
			http.Error(w, "not found", http.StatusNotFound)
		case errors.Is(err, diary.ErrDuplicateDate):
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			http.Error(w, "server error", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toEntryDTO(entry))
}

func (h *DiaryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	id, ok := entryIDParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	deleted, err := h.Svc.DeleteEntry(r.Context(), u.ID, id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "entry deleted"})
}
