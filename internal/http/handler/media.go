package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"sintiendo/internal/auth"
	"sintiendo/internal/media"

	"github.com/go-chi/chi/v5"
)

type MediaHandler struct {
	Svc   *media.Service
	Blobs media.Storage
}

type drawingReq struct {
	DiaryEntryID uint64  `json:"diary_entry_id"`
	DrawingData  string  `json:"drawing_data"` // base64, optional data-URI prefix
	Description  *string `json:"description"`
}

func (h *MediaHandler) writeAttachErr(w http.ResponseWriter, err error) {
	if errors.Is(err, media.ErrEntryNotFound) {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	http.Error(w, "server error", http.StatusInternalServerError)
}

// UploadAudio accepts a multipart form: file, diary_entry_id, description?.
// The part's content type must be audio/*.
func (h *MediaHandler) UploadAudio(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, "bad multipart form", http.StatusBadRequest)
		return
	}

	entryID, err := strconv.ParseUint(r.FormValue("diary_entry_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid diary_entry_id", http.StatusBadRequest)
		return
	}

	var description *string
	if d := r.FormValue("description"); d != "" {
		description = &d
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	if !strings.HasPrefix(header.Header.Get("Content-Type"), "audio/") {
		http.Error(w, "file must be audio", http.StatusBadRequest)
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}

	// The blob is durably written before any metadata exists.
	blob, err := h.Blobs.SaveRaw(data, header.Filename, media.CategoryAudio)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	m, err := h.Svc.Attach(r.Context(), u.ID, entryID, blob, media.CategoryAudio, description)
	if err != nil {
		h.writeAttachErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toMediaDTO(m))
}

func (h *MediaHandler) UploadDrawing(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	var req drawingReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	if req.DrawingData == "" {
		http.Error(w, "drawing_data required", http.StatusBadRequest)
		return
	}

	blob, err := h.Blobs.SaveDrawing(req.DrawingData)
	if err != nil {
		if errors.Is(err, media.ErrMalformedPayload) {
			http.Error(w, "invalid drawing data", http.StatusBadRequest)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	m, err := h.Svc.Attach(r.Context(), u.ID, req.DiaryEntryID, blob, media.CategoryDrawing, req.Description)
	if err != nil {
		h.writeAttachErr(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(toMediaDTO(m))
}

func (h *MediaHandler) ListByEntry(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	entryID, err := strconv.ParseUint(chi.URLParam(r, "diary_entry_id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	files, err := h.Svc.ListByEntry(r.Context(), u.ID, entryID)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	out := make([]mediaDTO, 0, len(files))
	for i := range files {
		out = append(out, toMediaDTO(&files[i]))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(out)
}

func mediaIDParam(r *http.Request) (uint64, bool) {
	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil
}

func (h *MediaHandler) Get(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	id, ok := mediaIDParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	m, err := h.Svc.GetByID(r.Context(), u.ID, id)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toMediaDTO(m))
}

func (h *MediaHandler) Download(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	id, ok := mediaIDParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	m, err := h.Svc.GetByID(r.Context(), u.ID, id)
	if err != nil {
		if errors.Is(err, media.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}

	f, err := h.Blobs.Open(m.FilePath)
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Disposition", `attachment; filename="`+m.OriginalFilename+`"`)
	w.Header().Set("Content-Length", strconv.FormatInt(m.FileSize, 10))
	_, _ = io.Copy(w, f)
}

func (h *MediaHandler) Delete(w http.ResponseWriter, r *http.Request) {
	u, _ := auth.UserFromContext(r.Context())

	id, ok := mediaIDParam(r)
	if !ok {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	deleted, err := h.Svc.Delete(r.Context(), u.ID, id)
	if err != nil {
		http.Error(w, "server error", http.StatusInternalServerError)
		return
	}
	if !deleted {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"message": "media deleted"})
}
