package handler

import (
	"time"

	"sintiendo/internal/auth"
	"sintiendo/internal/diary"
	"sintiendo/internal/media"
)

const dateLayout = "2006-01-02"

type userDTO struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

func toUserDTO(u *auth.User) userDTO {
	return userDTO{ID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

type emotionDTO struct {
	ID           uint64    `json:"id"`
	DiaryEntryID uint64    `json:"diary_entry_id"`
	EmotionType  string    `json:"emotion_type"`
	Intensity    int       `json:"intensity"`
	Icon         *string   `json:"icon"`
	Notes        *string   `json:"notes"`
	Entry        *entryDTO `json:"diary_entry,omitempty"`
}

func toEmotionDTO(e *diary.EmotionRecord) emotionDTO {
	dto := emotionDTO{
		ID:           e.ID,
		DiaryEntryID: e.DiaryEntryID,
		EmotionType:  e.EmotionType,
		Intensity:    e.Intensity,
		Icon:         e.Icon,
		Notes:        e.Notes,
	}
	if e.Entry != nil {
		parent := toEntryDTO(e.Entry)
		dto.Entry = &parent
	}
	return dto
}

type mediaDTO struct {
	ID               uint64    `json:"id"`
	DiaryEntryID     uint64    `json:"diary_entry_id"`
	UserID           uint64    `json:"user_id"`
	Filename         string    `json:"filename"`
	OriginalFilename string    `json:"original_filename"`
	FileType         string    `json:"file_type"`
	FilePath         string    `json:"file_path"`
	FileSize         int64     `json:"file_size"`
	Description      *string   `json:"description"`
	CreatedAt        time.Time `json:"created_at"`
	DownloadURL      string    `json:"download_url"`
}

func toMediaDTO(m *media.MediaFile) mediaDTO {
	return mediaDTO{
		ID:               m.ID,
		DiaryEntryID:     m.DiaryEntryID,
		UserID:           m.UserID,
		Filename:         m.Filename,
		OriginalFilename: m.OriginalFilename,
		FileType:         m.FileType,
		FilePath:         m.FilePath,
		FileSize:         m.FileSize,
		Description:      m.Description,
		CreatedAt:        m.CreatedAt,
		DownloadURL:      m.DownloadURL(),
	}
}

type entryDTO struct {
	ID         uint64       `json:"id"`
	UserID     uint64       `json:"user_id"`
	Title      string       `json:"title"`
	Content    string       `json:"content"`
	EntryDate  string       `json:"entry_date"`
	CreatedAt  time.Time    `json:"created_at"`
	UpdatedAt  time.Time    `json:"updated_at"`
	Emotions   []emotionDTO `json:"emotions"`
	MediaFiles []mediaDTO   `json:"media_files"`
}

func toEntryDTO(e *diary.DiaryEntry) entryDTO {
	dto := entryDTO{
		ID:         e.ID,
		UserID:     e.UserID,
		Title:      e.Title,
		Content:    e.Content,
		EntryDate:  e.EntryDate.Format(dateLayout),
		CreatedAt:  e.CreatedAt,
		UpdatedAt:  e.UpdatedAt,
		Emotions:   make([]emotionDTO, 0, len(e.Emotions)),
		MediaFiles: make([]mediaDTO, 0, len(e.Media)),
	}
	for i := range e.Emotions {
		dto.Emotions = append(dto.Emotions, toEmotionDTO(&e.Emotions[i]))
	}
	for i := range e.Media {
		dto.MediaFiles = append(dto.MediaFiles, toMediaDTO(&e.Media[i]))
	}
	return dto
}
