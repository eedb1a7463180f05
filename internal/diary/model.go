package diary

import (
	"errors"
	"time"

	"sintiendo/internal/media"
)

var ErrNotFound = errors.New("not found")
var ErrDuplicateDate = errors.New("an entry already exists for this date")
var ErrInvalidIntensity = errors.New("intensity must be between 1 and 5")

// DiaryEntry owns its emotions and media; deleting it cascades to both.
// At most one entry may exist per (UserID, EntryDate), enforced by both a
// pre-insert check and a compound unique index.
type DiaryEntry struct {
	ID        uint64    `gorm:"primaryKey"`
	UserID    uint64    `gorm:"index;not null"`
	Title     string    `gorm:"size:200;not null"`
	Content   string    `gorm:"type:text;not null"`
	EntryDate time.Time `gorm:"type:date;not null"`
	CreatedAt time.Time `gorm:"not null;default:now()"`
	UpdatedAt time.Time `gorm:"not null;default:now()"`

	Emotions []EmotionRecord   `gorm:"foreignKey:DiaryEntryID"`
	Media    []media.MediaFile `gorm:"foreignKey:DiaryEntryID"`
}

// EmotionRecord belongs to exactly one entry. Ownership is always checked
// through the parent entry's user id, never denormalized here.
type EmotionRecord struct {
	ID           uint64  `gorm:"primaryKey"`
	DiaryEntryID uint64  `gorm:"index;not null"`
	EmotionType  string  `gorm:"size:50;not null"`
	Intensity    int     `gorm:"not null"`
	Icon         *string `gorm:"size:100"`
	Notes        *string `gorm:"type:text"`

	Entry *DiaryEntry `gorm:"foreignKey:DiaryEntryID"`
}

func ValidateIntensity(n int) error {
	if n < 1 || n > 5 {
		return ErrInvalidIntensity
	}
	return nil
}

// DateOnly truncates to the calendar date; entry_date comparisons ignore
// time of day.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
