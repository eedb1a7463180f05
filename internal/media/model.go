package media

import (
	"fmt"
	"time"
)

// Category partitions stored blobs into per-kind directories.
type Category string

const (
	CategoryAudio   Category = "audio"
	CategoryDrawing Category = "drawing"
	CategoryImage   Category = "image"
)

func ParseCategory(s string) (Category, bool) {
	switch Category(s) {
	case CategoryAudio, CategoryDrawing, CategoryImage:
		return Category(s), true
	}
	return "", false
}

// MediaFile is the metadata row for one stored blob. UserID is denormalized
// from the owning entry so ownership checks never need a join.
type MediaFile struct {
	ID               uint64    `gorm:"primaryKey"`
	DiaryEntryID     uint64    `gorm:"index;not null"`
	UserID           uint64    `gorm:"index;not null"`
	Filename         string    `gorm:"not null"`
	OriginalFilename string    `gorm:"not null"`
	FileType         string    `gorm:"not null"`
	FilePath         string    `gorm:"not null"`
	FileSize         int64     `gorm:"not null;default:0"`
	Description      *string   `gorm:"type:text"`
	CreatedAt        time.Time `gorm:"not null;default:now()"`
}

// DownloadURL is computed, never stored.
func (m *MediaFile) DownloadURL() string {
	return fmt.Sprintf("/media/%d/download", m.ID)
}
