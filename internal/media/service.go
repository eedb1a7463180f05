package media

import (
	"context"
	"errors"
	"time"

	"sintiendo/internal/jobs"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrNotFound = errors.New("not found")
var ErrEntryNotFound = errors.New("diary entry not found")

type Service struct {
	DB    *gorm.DB
	Blobs Storage
	Jobs  *jobs.Repo
	Log   *zap.SugaredLogger
}

// ownedEntry is a narrow read model over the diary table, enough for the
// ownership probe without importing the diary package.
type ownedEntry struct {
	ID     uint64
	UserID uint64
}

func (ownedEntry) TableName() string { return "diary_entries" }

// Attach binds a durably written blob to an owned entry. UserID is copied onto
// the row so later reads need no join.
func (s *Service) Attach(ctx context.Context, userID, entryID uint64, blob BlobInfo, cat Category, description *string) (*MediaFile, error) {
	var e ownedEntry
	if err := s.DB.WithContext(ctx).Where("id=? AND user_id=?", entryID, userID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}

	m := MediaFile{
		DiaryEntryID:     entryID,
		UserID:           userID,
		Filename:         blob.Filename,
		OriginalFilename: blob.OriginalFilename,
		FileType:         string(cat),
		FilePath:         blob.Path,
		FileSize:         blob.Size,
		Description:      description,
		CreatedAt:        time.Now(),
	}
	if err := s.DB.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Service) ListByEntry(ctx context.Context, userID, entryID uint64) ([]MediaFile, error) {
	var out []MediaFile
	err := s.DB.WithContext(ctx).
		Where("diary_entry_id=? AND user_id=?", entryID, userID).
		Find(&out).Error
	return out, err
}

func (s *Service) GetByID(ctx context.Context, userID, mediaID uint64) (*MediaFile, error) {
	var m MediaFile
	if err := s.DB.WithContext(ctx).Where("id=? AND user_id=?", mediaID, userID).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Delete removes the metadata row, then the blob. Blob removal never rolls
// back the row deletion; a failed removal is logged and queued for cleanup.
func (s *Service) Delete(ctx context.Context, userID, mediaID uint64) (bool, error) {
	m, err := s.GetByID(ctx, userID, mediaID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.DB.WithContext(ctx).Delete(&MediaFile{}, m.ID).Error; err != nil {
		return false, err
	}

	s.RemoveBlob(userID, m.FilePath)
	return true, nil
}

// RemoveBlob is best-effort removal shared with the diary cascade path.
func (s *Service) RemoveBlob(userID uint64, path string) {
	if err := s.Blobs.Remove(path); err != nil {
		s.Log.Errorw("blob removal failed, queueing cleanup", "path", path, "err", err)
		if err := s.Jobs.EnqueueBlobCleanup(userID, path, time.Now().Add(time.Minute)); err != nil {
			s.Log.Errorw("cleanup enqueue failed", "path", path, "err", err)
		}
	}
}
