package diary

import (
	"context"
	"errors"
	"time"

	"sintiendo/internal/media"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

type Service struct {
	DB    *gorm.DB
	Media *media.Service
}

type EmotionInput struct {
	EmotionType string
	Intensity   int
	Icon        *string
	Notes       *string
}

type CreateEntryInput struct {
	Title     string
	Content   string
	EntryDate time.Time
	Emotions  []EmotionInput
}

type EntryPatch struct {
	Title     *string
	Content   *string
	EntryDate *time.Time
}

type EmotionPatch struct {
	EmotionType *string
	Intensity   *int
	Icon        *string
	Notes       *string
}

// uniqueViolation reports a Postgres duplicate-key error. The pre-insert
// existence check races with concurrent inserts; the compound unique index is
// the authority and its violation maps to the same ErrDuplicateDate.
func uniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// CreateEntry inserts the entry and all supplied emotions in one transaction;
// a partially created entry is never observable.
func (s *Service) CreateEntry(ctx context.Context, userID uint64, in CreateEntryInput) (*DiaryEntry, error) {
	for _, em := range in.Emotions {
		if err := ValidateIntensity(em.Intensity); err != nil {
			return nil, err
		}
	}

	entry := DiaryEntry{
		UserID:    userID,
		Title:     in.Title,
		Content:   in.Content,
		EntryDate: DateOnly(in.EntryDate),
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing DiaryEntry
		err := tx.Where("user_id = ? AND entry_date = ?", userID, entry.EntryDate).
			First(&existing).Error
		if err == nil {
			return ErrDuplicateDate
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err := tx.Create(&entry).Error; err != nil {
			if uniqueViolation(err) {
				return ErrDuplicateDate
			}
			return err
		}

		for _, em := range in.Emotions {
			rec := EmotionRecord{
				DiaryEntryID: entry.ID,
				EmotionType:  em.EmotionType,
				Intensity:    em.Intensity,
				Icon:         em.Icon,
				Notes:        em.Notes,
			}
			if err := tx.Create(&rec).Error; err != nil {
				return err
			}
			entry.Emotions = append(entry.Emotions, rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListEntries returns the user's entries newest-first with emotions and media
// eagerly loaded. Offset and limit are caller-trusted.
func (s *Service) ListEntries(ctx context.Context, userID uint64, offset, limit int) ([]DiaryEntry, error) {
	var out []DiaryEntry
	err := s.DB.WithContext(ctx).
		Preload("Emotions").
		Preload("Media").
		Where("user_id = ?", userID).
		Order("entry_date desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListEntriesByEmotion restricts to entries having at least one emotion of the
// given type.
func (s *Service) ListEntriesByEmotion(ctx context.Context, userID uint64, emotionType string) ([]DiaryEntry, error) {
	var out []DiaryEntry
	err := s.DB.WithContext(ctx).
		Preload("Emotions").
		Preload("Media").
		Select("diary_entries.*").
		Distinct().
		Joins("JOIN emotion_records ON emotion_records.diary_entry_id = diary_entries.id AND emotion_records.emotion_type = ?", emotionType).
		Where("diary_entries.user_id = ?", userID).
		Order("entry_date desc").
		Find(&out).Error
	return out, err
}

func (s *Service) GetEntry(ctx context.Context, userID, entryID uint64) (*DiaryEntry, error) {
	var e DiaryEntry
	err := s.DB.WithContext(ctx).
		Preload("Emotions").
		Preload("Media").
		Where("id = ? AND user_id = ?", entryID, userID).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

func (s *Service) GetEntryByDate(ctx context.Context, userID uint64, date time.Time) (*DiaryEntry, error) {
	var e DiaryEntry
	err := s.DB.WithContext(ctx).
		Preload("Emotions").
		Preload("Media").
		Where("user_id = ? AND entry_date = ?", userID, DateOnly(date)).
		First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &e, nil
}

// UpdateEntry applies only the supplied fields; updated_at refreshes on any
// successful update.
func (s *Service) UpdateEntry(ctx context.Context, userID, entryID uint64, patch EntryPatch) (*DiaryEntry, error) {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e DiaryEntry
		if err := tx.Where("id = ? AND user_id = ?", entryID, userID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		updates := map[string]any{"updated_at": time.Now()}
		if patch.Title != nil {
			updates["title"] = *patch.Title
		}
		if patch.Content != nil {
			updates["content"] = *patch.Content
		}
		if patch.EntryDate != nil {
			updates["entry_date"] = DateOnly(*patch.EntryDate)
		}

		err := tx.Model(&DiaryEntry{}).
			Where("id = ? AND user_id = ?", entryID, userID).
			Updates(updates).Error
		if err != nil && uniqueViolation(err) {
			return ErrDuplicateDate
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.GetEntry(ctx, userID, entryID)
}

// DeleteEntry removes the entry together with every emotion and media row in
// one transaction. Blob removal happens after commit, best-effort.
func (s *Service) DeleteEntry(ctx context.Context, userID, entryID uint64) (bool, error) {
	var blobPaths []string

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var e DiaryEntry
		if err := tx.Where("id = ? AND user_id = ?", entryID, userID).First(&e).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		if err := tx.Model(&media.MediaFile{}).
			Where("diary_entry_id = ? AND user_id = ?", entryID, userID).
			Pluck("file_path", &blobPaths).Error; err != nil {
			return err
		}

		if err := tx.Where("diary_entry_id = ?", entryID).Delete(&EmotionRecord{}).Error; err != nil {
			return err
		}
		if err := tx.Where("diary_entry_id = ? AND user_id = ?", entryID, userID).Delete(&media.MediaFile{}).Error; err != nil {
			return err
		}
		return tx.Delete(&DiaryEntry{}, e.ID).Error
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	for _, p := range blobPaths {
		s.Media.RemoveBlob(userID, p)
	}
	return true, nil
}

func (s *Service) AddEmotion(ctx context.Context, userID, entryID uint64, in EmotionInput) (*EmotionRecord, error) {
	if err := ValidateIntensity(in.Intensity); err != nil {
		return nil, err
	}

	var e DiaryEntry
	if err := s.DB.WithContext(ctx).Where("id = ? AND user_id = ?", entryID, userID).First(&e).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	rec := EmotionRecord{
		DiaryEntryID: entryID,
		EmotionType:  in.EmotionType,
		Intensity:    in.Intensity,
		Icon:         in.Icon,
		Notes:        in.Notes,
	}
	if err := s.DB.WithContext(ctx).Create(&rec).Error; err != nil {
		return nil, err
	}
	return &rec, nil
}

// getOwnedEmotion checks ownership transitively through the parent entry.
func (s *Service) getOwnedEmotion(ctx context.Context, userID, emotionID uint64) (*EmotionRecord, error) {
	var rec EmotionRecord
	err := s.DB.WithContext(ctx).
		Select("emotion_records.*").
		Joins("JOIN diary_entries ON diary_entries.id = emotion_records.diary_entry_id").
		Where("emotion_records.id = ? AND diary_entries.user_id = ?", emotionID, userID).
		First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rec, nil
}

func (s *Service) UpdateEmotion(ctx context.Context, userID, emotionID uint64, patch EmotionPatch) (*EmotionRecord, error) {
	if patch.Intensity != nil {
		if err := ValidateIntensity(*patch.Intensity); err != nil {
			return nil, err
		}
	}

	rec, err := s.getOwnedEmotion(ctx, userID, emotionID)
	if err != nil {
		return nil, err
	}

	if patch.EmotionType != nil {
		rec.EmotionType = *patch.EmotionType
	}
	if patch.Intensity != nil {
		rec.Intensity = *patch.Intensity
	}
	if patch.Icon != nil {
		rec.Icon = patch.Icon
	}
	if patch.Notes != nil {
		rec.Notes = patch.Notes
	}

	if err := s.DB.WithContext(ctx).Save(rec).Error; err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) DeleteEmotion(ctx context.Context, userID, emotionID uint64) (bool, error) {
	rec, err := s.getOwnedEmotion(ctx, userID, emotionID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}

	if err := s.DB.WithContext(ctx).Delete(&EmotionRecord{}, rec.ID).Error; err != nil {
		return false, err
	}
	return true, nil
}
