package diary

import (
	"context"
	"time"
)

// EmotionSummary aggregates one emotion type over the window.
type EmotionSummary struct {
	Count            int64   `json:"count"`
	AverageIntensity float64 `json:"average_intensity"`
	TotalIntensity   int64   `json:"total_intensity"`
	Icon             *string `json:"icon"`
}

// Summarize groups the user's emotions with entry_date in [start, end]
// inclusive by (emotion_type, icon). The result is keyed by emotion_type; a
// type with no rows in range is simply absent.
func (s *Service) Summarize(ctx context.Context, userID uint64, start, end time.Time) (map[string]EmotionSummary, error) {
	var rows []struct {
		EmotionType      string
		Icon             *string
		Count            int64
		AverageIntensity float64
		TotalIntensity   int64
	}

	err := s.DB.WithContext(ctx).Raw(`
select er.emotion_type,
       er.icon,
       count(er.id)                as count,
       avg(er.intensity)::float8   as average_intensity,
       sum(er.intensity)           as total_intensity
from emotion_records er
join diary_entries de on de.id = er.diary_entry_id
where de.user_id = ?
  and de.entry_date >= ?
  and de.entry_date <= ?
group by er.emotion_type, er.icon
`, userID, DateOnly(start), DateOnly(end)).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	summary := make(map[string]EmotionSummary, len(rows))
	for _, r := range rows {
		summary[r.EmotionType] = EmotionSummary{
			Count:            r.Count,
			AverageIntensity: r.AverageIntensity,
			TotalIntensity:   r.TotalIntensity,
			Icon:             r.Icon,
		}
	}
	return summary, nil
}

// RecentEmotions returns the user's latest emotions, id-descending, each with
// its parent entry loaded.
func (s *Service) RecentEmotions(ctx context.Context, userID uint64, limit int) ([]EmotionRecord, error) {
	var out []EmotionRecord
	err := s.DB.WithContext(ctx).
		Preload("Entry").
		Select("emotion_records.*").
		Joins("JOIN diary_entries ON diary_entries.id = emotion_records.diary_entry_id").
		Where("diary_entries.user_id = ?", userID).
		Order("emotion_records.id desc").
		Limit(limit).
		Find(&out).Error
	return out, err
}
