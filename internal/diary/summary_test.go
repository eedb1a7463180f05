package diary

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	svc, mock, _ := newTestService(t)

	icon := "😊"
	mock.ExpectQuery(`select er\.emotion_type`).
		WillReturnRows(sqlmock.NewRows([]string{"emotion_type", "icon", "count", "average_intensity", "total_intensity"}).
			AddRow("happy", icon, 2, 4.0, 8).
			AddRow("sad", nil, 1, 2.0, 2))

	summary, err := svc.Summarize(context.Background(), 7,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, summary, 2)

	happy := summary["happy"]
	assert.Equal(t, int64(2), happy.Count)
	assert.Equal(t, 4.0, happy.AverageIntensity)
	assert.Equal(t, int64(8), happy.TotalIntensity)
	require.NotNil(t, happy.Icon)
	assert.Equal(t, icon, *happy.Icon)

	sad := summary["sad"]
	assert.Equal(t, int64(1), sad.Count)
	assert.Equal(t, 2.0, sad.AverageIntensity)
	assert.Equal(t, int64(2), sad.TotalIntensity)
	assert.Nil(t, sad.Icon)

	_, ok := summary["angry"]
	assert.False(t, ok)
}

func TestSummarizeEmptyWindow(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`select er\.emotion_type`).
		WillReturnRows(sqlmock.NewRows([]string{"emotion_type", "icon", "count", "average_intensity", "total_intensity"}))

	summary, err := svc.Summarize(context.Background(), 7,
		time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestRecentEmotionsIncludesParentEntry(t *testing.T) {
	svc, mock, _ := newTestService(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectQuery(`SELECT emotion_records\..* FROM "emotion_records" JOIN diary_entries`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "diary_entry_id", "emotion_type", "intensity", "icon", "notes"}).
			AddRow(11, 1, "happy", 5, nil, nil).
			AddRow(10, 1, "sad", 2, nil, nil))
	mock.ExpectQuery(`SELECT .* FROM "diary_entries"`).
		WillReturnRows(entryRows())

	emotions, err := svc.RecentEmotions(context.Background(), 7, 10)
	require.NoError(t, err)

	require.Len(t, emotions, 2)
	assert.Equal(t, uint64(11), emotions[0].ID)
	require.NotNil(t, emotions[0].Entry)
	assert.Equal(t, uint64(1), emotions[0].Entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
