package diary

import (
	"context"
	"io"
	"testing"
	"time"

	"sintiendo/internal/jobs"
	"sintiendo/internal/media"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		DisableAutomaticPing:   true,
	})
	require.NoError(t, err)
	return gdb, mock
}

// fakeStorage records removals; saving is unused in diary tests.
type fakeStorage struct {
	removed   []string
	removeErr error
}

func (f *fakeStorage) SaveRaw(data []byte, originalFilename string, cat media.Category) (media.BlobInfo, error) {
	return media.BlobInfo{}, nil
}
func (f *fakeStorage) SaveDrawing(base64Payload string) (media.BlobInfo, error) {
	return media.BlobInfo{}, nil
}
func (f *fakeStorage) Open(path string) (io.ReadCloser, error) { return nil, nil }
func (f *fakeStorage) Root() string                            { return "" }
func (f *fakeStorage) Remove(path string) error {
	f.removed = append(f.removed, path)
	return f.removeErr
}

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *fakeStorage) {
	gdb, mock := newTestDB(t)
	blobs := &fakeStorage{}
	mediaSvc := &media.Service{
		DB:    gdb,
		Blobs: blobs,
		Jobs:  &jobs.Repo{DB: gdb},
		Log:   zap.NewNop().Sugar(),
	}
	return &Service{DB: gdb, Media: mediaSvc}, mock, blobs
}

func entryRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "content", "entry_date", "created_at", "updated_at"}).
		AddRow(1, 7, "a day", "text", time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), time.Now(), time.Now())
}

func emptyRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id"})
}

func TestCreateEntryRejectsBadIntensity(t *testing.T) {
	svc, mock, _ := newTestService(t)

	_, err := svc.CreateEntry(context.Background(), 7, CreateEntryInput{
		Title:     "a day",
		Content:   "text",
		EntryDate: time.Now(),
		Emotions:  []EmotionInput{{EmotionType: "happy", Intensity: 6}},
	})
	assert.ErrorIs(t, err, ErrInvalidIntensity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntryDuplicateDate(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE user_id = .* AND entry_date = .*`).
		WillReturnRows(entryRows())
	mock.ExpectRollback()

	_, err := svc.CreateEntry(context.Background(), 7, CreateEntryInput{
		Title:     "again",
		Content:   "text",
		EntryDate: time.Date(2024, 5, 20, 15, 4, 5, 0, time.UTC),
	})
	assert.ErrorIs(t, err, ErrDuplicateDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntryUniqueIndexRace(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE user_id = .*`).
		WillReturnRows(emptyRows())
	mock.ExpectQuery(`INSERT INTO "diary_entries"`).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	_, err := svc.CreateEntry(context.Background(), 7, CreateEntryInput{
		Title:     "race",
		Content:   "text",
		EntryDate: time.Now(),
	})
	assert.ErrorIs(t, err, ErrDuplicateDate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateEntryWithEmotions(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE user_id = .*`).
		WillReturnRows(emptyRows())
	mock.ExpectQuery(`INSERT INTO "diary_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectQuery(`INSERT INTO "emotion_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(10))
	mock.ExpectQuery(`INSERT INTO "emotion_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectCommit()

	entry, err := svc.CreateEntry(context.Background(), 7, CreateEntryInput{
		Title:     "a day",
		Content:   "text",
		EntryDate: time.Date(2024, 5, 20, 23, 59, 0, 0, time.UTC),
		Emotions: []EmotionInput{
			{EmotionType: "happy", Intensity: 3},
			{EmotionType: "sad", Intensity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, uint64(1), entry.ID)
	// time of day is dropped before persisting
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), entry.EntryDate)
	require.Len(t, entry.Emotions, 2)
	assert.Equal(t, uint64(1), entry.Emotions[0].DiaryEntryID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntryCascades(t *testing.T) {
	svc, mock, blobs := newTestService(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE id = .* AND user_id = .*`).
		WillReturnRows(entryRows())
	mock.ExpectQuery(`SELECT "file_path" FROM "media_files"`).
		WillReturnRows(sqlmock.NewRows([]string{"file_path"}).
			AddRow("uploads/audio/a.mp3").
			AddRow("uploads/drawings/b.png"))
	mock.ExpectExec(`DELETE FROM "emotion_records"`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(`DELETE FROM "media_files"`).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "diary_entries"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	deleted, err := svc.DeleteEntry(context.Background(), 7, 1)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"uploads/audio/a.mp3", "uploads/drawings/b.png"}, blobs.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntryNotOwned(t *testing.T) {
	svc, mock, blobs := newTestService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE id = .* AND user_id = .*`).
		WillReturnRows(emptyRows())
	mock.ExpectRollback()

	deleted, err := svc.DeleteEntry(context.Background(), 8, 1)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, blobs.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEntryPartial(t *testing.T) {
	svc, mock, _ := newTestService(t)
	mock.MatchExpectationsInOrder(false)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE id = .* AND user_id = .*`).
		WillReturnRows(entryRows())
	// only title plus the forced updated_at refresh
	mock.ExpectExec(`UPDATE "diary_entries" SET "title"=.*,"updated_at"=.* WHERE id = .* AND user_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// reload with eager loads
	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE id = .* AND user_id = .*`).
		WillReturnRows(entryRows())
	mock.ExpectQuery(`SELECT .* FROM "emotion_records"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "diary_entry_id", "emotion_type", "intensity", "icon", "notes"}))
	mock.ExpectQuery(`SELECT .* FROM "media_files"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	title := "new title"
	entry, err := svc.UpdateEntry(context.Background(), 7, 1, EntryPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, uint64(1), entry.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmotionNotOwned(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT emotion_records\..* FROM "emotion_records" JOIN diary_entries`).
		WillReturnRows(emptyRows())

	newType := "calm"
	_, err := svc.UpdateEmotion(context.Background(), 8, 10, EmotionPatch{EmotionType: &newType})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateEmotionRejectsBadIntensity(t *testing.T) {
	svc, mock, _ := newTestService(t)

	bad := 0
	_, err := svc.UpdateEmotion(context.Background(), 7, 10, EmotionPatch{Intensity: &bad})
	assert.ErrorIs(t, err, ErrInvalidIntensity)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEmotionNotOwned(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT emotion_records\..* FROM "emotion_records" JOIN diary_entries`).
		WillReturnRows(emptyRows())

	deleted, err := svc.DeleteEmotion(context.Background(), 8, 10)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestValidateIntensity(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5} {
		assert.NoError(t, ValidateIntensity(n))
	}
	for _, n := range []int{-1, 0, 6, 100} {
		assert.ErrorIs(t, ValidateIntensity(n), ErrInvalidIntensity)
	}
}

func TestDateOnly(t *testing.T) {
	got := DateOnly(time.Date(2024, 5, 20, 23, 59, 58, 123, time.FixedZone("x", 3600)))
	assert.Equal(t, time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC), got)
}
