package media

import (
	"context"
	"io"
	"testing"
	"time"

	"sintiendo/internal/jobs"

	"github.com/DATA-DOG/go-sqlmock"
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

type stubRemover struct {
	removed []string
	err     error
}

func (s *stubRemover) Remove(path string) error {
	s.removed = append(s.removed, path)
	return s.err
}

// stubStorage wraps DiskStorage behavior where the test only needs Remove.
type stubStorage struct {
	stubRemover
}

func (s *stubStorage) SaveRaw(data []byte, originalFilename string, cat Category) (BlobInfo, error) {
	return BlobInfo{}, nil
}
func (s *stubStorage) SaveDrawing(base64Payload string) (BlobInfo, error) { return BlobInfo{}, nil }
func (s *stubStorage) Open(path string) (io.ReadCloser, error)            { return nil, nil }
func (s *stubStorage) Root() string                                       { return "" }

func newTestService(t *testing.T) (*Service, sqlmock.Sqlmock, *stubStorage) {
	gdb, mock := newTestDB(t)
	blobs := &stubStorage{}
	svc := &Service{
		DB:    gdb,
		Blobs: blobs,
		Jobs:  &jobs.Repo{DB: gdb},
		Log:   zap.NewNop().Sugar(),
	}
	return svc, mock, blobs
}

func mediaRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "diary_entry_id", "user_id", "filename", "original_filename",
		"file_type", "file_path", "file_size", "description", "created_at",
	}).AddRow(3, 1, 7, "abc.mp3", "note.mp3", "audio", "uploads/audio/abc.mp3", 128, nil, time.Now())
}

func TestAttachEntryNotOwned(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE id=.* AND user_id=.*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Attach(context.Background(), 8, 1, BlobInfo{}, CategoryAudio, nil)
	assert.ErrorIs(t, err, ErrEntryNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachDenormalizesOwner(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT .* FROM "diary_entries" WHERE id=.* AND user_id=.*`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id"}).AddRow(1, 7))
	mock.ExpectQuery(`INSERT INTO "media_files"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))

	m, err := svc.Attach(context.Background(), 7, 1, BlobInfo{
		Filename:         "abc.mp3",
		OriginalFilename: "note.mp3",
		Path:             "uploads/audio/abc.mp3",
		Size:             128,
	}, CategoryAudio, nil)
	require.NoError(t, err)

	assert.Equal(t, uint64(3), m.ID)
	assert.Equal(t, uint64(7), m.UserID)
	assert.Equal(t, uint64(1), m.DiaryEntryID)
	assert.Equal(t, "audio", m.FileType)
	assert.Equal(t, "/media/3/download", m.DownloadURL())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotOwned(t *testing.T) {
	svc, mock, _ := newTestService(t)

	mock.ExpectQuery(`SELECT .* FROM "media_files" WHERE id=.* AND user_id=.*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.GetByID(context.Background(), 8, 3)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteRemovesBlob(t *testing.T) {
	svc, mock, blobs := newTestService(t)

	mock.ExpectQuery(`SELECT .* FROM "media_files" WHERE id=.* AND user_id=.*`).
		WillReturnRows(mediaRows())
	mock.ExpectExec(`DELETE FROM "media_files"`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := svc.Delete(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{"uploads/audio/abc.mp3"}, blobs.removed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteQueuesCleanupWhenBlobRemovalFails(t *testing.T) {
	svc, mock, blobs := newTestService(t)
	blobs.err = assert.AnError

	mock.ExpectQuery(`SELECT .* FROM "media_files" WHERE id=.* AND user_id=.*`).
		WillReturnRows(mediaRows())
	mock.ExpectExec(`DELETE FROM "media_files"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	// metadata deletion stands; the orphaned blob goes to the cleanup queue
	mock.ExpectQuery(`INSERT INTO "jobs"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	deleted, err := svc.Delete(context.Background(), 7, 3)
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteNotFound(t *testing.T) {
	svc, mock, blobs := newTestService(t)

	mock.ExpectQuery(`SELECT .* FROM "media_files" WHERE id=.* AND user_id=.*`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	deleted, err := svc.Delete(context.Background(), 7, 99)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Empty(t, blobs.removed)
}
