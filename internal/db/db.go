package db

import (
	"database/sql"
	"fmt"

	"sintiendo/internal/auth"
	"sintiendo/internal/diary"
	"sintiendo/internal/jobs"
	"sintiendo/internal/media"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Connect opens the pool through lib/pq so driver errors surface as *pq.Error
// (the duplicate-key translation in the diary service relies on this).
func Connect(dsn string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	return gdb, nil
}

func AutoMigrateAndIndexes(gdb *gorm.DB) error {
	// Tables
	if err := gdb.AutoMigrate(
		&auth.User{},
		&diary.DiaryEntry{},
		&diary.EmotionRecord{},
		&media.MediaFile{},
		&jobs.Job{},
	); err != nil {
		return err
	}

	// One entry per user per calendar date. The service pre-checks too, but
	// this closes the check-then-insert race.
	if err := gdb.Exec(`create unique index if not exists uq_diary_entries_user_date on diary_entries(user_id, entry_date);`).Error; err != nil {
		return err
	}

	// Helpful indexes
	stmts := []string{
		`create index if not exists idx_diary_entries_user_date on diary_entries(user_id, entry_date desc);`,
		`create index if not exists idx_emotions_entry on emotion_records(diary_entry_id, id);`,
		`create index if not exists idx_emotions_type on emotion_records(emotion_type);`,
		`create index if not exists idx_media_entry_user on media_files(diary_entry_id, user_id);`,
		`create index if not exists idx_jobs_due on jobs(status, run_at);`,
		`create index if not exists idx_jobs_lock on jobs(status, locked_at);`,
	}
	for _, s := range stmts {
		if err := gdb.Exec(s).Error; err != nil {
			return fmt.Errorf("index exec failed: %w (sql=%s)", err, s)
		}
	}

	return nil
}
