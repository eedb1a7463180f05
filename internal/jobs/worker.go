package jobs

import (
	"context"
	"encoding/json"
	"math"
	"time"

	"go.uber.org/zap"
)

// BlobRemover is the slice of the blob store the worker needs.
type BlobRemover interface {
	Remove(path string) error
}

type Worker struct {
	ID    string
	Repo  *Repo
	Blobs BlobRemover
	Log   *zap.SugaredLogger
}

func (w *Worker) Run(ctx context.Context) {
	ticker := time.NewTicker(800 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			job, err := w.Repo.Claim(w.ID)
			if err != nil {
				w.Log.Errorw("worker claim error", "err", err)
				continue
			}
			if job == nil {
				continue
			}
			w.handle(job)
		}
	}
}

func (w *Worker) handle(job *Job) {
	switch job.Type {
	case "BLOB_CLEANUP":
		w.handleBlobCleanup(job)
	default:
		_ = w.Repo.MarkFailed(job.ID, "unknown job type")
	}
}

func (w *Worker) handleBlobCleanup(job *Job) {
	type payload struct {
		Path string `json:"path"`
	}
	var p payload
	if err := json.Unmarshal(job.Payload, &p); err != nil || p.Path == "" {
		_ = w.Repo.MarkFailed(job.ID, "bad payload")
		return
	}

	if err := w.Blobs.Remove(p.Path); err != nil {
		w.retry(job, err.Error())
		return
	}

	w.Log.Infow("blob cleaned up", "path", p.Path, "user_id", job.UserID)
	_ = w.Repo.MarkDone(job.ID)
}

func (w *Worker) retry(job *Job, errMsg string) {
	attempts := job.Attempts + 1
	if attempts >= job.MaxAttempts {
		_ = w.Repo.MarkFailed(job.ID, errMsg)
		return
	}

	sec := math.Min(math.Pow(2, float64(attempts)), 600)
	next := time.Now().Add(time.Duration(sec) * time.Second)

	_ = w.Repo.RetryLater(job.ID, attempts, next, errMsg)
}
