package storage

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// Janitor aborts incomplete multipart uploads left behind when clients
// disconnect without the coordinator getting a chance to clean up (process
// crash, network partition during abort).
type Janitor struct {
	uploader *Uploader
	maxAge   time.Duration
	logger   *log.Logger
	cron     *cron.Cron
}

func NewJanitor(uploader *Uploader, maxAge time.Duration, logger *log.Logger) *Janitor {
	return &Janitor{
		uploader: uploader,
		maxAge:   maxAge,
		logger:   logger,
		cron:     cron.New(),
	}
}

// Start schedules an hourly sweep.
func (j *Janitor) Start() error {
	if _, err := j.cron.AddFunc("@hourly", j.Sweep); err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

func (j *Janitor) Stop() {
	j.cron.Stop()
}

// Sweep lists incomplete multipart sessions in the bucket and aborts those
// older than maxAge. Recent ones are left alone: they may still be in flight.
func (j *Janitor) Sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	client, bucket := j.uploader.client, j.uploader.bucket
	for upload := range client.ListIncompleteUploads(ctx, bucket, "", true) {
		if upload.Err != nil {
			j.logger.Printf("janitor: list incomplete uploads: %v", upload.Err)
			return
		}
		if time.Since(upload.Initiated) < j.maxAge {
			continue
		}
		if err := client.RemoveIncompleteUpload(ctx, bucket, upload.Key); err != nil {
			j.logger.Printf("janitor: abort %s: %v", upload.Key, err)
			continue
		}
		j.logger.Printf("janitor: aborted stale multipart upload %s", upload.Key)
	}
}
