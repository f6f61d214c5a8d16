package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"lms/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	// Minimum part size of S3-compatible stores; payloads above it are
	// relayed as a multipart upload, below it as a single put.
	minPartSize = 5 * 1024 * 1024

	// Abort the transfer when no bytes arrive for this long.
	uploadIdleTimeout = 60 * time.Second

	// Keys are never reused for different content, so stored objects can be
	// cached by clients indefinitely.
	objectCacheControl = "public, max-age=31536000, immutable"
)

// UploadedObject describes a durably stored object.
type UploadedObject struct {
	Key  string
	URL  string
	Size int64
}

// Uploader relays byte streams into an S3-compatible bucket without
// buffering whole files in memory.
type Uploader struct {
	client        *minio.Client
	bucket        string
	publicBaseURL string
}

// NewUploader validates the storage configuration and builds the client.
// Missing bucket or public URL is a configuration error and fails here
// rather than degrading at upload time.
func NewUploader(cfg *config.Config) (*Uploader, error) {
	if cfg.StorageBucket == "" {
		return nil, errors.New("storage bucket is not configured (STORAGE_BUCKET)")
	}
	if cfg.StoragePublicURL == "" {
		return nil, errors.New("storage public URL is not configured (STORAGE_PUBLIC_URL)")
	}

	client, err := minio.New(cfg.StorageEndpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.StorageAccessKey, cfg.StorageSecretKey, ""),
		Secure: cfg.StorageUseSSL,
		Region: cfg.StorageRegion,
	})
	if err != nil {
		return nil, err
	}

	return &Uploader{
		client:        client,
		bucket:        cfg.StorageBucket,
		publicBaseURL: strings.TrimRight(cfg.StoragePublicURL, "/"),
	}, nil
}

// PublicURL joins the configured base URL and the key with exactly one
// separator.
func (u *Uploader) PublicURL(key string) string {
	return u.publicBaseURL + "/" + strings.TrimLeft(key, "/")
}

// Upload streams r into the bucket under key. onProgress is invoked with the
// cumulative byte count as chunks move through, at the cadence of the
// underlying transfer. On any failure the multipart session is aborted so no
// partial object stays addressable at key.
func (u *Uploader) Upload(ctx context.Context, r io.Reader, size int64, key, contentType string, onProgress func(loaded int64)) (UploadedObject, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cr := &countingReader{r: r, onProgress: onProgress}
	cr.touch()
	stopWatch := watchIdle(ctx, cancel, cr, uploadIdleTimeout)
	defer stopWatch()

	info, err := u.client.PutObject(ctx, u.bucket, key, cr, size, minio.PutObjectOptions{
		ContentType:  contentType,
		CacheControl: objectCacheControl,
		PartSize:     minPartSize,
	})
	if err != nil {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cleanupCancel()
		_ = u.client.RemoveIncompleteUpload(cleanupCtx, u.bucket, key)
		return UploadedObject{}, err
	}

	return UploadedObject{Key: key, URL: u.PublicURL(key), Size: info.Size}, nil
}

// countingReader forwards reads, tracks the cumulative byte count and stamps
// the last moment data moved.
type countingReader struct {
	r          io.Reader
	onProgress func(loaded int64)
	loaded     int64
	lastActive atomic.Int64 // unix nanos
}

func (cr *countingReader) Read(p []byte) (int, error) {
	n, err := cr.r.Read(p)
	if n > 0 {
		cr.loaded += int64(n)
		cr.touch()
		if cr.onProgress != nil {
			cr.onProgress(cr.loaded)
		}
	}
	return n, err
}

func (cr *countingReader) touch() {
	cr.lastActive.Store(time.Now().UnixNano())
}

func (cr *countingReader) idleFor() time.Duration {
	return time.Duration(time.Now().UnixNano() - cr.lastActive.Load())
}

// watchIdle cancels the transfer when the reader sees no bytes for timeout.
func watchIdle(ctx context.Context, cancel context.CancelFunc, cr *countingReader, timeout time.Duration) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(timeout / 4)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				if cr.idleFor() > timeout {
					cancel()
					return
				}
			}
		}
	}()
	return func() { close(done) }
}
