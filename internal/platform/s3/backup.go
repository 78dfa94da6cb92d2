package s3

import (
	"context"
	"fmt"
	"path"
	"time"

	"go.uber.org/zap"
)

// ObjectStore is the subset of Client used by Backup.
type ObjectStore interface {
	EnsureBucket(ctx context.Context, bucket string) error
	PutObject(ctx context.Context, bucket, key string, data []byte) error
	GetObject(ctx context.Context, bucket, key string) ([]byte, error)
}

// Backup keeps the registry document under one bucket key. Every push also
// writes a timestamped copy next to it.
type Backup struct {
	store  ObjectStore
	bucket string
	key    string
	log    *zap.SugaredLogger
	now    func() time.Time
}

// NewBackup returns a Backup for bucket/key.
func NewBackup(store ObjectStore, bucket, key string, log *zap.SugaredLogger) *Backup {
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Backup{store: store, bucket: bucket, key: key, log: log, now: time.Now}
}

// Location returns "bucket/key".
func (b *Backup) Location() string {
	return b.bucket + "/" + b.key
}

// SnapshotKey returns the key of the timestamped copy taken at t.
func (b *Backup) SnapshotKey(t time.Time) string {
	dir, file := path.Split(b.key)
	return fmt.Sprintf("%ssnapshots/%s.%s", dir, file, t.UTC().Format("20060102T150405Z"))
}

// Push uploads data to the backup key and returns the snapshot key.
func (b *Backup) Push(ctx context.Context, data []byte) (string, error) {
	if err := b.store.EnsureBucket(ctx, b.bucket); err != nil {
		return "", err
	}
	snapshot := b.SnapshotKey(b.now())
	if err := b.store.PutObject(ctx, b.bucket, snapshot, data); err != nil {
		return "", err
	}
	if err := b.store.PutObject(ctx, b.bucket, b.key, data); err != nil {
		return "", err
	}
	b.log.Debugw("registry backed up", "bucket", b.bucket, "key", b.key, "snapshot", snapshot, "bytes", len(data))
	return snapshot, nil
}

// Pull downloads the backup key, or key when it is non-empty.
func (b *Backup) Pull(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		key = b.key
	}
	data, err := b.store.GetObject(ctx, b.bucket, key)
	if err != nil {
		return nil, err
	}
	b.log.Debugw("registry downloaded", "bucket", b.bucket, "key", key, "bytes", len(data))
	return data, nil
}
