package s3

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/imamik/emc/internal/errs"
)

type memoryObjects struct {
	buckets  map[string]bool
	objects  map[string][]byte
	putErr   error
	ensureFn func(string) error
}

func newMemoryObjects() *memoryObjects {
	return &memoryObjects{buckets: map[string]bool{}, objects: map[string][]byte{}}
}

func (m *memoryObjects) EnsureBucket(_ context.Context, bucket string) error {
	if m.ensureFn != nil {
		return m.ensureFn(bucket)
	}
	m.buckets[bucket] = true
	return nil
}

func (m *memoryObjects) PutObject(_ context.Context, bucket, key string, data []byte) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.objects[bucket+"/"+key] = append([]byte(nil), data...)
	return nil
}

func (m *memoryObjects) GetObject(_ context.Context, bucket, key string) ([]byte, error) {
	data, ok := m.objects[bucket+"/"+key]
	if !ok {
		return nil, errs.New(errs.NotFound, "no object %s", key)
	}
	return data, nil
}

var _ ObjectStore = (*Client)(nil)

func TestBackup_PushWritesKeyAndSnapshot(t *testing.T) {
	store := newMemoryObjects()
	b := NewBackup(store, "saves", "emc/emc.json", nil)
	b.now = func() time.Time { return time.Date(2026, 10, 18, 12, 30, 0, 0, time.UTC) }

	snapshot, err := b.Push(context.Background(), []byte("doc"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if snapshot != "emc/snapshots/emc.json.20261018T123000Z" {
		t.Errorf("snapshot = %q", snapshot)
	}
	if !store.buckets["saves"] {
		t.Error("bucket was not ensured")
	}
	if string(store.objects["saves/emc/emc.json"]) != "doc" {
		t.Error("backup key not written")
	}
	if string(store.objects["saves/"+snapshot]) != "doc" {
		t.Error("snapshot not written")
	}
}

func TestBackup_PushStopsOnBucketError(t *testing.T) {
	store := newMemoryObjects()
	store.ensureFn = func(string) error { return errors.New("denied") }
	b := NewBackup(store, "saves", "emc.json", nil)

	if _, err := b.Push(context.Background(), []byte("doc")); err == nil {
		t.Fatal("expected error")
	}
	if len(store.objects) != 0 {
		t.Errorf("nothing should be written, got %v", store.objects)
	}
}

func TestBackup_Pull(t *testing.T) {
	store := newMemoryObjects()
	store.objects["saves/emc.json"] = []byte("latest")
	store.objects["saves/snapshots/emc.json.1"] = []byte("older")
	b := NewBackup(store, "saves", "emc.json", nil)

	got, err := b.Pull(context.Background(), "")
	if err != nil || string(got) != "latest" {
		t.Fatalf("Pull(\"\") = %q, %v", got, err)
	}
	got, err = b.Pull(context.Background(), "snapshots/emc.json.1")
	if err != nil || string(got) != "older" {
		t.Fatalf("Pull(snapshot) = %q, %v", got, err)
	}

	_, err = b.Pull(context.Background(), "nope")
	if !errs.IsKind(err, errs.NotFound) {
		t.Errorf("kind = %v, want NotFound", errs.KindOf(err))
	}
}

func TestBackup_Location(t *testing.T) {
	b := NewBackup(newMemoryObjects(), "saves", "emc/emc.json", nil)
	if b.Location() != "saves/emc/emc.json" {
		t.Errorf("Location() = %q", b.Location())
	}
}
