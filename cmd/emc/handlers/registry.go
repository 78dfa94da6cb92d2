package handlers

import (
	"context"
	"fmt"

	"github.com/imamik/emc/internal/config"
	"github.com/imamik/emc/internal/errs"
	"github.com/imamik/emc/internal/platform/s3"
	"github.com/imamik/emc/internal/registry"
)

// newObjectStore is replaced in tests.
var newObjectStore = func(b config.BackupConfig) (s3.ObjectStore, error) {
	return s3.NewClient(b.Endpoint, b.Region, b.AccessKey, b.SecretKey)
}

// RegistryPath prints where the registry lives.
func RegistryPath() error {
	paths := defaultPaths()
	fmt.Fprintln(stdout, paths.Registry)
	return nil
}

func (s *session) backup() (*s3.Backup, error) {
	if !s.cfg.BackupEnabled() {
		return nil, errs.New(errs.Internal,
			"backup is not configured: set backup.bucket in %s and export %s and %s",
			s.paths.Config, config.EnvS3AccessKey, config.EnvS3SecretKey)
	}
	b := s.cfg.Backup
	if b.Region == "" {
		b.Region = s.cfg.Region
	}
	store, err := newObjectStore(b)
	if err != nil {
		return nil, err
	}
	return s3.NewBackup(store, b.Bucket, b.Key, s.log), nil
}

// RegistryBackup uploads the registry document to the backup bucket.
func RegistryBackup(ctx context.Context, g Globals) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	b, err := s.backup()
	if err != nil {
		return err
	}
	doc, err := s.store.Load()
	if err != nil {
		return err
	}
	data, err := registry.Encode(doc)
	if err != nil {
		return err
	}
	if g.DryRun {
		s.log.Infow("[dry-run] would upload registry", "location", b.Location(), "servers", len(doc.Servers))
		return nil
	}
	snapshot, err := b.Push(ctx, data)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "registry backed up to %s (snapshot %s)\n", b.Location(), snapshot)
	return nil
}

// RegistryRestore replaces the local registry with the backup, or with a
// specific snapshot key.
func RegistryRestore(ctx context.Context, g Globals, key string) error {
	s, err := open(g)
	if err != nil {
		return err
	}
	defer s.close()

	b, err := s.backup()
	if err != nil {
		return err
	}
	data, err := b.Pull(ctx, key)
	if err != nil {
		return err
	}
	doc, err := registry.Decode(data)
	if err != nil {
		return fmt.Errorf("backup is not a valid registry: %w", err)
	}
	if err := s.store.Save(doc); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "registry restored: %d servers, %d ddns entries\n", len(doc.Servers), len(doc.DDNSEntries))
	return nil
}
