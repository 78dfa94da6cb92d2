package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/imamik/emc/internal/errs"
)

// Store loads and saves a Document.
type Store interface {
	// Load returns the current document, creating an empty one on first use.
	Load() (*Document, error)
	// Save replaces the stored document with doc.
	Save(doc *Document) error
}

// FileStore keeps the document as indented JSON in a single file.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file.
func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Load() (*Document, error) {
	doc, found, err := s.read()
	if err != nil {
		return nil, err
	}
	if !found {
		if err := s.Save(doc); err != nil {
			return nil, err
		}
	}
	return doc, nil
}

// Read returns the stored document, or an empty one when there is no file
// yet. It never writes.
func (s *FileStore) Read() (*Document, error) {
	doc, _, err := s.read()
	return doc, err
}

func (s *FileStore) read() (*Document, bool, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return New(), false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read registry %s: %w", s.path, err)
	}
	doc, err := Decode(data)
	if err != nil {
		return nil, false, fmt.Errorf("failed to parse registry %s: %w", s.path, err)
	}
	return doc, true, nil
}

// Save writes doc to a temporary file next to the target and renames it
// into place, so a crash never leaves a truncated registry behind.
func (s *FileStore) Save(doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create registry directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".emc-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temporary registry file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write registry: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to sync registry: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close registry: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("failed to replace registry: %w", err)
	}
	return nil
}

// MemoryStore holds the document in memory. Dry runs use one seeded from
// the real registry so nothing is written to disk.
type MemoryStore struct {
	data []byte
}

// NewMemoryStore returns a store holding a copy of seed, or an empty
// document if seed is nil.
func NewMemoryStore(seed *Document) (*MemoryStore, error) {
	if seed == nil {
		seed = New()
	}
	data, err := Encode(seed)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{data: data}, nil
}

func (s *MemoryStore) Load() (*Document, error) {
	return Decode(s.data)
}

func (s *MemoryStore) Save(doc *Document) error {
	data, err := Encode(doc)
	if err != nil {
		return err
	}
	s.data = data
	return nil
}

// Encode renders doc as indented JSON. Key material is base64 encoded.
func Encode(doc *Document) ([]byte, error) {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode registry: %w", err)
	}
	return append(data, '\n'), nil
}

// legacyHeader is the version key of registries written by legacy emc releases.
type legacyHeader struct {
	Version json.RawMessage `json:"EMC_VERSION"`
}

// Decode parses a document. Unknown fields are ignored so that newer
// registries stay readable. A legacy registry is refused.
func Decode(data []byte) (*Document, error) {
	var legacy legacyHeader
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}
	if len(legacy.Version) > 0 {
		return nil, errs.New(errs.Internal,
			"registry was written by a legacy emc release (EMC_VERSION %s) and cannot be read; "+
				"terminate its servers with that tool, then move the file aside", legacy.Version)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode registry: %w", err)
	}
	doc.normalize()
	return &doc, nil
}
