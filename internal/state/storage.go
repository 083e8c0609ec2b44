package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/tidwall/jsonc"
)

// Storage is the persistence port of the window manager: read once at init,
// written after every change.
type Storage interface {
	Load() (Snapshot, error)
	Save(Snapshot) error
}

// MemoryStore keeps the snapshot in process memory. Used by tests and by
// one-shot commands that must not touch the user's saved desktop.
type MemoryStore struct {
	mu    sync.Mutex
	snap  Snapshot
	saves int
}

// NewMemoryStore returns a store seeded with snap. A zero Snapshot is
// normalized to Empty().
func NewMemoryStore(snap Snapshot) *MemoryStore {
	snap = snap.Clone()
	snap.normalize()
	return &MemoryStore{snap: snap}
}

func (m *MemoryStore) Load() (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap.Clone(), nil
}

func (m *MemoryStore) Save(s Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = s.Clone()
	m.saves++
	return nil
}

// Saves reports how many times Save was called.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("state: CBOR encoder initialization failed: " + err.Error())
	}
}

// FileStore persists the snapshot to a single file. Files ending in .cbor
// are CBOR encoded; anything else is indented JSON, which may carry
// comments when edited by hand.
type FileStore struct {
	path string
}

// NewFileStore returns a store backed by path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) isCBOR() bool {
	return strings.EqualFold(filepath.Ext(f.path), ".cbor")
}

// Load reads the snapshot. A missing file yields Empty().
func (f *FileStore) Load() (Snapshot, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return Empty(), nil
		}
		return Snapshot{}, fmt.Errorf("failed to read desktop state: %w", err)
	}

	var snap Snapshot
	if f.isCBOR() {
		if err := cbor.Unmarshal(data, &snap); err != nil {
			return Snapshot{}, fmt.Errorf("failed to parse desktop state %s: %w", f.path, err)
		}
	} else {
		if err := json.Unmarshal(jsonc.ToJSON(data), &snap); err != nil {
			return Snapshot{}, fmt.Errorf("failed to parse desktop state %s: %w", f.path, err)
		}
	}
	snap.normalize()
	return snap, nil
}

// Save writes the snapshot atomically (temp file + rename).
func (f *FileStore) Save(s Snapshot) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	var data []byte
	var err error
	if f.isCBOR() {
		data, err = cborEnc.Marshal(s)
	} else {
		data, err = json.MarshalIndent(s, "", "  ")
		data = append(data, '\n')
	}
	if err != nil {
		return fmt.Errorf("failed to encode desktop state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*")
	if err != nil {
		return fmt.Errorf("failed to write desktop state: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write desktop state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write desktop state: %w", err)
	}
	if err := os.Chmod(tmpName, 0600); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to write desktop state: %w", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace desktop state: %w", err)
	}
	return nil
}

// Remove deletes the backing file. A missing file is not an error.
func (f *FileStore) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete desktop state: %w", err)
	}
	return nil
}
