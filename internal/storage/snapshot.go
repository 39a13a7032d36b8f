package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/faelscarpato/capyvision/internal/domain"
)

// SnapshotFile is the single durable key holding the serialized gallery. It
// enforces a byte budget the way a browser profile enforces a local-storage
// quota: a snapshot over budget is rejected with domain.ErrStorageQuota and
// nothing is written.
type SnapshotFile struct {
	path  string
	quota int64
}

// NewSnapshotFile creates the snapshot at path with the given byte budget.
// A quota of 0 disables the budget.
func NewSnapshotFile(path string, quota int64) (*SnapshotFile, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("storage: snapshot path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure snapshot directory: %w", err)
	}
	return &SnapshotFile{path: path, quota: quota}, nil
}

// Save replaces the snapshot atomically. Returns domain.ErrStorageQuota when
// the payload exceeds the budget; the previous snapshot stays intact.
func (s *SnapshotFile) Save(ctx context.Context, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.quota > 0 && int64(len(data)) > s.quota {
		return fmt.Errorf("%w: snapshot is %d bytes, budget %d", domain.ErrStorageQuota, len(data), s.quota)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("storage: replace snapshot: %w", err)
	}
	return nil
}

// Load returns the last saved snapshot, or nil when none exists yet.
func (s *SnapshotFile) Load(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("storage: read snapshot: %w", err)
	}
	return data, nil
}
