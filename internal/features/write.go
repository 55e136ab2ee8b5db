package features

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/spigell/scholar-matcher/internal/dataset"
)

// WriteFile replaces the analytical dataset at path. An exclusive lock on
// path+".lock" keeps concurrent builders from interleaving, and the rows are
// written to a temporary file that is renamed into place.
func WriteFile(ctx context.Context, path string, rows []dataset.ProfileFeatures) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, 200*time.Millisecond)
	if err != nil {
		return fmt.Errorf("locking %q: %w", path, err)
	}
	if !locked {
		return fmt.Errorf("locking %q: lock is held by another process", path)
	}
	defer lock.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temporary dataset: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := dataset.WriteFeatures(tmp, rows); err != nil {
		tmp.Close()
		return fmt.Errorf("writing analytical dataset: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("writing analytical dataset: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %q: %w", path, err)
	}
	return nil
}
