package dataset

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/titanicprep/internal/table"
)

// Persist writes t to path as CSV: header row of column names, one record
// per row, no index column.
//
// The file is written next to path under a temporary name and renamed into
// place, so readers of path see either the previous file or the complete
// new one. A failed write leaves the previous file untouched.
func Persist(t *table.Table, path string) error {
	return writeFileAtomic(path, t.WriteCSV)
}

func writeFileAtomic(path string, write func(io.Writer) error) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(tmp)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	// CreateTemp uses 0600; match os.Create.
	if err := f.Chmod(0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
