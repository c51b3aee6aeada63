package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/sandeepkv93/remindd/internal/model"
)

const exportStampLayout = "20060102-150405"

// ExportSnapshot writes a pretty-printed, timestamp-named copy of the
// collection to dir and returns the written path. It is a read-only
// snapshot export and never touches the store.
func ExportSnapshot(tasks []model.Task, dir string, now time.Time) (string, error) {
	if tasks == nil {
		tasks = []model.Task{}
	}
	payload, err := json.MarshalIndent(tasks, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode export: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("tasks-%s.json", now.Format(exportStampLayout)))
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, append(payload, '\n'), 0o644); err != nil {
		return "", err
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", err
	}
	return path, nil
}
