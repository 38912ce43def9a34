package report

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const maxSuffix = 1000

// Filename derives the report file name: the first 8 characters of the
// record id for stored records, the current unix milliseconds otherwise.
func Filename(in Input, now time.Time) string {
	if in.Historical() {
		id := in.RecordID
		if len(id) > 8 {
			id = id[:8]
		}
		return fmt.Sprintf("hemoscan-report-%s.txt", id)
	}
	return fmt.Sprintf("hemoscan-report-%d.txt", now.UnixMilli())
}

// Save writes the report for in under dir and returns its path. dir is
// created if needed. An existing file is never replaced; a numeric suffix
// is added instead.
func Save(dir string, in Input, now time.Time) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}

	content := []byte(Generate(in, now))
	name := Filename(in, now)
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)

	for i := 0; i < maxSuffix; i++ {
		candidate := name
		if i > 0 {
			candidate = fmt.Sprintf("%s-%d%s", base, i, ext)
		}
		path := filepath.Join(dir, candidate)

		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if errors.Is(err, fs.ErrExist) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("create report: %w", err)
		}
		if _, err := f.Write(content); err != nil {
			_ = f.Close()
			return "", fmt.Errorf("write report: %w", err)
		}
		if err := f.Close(); err != nil {
			return "", fmt.Errorf("close report: %w", err)
		}
		return path, nil
	}
	return "", fmt.Errorf("save report: %s and %d numbered variants already exist", name, maxSuffix-1)
}
