package metrics

import (
	"context"
	"fmt"
	"os"
	"runtime"
)

// SysHealth reports the process and the SQLite database behind it.
type SysHealth struct {
	AllocMB    uint64
	Goroutines int

	// DatabaseBytes counts the main file and its WAL and shared-memory files.
	DatabaseBytes int64
	Users         int64
	Profiles      int64
	Recipes       int64
	SavedMenus    int64
	// FreePages are pages a VACUUM would give back.
	FreePages int64
}

// Health collects the health report. dbPath is the file the store's
// connection was opened on.
func (s *Store) Health(ctx context.Context, dbPath string) (SysHealth, error) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	h := SysHealth{
		AllocMB:       m.Alloc / 1024 / 1024,
		Goroutines:    runtime.NumGoroutine(),
		DatabaseBytes: databaseSize(dbPath),
	}

	err := s.db.QueryRowContext(ctx, `
SELECT
    (SELECT COUNT(*) FROM users),
    (SELECT COUNT(*) FROM profiles),
    (SELECT COUNT(*) FROM recipes),
    (SELECT COUNT(*) FROM saved_menus)`).
		Scan(&h.Users, &h.Profiles, &h.Recipes, &h.SavedMenus)
	if err != nil {
		return h, fmt.Errorf("failed to count rows: %w", err)
	}
	if err := s.db.QueryRowContext(ctx, `PRAGMA freelist_count`).Scan(&h.FreePages); err != nil {
		return h, fmt.Errorf("failed to read freelist: %w", err)
	}
	return h, nil
}

func databaseSize(path string) int64 {
	var size int64
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if info, err := os.Stat(p); err == nil {
			size += info.Size()
		}
	}
	return size
}

// HumanBytes formats a byte count with binary units.
func HumanBytes(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
