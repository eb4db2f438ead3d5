package planstore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/kastheco/arbor/config/planstate"
)

// importNamespace scopes the deterministic ids given to imported snapshot files.
var importNamespace = uuid.MustParse("6f1f3b52-8a47-4c4e-9d35-3b0e8c3f2a10")

// ImportID returns the session id an imported snapshot file gets. The same
// absolute path always maps to the same id, which keeps imports idempotent.
func ImportID(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return uuid.NewSHA1(importNamespace, []byte(abs)).String()
}

// ImportFile reads a snapshot JSON file and stores it as a session. A file
// that was imported before is skipped and returns created=false.
func ImportFile(store Store, path string) (SessionEntry, bool, error) {
	snap, err := planstate.Load(path)
	if err != nil {
		return SessionEntry{}, false, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return SessionEntry{}, false, fmt.Errorf("stat snapshot: %w", err)
	}

	entry := SessionEntry{
		ID:        ImportID(path),
		Goal:      snap.Target,
		Source:    path,
		CreatedAt: info.ModTime(),
		UpdatedAt: info.ModTime(),
		Snapshot:  snap,
	}
	if err := store.Create(entry); err != nil {
		// Skip if already exists (idempotent).
		if strings.Contains(err.Error(), "session already exists") {
			return entry, false, nil
		}
		return SessionEntry{}, false, fmt.Errorf("import %s: %w", path, err)
	}
	return entry, true, nil
}

// ImportDir imports every *.json snapshot in dir (typically .plan_info/).
// A missing dir is a no-op. Returns the number of newly created sessions.
func ImportDir(store Store, dir string) (int, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, fmt.Errorf("list snapshots: %w", err)
	}
	if len(matches) == 0 {
		if _, statErr := os.Stat(dir); errors.Is(statErr, os.ErrNotExist) {
			return 0, nil
		}
	}
	sort.Strings(matches)

	imported := 0
	for _, path := range matches {
		_, created, err := ImportFile(store, path)
		if err != nil {
			return imported, err
		}
		if created {
			imported++
		}
	}
	return imported, nil
}
