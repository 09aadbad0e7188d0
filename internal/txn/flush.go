package txn

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/bindery-dev/bindery/internal/atomicfile"
	"github.com/bindery-dev/bindery/internal/bundle"
)

// flush writes every touched entity and removes every deleted file.
// Runs only when the whole batch validated clean and DryRun is off.
//
// Each file is written atomically (temp + rename), but there is no
// cross-file staging: a crash between files can leave a mix of old and
// new entities on disk. A write failure is fatal and unretried for
// this transaction. The caller is expected to discard its canonical
// state and reload from disk afterwards rather than trusting the
// working copy.
func (b *batch) flush() error {
	entities := make([]*bundle.Entity, 0, len(b.touched))
	for _, e := range b.touched {
		entities = append(entities, e)
	}
	sort.Slice(entities, func(i, j int) bool { return entities[i].FilePath < entities[j].FilePath })

	for _, entity := range entities {
		data, err := entity.Marshal()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Dir(entity.FilePath), 0o755); err != nil {
			return fmt.Errorf("create directory for %s: %w", entity.FilePath, err)
		}
		if err := atomicfile.WriteFile(entity.FilePath, data, 0); err != nil {
			return fmt.Errorf("write %s: %w", entity.FilePath, err)
		}
	}

	paths := make([]string, 0, len(b.deleted))
	for _, path := range b.deleted {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			// Already gone counts as success.
			return fmt.Errorf("delete %s: %w", path, err)
		}
	}

	return nil
}
