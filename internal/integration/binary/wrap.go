package binary

import (
	"os/exec"
	"sync"
)

type lookup struct {
	path  string
	found bool
}

// lookups caches PATH resolution per tool name. The batch walker
// re-checks its tools for every file it maps; the answer cannot
// change mid-run.
var lookups sync.Map //nolint:gochecknoglobals

// Available resolves a binary on the system PATH, caching the result
// per name.
func Available(binName string) (string, bool) {
	if cached, ok := lookups.Load(binName); ok {
		if hit, ok := cached.(lookup); ok {
			return hit.path, hit.found
		}
	}

	path, err := exec.LookPath(binName)
	entry := lookup{path: path, found: err == nil}
	lookups.Store(binName, entry)

	return entry.path, entry.found
}
