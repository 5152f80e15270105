package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// FindWorkDir locates the working directory for a stage: the nearest ancestor
// of path (including its own directory) containing an entry matching one of
// rootPatterns. If no pattern matches anywhere up the tree, or no patterns
// were configured, the document's own directory is used.
func FindWorkDir(path string, rootPatterns []string) (string, error) {
	dir := filepath.Dir(path)

	if len(rootPatterns) == 0 {
		return dir, nil
	}

	globs := make([]glob.Glob, len(rootPatterns))

	for i, pattern := range rootPatterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return "", fmt.Errorf("failed to compile root pattern '%v': %w", pattern, err)
		}

		globs[i] = g
	}

	for _, candidate := range eachDir(dir) {
		entries, err := os.ReadDir(candidate)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			for _, g := range globs {
				if g.Match(entry.Name()) {
					return candidate, nil
				}
			}
		}
	}

	return dir, nil
}
