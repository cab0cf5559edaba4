package generator

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/blimu-dev/hookgen/pkg/config"
	"github.com/blimu-dev/hookgen/pkg/generator/emit"
)

// writeFiles writes files below client.OutDir, skipping excluded paths. It
// returns the number of files written.
func writeFiles(client config.Client, files []emit.File) (int, error) {
	written := 0
	for _, f := range files {
		target := filepath.Join(client.OutDir, filepath.FromSlash(f.Path))
		if client.ShouldExcludeFile(target) {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("failed to create directory for %s: %w", f.Path, err)
		}
		if err := os.WriteFile(target, f.Content, 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", f.Path, err)
		}
		written++
	}
	return written, nil
}
