package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// scanInputFiles expands paths into a deterministic list of regular
// files. Directories are walked recursively; the result is sorted so
// every command that feeds a corpus from disk sees the same order.
func scanInputFiles(paths ...string) ([]string, error) {
	var files []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			return nil, fmt.Errorf("accessing %q: %w", p, err)
		}
		if !info.IsDir() {
			files = append(files, p)
			continue
		}
		err = filepath.Walk(p, func(path string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if !fi.IsDir() {
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walking %q: %w", p, err)
		}
	}
	sort.Strings(files)
	return files, nil
}
