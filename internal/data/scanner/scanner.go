// Package scanner discovers JSONL usage logs under the configured roots.
package scanner

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/penwyp/go-claude-usage/internal/util"
)

// FileScanner walks one or more root directories looking for .jsonl
// files. Roots that do not exist are skipped; so is any path the walk
// cannot read.
type FileScanner struct {
	roots []string
}

// NewFileScanner creates a scanner over the given roots.
func NewFileScanner(roots ...string) *FileScanner {
	return &FileScanner{roots: roots}
}

// Roots returns the configured root directories.
func (s *FileScanner) Roots() []string {
	return s.roots
}

// Scan returns every .jsonl file under the roots, deduplicated and
// sorted. The suffix match is case-insensitive.
func (s *FileScanner) Scan() []string {
	start := time.Now()
	seen := make(map[string]struct{})
	var files []string
	dirCount := 0
	totalCount := 0

	for _, root := range s.roots {
		if _, err := os.Stat(root); err != nil {
			util.LogDebug(fmt.Sprintf("Skip missing root: %s - %v", root, err))
			continue
		}

		util.LogDebug(fmt.Sprintf("Start scanning directory: %s", root))

		filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				util.LogDebug(fmt.Sprintf("Skip file (error): %s - %v", path, err))
				return nil
			}

			if info.IsDir() {
				dirCount++
				return nil
			}

			totalCount++
			if strings.HasSuffix(strings.ToLower(path), ".jsonl") {
				if _, dup := seen[path]; !dup {
					seen[path] = struct{}{}
					files = append(files, path)
				}
			}

			return nil
		})
	}

	sort.Strings(files)

	duration := time.Since(start)
	util.LogDebug(fmt.Sprintf("File scan completed: duration %v, scanned %d directories, %d files, found %d JSONL files",
		duration, dirCount, totalCount, len(files)))

	return files
}
