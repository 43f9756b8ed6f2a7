package normalize

import (
	"path/filepath"
	"sort"
	"strings"
)

// Fallback labels for paths that do not follow the session-log layout.
const (
	UnknownProject = "Unknown Project"
	UnknownSession = "unknown"
)

// ParseSessionPath recovers the encoded project name and session id from a
// log file path following root/<encoded-project>/<session-id>.jsonl. The
// session id is the filename stem; the project name is the first path
// segment under the containing root. Paths outside every root, or with too
// few segments, fall back to the sentinel labels.
func ParseSessionPath(path string, roots []string) (string, string) {
	cleaned := filepath.Clean(path)

	for _, root := range roots {
		if root == "" {
			continue
		}
		rel, err := filepath.Rel(filepath.Clean(root), cleaned)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}

		segments := strings.Split(rel, string(filepath.Separator))
		if len(segments) < 2 {
			continue
		}

		base := segments[len(segments)-1]
		sessionId := strings.TrimSuffix(base, filepath.Ext(base))
		return segments[0], sessionId
	}

	return UnknownProject, UnknownSession
}

// StripProjectPrefixes removes the first matching configured prefix from an
// encoded project name, longest prefix first so overlapping prefixes behave
// deterministically. Stripping never reduces a name to empty.
func StripProjectPrefixes(name string, prefixes []string) string {
	if name == "" || len(prefixes) == 0 {
		return name
	}

	ordered := make([]string, len(prefixes))
	copy(ordered, prefixes)
	sort.SliceStable(ordered, func(i, j int) bool {
		return len(ordered[i]) > len(ordered[j])
	})

	for _, prefix := range ordered {
		if prefix == "" {
			continue
		}
		if strings.HasPrefix(name, prefix) && len(name) > len(prefix) {
			return name[len(prefix):]
		}
	}
	return name
}
