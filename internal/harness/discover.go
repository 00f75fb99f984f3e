package harness

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ScenarioNotFoundError is returned when a scenario path doesn't exist or
// holds no scenario files.
type ScenarioNotFoundError struct {
	Path   string
	Reason string
}

// Error implements the error interface.
func (e *ScenarioNotFoundError) Error() string {
	return fmt.Sprintf("no scenarios at %s: %s", e.Path, e.Reason)
}

// FindScenarios resolves path to scenario files.
//
// A file is returned as is. A directory is walked recursively for .yaml
// and .yml files, returned in lexical order. Directories named testdata
// are skipped, as are files whose first key is not "name:" (definition
// files kept next to scenarios).
func FindScenarios(path string) ([]string, error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil, &ScenarioNotFoundError{Path: path, Reason: "path does not exist"}
	}
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var found []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != path && d.Name() == "testdata" {
				return filepath.SkipDir
			}
			return nil
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".yaml", ".yml":
		default:
			return nil
		}
		ok, err := looksLikeScenario(p)
		if err != nil {
			return err
		}
		if ok {
			found = append(found, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", path, err)
	}

	if len(found) == 0 {
		return nil, &ScenarioNotFoundError{Path: path, Reason: "directory holds no scenario files"}
	}
	sort.Strings(found)
	return found, nil
}

// looksLikeScenario reports whether the YAML file is a mapping whose first
// key is name. Definition files are lists.
func looksLikeScenario(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || line == "---" {
			continue
		}
		return strings.HasPrefix(line, "name:"), nil
	}
	return false, nil
}
