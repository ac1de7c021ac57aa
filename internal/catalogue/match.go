package catalogue

import (
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

// matchPattern matches a slash-separated relative path. A leading "**/"
// matches at any depth.
func matchPattern(pattern, rel string) (bool, error) {
	if rest, ok := strings.CutPrefix(pattern, "**/"); ok {
		parts := strings.Split(rel, "/")
		for i := range parts {
			matched, err := path.Match(rest, strings.Join(parts[i:], "/"))
			if err != nil || matched {
				return matched, err
			}
		}
		return false, nil
	}
	return path.Match(pattern, rel)
}

// findFiles returns the regular files under dir whose relative path matches
// pattern, as slash-separated paths relative to dir in lexical order.
func findFiles(dir, pattern string) ([]string, error) {
	var matches []string

	err := filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		matched, err := matchPattern(pattern, rel)
		if err != nil {
			return err
		}
		if matched {
			matches = append(matches, rel)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return matches, nil
}

// findRunDirs returns the directories under simDir matching pattern,
// relative to simDir and sorted.
func findRunDirs(simDir, pattern string) ([]string, error) {
	candidates, err := filepath.Glob(filepath.Join(simDir, filepath.FromSlash(pattern)))
	if err != nil {
		return nil, err
	}

	var dirs []string
	for _, c := range candidates {
		info, err := os.Stat(c)
		if err != nil || !info.IsDir() {
			continue
		}
		rel, err := filepath.Rel(simDir, c)
		if err != nil {
			return nil, err
		}
		dirs = append(dirs, filepath.ToSlash(rel))
	}
	sort.Strings(dirs)
	return dirs, nil
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}
