// Package fileutil provides file and path helpers, including the tracked
// temporary file set owned by the render engines.
package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Sentinel errors for file utility operations.
var (
	ErrExtensionEmpty         = errors.New("extension cannot be empty")
	ErrExtensionPathTraversal = errors.New("extension contains path separator or null byte")
)

// tempPattern prefixes every temporary file this module creates.
const tempPattern = "mdmath-*."

// WriteTempFile creates a temporary file with the given content and extension.
// Returns the file path and a cleanup function to remove the file.
func WriteTempFile(content, extension string) (path string, cleanup func(), err error) {
	if err := ValidateExtension(extension); err != nil {
		return "", nil, err
	}

	tmpFile, err := os.CreateTemp("", tempPattern+extension)
	if err != nil {
		return "", nil, fmt.Errorf("creating temp file: %w", err)
	}

	path = tmpFile.Name()
	cleanup = func() { _ = os.Remove(path) }

	if _, writeErr := tmpFile.WriteString(content); writeErr != nil {
		_ = tmpFile.Close()
		cleanup()
		return "", nil, fmt.Errorf("writing temp file: %w", writeErr)
	}

	if closeErr := tmpFile.Close(); closeErr != nil {
		cleanup()
		return "", nil, fmt.Errorf("closing temp file: %w", closeErr)
	}

	return path, cleanup, nil
}

// TempSet tracks temporary paths and removes them all on Cleanup.
// The zero value is ready to use and safe for concurrent use.
type TempSet struct {
	mu    sync.Mutex
	paths []string
}

// Write creates a tracked temporary file with the given content and extension.
func (s *TempSet) Write(content, extension string) (string, error) {
	path, _, err := WriteTempFile(content, extension)
	if err != nil {
		return "", err
	}
	s.Track(path)
	return path, nil
}

// Track registers path for removal. Tracking a path twice is a no-op.
func (s *TempSet) Track(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !slices.Contains(s.paths, path) {
		s.paths = append(s.paths, path)
	}
}

// Untrack stops tracking path so Cleanup leaves it on disk.
// Reports whether the path was tracked.
func (s *TempSet) Untrack(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.paths, path)
	if i < 0 {
		return false
	}
	s.paths = slices.Delete(s.paths, i, i+1)
	return true
}

// Paths returns a copy of the tracked paths in tracking order.
func (s *TempSet) Paths() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return slices.Clone(s.paths)
}

// Cleanup removes every tracked path and forgets them.
// Paths already gone are not an error; other failures are joined.
func (s *TempSet) Cleanup() error {
	s.mu.Lock()
	paths := s.paths
	s.paths = nil
	s.mu.Unlock()

	var errs []error
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ValidateExtension checks that the extension is safe for use in temp file names.
func ValidateExtension(extension string) error {
	if extension == "" {
		return ErrExtensionEmpty
	}
	if strings.ContainsAny(extension, "/\\\x00") {
		return ErrExtensionPathTraversal
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsFilePath returns true if the string looks like a file path rather than a name.
// A string containing path separators (/, \) is treated as a path.
func IsFilePath(s string) bool {
	return strings.ContainsAny(s, "/\\")
}

// HasExtension reports whether the base name of path ends with one of exts.
// The comparison is case-sensitive, so "notes.MD" does not match ".md".
func HasExtension(path string, exts []string) bool {
	name := filepath.Base(path)
	for _, ext := range exts {
		if ext != "" && strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}

// BaseName returns the file name of path without its extension.
func BaseName(path string) string {
	name := filepath.Base(path)
	return strings.TrimSuffix(name, filepath.Ext(name))
}
