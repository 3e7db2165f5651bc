package mdmath

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// DocumentSource reads and replaces the full text of one document.
// FileSource backs it with a file; MemorySource stands in for an editor buffer.
type DocumentSource interface {
	Read() (string, error)
	Write(text string) error
}

// Compile-time interface checks
var (
	_ DocumentSource = (*FileSource)(nil)
	_ DocumentSource = (*MemorySource)(nil)
)

// FileSource is a UTF-8 document on disk.
type FileSource struct {
	Path string
}

// Read returns the file content.
func (s *FileSource) Read() (string, error) {
	data, err := os.ReadFile(s.Path) // #nosec G304 -- path is user-provided
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Write replaces the file content. The new content goes to a temporary file
// in the same directory which is then renamed over the original, so readers
// never observe a partial document. The original file mode is kept, and a
// symlinked path is written through to its target so the link survives.
func (s *FileSource) Write(text string) error {
	target, err := filepath.EvalSymlinks(s.Path)
	if err != nil {
		return err
	}
	info, err := os.Stat(target)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(target), ".mdmath-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.WriteString(text); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", s.Path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, info.Mode().Perm()); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("setting file mode: %w", err)
	}
	if err := os.Rename(tmpPath, target); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("replacing %s: %w", s.Path, err)
	}
	return nil
}

// MemorySource is an in-memory document, safe for concurrent use.
type MemorySource struct {
	mu     sync.Mutex
	text   string
	writes int
}

// NewMemorySource returns a MemorySource holding text.
func NewMemorySource(text string) *MemorySource {
	return &MemorySource{text: text}
}

// Read returns the current text.
func (s *MemorySource) Read() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text, nil
}

// Write replaces the current text.
func (s *MemorySource) Write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
	s.writes++
	return nil
}

// Text returns the current text.
func (s *MemorySource) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

// Writes returns how many times Write was called.
func (s *MemorySource) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// ConvertDocument converts src in place. The source is written only when the
// conversion changed its text; changed reports whether it did.
func ConvertDocument(src DocumentSource, dir Direction) (changed bool, err error) {
	return convertSource(src, dir, true)
}

func convertSource(src DocumentSource, dir Direction, write bool) (bool, error) {
	text, err := src.Read()
	if err != nil {
		return false, fmt.Errorf("reading document: %w", err)
	}

	converted := Convert(text, dir)
	if converted == text {
		return false, nil
	}

	if write {
		if err := src.Write(converted); err != nil {
			return false, fmt.Errorf("writing document: %w", err)
		}
	}
	return true, nil
}

// RenderDocument renders src through r. The source is converted to the usual
// dialect first, the renderer receives that text, and afterwards the source is
// converted back to the GitHub dialect. The restore runs on every exit path
// once the first conversion was written; a restore failure is joined with the
// render error.
//
// name identifies the document for the renderer, usually its file path.
func RenderDocument(ctx context.Context, src DocumentSource, r Renderer, name string) (art *Artifact, err error) {
	text, err := src.Read()
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	usual := Convert(text, ToUsual)
	if usual != text {
		if err := src.Write(usual); err != nil {
			return nil, fmt.Errorf("writing document: %w", err)
		}
	}

	defer func() {
		restored := Convert(usual, ToGithub)
		if restored == usual {
			return
		}
		if werr := src.Write(restored); werr != nil {
			err = errors.Join(err, fmt.Errorf("restoring document: %w", werr))
		}
	}()

	return r.Render(ctx, usual, name)
}
