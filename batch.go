package mdmath

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/alnah/go-mdmath/internal/fileutil"
)

// DefaultExtensions are the file suffixes converted when BatchOptions
// names none.
var DefaultExtensions = []string{".md"}

// BatchOptions configures DiscoverMarkdown and ConvertTree.
type BatchOptions struct {
	// Ignore lists directory names pruned during traversal, wherever they
	// appear below a root. The root itself is never pruned.
	Ignore []string

	// Extensions lists file-name suffixes to convert, case-sensitive.
	// Empty means DefaultExtensions.
	Extensions []string

	// Workers bounds concurrent conversions. 0 means ResolveWorkers(0).
	Workers int

	// DryRun converts in memory and reports changes without writing.
	DryRun bool
}

func (o BatchOptions) extensions() []string {
	if len(o.Extensions) == 0 {
		return DefaultExtensions
	}
	return o.Extensions
}

// FileResult is the outcome of converting one file.
type FileResult struct {
	Path    string
	Changed bool
	Err     error
}

// BatchReport collects the outcome of ConvertTree.
// Files are in discovery order, roots in the order given.
type BatchReport struct {
	Files      []FileResult
	RootErrors []error
}

// Processed returns the number of files converted without error.
func (r *BatchReport) Processed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil {
			n++
		}
	}
	return n
}

// Changed returns the number of files whose content changed.
func (r *BatchReport) Changed() int {
	n := 0
	for _, f := range r.Files {
		if f.Err == nil && f.Changed {
			n++
		}
	}
	return n
}

// Failed returns the number of files that could not be converted.
func (r *BatchReport) Failed() int {
	return len(r.Files) - r.Processed()
}

// Err joins root errors and per-file errors, or returns nil.
func (r *BatchReport) Err() error {
	errs := slices.Clone(r.RootErrors)
	for _, f := range r.Files {
		if f.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Path, f.Err))
		}
	}
	return errors.Join(errs...)
}

// DiscoverMarkdown lists the files under root to convert, in lexical walk
// order. Directories whose name is in opts.Ignore are skipped with their
// contents. Regular files and symlinks to regular files are kept when their
// name ends with one of the extensions; directory links are not followed.
// A root that is itself a regular file is returned as is,
// whatever its extension.
//
// An unreadable subdirectory does not stop the walk: the files found are
// returned together with the joined errors.
func DiscoverMarkdown(root string, opts BatchOptions) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if info.Mode().IsRegular() {
		return []string{root}, nil
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a regular file or directory", root)
	}

	exts := opts.extensions()
	var files []string
	var errs []error

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			errs = append(errs, err)
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if path != root && slices.Contains(opts.Ignore, d.Name()) {
				return fs.SkipDir
			}
			return nil
		}
		if fileutil.HasExtension(path, exts) && isRegularTarget(path, d) {
			files = append(files, path)
		}
		return nil
	})
	if walkErr != nil {
		errs = append(errs, walkErr)
	}

	return files, errors.Join(errs...)
}

// isRegularTarget reports whether d is a regular file or a symlink to one.
// Links to directories are not followed.
func isRegularTarget(path string, d fs.DirEntry) bool {
	if d.Type().IsRegular() {
		return true
	}
	if d.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// fileKey identifies the document behind path, resolving symlinks.
func fileKey(path string) string {
	if resolved, err := filepath.EvalSymlinks(path); err == nil {
		return resolved
	}
	return filepath.Clean(path)
}

// ConvertTree converts every file found under roots to dir using a bounded
// worker pool. Each file is read, converted in memory and written back once,
// only when its content changed.
//
// A root that cannot be walked is recorded in RootErrors and the others are
// still processed; a file that cannot be read or written is recorded in its
// FileResult. Once ctx is done, remaining files fail with ctx.Err().
// A file reached through two roots or through a symlink is converted once.
func ConvertTree(ctx context.Context, roots []string, dir Direction, opts BatchOptions) *BatchReport {
	report := &BatchReport{}

	var files []string
	seen := make(map[string]bool)
	for _, root := range roots {
		found, err := DiscoverMarkdown(root, opts)
		if err != nil {
			report.RootErrors = append(report.RootErrors, fmt.Errorf("%s: %w", root, err))
		}
		for _, f := range found {
			key := fileKey(f)
			if seen[key] {
				continue
			}
			seen[key] = true
			files = append(files, f)
		}
	}

	report.Files = convertFiles(ctx, files, dir, opts)
	return report
}

// convertFiles runs the conversions on a bounded pool. Results keep the
// order of files.
func convertFiles(ctx context.Context, files []string, dir Direction, opts BatchOptions) []FileResult {
	results := make([]FileResult, len(files))
	if len(files) == 0 {
		return results
	}

	workers := min(ResolveWorkers(opts.Workers), len(files))

	jobs := make(chan int, len(files))
	for i := range files {
		jobs <- i
	}
	close(jobs)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = convertFile(ctx, files[i], dir, opts.DryRun)
			}
		}()
	}
	wg.Wait()

	return results
}

func convertFile(ctx context.Context, path string, dir Direction, dryRun bool) FileResult {
	if err := ctx.Err(); err != nil {
		return FileResult{Path: path, Err: err}
	}
	changed, err := convertSource(&FileSource{Path: path}, dir, !dryRun)
	return FileResult{Path: path, Changed: changed, Err: err}
}
