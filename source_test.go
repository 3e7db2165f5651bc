package mdmath

// Notes:
// - File mode preservation is skipped on windows, where only the read-only
//   bit is honored.
// - The symlink case skips where the OS refuses to create links.

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// TestFileSource - Disk-backed documents
// ---------------------------------------------------------------------------

func TestFileSource_ReadWrite(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "notes.md")
	if err := os.WriteFile(path, []byte("before"), 0o640); err != nil {
		t.Fatal(err)
	}

	src := &FileSource{Path: path}
	got, err := src.Read()
	if err != nil || got != "before" {
		t.Fatalf("Read() = %q, %v", got, err)
	}

	if err := src.Write("after"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "after" {
		t.Errorf("content = %q, want %q", data, "after")
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(path)
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm() != 0o640 {
			t.Errorf("mode = %v, want 0640", info.Mode().Perm())
		}
	}

	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("directory has %d entries, want only the document", len(entries))
	}
}

func TestFileSource_WriteThroughSymlink(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	target := filepath.Join(dir, "real.md")
	if err := os.WriteFile(target, []byte("before"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "link.md")
	if err := os.Symlink(target, link); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	if err := (&FileSource{Path: link}).Write("after"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	info, err := os.Lstat(link)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		t.Errorf("%s is no longer a symlink (mode %v)", link, info.Mode())
	}
	data, err := os.ReadFile(target)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "after" {
		t.Errorf("target content = %q, want %q", data, "after")
	}
}

func TestFileSource_Missing(t *testing.T) {
	t.Parallel()

	src := &FileSource{Path: filepath.Join(t.TempDir(), "missing.md")}

	if _, err := src.Read(); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Read() error = %v, want os.ErrNotExist", err)
	}
	if err := src.Write("x"); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Write() error = %v, want os.ErrNotExist", err)
	}
}

// ---------------------------------------------------------------------------
// TestConvertDocument - In-place conversion
// ---------------------------------------------------------------------------

func TestConvertDocument(t *testing.T) {
	t.Parallel()

	src := NewMemorySource("see $`x`$")

	changed, err := ConvertDocument(src, ToUsual)
	if err != nil {
		t.Fatalf("ConvertDocument() error = %v", err)
	}
	if !changed {
		t.Error("changed = false, want true")
	}
	if src.Text() != "see $x$" {
		t.Errorf("text = %q, want %q", src.Text(), "see $x$")
	}

	changed, err = ConvertDocument(src, ToUsual)
	if err != nil {
		t.Fatalf("ConvertDocument() error = %v", err)
	}
	if changed {
		t.Error("second conversion changed = true, want false")
	}
	if src.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1 (unchanged text is not written)", src.Writes())
	}
}

// failingSource fails reads or writes on demand.
type failingSource struct {
	MemorySource
	readErr  error
	writeErr error
}

func (s *failingSource) Read() (string, error) {
	if s.readErr != nil {
		return "", s.readErr
	}
	return s.MemorySource.Read()
}

func (s *failingSource) Write(text string) error {
	if s.writeErr != nil {
		return s.writeErr
	}
	return s.MemorySource.Write(text)
}

func TestConvertDocument_Errors(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk gone")

	readFail := &failingSource{readErr: errDisk}
	if _, err := ConvertDocument(readFail, ToUsual); !errors.Is(err, errDisk) {
		t.Errorf("read failure error = %v, want %v", err, errDisk)
	}

	writeFail := &failingSource{MemorySource: MemorySource{text: "$`x`$"}, writeErr: errDisk}
	if _, err := ConvertDocument(writeFail, ToUsual); !errors.Is(err, errDisk) {
		t.Errorf("write failure error = %v, want %v", err, errDisk)
	}
}

// ---------------------------------------------------------------------------
// TestRenderDocument - Convert, render, restore
// ---------------------------------------------------------------------------

// recordingRenderer captures what it was asked to render.
type recordingRenderer struct {
	markdown string
	name     string
	err      error
	kept     []string
}

func (r *recordingRenderer) Render(_ context.Context, markdown, name string) (*Artifact, error) {
	r.markdown = markdown
	r.name = name
	if r.err != nil {
		return nil, r.err
	}
	return &Artifact{Path: "/tmp/" + name + ".pdf", Format: FormatPDF}, nil
}

func (r *recordingRenderer) Keep(path string) { r.kept = append(r.kept, path) }
func (r *recordingRenderer) Close() error     { return nil }

func TestRenderDocument(t *testing.T) {
	t.Parallel()

	original := "# T\n\n```math\nx^2\n```\n\nInline $`y`$.\n"
	src := NewMemorySource(original)
	r := &recordingRenderer{}

	art, err := RenderDocument(context.Background(), src, r, "notes")
	if err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	if art.Format != FormatPDF {
		t.Errorf("Format = %q, want pdf", art.Format)
	}

	if strings.Contains(r.markdown, "```math") || !strings.Contains(r.markdown, "$$\nx^2\n$$") {
		t.Errorf("renderer got %q, want usual dialect", r.markdown)
	}
	if r.name != "notes" {
		t.Errorf("renderer name = %q, want notes", r.name)
	}
	if src.Text() != original {
		t.Errorf("source after render = %q, want restored %q", src.Text(), original)
	}
	if src.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2 (convert and restore)", src.Writes())
	}
}

func TestRenderDocument_RestoresOnRenderError(t *testing.T) {
	t.Parallel()

	original := "```math\nx\n```"
	src := NewMemorySource(original)
	r := &recordingRenderer{err: ErrFallbackFailed}

	_, err := RenderDocument(context.Background(), src, r, "doc")
	if !errors.Is(err, ErrFallbackFailed) {
		t.Fatalf("RenderDocument() error = %v, want %v", err, ErrFallbackFailed)
	}
	if src.Text() != original {
		t.Errorf("source = %q, want restored %q", src.Text(), original)
	}
}

func TestRenderDocument_RestoreFailureJoined(t *testing.T) {
	t.Parallel()

	errLocked := errors.New("locked")
	src := &restoreFailingSource{MemorySource: MemorySource{text: "```math\nx\n```"}, failAfter: 1, err: errLocked}
	r := &recordingRenderer{err: ErrPDFFailed}

	_, err := RenderDocument(context.Background(), src, r, "doc")
	if !errors.Is(err, ErrPDFFailed) || !errors.Is(err, errLocked) {
		t.Errorf("RenderDocument() error = %v, want both render and restore errors", err)
	}
}

// restoreFailingSource accepts failAfter writes, then fails.
type restoreFailingSource struct {
	MemorySource
	failAfter int
	err       error
}

func (s *restoreFailingSource) Write(text string) error {
	if s.Writes() >= s.failAfter {
		return s.err
	}
	return s.MemorySource.Write(text)
}

func TestRenderDocument_UsualSourceNotRewrittenBeforeRender(t *testing.T) {
	t.Parallel()

	// Already in the usual dialect: nothing to write before rendering,
	// and restoring converts it to the GitHub dialect.
	src := NewMemorySource("$$\nx\n$$")
	r := &recordingRenderer{}

	if _, err := RenderDocument(context.Background(), src, r, "doc"); err != nil {
		t.Fatalf("RenderDocument() error = %v", err)
	}
	if r.markdown != "$$\nx\n$$" {
		t.Errorf("renderer got %q", r.markdown)
	}
	if src.Text() != "```math\nx\n```" {
		t.Errorf("source = %q, want GitHub dialect", src.Text())
	}
	if src.Writes() != 1 {
		t.Errorf("Writes() = %d, want 1", src.Writes())
	}
}

func TestRenderDocument_ReadError(t *testing.T) {
	t.Parallel()

	errDisk := errors.New("disk gone")
	r := &recordingRenderer{}

	_, err := RenderDocument(context.Background(), &failingSource{readErr: errDisk}, r, "doc")
	if !errors.Is(err, errDisk) {
		t.Errorf("RenderDocument() error = %v, want %v", err, errDisk)
	}
	if r.markdown != "" {
		t.Error("renderer called despite read failure")
	}
}
