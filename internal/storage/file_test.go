package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempFile(t *testing.T) *File {
	t.Helper()
	f, err := NewFile(filepath.Join(t.TempDir(), "notes.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	return f
}

func TestWriteAndRead(t *testing.T) {
	f := tempFile(t)
	content := []byte(`{"a": "b"}`)
	if err := f.Write(content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := f.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestReadMissingIsNotExist(t *testing.T) {
	f := tempFile(t)
	_, err := f.Read()
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want os.ErrNotExist", err)
	}
}

func TestWriteCreatesParentDir(t *testing.T) {
	f, err := NewFile(filepath.Join(t.TempDir(), "a", "b", "notes.json"))
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if err := f.Write([]byte("{}")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if _, err := os.Stat(f.Path()); err != nil {
		t.Errorf("file not created: %v", err)
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	f := tempFile(t)
	_ = f.Write([]byte("original"))
	if err := f.Write([]byte("updated")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := f.Read()
	if string(got) != "updated" {
		t.Errorf("expected updated content, got %q", got)
	}
	matches, _ := filepath.Glob(filepath.Join(filepath.Dir(f.Path()), ".simplenotes-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestWriteFailsWhenParentIsFile(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := WriteFile(filepath.Join(blocker, "notes.json"), []byte("{}")); err == nil {
		t.Error("expected error when parent is a regular file")
	}
}

func TestNewFile_Directory(t *testing.T) {
	if _, err := NewFile(t.TempDir()); err == nil {
		t.Error("expected error when path is a directory")
	}
}

func TestNewFile_Empty(t *testing.T) {
	if _, err := NewFile(""); err == nil {
		t.Error("expected error for empty path")
	}
}

func TestReplaceFileKeepsMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := os.WriteFile(path, []byte("old"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		t.Fatal(err)
	}

	if err := ReplaceFile(path, []byte("new")); err != nil {
		t.Fatalf("ReplaceFile: %v", err)
	}
	data, _ := os.ReadFile(path)
	if string(data) != "new" {
		t.Errorf("content = %q", data)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v, want 0600", info.Mode().Perm())
	}
}

func TestReplaceFileNewFileMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	if err := ReplaceFile(path, []byte("x")); err != nil {
		t.Fatalf("ReplaceFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestReplaceFileMissingDirFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	if err := ReplaceFile(filepath.Join(dir, "out.txt"), []byte("x")); err == nil {
		t.Fatal("expected error for missing parent directory")
	}
	if _, err := os.Stat(dir); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("parent directory was created, stat err = %v", err)
	}
}

func TestReplaceFileRejectsDirectory(t *testing.T) {
	if err := ReplaceFile(t.TempDir(), []byte("x")); err == nil {
		t.Error("expected error when destination is a directory")
	}
}
