package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFiles(t *testing.T, paths ...string) {
	t.Helper()
	for _, path := range paths {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll() error = %v", err)
		}
		if err := os.WriteFile(path, []byte("test"), 0o600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}
}

func TestExpandPaths(t *testing.T) {
	dir := t.TempDir()

	fileA := filepath.Join(dir, "a.log")
	fileB := filepath.Join(dir, "b.log")
	fileC := filepath.Join(dir, "c.txt")
	writeFiles(t, fileA, fileB, fileC)

	files, err := ExpandPaths([]string{filepath.Join(dir, "*.log")})
	if err != nil {
		t.Fatalf("ExpandPaths() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}

	files, err = ExpandPaths([]string{fileA, filepath.Join(dir, "*.log")})
	if err != nil {
		t.Fatalf("ExpandPaths() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
}

func TestExpandPathsDirectory(t *testing.T) {
	dir := t.TempDir()
	round := filepath.Join(dir, "round-1")
	writeFiles(t,
		filepath.Join(round, "game.log"),
		filepath.Join(round, "runtime.log"),
		filepath.Join(round, "nested", "qdel.log"),
	)

	files, err := ExpandPaths([]string{round, filepath.Join(round, "game.log")})
	if err != nil {
		t.Fatalf("ExpandPaths() error = %v", err)
	}

	want := []string{filepath.Join(round, "game.log"), filepath.Join(round, "runtime.log")}
	if len(files) != len(want) {
		t.Fatalf("ExpandPaths() = %v, want %v", files, want)
	}
	for i := range want {
		if files[i] != want[i] {
			t.Errorf("files[%d] = %q, want %q", i, files[i], want[i])
		}
	}
}

func TestExpandPathsErrors(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name string
		args []string
	}{
		{name: "no args", args: nil},
		{name: "unmatched glob", args: []string{filepath.Join(dir, "*.missing")}},
		{name: "missing file", args: []string{filepath.Join(dir, "missing.log")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ExpandPaths(tt.args); err == nil {
				t.Fatal("ExpandPaths() error = nil, want error")
			}
		})
	}
}
