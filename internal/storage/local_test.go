package storage

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"curia-backend/internal/config"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s := NewLocalStorage(base)

	path, err := s.Save(ctx, "scholastic", "abc", "../portrait.png", strings.NewReader("png-bytes"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if want := filepath.Join(base, "scholastic", "abc", "portrait.png"); path != want {
		t.Fatalf("expected path %s, got %s", want, path)
	}

	rc, err := s.Open(ctx, path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "png-bytes" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := s.Delete(ctx, path); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := os.Stat(filepath.Dir(path)); !os.IsNotExist(err) {
		t.Fatalf("expected file dir removed, stat err=%v", err)
	}
	// Deleting again is not an error
	if err := s.Delete(ctx, path); err != nil {
		t.Fatalf("second delete: %v", err)
	}
}

func TestNew_Drivers(t *testing.T) {
	ctx := context.Background()

	fs, err := New(ctx, config.StorageConfig{Driver: "local", LocalPath: t.TempDir()})
	if err != nil {
		t.Fatalf("local: %v", err)
	}
	if _, ok := fs.(*LocalStorage); !ok {
		t.Fatalf("expected *LocalStorage, got %T", fs)
	}

	if _, err := New(ctx, config.StorageConfig{Driver: "s3"}); err == nil {
		t.Fatal("expected error for s3 without bucket")
	}
	if _, err := New(ctx, config.StorageConfig{Driver: "ftp"}); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}
