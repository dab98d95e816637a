package storage_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"Bt1Arena/storage"
)

func TestSaveWritesFileAndReturnsURL(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewAvatarStore(filepath.Join(dir, "avatars"))

	url, err := store.Save(7, "me.PNG", strings.NewReader("fake image bytes"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	if !strings.HasPrefix(url, storage.UploadedAvatarPrefix) {
		t.Errorf("url = %q, want prefix %q", url, storage.UploadedAvatarPrefix)
	}
	if !strings.HasPrefix(filepath.Base(url), "7-") {
		t.Errorf("filename %q should start with the user id", filepath.Base(url))
	}
	if !strings.HasSuffix(url, ".png") {
		t.Errorf("extension should be lower-cased, got %q", url)
	}

	data, err := os.ReadFile(filepath.Join(dir, "avatars", filepath.Base(url)))
	if err != nil {
		t.Fatalf("reading stored file: %v", err)
	}
	if string(data) != "fake image bytes" {
		t.Error("stored bytes do not match the upload")
	}
}

func TestRemoveOnlyTouchesManagedFiles(t *testing.T) {
	dir := t.TempDir()
	store := storage.NewAvatarStore(dir)

	url, err := store.Save(3, "pic.jpg", strings.NewReader("x"))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	path := filepath.Join(dir, filepath.Base(url))

	// 预设头像指针不在管理目录下，Remove必须不动它
	store.Remove("/avatars/robot.svg")
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("uploaded file should still exist: %v", err)
	}

	store.Remove(url)
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("managed file should be deleted")
	}

	// 重复删除是无害的
	store.Remove(url)
}

func TestIsUploaded(t *testing.T) {
	store := storage.NewAvatarStore(t.TempDir())

	if !store.IsUploaded("/uploads/avatars/1-123.png") {
		t.Error("upload-prefixed path should be recognized as uploaded")
	}
	if store.IsUploaded("/avatars/robot.svg") {
		t.Error("predefined path must not be treated as uploaded")
	}
	if store.IsUploaded("") {
		t.Error("empty pointer must not be treated as uploaded")
	}
}

func TestPredefinedAvatarTable(t *testing.T) {
	if len(storage.PredefinedAvatars) != 8 {
		t.Fatalf("len(PredefinedAvatars) = %d, want 8", len(storage.PredefinedAvatars))
	}

	for _, a := range storage.PredefinedAvatars {
		if !strings.HasPrefix(a.Path, storage.PredefinedAvatarPrefix) {
			t.Errorf("predefined path %q lacks the %q prefix", a.Path, storage.PredefinedAvatarPrefix)
		}
		if !storage.IsPredefinedAvatar(a.Path) {
			t.Errorf("IsPredefinedAvatar(%q) = false for a table entry", a.Path)
		}
	}

	if storage.IsPredefinedAvatar("/avatars/dragon.svg") {
		t.Error("path outside the table must be rejected")
	}
	if storage.IsPredefinedAvatar("/uploads/avatars/1-1.png") {
		t.Error("uploaded path must not count as predefined")
	}
}
