package file_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/cairn/pkg/adapters/file"
	"github.com/aretw0/cairn/pkg/domain"
	"github.com/aretw0/cairn/pkg/ports"
)

func TestFileRecordStore_Contract(t *testing.T) {
	ports.RunRecordStoreContract(t, file.NewRecordStore(t.TempDir()))
}

func TestFileResultStore_Contract(t *testing.T) {
	ports.RunResultStoreContract(t, file.NewResultStore(t.TempDir()))
}

func TestFileRecordStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	store := file.NewRecordStore(dir)
	ctx := context.Background()

	if err := store.Save(ctx, "broken", &domain.RunRecord{Fingerprint: "fp", Status: domain.StatusOK}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644); err != nil {
		t.Fatalf("failed to corrupt file: %v", err)
	}

	_, err := store.Load(ctx, "broken")
	if !errors.Is(err, domain.ErrRecordCorrupt) {
		t.Fatalf("expected ErrRecordCorrupt, got %v", err)
	}
}

func TestFileStores_RejectUnsafeNames(t *testing.T) {
	root := t.TempDir()
	base := filepath.Join(root, "state")
	ctx := context.Background()

	// A file outside the store directory that a traversal name would reach.
	victim := filepath.Join(root, "victim.json")
	if err := os.WriteFile(victim, []byte("{}"), 0644); err != nil {
		t.Fatalf("failed to plant file: %v", err)
	}

	records := file.NewRecordStore(base)
	results := file.NewResultStore(base)

	for _, name := range []string{"../victim", "a/b", ".hidden", ""} {
		if err := records.Save(ctx, name, &domain.RunRecord{Fingerprint: "fp"}); err == nil {
			t.Errorf("Save accepted name %q", name)
		}
		if _, err := records.Load(ctx, name); err == nil {
			t.Errorf("Load accepted name %q", name)
		}
		if err := records.Delete(ctx, name); err == nil {
			t.Errorf("record Delete accepted name %q", name)
		}
		if err := results.Put(ctx, name, 1); err == nil {
			t.Errorf("Put accepted name %q", name)
		}
		if _, err := results.Get(ctx, name); err == nil {
			t.Errorf("Get accepted name %q", name)
		}
		if err := results.Delete(ctx, name); err == nil {
			t.Errorf("result Delete accepted name %q", name)
		}
	}

	if _, err := os.Stat(victim); err != nil {
		t.Errorf("file outside the store directory was removed: %v", err)
	}
}

func TestFileResultStore_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	if err := file.NewResultStore(dir).Put(ctx, "accuracy", 0.96); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	// A fresh store over the same directory must see the value.
	value, err := file.NewResultStore(dir).Get(ctx, "accuracy")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != 0.96 {
		t.Errorf("expected 0.96, got %v", value)
	}
}
