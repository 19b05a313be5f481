package seenstore

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoad_MissingFile(t *testing.T) {
	set, err := Load(filepath.Join(t.TempDir(), "seen_urls.json"))
	if err != nil {
		t.Fatalf("Load of missing file should not error, got: %v", err)
	}

	if set.Len() != 0 {
		t.Errorf("Expected empty set, got %d entries", set.Len())
	}
}

func TestLoad_CorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_urls.json")
	if err := os.WriteFile(path, []byte("{truncated"), 0644); err != nil {
		t.Fatalf("Failed to write corrupt file: %v", err)
	}

	set, err := Load(path)
	if err == nil {
		t.Error("Expected error for corrupt file")
	}

	if set == nil || set.Len() != 0 {
		t.Error("Expected usable empty set even when file is corrupt")
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_urls.json")
	firstSeen := time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC)

	set := NewSet()
	set.Add("https://example.gov/rfp/1", firstSeen)
	set.Add("https://example.gov/rfp/2", firstSeen.Add(time.Minute))

	if err := set.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Len() != 2 {
		t.Fatalf("Expected 2 entries, got %d", loaded.Len())
	}

	rec, ok := loaded.Get("https://example.gov/rfp/1")
	if !ok {
		t.Fatal("Expected rfp/1 to be present")
	}

	if !rec.FirstSeenAt.Equal(firstSeen) {
		t.Errorf("FirstSeenAt = %v, want %v", rec.FirstSeenAt, firstSeen)
	}
}

func TestAdd_PreservesFirstSeen(t *testing.T) {
	set := NewSet()
	original := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	set.Add("https://example.gov/rfp/1", original)
	set.Add("https://example.gov/rfp/1", original.Add(48*time.Hour))

	rec, _ := set.Get("https://example.gov/rfp/1")
	if !rec.FirstSeenAt.Equal(original) {
		t.Errorf("Re-adding must not update FirstSeenAt: got %v, want %v", rec.FirstSeenAt, original)
	}

	if set.Len() != 1 {
		t.Errorf("Expected 1 entry, got %d", set.Len())
	}
}

func TestSave_ReplacesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seen_urls.json")
	now := time.Now().UTC()

	first := NewSet()
	first.Add("https://example.gov/rfp/1", now)

	if err := first.Save(path); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	second := NewSet()
	second.Add("https://example.gov/rfp/1", now)
	second.Add("https://example.gov/rfp/2", now)

	if err := second.Save(path); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.Len() != 2 {
		t.Errorf("Expected 2 entries after rewrite, got %d", loaded.Len())
	}

	// No temp files should be left behind
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}

	if len(entries) != 1 {
		t.Errorf("Expected only the seen file in dir, found %d entries", len(entries))
	}
}
