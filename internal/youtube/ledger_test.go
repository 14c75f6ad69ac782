package youtube

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadLedger(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "downloaded.txt")

	content := `youtube dQw4w9WgXcQ
youtube abc123def45

bare-id-line
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	ledger, err := LoadLedger(path)
	if err != nil {
		t.Fatalf("LoadLedger() error = %v", err)
	}

	if ledger.Len() != 3 {
		t.Errorf("Len() = %d, want 3", ledger.Len())
	}
	for _, id := range []string{"dQw4w9WgXcQ", "abc123def45", "bare-id-line"} {
		if !ledger.Has(id) {
			t.Errorf("Has(%q) = false, want true", id)
		}
	}
	if ledger.Has("missing") {
		t.Error("Has(missing) = true, want false")
	}
	if ledger.Path() != path {
		t.Errorf("Path() = %q, want %q", ledger.Path(), path)
	}
}

func TestLoadLedgerMissingFile(t *testing.T) {
	ledger, err := LoadLedger(filepath.Join(t.TempDir(), "downloaded.txt"))
	if err != nil {
		t.Fatalf("LoadLedger() error = %v, want empty ledger for missing file", err)
	}
	if ledger.Len() != 0 {
		t.Errorf("Len() = %d, want 0", ledger.Len())
	}
}

func TestLedgerAdd(t *testing.T) {
	ledger, err := LoadLedger(filepath.Join(t.TempDir(), "downloaded.txt"))
	if err != nil {
		t.Fatal(err)
	}

	if ledger.Has("new-id") {
		t.Fatal("unexpected id before Add")
	}
	ledger.Add("new-id")
	if !ledger.Has("new-id") {
		t.Error("Has() = false after Add")
	}
	if ledger.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ledger.Len())
	}
}

func TestNewAudioDownloaderDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audio")

	downloader, err := NewAudioDownloader(DownloaderConfig{Directory: dir})
	if err != nil {
		t.Fatalf("NewAudioDownloader() error = %v", err)
	}

	if _, err := os.Stat(dir); err != nil {
		t.Errorf("download directory should be created: %v", err)
	}
	if got := downloader.Ledger().Path(); got != filepath.Join(dir, "downloaded.txt") {
		t.Errorf("ledger path = %q, want inside download directory", got)
	}
}

func TestNewAudioDownloaderLoadsExistingLedger(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "downloaded.txt"), []byte("youtube oldvideo123\n"), 0644); err != nil {
		t.Fatal(err)
	}

	downloader, err := NewAudioDownloader(DownloaderConfig{Directory: dir})
	if err != nil {
		t.Fatalf("NewAudioDownloader() error = %v", err)
	}
	if !downloader.Ledger().Has("oldvideo123") {
		t.Error("existing ledger entries should be loaded")
	}
}
