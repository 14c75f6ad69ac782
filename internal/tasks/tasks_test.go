package tasks

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/octobass-dev/export-apple-music-playlist/internal/match"
	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	tu "github.com/octobass-dev/export-apple-music-playlist/internal/testing"
)

type mockExtractor struct {
	tracks     map[string][]models.Track
	extractErr error
	calls      []string
}

func (m *mockExtractor) Extract(ctx context.Context, playlistURL string) ([]models.Track, error) {
	m.calls = append(m.calls, playlistURL)
	if m.extractErr != nil {
		return nil, m.extractErr
	}
	if tracks, ok := m.tracks[playlistURL]; ok {
		return tracks, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrNoTracks, playlistURL)
}

type mockSearcher struct {
	mu        sync.Mutex
	results   map[string][]models.Candidate
	searchErr error
	calls     int
}

func (m *mockSearcher) Search(ctx context.Context, track models.Track) ([]models.Candidate, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.results[track.Title], nil
}

type mockDownloader struct {
	mu          sync.Mutex
	downloaded  []string
	downloadErr error
	failIDs     map[string]bool
}

func (m *mockDownloader) Download(ctx context.Context, candidate models.Candidate, onProgress func(float64)) error {
	if m.downloadErr != nil {
		return m.downloadErr
	}
	if m.failIDs[candidate.ID] {
		return fmt.Errorf("%w: %s", shared.ErrDownloadFailed, candidate.ID)
	}
	m.mu.Lock()
	m.downloaded = append(m.downloaded, candidate.ID)
	m.mu.Unlock()
	return nil
}

type mockLedger struct {
	ids map[string]bool
}

func (m *mockLedger) Has(id string) bool {
	return m.ids[id]
}

func perfectCandidate(id string, track models.Track) models.Candidate {
	return models.Candidate{
		ID:       id,
		Title:    track.Title,
		Artists:  []string{track.Artist},
		Duration: track.Duration,
	}
}

var (
	trackOne   = models.Track{Title: "Blinding Lights", Artist: "The Weeknd", Duration: 200}
	trackTwo   = models.Track{Title: "Levitating", Artist: "Dua Lipa", Duration: 203}
	trackThree = models.Track{Title: "Save Your Tears", Artist: "The Weeknd", Duration: 215}
)

func newTestEngine(extractor *mockExtractor, searcher *mockSearcher, downloader *mockDownloader, ledger *mockLedger, workers int) *Engine {
	opts := EngineOpts{
		Threshold: match.DefaultThreshold,
		Workers:   workers,
		RateLimit: 1000, // keep tests fast
	}
	if extractor != nil {
		opts.Extractor = extractor
	}
	if searcher != nil {
		opts.Searcher = searcher
	}
	if downloader != nil {
		opts.Downloader = downloader
	}
	if ledger != nil {
		opts.Ledger = ledger
	}
	return NewEngine(opts)
}

func TestExportTracklist(t *testing.T) {
	url := "https://music.apple.com/us/playlist/hits/pl.one"
	extractor := &mockExtractor{tracks: map[string][]models.Track{
		url: {trackOne, trackTwo},
	}}
	engine := newTestEngine(extractor, nil, nil, nil, 1)

	dir := t.TempDir()
	tracklist, path, err := engine.ExportTracklist(context.Background(), nil, url, ExportOpts{CacheDir: dir})
	if err != nil {
		t.Fatalf("ExportTracklist() error = %v", err)
	}

	if tracklist.TotalTracks != 2 {
		t.Errorf("total tracks = %d, want 2", tracklist.TotalTracks)
	}
	if filepath.Base(path) != "tracks_pl.one.json" {
		t.Errorf("cache path = %q, want tracks_pl.one.json", path)
	}
	tu.AssertFileExists(t, path)
}

func TestExportTracklistSuppressed(t *testing.T) {
	url := "https://music.apple.com/us/playlist/hits/pl.one"
	extractor := &mockExtractor{tracks: map[string][]models.Track{
		url: {trackOne},
	}}
	engine := newTestEngine(extractor, nil, nil, nil, 1)

	dir := t.TempDir()
	_, path, err := engine.ExportTracklist(context.Background(), nil, url, ExportOpts{
		DontSaveTracklist: true,
		CacheDir:          dir,
	})
	if err != nil {
		t.Fatalf("ExportTracklist() error = %v", err)
	}
	if path != "" {
		t.Errorf("cache path = %q, want empty when saving is suppressed", path)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Errorf("cache dir should be empty, found %d entries", len(entries))
	}
}

func TestExportTracklistExtractionFailure(t *testing.T) {
	extractor := &mockExtractor{extractErr: shared.ErrNoTracks}
	engine := newTestEngine(extractor, nil, nil, nil, 1)

	_, _, err := engine.ExportTracklist(context.Background(), nil, "https://music.apple.com/us/playlist/x/pl.gone", ExportOpts{})
	if !errors.Is(err, shared.ErrNoTracks) {
		t.Errorf("error = %v, want ErrNoTracks", err)
	}
}

func TestMatchOrderIsDeterministic(t *testing.T) {
	tracks := []models.Track{trackOne, trackTwo, trackThree}
	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {perfectCandidate("vid-one", trackOne)},
		"Levitating":      {perfectCandidate("vid-two", trackTwo)},
		"Save Your Tears": {perfectCandidate("vid-three", trackThree)},
	}}
	engine := newTestEngine(nil, searcher, nil, nil, 4)

	tracklist := models.NewTracklist("https://music.apple.com/us/playlist/hits/pl.one", tracks)

	// Parallel workers must not reorder results.
	for run := 0; run < 5; run++ {
		results := engine.Match(context.Background(), nil, tracklist)
		if len(results) != 3 {
			t.Fatalf("got %d results, want 3", len(results))
		}
		for i, want := range []string{"vid-one", "vid-two", "vid-three"} {
			if !results[i].Decision.Matched() {
				t.Fatalf("run %d: track %d unmatched", run, i)
			}
			if got := results[i].Decision.Candidate.ID; got != want {
				t.Errorf("run %d: results[%d] = %q, want %q", run, i, got, want)
			}
		}
	}
}

func TestMatchSearchFailureIsZeroCandidates(t *testing.T) {
	searcher := &mockSearcher{searchErr: shared.ErrSearchFailed}
	engine := newTestEngine(nil, searcher, nil, nil, 1)

	tracklist := models.NewTracklist("https://music.apple.com/us/playlist/hits/pl.one", []models.Track{trackOne})
	results := engine.Match(context.Background(), nil, tracklist)

	if len(results) != 1 {
		t.Fatalf("got %d results, want 1", len(results))
	}
	if results[0].Err == nil {
		t.Error("search error should be recorded on the result")
	}
	if results[0].Decision.Matched() {
		t.Error("failed search must not produce a match")
	}
	if results[0].Candidates != 0 {
		t.Errorf("candidates = %d, want 0", results[0].Candidates)
	}
}

func TestMatchNoCandidateAboveThreshold(t *testing.T) {
	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {
			{ID: "junk", Title: "Completely Unrelated Upload", Artists: []string{"Someone Else"}, Duration: 4000},
		},
	}}
	engine := newTestEngine(nil, searcher, nil, nil, 1)

	tracklist := models.NewTracklist("https://music.apple.com/us/playlist/hits/pl.one", []models.Track{trackOne})
	results := engine.Match(context.Background(), nil, tracklist)

	if results[0].Decision.Matched() {
		t.Error("junk candidate should not match")
	}
	if results[0].Candidates != 1 {
		t.Errorf("candidates = %d, want 1", results[0].Candidates)
	}
}

func TestThresholdZeroIsRespected(t *testing.T) {
	// Perfect title and artist with a 4500s duration gap scores exactly 0.1,
	// above a zero threshold but below the default.
	far := perfectCandidate("vid-far", trackOne)
	far.Duration = trackOne.Duration + 4500

	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {far},
	}}
	tracklist := models.NewTracklist("https://music.apple.com/us/playlist/hits/pl.one", []models.Track{trackOne})

	engine := NewEngine(EngineOpts{Searcher: searcher, Threshold: 0, RateLimit: 1000})
	results := engine.Match(context.Background(), nil, tracklist)
	if !results[0].Decision.Matched() {
		t.Error("an explicit zero threshold should accept a low-confidence candidate")
	}

	engine = NewEngine(EngineOpts{Searcher: searcher, Threshold: -1, RateLimit: 1000})
	results = engine.Match(context.Background(), nil, tracklist)
	if results[0].Decision.Matched() {
		t.Error("a negative threshold should fall back to the default and reject the candidate")
	}
}

func TestRunProcessesEveryPlaylist(t *testing.T) {
	urlOne := "https://music.apple.com/us/playlist/first/pl.one"
	urlTwo := "https://music.apple.com/us/playlist/second/pl.two"

	extractor := &mockExtractor{tracks: map[string][]models.Track{
		urlOne: {trackOne},
		urlTwo: {trackTwo, trackThree},
	}}
	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {perfectCandidate("vid-one", trackOne)},
		"Levitating":      {perfectCandidate("vid-two", trackTwo)},
		"Save Your Tears": {perfectCandidate("vid-three", trackThree)},
	}}
	downloader := &mockDownloader{}
	engine := newTestEngine(extractor, searcher, downloader, nil, 2)

	dir := t.TempDir()
	result, err := engine.Run(context.Background(), nil, []string{urlOne, urlTwo}, ExportOpts{CacheDir: dir})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Playlists) != 2 {
		t.Fatalf("got %d playlist results, want 2", len(result.Playlists))
	}
	if result.TotalTracks != 3 {
		t.Errorf("total tracks = %d, want 3", result.TotalTracks)
	}
	if result.TotalDownloaded != 3 {
		t.Errorf("total downloaded = %d, want 3 across both playlists", result.TotalDownloaded)
	}

	// First playlist's tracks are downloaded too, not only the last one's.
	if len(downloader.downloaded) != 3 || downloader.downloaded[0] != "vid-one" {
		t.Errorf("downloads = %v, want vid-one first", downloader.downloaded)
	}
}

func TestRunContinuesAfterFailedPlaylist(t *testing.T) {
	goodURL := "https://music.apple.com/us/playlist/good/pl.good"
	badURL := "https://music.apple.com/us/playlist/bad/pl.bad"

	extractor := &mockExtractor{tracks: map[string][]models.Track{
		goodURL: {trackOne},
	}}
	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {perfectCandidate("vid-one", trackOne)},
	}}
	downloader := &mockDownloader{}
	engine := newTestEngine(extractor, searcher, downloader, nil, 1)

	result, err := engine.Run(context.Background(), nil, []string{badURL, goodURL}, ExportOpts{
		DontSaveTracklist: true,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if len(result.Playlists) != 2 {
		t.Fatalf("got %d playlist results, want 2", len(result.Playlists))
	}
	if result.Playlists[0].Tracklist != nil {
		t.Error("failed playlist should carry no tracklist")
	}
	if result.TotalDownloaded != 1 {
		t.Errorf("total downloaded = %d, want 1 from the surviving playlist", result.TotalDownloaded)
	}
}

func TestDownloadTracklistSkipsLedgered(t *testing.T) {
	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {perfectCandidate("already-have", trackOne)},
		"Levitating":      {perfectCandidate("vid-two", trackTwo)},
	}}
	downloader := &mockDownloader{}
	ledger := &mockLedger{ids: map[string]bool{"already-have": true}}
	engine := newTestEngine(nil, searcher, downloader, ledger, 1)

	tracklist := models.NewTracklist("https://music.apple.com/us/playlist/hits/pl.one", []models.Track{trackOne, trackTwo})
	result := engine.DownloadTracklist(context.Background(), nil, tracklist)

	if result.Skipped != 1 {
		t.Errorf("skipped = %d, want 1", result.Skipped)
	}
	if result.Downloaded != 1 {
		t.Errorf("downloaded = %d, want 1", result.Downloaded)
	}
	if len(downloader.downloaded) != 1 || downloader.downloaded[0] != "vid-two" {
		t.Errorf("downloads = %v, want only vid-two", downloader.downloaded)
	}
}

func TestDownloadTracklistCountsFailures(t *testing.T) {
	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {perfectCandidate("will-fail", trackOne)},
		"Levitating":      {perfectCandidate("vid-two", trackTwo)},
	}}
	downloader := &mockDownloader{failIDs: map[string]bool{"will-fail": true}}
	engine := newTestEngine(nil, searcher, downloader, nil, 1)

	tracklist := models.NewTracklist("https://music.apple.com/us/playlist/hits/pl.one", []models.Track{trackOne, trackTwo})
	result := engine.DownloadTracklist(context.Background(), nil, tracklist)

	if result.Failed != 1 {
		t.Errorf("failed = %d, want 1", result.Failed)
	}
	if result.Downloaded != 1 {
		t.Errorf("downloaded = %d, want 1", result.Downloaded)
	}
}

func TestDownloadTracklistCountsUnmatched(t *testing.T) {
	searcher := &mockSearcher{results: map[string][]models.Candidate{
		"Blinding Lights": {perfectCandidate("vid-one", trackOne)},
	}}
	downloader := &mockDownloader{}
	engine := newTestEngine(nil, searcher, downloader, nil, 1)

	tracklist := models.NewTracklist("https://music.apple.com/us/playlist/hits/pl.one", []models.Track{trackOne, trackTwo})
	result := engine.DownloadTracklist(context.Background(), nil, tracklist)

	if result.Unmatched != 1 {
		t.Errorf("unmatched = %d, want 1", result.Unmatched)
	}
	if result.Downloaded != 1 {
		t.Errorf("downloaded = %d, want 1", result.Downloaded)
	}
}

func TestRunRequiresDownloader(t *testing.T) {
	engine := newTestEngine(&mockExtractor{}, &mockSearcher{}, nil, nil, 1)

	_, err := engine.Run(context.Background(), nil, []string{"https://music.apple.com/us/playlist/x/pl.one"}, ExportOpts{})
	if !errors.Is(err, shared.ErrInvalidConfig) {
		t.Errorf("error = %v, want ErrInvalidConfig", err)
	}
}

func TestSendProgressNeverBlocks(t *testing.T) {
	engine := newTestEngine(nil, nil, nil, nil, 1)

	full := make(chan ProgressUpdate) // unbuffered with no reader
	done := make(chan struct{})
	go func() {
		engine.sendProgress(full, fetchPlaylistUpdate("https://music.apple.com/us/playlist/x/pl.one"))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sendProgress blocked on a full channel")
	}
}

func TestProgressUpdatesDelivered(t *testing.T) {
	url := "https://music.apple.com/us/playlist/hits/pl.one"
	extractor := &mockExtractor{tracks: map[string][]models.Track{
		url: {trackOne},
	}}
	engine := newTestEngine(extractor, nil, nil, nil, 1)

	progress := make(chan ProgressUpdate, 10)
	if _, _, err := engine.ExportTracklist(context.Background(), progress, url, ExportOpts{DontSaveTracklist: true}); err != nil {
		t.Fatalf("ExportTracklist() error = %v", err)
	}
	close(progress)

	phases := map[Phase]bool{}
	for update := range progress {
		phases[update.Phase] = true
	}
	if !phases[FetchPlaylist] || !phases[TracksExtracted] {
		t.Errorf("missing expected phases, got %v", phases)
	}
}
