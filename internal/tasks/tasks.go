// package tasks implements the extract → match → download pipeline.
//
// The core abstraction is Engine, which orchestrates playlist extraction,
// candidate matching, and audio downloads. Operations emit progress updates
// via channels for non-blocking status reporting to CLI/UI layers.
package tasks

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/octobass-dev/export-apple-music-playlist/internal/formatter"
	"github.com/octobass-dev/export-apple-music-playlist/internal/match"
	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	"github.com/octobass-dev/export-apple-music-playlist/internal/youtube"
)

// Extractor produces track records from a playlist URL.
type Extractor interface {
	Extract(ctx context.Context, playlistURL string) ([]models.Track, error)
}

// LedgerReader reports whether an identifier was already downloaded.
type LedgerReader interface {
	Has(id string) bool
}

// TrackMatchResult is the outcome of searching and scoring one track.
type TrackMatchResult struct {
	Track      models.Track   // source track
	Decision   match.Decision // selected candidate, if any
	Candidates int            // number of candidates considered
	Err        error          // search failure, treated as zero candidates
}

// PlaylistResult aggregates one playlist's pipeline outcome.
type PlaylistResult struct {
	PlaylistURL string
	CachePath   string // empty when cache writing was suppressed
	Tracklist   *models.Tracklist
	Matches     []TrackMatchResult
	Downloaded  int
	Skipped     int // already in the download ledger
	Unmatched   int
	Failed      int // download attempts that errored
}

// RunResult contains all data from a full pipeline run across playlists.
type RunResult struct {
	ID              string // correlates log lines from one run
	Playlists       []PlaylistResult
	TotalTracks     int
	TotalDownloaded int
	TotalUnmatched  int
}

// EngineOpts contains dependencies and tuning for an Engine.
type EngineOpts struct {
	Extractor  Extractor
	Searcher   youtube.Searcher
	Downloader youtube.Downloader
	Ledger     LedgerReader // optional; enables skip accounting before download
	Threshold  float64      // selection threshold; zero is a real threshold, negative selects match.DefaultThreshold
	Workers    int          // concurrent search workers, defaults to 1 (sequential)
	RateLimit  float64      // searches per second across workers, defaults to 2
	Logger     *log.Logger
}

// Engine orchestrates the pipeline. Matching may fan out across a rate-limited
// worker pool; selection stays deterministic per track, and downloads are
// always sequential in extraction order.
type Engine struct {
	extractor  Extractor
	searcher   youtube.Searcher
	downloader youtube.Downloader
	ledger     LedgerReader
	threshold  float64
	workers    int
	limiter    *rate.Limiter
	logger     *log.Logger
}

// NewEngine creates an Engine with the provided options.
func NewEngine(opts EngineOpts) *Engine {
	if opts.Threshold < 0 {
		opts.Threshold = match.DefaultThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Workers > 8 {
		opts.Workers = 8
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}

	return &Engine{
		extractor:  opts.Extractor,
		searcher:   opts.Searcher,
		downloader: opts.Downloader,
		ledger:     opts.Ledger,
		threshold:  opts.Threshold,
		workers:    opts.Workers,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
		logger:     opts.Logger,
	}
}

// sendProgress sends a progress update through the channel without blocking.
// Uses select with default to ensure progress reporting never blocks execution.
func (e *Engine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
		// Sent successfully
	default:
		// Channel full or closed, skip this update
	}
}

// ExportOpts controls tracklist extraction and caching.
type ExportOpts struct {
	DontSaveTracklist bool   // suppress writing the JSON cache
	CacheDir          string // defaults to the working directory
}

// ExportTracklist extracts a playlist's tracks and writes the JSON cache.
//
// Extraction failures degrade to an error the caller logs; they never abort a
// multi-playlist run. The returned cache path is empty when saving was
// suppressed or extraction produced nothing.
func (e *Engine) ExportTracklist(ctx context.Context, progress chan<- ProgressUpdate, playlistURL string, opts ExportOpts) (*models.Tracklist, string, error) {
	if e.extractor == nil {
		return nil, "", fmt.Errorf("%w: extractor not initialized", shared.ErrInvalidConfig)
	}

	e.sendProgress(progress, fetchPlaylistUpdate(playlistURL))

	tracks, err := e.extractor.Extract(ctx, playlistURL)
	if err != nil {
		return nil, "", err
	}

	tracklist := models.NewTracklist(playlistURL, tracks)
	e.sendProgress(progress, tracksExtractedUpdate(playlistURL, len(tracks)))

	if opts.DontSaveTracklist {
		return tracklist, "", nil
	}

	dir := opts.CacheDir
	if dir == "" {
		dir = "."
	}

	path, err := formatter.WriteCache(tracklist, dir)
	if err != nil {
		return tracklist, "", err
	}

	e.sendProgress(progress, cacheWrittenUpdate(path))
	return tracklist, path, nil
}

// Match searches and scores every track in the tracklist.
//
// Search+score fans out across the worker pool behind a shared rate limiter;
// results are written by track position so output order always mirrors the
// tracklist regardless of completion order. A per-track search failure is
// recorded as zero candidates, never a pipeline failure.
func (e *Engine) Match(ctx context.Context, progress chan<- ProgressUpdate, tracklist *models.Tracklist) []TrackMatchResult {
	total := len(tracklist.Songs)
	results := make([]TrackMatchResult, total)

	jobs := make(chan int, total)
	var wg sync.WaitGroup

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.matchTrack(ctx, tracklist.Songs[i])
				e.sendProgress(progress, searchTrackUpdate(i+1, total, tracklist.Songs[i]))
			}
		}()
	}

	for i := 0; i < total; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

// matchTrack runs one search and selects the best candidate for one track.
func (e *Engine) matchTrack(ctx context.Context, track models.Track) TrackMatchResult {
	result := TrackMatchResult{Track: track}

	if err := e.limiter.Wait(ctx); err != nil {
		result.Err = err
		return result
	}

	candidates, err := e.searcher.Search(ctx, track)
	if err != nil {
		e.logger.Warn("search failed, treating as zero candidates", "track", track.Title, "err", err)
		result.Err = err
		return result
	}

	result.Candidates = len(candidates)
	result.Decision = match.SelectBest(track, candidates, e.threshold)

	if result.Decision.Matched() {
		e.logger.Debug("matched",
			"track", track.Title,
			"candidate", result.Decision.Candidate.Title,
			"artists", strings.Join(result.Decision.Candidate.Artists, ", "),
			"confidence", result.Decision.Confidence)
	} else {
		e.logger.Info("no candidate above threshold", "track", track.Title, "artist", track.Artist, "candidates", len(candidates))
	}

	return result
}

// Run executes the full pipeline for every playlist URL.
//
// Each playlist is processed end to end: extract (falling back to zero tracks
// on failure), cache, match, then download matched candidates sequentially in
// extraction order. Per-playlist failures are logged and recorded; they never
// stop later playlists.
func (e *Engine) Run(ctx context.Context, progress chan<- ProgressUpdate, playlistURLs []string, opts ExportOpts) (*RunResult, error) {
	if e.searcher == nil || e.downloader == nil {
		return nil, fmt.Errorf("%w: searcher and downloader must be initialized", shared.ErrInvalidConfig)
	}

	run := &RunResult{ID: shared.GenerateID()}
	e.logger.Info("starting pipeline run", "run", run.ID, "playlists", len(playlistURLs))

	for _, playlistURL := range playlistURLs {
		result := e.runPlaylist(ctx, progress, playlistURL, opts)
		run.Playlists = append(run.Playlists, result)

		if result.Tracklist != nil {
			run.TotalTracks += result.Tracklist.TotalTracks
		}
		run.TotalDownloaded += result.Downloaded
		run.TotalUnmatched += result.Unmatched

		if err := ctx.Err(); err != nil {
			return run, err
		}
	}

	return run, nil
}

// DownloadTracklist matches and downloads an already-extracted tracklist.
//
// Used by the Run loop and by callers that re-load a tracklist from cache.
func (e *Engine) DownloadTracklist(ctx context.Context, progress chan<- ProgressUpdate, tracklist *models.Tracklist) PlaylistResult {
	result := PlaylistResult{
		PlaylistURL: tracklist.PlaylistURL,
		Tracklist:   tracklist,
	}

	result.Matches = e.Match(ctx, progress, tracklist)

	for i, m := range result.Matches {
		if m.Err != nil || !m.Decision.Matched() {
			result.Unmatched++
			continue
		}

		candidate := m.Decision.Candidate
		if e.ledger != nil && e.ledger.Has(candidate.ID) {
			e.sendProgress(progress, downloadSkippedUpdate(i+1, len(result.Matches), candidate))
			result.Skipped++
			continue
		}

		e.sendProgress(progress, downloadTrackUpdate(i+1, len(result.Matches), candidate))
		e.logger.Info("best match", "track", m.Track.Title, "candidate", candidate.Title, "url", candidate.WatchURL(), "confidence", m.Decision.Confidence)

		if err := e.downloader.Download(ctx, candidate, nil); err != nil {
			e.logger.Error("download failed", "candidate", candidate.Title, "err", err)
			result.Failed++
			continue
		}
		result.Downloaded++
	}

	return result
}

func (e *Engine) runPlaylist(ctx context.Context, progress chan<- ProgressUpdate, playlistURL string, opts ExportOpts) PlaylistResult {
	tracklist, cachePath, err := e.ExportTracklist(ctx, progress, playlistURL, opts)
	if err != nil {
		e.logger.Error("extraction failed", "playlist", playlistURL, "err", err)
		return PlaylistResult{PlaylistURL: playlistURL}
	}

	result := e.DownloadTracklist(ctx, progress, tracklist)
	result.CachePath = cachePath
	return result
}
