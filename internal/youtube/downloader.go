package youtube

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lrstanley/go-ytdlp"

	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
)

// Downloader fetches a candidate's audio stream and transcodes it.
type Downloader interface {
	Download(ctx context.Context, candidate models.Candidate, onProgress func(float64)) error
}

// AudioDownloader implements Downloader with yt-dlp's best-audio format and an
// ffmpeg extract-audio postprocessor. Downloads already recorded in the
// archive ledger are skipped.
type AudioDownloader struct {
	dir     string
	codec   string
	bitrate string
	archive string
	ledger  *Ledger
	logger  *log.Logger
}

// DownloaderConfig controls output location and transcode settings.
type DownloaderConfig struct {
	Directory string // defaults to ./downloads
	Codec     string // defaults to mp3
	Bitrate   string // target bitrate in kbit/s, defaults to 192
	Archive   string // ledger filename, defaults to downloaded.txt inside Directory
	Logger    *log.Logger
}

// NewAudioDownloader creates an AudioDownloader, creating the download
// directory and loading the existing ledger.
func NewAudioDownloader(cfg DownloaderConfig) (*AudioDownloader, error) {
	if cfg.Directory == "" {
		cfg.Directory = "./downloads"
	}
	if cfg.Codec == "" {
		cfg.Codec = "mp3"
	}
	if cfg.Bitrate == "" {
		cfg.Bitrate = "192"
	}
	if cfg.Archive == "" {
		cfg.Archive = "downloaded.txt"
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	if err := os.MkdirAll(cfg.Directory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create download directory: %w", err)
	}

	archivePath := cfg.Archive
	if !filepath.IsAbs(archivePath) {
		archivePath = filepath.Join(cfg.Directory, archivePath)
	}

	ledger, err := LoadLedger(archivePath)
	if err != nil {
		return nil, err
	}

	return &AudioDownloader{
		dir:     cfg.Directory,
		codec:   cfg.Codec,
		bitrate: cfg.Bitrate,
		archive: archivePath,
		ledger:  ledger,
		logger:  cfg.Logger,
	}, nil
}

// Ledger exposes the download-history ledger for callers that want to report
// skips before attempting a download.
func (d *AudioDownloader) Ledger() *Ledger {
	return d.ledger
}

// Download fetches the candidate's audio, transcoding to the configured codec
// and bitrate, and records the candidate in the archive ledger.
//
// The output file is named from the candidate's title by yt-dlp's output
// template. Candidates already present in the ledger are skipped without a
// network call. onProgress, when non-nil, receives completion in [0, 1].
func (d *AudioDownloader) Download(ctx context.Context, candidate models.Candidate, onProgress func(float64)) error {
	if d.ledger.Has(candidate.ID) {
		d.logger.Info("already downloaded, skipping", "id", candidate.ID, "title", candidate.Title)
		return nil
	}

	dl := ytdlp.New().
		Format("bestaudio/best").
		ExtractAudio().
		AudioFormat(d.codec).
		AudioQuality(d.bitrate).
		DownloadArchive(d.archive).
		Output(filepath.Join(d.dir, "%(title)s.%(ext)s"))

	if onProgress != nil {
		dl.ProgressFunc(500*time.Millisecond, func(update ytdlp.ProgressUpdate) {
			if update.TotalBytes > 0 {
				onProgress(float64(update.DownloadedBytes) / float64(update.TotalBytes))
			}
		})
	}

	if _, err := dl.Run(ctx, candidate.WatchURL()); err != nil {
		return fmt.Errorf("%w: %s: %v", shared.ErrDownloadFailed, candidate.WatchURL(), err)
	}

	// yt-dlp appended the ID to the archive file; mirror it in memory so
	// repeat candidates within this run are skipped too.
	d.ledger.Add(candidate.ID)

	d.logger.Info("download complete", "title", candidate.Title, "dir", d.dir)
	return nil
}

// Install ensures a yt-dlp binary is available, downloading one if the host
// has none. Call once before the first search or download.
func Install(ctx context.Context) error {
	if _, err := ytdlp.Install(ctx, nil); err != nil {
		return fmt.Errorf("failed to install yt-dlp: %w", err)
	}
	return nil
}
