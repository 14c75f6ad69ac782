package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	"github.com/octobass-dev/export-apple-music-playlist/internal/tasks"
	"github.com/octobass-dev/export-apple-music-playlist/internal/youtube"
)

// Download runs the full pipeline: extract each playlist, match every track,
// and download the matched audio.
func (r *Runner) Download(ctx context.Context, cmd *cli.Command) error {
	if cmd.Bool("install") {
		r.writePlain("Checking yt-dlp installation...\n")
		if err := youtube.Install(ctx); err != nil {
			return err
		}
	}

	engine, err := r.engine(cmd, true)
	if err != nil {
		return err
	}

	if len(cmd.StringSlice("from-cache")) > 0 {
		return r.downloadFromCache(ctx, cmd, engine)
	}

	urls, err := r.playlistArgs(cmd)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		DontSaveTracklist: cmd.Bool("dont-save-tracklist"),
		CacheDir:          cmd.String("cache-dir"),
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.reportProgress(progressCh)

	result, err := engine.Run(ctx, progressCh, urls, opts)
	close(progressCh)

	if err != nil {
		return err
	}

	r.writePlainHeader("Download Complete!")
	r.writePlain("Playlists: %d\n", len(result.Playlists))
	r.writePlain("Tracks: %d\n", result.TotalTracks)
	r.writePlain("Downloaded: %d\n", result.TotalDownloaded)
	r.writePlain("Unmatched: %d\n", result.TotalUnmatched)

	for _, playlist := range result.Playlists {
		if playlist.Tracklist == nil || playlist.Tracklist.TotalTracks == 0 {
			r.printExtractionAdvice()
			continue
		}
		if playlist.Skipped > 0 {
			r.writePlain("\n%s: skipped %d already downloaded tracks\n", shared.PlaylistTag(playlist.PlaylistURL), playlist.Skipped)
		}
		if playlist.Failed > 0 {
			r.writePlain("%s: %d downloads failed, see log for details\n", shared.PlaylistTag(playlist.PlaylistURL), playlist.Failed)
		}
	}

	return nil
}

// downloadFromCache matches and downloads tracklists loaded from JSON caches.
func (r *Runner) downloadFromCache(ctx context.Context, cmd *cli.Command, engine *tasks.Engine) error {
	tracklists, err := r.resolveTracklists(ctx, cmd, engine)
	if err != nil {
		return err
	}

	progressCh := make(chan tasks.ProgressUpdate, 50)
	go r.reportProgress(progressCh)

	downloaded, unmatched := 0, 0
	for _, tracklist := range tracklists {
		result := engine.DownloadTracklist(ctx, progressCh, tracklist)
		downloaded += result.Downloaded
		unmatched += result.Unmatched
	}
	close(progressCh)

	r.writePlainHeader("Download Complete!")
	r.writePlain("Downloaded: %d\n", downloaded)
	r.writePlain("Unmatched: %d\n", unmatched)
	return nil
}

// reportProgress renders pipeline progress updates until the channel closes.
func (r *Runner) reportProgress(progressCh <-chan tasks.ProgressUpdate) {
	for update := range progressCh {
		switch update.Phase {
		case tasks.FetchPlaylist:
			r.writePlain("📥 %s\n", update.Message)
		case tasks.TracksExtracted:
			r.writePlain("✓ %s\n", update.Message)
		case tasks.WriteCache:
			r.writePlain("✓ %s\n", update.Message)
		case tasks.SearchTracks:
			r.writePlain("🔍 [%d/%d] %s\n", update.Step, update.Total, update.Message)
		case tasks.DownloadTrack:
			r.writePlain("⬇ [%d/%d] %s\n", update.Step, update.Total, update.Message)
		case tasks.DownloadSkipped:
			r.writePlain("⏭ [%d/%d] %s\n", update.Step, update.Total, update.Message)
		}
	}
}

func downloadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "download",
		Aliases:   []string{"dl"},
		Usage:     "Extract, match, and download playlist audio from YouTube",
		ArgsUsage: "[playlist-urls...]",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:  "from-cache",
				Usage: "Load tracks from a tracks_<id>.json cache instead of fetching",
			},
			&cli.BoolFlag{
				Name:  "dont-save-tracklist",
				Usage: "Skip writing the tracks_<id>.json cache",
			},
			&cli.StringFlag{
				Name:  "cache-dir",
				Usage: "Directory for tracklist caches",
				Value: ".",
			},
			&cli.StringFlag{
				Name:    "dir",
				Aliases: []string{"d"},
				Usage:   "Directory for downloaded audio",
			},
			&cli.StringFlag{
				Name:  "codec",
				Usage: "Audio codec passed to yt-dlp",
			},
			&cli.StringFlag{
				Name:  "bitrate",
				Usage: "Audio bitrate in kbps",
			},
			&cli.FloatFlag{
				Name:    "threshold",
				Aliases: []string{"t"},
				Usage:   "Minimum confidence for a match",
			},
			&cli.IntFlag{
				Name:  "max-results",
				Usage: "Number of search results to score per track",
			},
			&cli.IntFlag{
				Name:    "parallel",
				Aliases: []string{"p"},
				Usage:   "Concurrent search workers",
			},
			&cli.BoolFlag{
				Name:  "install",
				Usage: "Download a managed yt-dlp binary if missing",
			},
		},
		Action: r.Download,
	}
}
