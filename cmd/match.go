package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/octobass-dev/export-apple-music-playlist/internal/formatter"
	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	"github.com/octobass-dev/export-apple-music-playlist/internal/tasks"
)

// Match searches YouTube for every track in a playlist and reports the
// selected candidate per track without downloading anything.
func (r *Runner) Match(ctx context.Context, cmd *cli.Command) error {
	engine, err := r.engine(cmd, false)
	if err != nil {
		return err
	}

	tracklists, err := r.resolveTracklists(ctx, cmd, engine)
	if err != nil {
		return err
	}

	for _, tracklist := range tracklists {
		r.writePlain("\n🔍 Matching %d tracks from %s\n\n", tracklist.TotalTracks, shared.PlaylistTag(tracklist.PlaylistURL))

		matches := engine.Match(ctx, nil, tracklist)

		matched := 0
		for i, m := range matches {
			if m.Err != nil {
				r.writePlain("  %d. %s - %s: search failed (%v)\n", i+1, m.Track.Artist, m.Track.Title, m.Err)
				continue
			}
			if !m.Decision.Matched() {
				r.writePlain("  %d. %s - %s: no candidate above threshold (%d considered)\n", i+1, m.Track.Artist, m.Track.Title, m.Candidates)
				continue
			}

			matched++
			candidate := m.Decision.Candidate
			r.writePlain("  %d. %s - %s\n", i+1, m.Track.Artist, m.Track.Title)
			r.writePlain("     → %s (%s) [%.2f] %s\n",
				candidate.Title, strings.Join(candidate.Artists, ", "),
				m.Decision.Confidence, candidate.WatchURL())
		}

		r.writePlainHeader("Match Results")
		r.writePlain("Matched: %d/%d tracks\n", matched, len(matches))
	}

	return nil
}

// resolveTracklists loads tracklists either from JSON caches (--from-cache)
// or by extracting the playlist URLs given as arguments. A playlist that
// fails to fetch or yields no tracks is skipped, not fatal to the rest.
func (r *Runner) resolveTracklists(ctx context.Context, cmd *cli.Command, engine *tasks.Engine) ([]*models.Tracklist, error) {
	if paths := cmd.StringSlice("from-cache"); len(paths) > 0 {
		tracklists := make([]*models.Tracklist, 0, len(paths))
		for _, path := range paths {
			tracklist, err := formatter.ReadCache(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load %s: %w", path, err)
			}
			r.logger.Info("loaded tracklist from cache", "path", path, "tracks", tracklist.TotalTracks)
			tracklists = append(tracklists, tracklist)
		}
		return tracklists, nil
	}

	urls, err := r.playlistArgs(cmd)
	if err != nil {
		return nil, err
	}

	opts := tasks.ExportOpts{
		DontSaveTracklist: cmd.Bool("dont-save-tracklist"),
		CacheDir:          cmd.String("cache-dir"),
	}

	tracklists := make([]*models.Tracklist, 0, len(urls))
	for _, playlistURL := range urls {
		tracklist, _, err := engine.ExportTracklist(ctx, nil, playlistURL, opts)
		if err != nil {
			if errors.Is(err, shared.ErrNoTracks) || errors.Is(err, shared.ErrPageFetch) {
				r.logger.Error("extraction failed, skipping playlist", "playlist", playlistURL, "err", err)
				r.printExtractionAdvice()
				continue
			}
			return nil, err
		}
		tracklists = append(tracklists, tracklist)
	}
	return tracklists, nil
}

func matchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "match",
		Aliases:   []string{"m"},
		Usage:     "Find the best YouTube candidate for each playlist track",
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
		},
		Action: r.Match,
	}
}
