package main

import (
	"context"
	"errors"

	"github.com/urfave/cli/v3"

	"github.com/octobass-dev/export-apple-music-playlist/internal/formatter"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	"github.com/octobass-dev/export-apple-music-playlist/internal/tasks"
)

// Extract fetches playlist pages, parses embedded track data, and writes
// one JSON cache per playlist.
func (r *Runner) Extract(ctx context.Context, cmd *cli.Command) error {
	urls, err := r.playlistArgs(cmd)
	if err != nil {
		return err
	}

	engine, err := r.engine(cmd, false)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		DontSaveTracklist: cmd.Bool("dont-save-tracklist"),
		CacheDir:          cmd.String("cache-dir"),
	}

	format := cmd.String("format")
	printJSON := cmd.Bool("json")

	for _, playlistURL := range urls {
		r.logger.Info("extracting playlist", "url", playlistURL)
		r.writePlain("📥 Fetching %s\n", playlistURL)

		tracklist, cachePath, err := engine.ExportTracklist(ctx, nil, playlistURL, opts)
		if err != nil {
			if errors.Is(err, shared.ErrNoTracks) || errors.Is(err, shared.ErrPageFetch) {
				r.logger.Error("extraction failed, skipping playlist", "playlist", playlistURL, "err", err)
				r.printExtractionAdvice()
				continue
			}
			return err
		}

		r.writePlain("✓ Extracted %d tracks\n", tracklist.TotalTracks)
		if cachePath != "" {
			r.writePlain("✓ Saved %s\n", cachePath)
		}

		if printJSON {
			if err := r.writeJSON(tracklist, cmd.Bool("pretty")); err != nil {
				return err
			}
			continue
		}

		output, err := formatter.Export(tracklist, format)
		if err != nil {
			return err
		}
		if err := r.writePlain("%s", output); err != nil {
			return err
		}
	}

	return nil
}

func extractCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "extract",
		Aliases:   []string{"x"},
		Usage:     "Extract track listings from Apple Music playlist pages",
		ArgsUsage: "[playlist-urls...]",
		Flags: []cli.Flag{
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
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format (text, json, csv, markdown)",
				Value:   "text",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.Extract,
	}
}
