package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/urfave/cli/v3"

	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
	"github.com/octobass-dev/export-apple-music-playlist/internal/tasks"
	"github.com/octobass-dev/export-apple-music-playlist/internal/ui"
)

// TUI launches the interactive terminal UI for browsing and downloading playlists.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	urls, err := r.playlistArgs(cmd)
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering
	fileLogger, err := shared.NewFileLogger("./tmp/amxp-tui.log")
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	r.SetLogger(fileLogger)

	engine, err := r.engine(cmd, true)
	if err != nil {
		return err
	}

	opts := tasks.ExportOpts{
		DontSaveTracklist: cmd.Bool("dont-save-tracklist"),
		CacheDir:          cmd.String("cache-dir"),
	}

	model := ui.NewModel(ctx, engine, urls, opts)
	p := tea.NewProgram(model)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "tui",
		Usage:     "Interactive playlist browser and downloader",
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
		},
		Action: r.TUI,
	}
}
