package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"

	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
)

var (
	_ list.Item = playlistItem{}
	_ list.Item = trackItem{}
)

// playlistItem wraps a playlist URL to implement [list.Item].
type playlistItem struct {
	url string
}

func (i playlistItem) FilterValue() string { return i.url }
func (i playlistItem) Title() string       { return shared.PlaylistTag(i.url) }
func (i playlistItem) Description() string { return i.url }

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return fmt.Sprintf("%s • %s", desc, shared.FormatDuration(i.track.Duration))
}
