// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for playlist downloads:
//  1. [PlaylistListView] : Browse the playlist URLs supplied on the command line
//  2. [TrackListView] : Preview extracted tracks before downloading
//  3. [ConfirmView] : Confirm the download operation
//  4. [DownloadView] : Monitor real-time search and download progress
//  5. [ResultView] : Display download counts and unmatched tracks
//
// The [Model] implements bubbletea's standard Init/Update/View pattern.
// Progress updates flow through a channel from the tasks.Engine, providing
// non-blocking status reporting during downloads.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, esc, y/n, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
