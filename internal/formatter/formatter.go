// package formatter persists tracklist caches and renders tracklists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
)

// CacheFilename returns the deterministic cache file name for a playlist URL:
// tracks_<tag>.json, where tag is the URL's final path segment.
func CacheFilename(playlistURL string) string {
	return fmt.Sprintf("tracks_%s.json", shared.PlaylistTag(playlistURL))
}

// WriteCache writes the tracklist as indented JSON into dir and returns the file path.
func WriteCache(tracklist *models.Tracklist, dir string) (string, error) {
	data, err := shared.MarshalJSON(tracklist, true)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCacheWrite, err)
	}

	path := filepath.Join(dir, CacheFilename(tracklist.PlaylistURL))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrCacheWrite, err)
	}

	return path, nil
}

// ReadCache loads a previously written tracklist cache.
func ReadCache(path string) (*models.Tracklist, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCacheRead, err)
	}

	var tracklist models.Tracklist
	if err := json.Unmarshal(data, &tracklist); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrCacheRead, err)
	}

	return &tracklist, nil
}

// ExportToCSV converts a Tracklist to CSV with columns: Title, Artist, Album, Duration
func ExportToCSV(tracklist *models.Tracklist) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Title", "Artist", "Album", "Duration"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range tracklist.Songs {
		record := []string{
			track.Title,
			track.Artist,
			track.Album,
			strconv.FormatFloat(track.Duration, 'f', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a Tracklist to Markdown
func ExportToMarkdown(tracklist *models.Tracklist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", shared.PlaylistTag(tracklist.PlaylistURL)))
	buf.WriteString(fmt.Sprintf("**Source**: %s\n", tracklist.PlaylistURL))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d\n\n", tracklist.TotalTracks))

	buf.WriteString("## Tracks\n\n")
	for i, track := range tracklist.Songs {
		albumPart := ""
		if track.Album != "" {
			albumPart = fmt.Sprintf(" (%s)", track.Album)
		}
		buf.WriteString(fmt.Sprintf("%d. %s - %s%s [%s]\n", i+1, track.Artist, track.Title, albumPart, shared.FormatDuration(track.Duration)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a Tracklist to plain text
func ExportToText(tracklist *models.Tracklist) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Playlist: %s\n", tracklist.PlaylistURL))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", tracklist.TotalTracks))

	for i, track := range tracklist.Songs {
		buf.WriteString(fmt.Sprintf("%d. %s - %s\n", i+1, track.Artist, track.Title))
	}

	return buf.Bytes(), nil
}

// Export renders the tracklist in the named format: json, csv, markdown, or text.
func Export(tracklist *models.Tracklist, format string) ([]byte, error) {
	switch format {
	case "json", "":
		return shared.MarshalJSON(tracklist, true)
	case "csv":
		return ExportToCSV(tracklist)
	case "markdown", "md":
		return ExportToMarkdown(tracklist)
	case "text", "txt":
		return ExportToText(tracklist)
	default:
		return nil, fmt.Errorf("%w: unknown format %q", shared.ErrInvalidFlag, format)
	}
}
