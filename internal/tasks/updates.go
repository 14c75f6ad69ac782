package tasks

import (
	"fmt"

	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data for advanced UIs
}

// Operation phase enumeration
type Phase int

const (
	FetchPlaylist Phase = iota
	TracksExtracted
	WriteCache
	SearchTracks
	DownloadTrack
	DownloadSkipped
)

func (p Phase) String() string {
	switch p {
	case FetchPlaylist:
		return "fetch_playlist"
	case TracksExtracted:
		return "tracks_extracted"
	case WriteCache:
		return "write_cache"
	case SearchTracks:
		return "search_tracks"
	case DownloadTrack:
		return "download_track"
	case DownloadSkipped:
		return "download_skipped"
	default:
		return ""
	}
}

func fetchPlaylistUpdate(playlistURL string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPlaylist,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Extracting tracks from %s ...", playlistURL),
	}
}

func tracksExtractedUpdate(playlistURL string, count int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   TracksExtracted,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found %d unique tracks", count),
		Data:    count,
	}
}

func cacheWrittenUpdate(path string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   WriteCache,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Tracklist saved to %s", path),
		Data:    path,
	}
}

func searchTrackUpdate(step, total int, track models.Track) ProgressUpdate {
	return ProgressUpdate{
		Phase:   SearchTracks,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Searching: %s - %s", track.Artist, track.Title),
		Data:    track,
	}
}

func downloadTrackUpdate(step, total int, candidate models.Candidate) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadTrack,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Downloading: %s", candidate.Title),
		Data:    candidate,
	}
}

func downloadSkippedUpdate(step, total int, candidate models.Candidate) ProgressUpdate {
	return ProgressUpdate{
		Phase:   DownloadSkipped,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("Already downloaded: %s", candidate.Title),
		Data:    candidate,
	}
}
