// package models defines the data model for the playlist export pipeline
package models

// Track represents a single track extracted from a playlist page.
//
// Immutable once extracted; Duration is in seconds.
type Track struct {
	Title    string  `json:"title"`
	Artist   string  `json:"artist"`
	Album    string  `json:"album"`
	Duration float64 `json:"duration"`
	URL      string  `json:"-"` // source content descriptor URL, not persisted in the cache
}

// Tracklist is the persisted JSON cache document for one playlist.
//
// Written to tracks_<tag>.json next to the working directory and re-loadable
// to skip a repeat extraction.
type Tracklist struct {
	PlaylistURL string  `json:"playlist_url"`
	TotalTracks int     `json:"total_tracks"`
	Songs       []Track `json:"songs"`
}

// NewTracklist builds a Tracklist document from extracted tracks.
func NewTracklist(playlistURL string, tracks []Track) *Tracklist {
	return &Tracklist{
		PlaylistURL: playlistURL,
		TotalTracks: len(tracks),
		Songs:       tracks,
	}
}

// Candidate represents a single search result considered as a match for a track.
type Candidate struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Artists  []string `json:"artists"`
	Duration float64  `json:"duration"`
}

// WatchURL constructs the playable URL for the candidate.
func (c Candidate) WatchURL() string {
	return "https://youtube.com/watch?v=" + c.ID
}
