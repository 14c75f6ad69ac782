package youtube

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/lrstanley/go-ytdlp"

	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
)

// DefaultMaxResults bounds how many candidates a single search returns.
const DefaultMaxResults = 10

// Searcher finds download candidates for a track.
//
// Implementations return candidates in provider relevance order; callers rely
// on that order for tie-breaking and must not reorder.
type Searcher interface {
	Search(ctx context.Context, track models.Track) ([]models.Candidate, error)
}

// SearchClient implements Searcher using yt-dlp's ytsearch pseudo-URL with
// flat playlist extraction, mirroring a plain YouTube search.
type SearchClient struct {
	maxResults int
	logger     *log.Logger
}

// NewSearchClient creates a SearchClient returning up to maxResults candidates per query.
func NewSearchClient(maxResults int, logger *log.Logger) *SearchClient {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}
	if logger == nil {
		logger = shared.NewLogger(nil)
	}

	return &SearchClient{
		maxResults: maxResults,
		logger:     logger,
	}
}

// artistName tolerates both encodings yt-dlp emits for candidate artists:
// a bare string or an object with a "name" field.
type artistName string

func (a *artistName) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = artistName(s)
		return nil
	}

	var obj struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*a = artistName(obj.Name)
	return nil
}

type searchEntry struct {
	ID       string       `json:"id"`
	Title    string       `json:"title"`
	Artists  []artistName `json:"artists"`
	Duration float64      `json:"duration"`
}

type searchEnvelope struct {
	Entries []searchEntry `json:"entries"`
}

// Search queries YouTube with "<artist> <title>" and returns candidates in relevance order.
func (c *SearchClient) Search(ctx context.Context, track models.Track) ([]models.Candidate, error) {
	query := fmt.Sprintf("%s %s", track.Artist, track.Title)

	dl := ytdlp.New().
		Quiet().
		NoWarnings().
		SkipDownload().
		FlatPlaylist().
		DumpSingleJSON()

	result, err := dl.Run(ctx, fmt.Sprintf("ytsearch%d:%s", c.maxResults, query))
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", shared.ErrSearchFailed, query, err)
	}

	var envelope searchEnvelope
	if err := json.Unmarshal([]byte(result.Stdout), &envelope); err != nil {
		return nil, fmt.Errorf("%w: failed to decode search results for %q: %v", shared.ErrSearchFailed, query, err)
	}

	candidates := make([]models.Candidate, 0, len(envelope.Entries))
	for _, entry := range envelope.Entries {
		artists := make([]string, 0, len(entry.Artists))
		for _, a := range entry.Artists {
			artists = append(artists, string(a))
		}

		candidates = append(candidates, models.Candidate{
			ID:       entry.ID,
			Title:    entry.Title,
			Artists:  artists,
			Duration: entry.Duration,
		})
	}

	c.logger.Debug("search complete", "query", query, "candidates", len(candidates))
	return candidates, nil
}
