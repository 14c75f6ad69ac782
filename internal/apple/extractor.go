// Apple Music playlist page extractor.
//
// Apple Music has no public API; the web player embeds the playlist's track
// data in <script type="application/json"> blocks, which this package parses.
package apple

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"github.com/octobass-dev/export-apple-music-playlist/internal/models"
	"github.com/octobass-dev/export-apple-music-playlist/internal/shared"
)

// trackLockupKind marks sections of the embedded data that carry track listings.
const trackLockupKind = "trackLockup"

// Config controls how the extractor fetches and parses playlist pages.
type Config struct {
	UserAgent   string              // sent on live fetches; pages served to unknown agents omit the embedded data
	FixturePath string              // when set, parse this local HTML file instead of fetching
	Headers     *shared.CurlHeaders // optional extra browser headers replayed on the request
	HTTPClient  *http.Client
	Logger      *log.Logger
}

// Extractor fetches Apple Music playlist pages and extracts track records.
type Extractor struct {
	cfg    Config
	client *http.Client
	logger *log.Logger
}

// New creates an Extractor with the provided configuration.
func New(cfg Config) *Extractor {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Logger == nil {
		cfg.Logger = shared.NewLogger(nil)
	}

	return &Extractor{
		cfg:    cfg,
		client: cfg.HTTPClient,
		logger: cfg.Logger,
	}
}

// Embedded structured-data shape: each script block is a JSON array whose
// first element carries data.sections[], and sections with
// itemKind == "trackLockup" hold the track items.
type embeddedBlock struct {
	Data struct {
		Sections []embeddedSection `json:"sections"`
	} `json:"data"`
}

type embeddedSection struct {
	ItemKind string         `json:"itemKind"`
	Items    []embeddedItem `json:"items"`
}

type embeddedItem struct {
	Title             string  `json:"title"`
	ArtistName        string  `json:"artistName"`
	Duration          float64 `json:"duration"` // milliseconds
	ContentDescriptor struct {
		URL string `json:"url"`
	} `json:"contentDescriptor"`
}

// Extract fetches the playlist page and returns its deduplicated track records in page order.
//
// Malformed structured-data blocks are skipped individually; a fetch or
// whole-page parse failure returns an error and the caller should treat the
// playlist as yielding zero tracks. An empty result does not necessarily mean
// the playlist is empty.
func (e *Extractor) Extract(ctx context.Context, playlistURL string) ([]models.Track, error) {
	doc, err := e.loadDocument(ctx, playlistURL)
	if err != nil {
		return nil, err
	}

	var tracks []models.Track
	doc.Find(`script[type="application/json"]`).Each(func(i int, s *goquery.Selection) {
		blocks := []embeddedBlock{}
		if err := json.Unmarshal([]byte(s.Text()), &blocks); err != nil {
			e.logger.Debug("skipping malformed structured-data block", "index", i, "err", err)
			return
		}
		if len(blocks) == 0 {
			return
		}

		for _, section := range blocks[0].Data.Sections {
			if section.ItemKind != trackLockupKind {
				continue
			}
			for _, item := range section.Items {
				tracks = append(tracks, models.Track{
					Title:    item.Title,
					Artist:   item.ArtistName,
					Duration: item.Duration / 1000.0,
					URL:      item.ContentDescriptor.URL,
				})
			}
		}
	})

	if len(tracks) == 0 {
		// Diagnostic only: the og:title meta tag survives even when the
		// track data is withheld, so surface the playlist name if present.
		if title, ok := doc.Find(`meta[property="og:title"]`).Attr("content"); ok {
			e.logger.Info("found playlist page but no track data", "playlist", title)
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrNoTracks, playlistURL)
	}

	return Dedupe(tracks), nil
}

// loadDocument fetches the playlist page, or reads the configured fixture file instead.
func (e *Extractor) loadDocument(ctx context.Context, playlistURL string) (*goquery.Document, error) {
	if e.cfg.FixturePath != "" {
		f, err := os.Open(e.cfg.FixturePath)
		if err != nil {
			return nil, fmt.Errorf("%w: fixture %s: %v", shared.ErrPageFetch, e.cfg.FixturePath, err)
		}
		defer f.Close()

		doc, err := goquery.NewDocumentFromReader(f)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to parse fixture: %v", shared.ErrPageFetch, err)
		}
		return doc, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, playlistURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPageFetch, err)
	}

	if e.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", e.cfg.UserAgent)
	}
	if e.cfg.Headers != nil {
		e.cfg.Headers.Apply(req)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrPageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d for %s", shared.ErrPageFetch, resp.StatusCode, playlistURL)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse page: %v", shared.ErrPageFetch, err)
	}

	return doc, nil
}

// Dedupe drops records whose (title, artist) key already appeared earlier.
//
// First occurrence wins and input order is preserved.
func Dedupe(tracks []models.Track) []models.Track {
	seen := make(map[string]struct{}, len(tracks))
	unique := make([]models.Track, 0, len(tracks))

	for _, track := range tracks {
		key := shared.NormalizeTrackKey(track.Title, track.Artist)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		unique = append(unique, track)
	}

	return unique
}

var playlistIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/playlist/[^/]+/(pl\.[a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`playlist/(pl\.[a-zA-Z0-9_-]+)`),
	regexp.MustCompile(`playlist/([a-zA-Z0-9._-]+)$`),
}

// PlaylistID extracts the playlist identifier from an Apple Music URL.
//
// Returns an empty string when no pattern matches.
func PlaylistID(playlistURL string) string {
	trimmed := playlistURL
	if i := strings.Index(trimmed, "?"); i >= 0 {
		trimmed = trimmed[:i]
	}

	for _, pattern := range playlistIDPatterns {
		if m := pattern.FindStringSubmatch(trimmed); m != nil {
			return m[1]
		}
	}
	return ""
}
