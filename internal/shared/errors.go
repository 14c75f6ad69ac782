package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Extraction errors
	ErrPageFetch        = fmt.Errorf("playlist page fetch failed")
	ErrNoTracks         = fmt.Errorf("no tracks extracted")
	ErrPlaylistNotFound = fmt.Errorf("playlist not found")

	// Search and download errors
	ErrSearchFailed   = fmt.Errorf("candidate search failed")
	ErrNoMatch        = fmt.Errorf("no candidate above threshold")
	ErrDownloadFailed = fmt.Errorf("download failed")

	// Cache errors
	ErrCacheRead  = fmt.Errorf("tracklist cache read failed")
	ErrCacheWrite = fmt.Errorf("tracklist cache write failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
