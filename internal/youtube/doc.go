// Package youtube implements the search provider and audio downloader on top of yt-dlp.
//
// # Search
//
// [SearchClient] issues "ytsearch<N>:<artist> <title>" queries with flat
// playlist extraction and decodes the single-JSON dump into [models.Candidate]
// values. Result order is the provider's relevance order and is preserved for
// downstream tie-breaking.
//
// # Download
//
// [AudioDownloader] downloads a matched candidate's best audio stream and
// transcodes via yt-dlp's ffmpeg extract-audio postprocessor (mp3 at 192 kbit/s
// by default). The download-archive [Ledger] prevents duplicate downloads
// across runs: it is read before any download and yt-dlp appends to it after
// each success.
//
// Both operations shell out through github.com/lrstanley/go-ytdlp; call
// [Install] once at startup to provision the yt-dlp binary when absent.
package youtube
