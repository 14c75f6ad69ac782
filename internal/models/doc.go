// Package models defines the domain entities shared across the export pipeline.
//
// Three types cover the whole flow:
//   - [Track] : a track record extracted from a playlist page (read-only input to matching)
//   - [Tracklist] : the JSON cache document written per playlist and re-loadable to skip extraction
//   - [Candidate] : a search result considered as a download match for a single track
//
// Candidates are transient: produced per-track per-search and discarded once a
// match decision is made. Only Tracklist is ever persisted.
package models
