// Package tasks orchestrates the playlist export pipeline with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] exposes three operations:
//
//  1. [Engine.ExportTracklist] : extract one playlist's tracks and write the JSON cache
//     - Fetches and parses the playlist page
//     - Deduplicates on the case-insensitive (title, artist) key, first seen wins
//     - Writes tracks_<tag>.json unless suppressed
//
//  2. [Engine.Match] : search and score every track
//     - One search per track through the rate-limited worker pool
//     - Pure scoring against each candidate, strict-threshold selection
//     - Per-track search failures become zero candidates, never pipeline failures
//
//  3. [Engine.Run] : the full pipeline over every playlist URL
//     - Extract, cache, match, then download matched candidates
//     - Downloads stay sequential in extraction order for determinism
//     - Ledger hits are counted as skips without a network call
//
// # Progress Reporting
//
// All operations accept a channel of [ProgressUpdate] carrying phase, step
// counters, and messages. Sends use select with default so a slow or absent
// consumer never blocks the pipeline.
package tasks
