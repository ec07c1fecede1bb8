// Package discogs is a thin HTTP client for the Discogs API covering release
// search, release details, and marketplace price statistics. The Searcher
// interface is what the scan workflow consumes; tests substitute it freely.
package discogs
