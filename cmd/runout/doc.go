// Package main hosts the runout CLI entrypoint and command graph.
//
// The Cobra-based command tree walks a scan through its lifecycle: start a
// session, search the catalog with photographed identifiers, pick or reject
// candidates, and verify the final choice. It centralizes configuration
// resolution, store setup, and catalog client construction so subcommands can
// focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
