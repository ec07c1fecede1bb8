// Package scan drives the disambiguation lifecycle for one photographed
// item: pending -> searching -> {single_match, multiple_candidates, no_match}
// -> manual_match -> verified.
//
// The Scanner is stateless between calls; every operation loads the scan from
// the store, applies one transition, and persists it. Ambiguous and empty
// outcomes are re-enterable with more signals. Rejection is an explicit
// action that discards the chosen candidate, and verification is terminal.
// Collaborator failures mark the scan failed without automatic retry.
package scan
