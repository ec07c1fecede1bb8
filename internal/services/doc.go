// Package services defines shared utilities consumed by the scan workflow and
// external collaborator clients.
//
// It owns the sentinel error taxonomy used across the repository (validation,
// configuration, not-found, timeout, external-service, transient) together
// with Wrap, which tags failures with stage context, and the context helpers
// that thread scan/stage/request identifiers through collaborator calls for
// structured logging.
package services
