// Package match scores release candidates against the deterministic signals
// read off physical media and classifies each ranking pass.
//
// The pipeline is strict: the rights-society veto removes impossible
// candidates first, scoring accrues weight from catalog number, barcode, and
// matrix number matches, and classification applies the configured
// thresholds. Everything here is pure and deterministic; identical inputs
// always produce identical orderings, with ReleaseID breaking score ties.
package match
