// Package services defines shared utilities consumed across the catalog
// engine's components.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that tag failures for
//     classification (validation vs remote vs storage vs busy).
//   - Context helpers that stamp run identifiers and component names for
//     logging and correlation.
//
// Use these helpers when wiring new operations so error handling and
// observability stay uniform across scan, reconcile, fetch, and import.
package services
