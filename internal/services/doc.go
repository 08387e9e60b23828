// Package services defines shared utilities consumed by the generator pipeline
// and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp the run ID, app namespace, and dashboard name
//     for logging.
//   - Structured error markers plus the Wrap helper so callers can tell
//     validation, fetch, and filesystem failures apart with errors.Is.
//
// Use these helpers when wiring new pipeline steps so failure classification
// stays uniform between the transformer, the generator, and the CLI.
package services
