// Package main hosts the dashpub CLI entrypoint and command graph.
//
// The Cobra-based command tree loads configuration, builds the splunkd client
// and project layout, and hands the requested dashboards to the generator.
// Progress goes to stderr; the run summary goes to stdout as a table or JSON.
//
// Keep this package lean: new behavior belongs in the internal packages and
// is only surfaced here through commands or flags.
package main
