// Package config loads, normalizes, and validates dashpub configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// SPLUNKD_TOKEN. Credentials may also live in the project's .env file; those
// values never override the real environment.
//
// Always obtain settings through this package so downstream code receives
// absolute project paths, canonical log formats, and clear validation errors.
package config
