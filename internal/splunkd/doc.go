// Package splunkd talks to the Splunk management REST API.
//
// The Client loads Dashboard Studio views (the JSON definition embedded in the
// view's version 2 XML) and fetches the binary assets those definitions point
// at: KV store images and icons, inline data URIs, and plain http(s) URLs.
// Every failure is tagged with services.ErrFetch; authentication and missing
// resources additionally carry services.ErrAuth / services.ErrNotFound.
package splunkd
