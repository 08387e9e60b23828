// Package assets downloads the images and icons a dashboard references and
// stores them in the project's public/assets tree.
//
// A Resolver fetches each (reference, category, namespace) triple at most
// once per run and names files after a hash of the reference, so repeated
// runs produce the same paths. Failures are returned as values in the
// Resolution so the caller decides whether to keep the original reference.
package assets
