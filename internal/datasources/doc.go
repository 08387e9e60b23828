// Package datasources pulls inline data-source specs out of a
// Dashboard Studio definition.
//
// Embedding points are described by a Schema of JSONPath selectors, each
// naming an object whose members are either data-source specs (objects) or
// references to registry entries (strings). Every spec found gets an
// identifier of the form <prefix>_ds_<n>, is recorded in a Manifest, and is
// replaced in the returned definition by a ds.cdn spec that reads the
// generated copy from /api/data/<id>.
package datasources
