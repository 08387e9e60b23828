// Package dashboard converts one Dashboard Studio view into project output.
//
// Transformer loads the view from splunkd, validates its structure against
// an embedded JSON Schema, extracts inline data sources, swaps image and icon
// references for locally stored copies, and writes definition.json plus the
// page component. Asset failures never fail the dashboard: the field keeps
// its original reference and the failure is reported in Result.Fields.
package dashboard
