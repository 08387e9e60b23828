// Package generator drives a full export: it resets the project output,
// converts each requested dashboard in order, folds the per-dashboard results
// into the data-source and dashboard manifests, and writes both manifests
// last. The first dashboard error aborts the run.
package generator
