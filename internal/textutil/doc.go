// Package textutil provides identifier and filename sanitization shared by the
// data-source extractor and the project layout.
package textutil
