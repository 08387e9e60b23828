// Package preflight provides readiness checks for the splunkd endpoint and
// the project folder dashpub writes into.
//
// The CLI "dashpub check" command runs RunAll and renders the results. Checks
// never return errors; a failed check carries its reason in Detail.
package preflight
