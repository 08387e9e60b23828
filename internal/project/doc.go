// Package project owns the on-disk layout of the generated web project.
//
// All writes go through a billy.Filesystem rooted at the project folder, so
// the generator runs unchanged against the real disk (osfs) and in-memory
// trees in tests (memfs). Layout knows where every artifact lives:
//
//	public/assets/<category>/<namespace>/<file>
//	src/dashboards/<target>/definition.json
//	src/dashboards/<target>/index.<ext>
//	src/pages/api/data/_datasources.json
//	src/_dashboards.json
//
// Lock guards a project folder against concurrent generate runs.
package project
