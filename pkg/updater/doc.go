// Package updater resolves whether an update is available for an installed
// package and where it can be downloaded from.
//
// A Coordinator owns a set of adapters, each wrapping a Source that knows how
// to discover update data from one place (a GitHub release, a git remote, a
// JSON document). On Update the coordinator walks the adapters in ascending
// priority order and the first Source whose normalized Result is valid wins.
// When nothing qualifies the no-op terminal Result is returned, so Update
// never returns nil.
//
// Result normalizes the heterogeneous payloads sources produce: synonymous
// keys are folded onto a fixed set of canonical fields, values are coerced
// to their canonical types, and fields a source did not report are filled in
// from the installed package's own header.
package updater
