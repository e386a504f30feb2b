// Package preflight provides readiness checks for the filesystem paths
// and catalog storage that the engine depends on.
//
// These checks run in two contexts:
//   - "update" and "watch" run RunAll before touching the catalog; a
//     failed check aborts the command instead of starting a doomed pass.
//   - The CLI "pinballux status" command renders individual check results
//     as health rows.
package preflight
