// Package preflight provides readiness checks run before a submission chain
// starts.
//
// These checks run in two contexts:
//   - "enasubmit submit" calls RunAll and refuses to start the chain when a
//     check fails, so no Sample is registered for a run that cannot finish.
//   - "enasubmit check" prints every result as a table, optionally adding
//     the network reachability checks.
package preflight
