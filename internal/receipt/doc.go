// Package receipt classifies drop-box responses.
//
// A receipt is Accepted when the archive answered 200 without ERROR
// elements, Duplicate when every sign points at a record that already
// exists under the same alias, and Failed otherwise. Duplicate detection
// relies on archive prose, so the recognised messages live in a versioned
// pattern table that can be updated and tested on its own.
package receipt
