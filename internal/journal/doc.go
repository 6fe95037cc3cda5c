// Package journal keeps a local, append-only record of drop-box outcomes.
//
// The archive remains the system of record; the journal only lets an
// operator see what earlier invocations did. It also owns the run lock
// that keeps two submission chains from sharing one state directory.
package journal
