// Package submission drives the Sample, Experiment and Run chain against the
// drop-box.
//
// The Orchestrator submits each record under an ADD+HOLD envelope, lets the
// receipt classifier decide the outcome, releases accepted records and feeds
// each accession into the next record. Duplicates carry their recovered
// accession forward without a release. The first failure, including a
// failed release, ends the chain and the Outcome reports whatever accessions
// were obtained.
//
// Persistence is limited to an optional write-only journal; a rerun always
// starts again from the Sample and relies on duplicate detection.
package submission
