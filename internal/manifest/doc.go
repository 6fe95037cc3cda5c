// Package manifest renders Sample, Experiment and Run records plus their
// SUBMISSION action envelopes as drop-box XML documents.
//
// Documents are produced by encoding/xml from typed structs, never by string
// interpolation, so aliases, attribute values and filenames are always
// escaped. Every builder validates its record first and reports problems
// tagged with services.ErrConstruction; a construction failure means no
// document exists and no network call should follow.
package manifest
