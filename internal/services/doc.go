// Package services defines shared utilities consumed by the submission steps
// and the external integrations they call.
//
// Key responsibilities:
//   - Context helpers that stamp the step name and a per-invocation
//     correlation identifier for logging.
//   - Error markers plus the Wrap helper that tag every failure with its kind
//     (construction, transport, protocol, upload) so the orchestrator can halt
//     the chain and the CLI can report what went wrong.
//
// External clients live in subpackages (webin for the drop-box endpoint).
package services
