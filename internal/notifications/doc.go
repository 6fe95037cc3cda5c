// Package notifications delivers submission events via ntfy.
//
// The service publishes to the topic configured in config.toml and degrades
// to a no-op when no topic is set. Submission code depends only on the
// Service interface.
package notifications
