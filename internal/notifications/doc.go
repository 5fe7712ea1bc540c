// Package notifications delivers batch lifecycle events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when no topic is set. Batch and error
// events can be gated independently so a noisy batch pipeline does not drown
// out failure alerts.
//
// All conversion code depends only on the Service interface, so alternative
// transports slot in without touching callers.
package notifications
