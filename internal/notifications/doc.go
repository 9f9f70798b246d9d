// Package notifications delivers batch events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Batch start, batch completion, and error pushes can be toggled
// individually.
//
// Extend this package if you need alternative transports; workflow code
// depends only on the Service interface.
package notifications
