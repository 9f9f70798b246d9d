// Package workflow drives the batch pipeline over queued video items.
//
// A Runner walks the queue sequentially: pending items are transcribed
// (audio extraction, caption generation, subtitle normalization) and
// transcribed items are rendered (subtitle burn-in plus optional banner and
// source-text overlays). Stage failures are classified through the services
// error markers: validation and configuration problems park the item for
// manual review, transient failures leave it retryable until the attempt
// budget runs out.
//
// A file lock in the work directory ensures two batch runs never share a
// queue database.
package workflow
