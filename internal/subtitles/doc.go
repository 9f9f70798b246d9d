// Package subtitles repairs loosely-formatted caption text into strictly
// valid SRT.
//
// Caption services return timestamp lines in many malformed shapes: dot
// separators, missing hour fields, frame-annotated times, truncated or
// overlong milliseconds, markdown fences around the whole payload, and
// blocks glued together without blank-line separators. Normalize applies an
// ordered set of repair rules over the full text until a pass produces no
// further changes, then validates the result and reports residual defects
// without ever failing: the caller always receives the most improved text
// the rules could produce.
//
// The package is purely functional over its string input. It performs no
// I/O, keeps no package-level mutable state, and is safe for concurrent use
// from multiple goroutines.
package subtitles
