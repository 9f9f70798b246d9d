// Package ffmpeg assembles and executes ffmpeg invocations for the render
// pipeline: audio extraction for the caption upload, subtitle burn-in, the
// chroma-keyed banner overlay, and the drawtext source attribution.
//
// Filtergraph builders are declarative: each describes one filter and renders
// its ffmpeg filter string, so render commands can be assembled and inspected
// without running ffmpeg. A Runner executes the assembled argument list with
// a context.
package ffmpeg
