// Package captioner talks to the cloud caption service that transcribes and
// translates video audio into subtitle text.
//
// The Client wraps the generateContent HTTP API with bounded retries,
// exponential backoff honoring Retry-After, and an API key pool that rotates
// to the next credential on auth or quota failures. Caption generation is a
// two-step exchange: a generation request that uploads the audio track, then
// a format-correction request over the returned text.
//
// The text returned by the service is untrusted input; callers run it through
// the subtitles package before using it.
package captioner
