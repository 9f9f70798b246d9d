// Package textutil provides filename sanitization and the source-attribution
// naming convention used for inbound clips.
//
// Source videos may embed where they came from in the file name itself, as a
// trailing "_source_<Name>" marker before the extension. SourceAttribution
// extracts that marker and DisplayTitle strips it to recover the clean title.
package textutil
