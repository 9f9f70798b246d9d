package captioner

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// generationPrompt builds the transcription instruction sent alongside the
// audio payload.
func (c *Client) generationPrompt() string {
	source := languageName(c.cfg.SourceLanguage)
	target := languageName(c.cfg.TargetLanguage)
	return fmt.Sprintf(`You are a professional subtitler. The attached audio is spoken %s.

Transcribe the speech and translate it into %s, then output subtitles in SRT format:
- Number every block sequentially starting from 1.
- Timestamps use the form HH:MM:SS,mmm --> HH:MM:SS,mmm and must match the audio.
- Keep each subtitle under two short lines suitable for a vertical video.
- Translate naturally; do not transliterate names unless no translation exists.
- Output only the SRT content with no commentary and no code fences.`, source, target)
}

// formatCorrectionPrompt builds the second-pass instruction that repairs
// structural problems without touching the translation itself.
func formatCorrectionPrompt(srtText string) string {
	var builder strings.Builder
	builder.WriteString(`The following text is meant to be an SRT subtitle file but may contain formatting mistakes.

Fix ONLY structural problems:
- Renumber blocks sequentially from 1.
- Ensure every timing line is exactly HH:MM:SS,mmm --> HH:MM:SS,mmm.
- Ensure a single blank line separates blocks.
- Remove any commentary, headers, or code fences.

Do not change the subtitle text or the timing values beyond fixing their format. Output only the corrected SRT content.

`)
	builder.WriteString(srtText)
	return builder.String()
}

// languageName turns a BCP 47 tag into its English display name, falling back
// to the raw tag when it cannot be parsed.
func languageName(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if trimmed == "" {
		return "the source language"
	}
	parsed, err := language.Parse(trimmed)
	if err != nil {
		return trimmed
	}
	name := display.English.Tags().Name(parsed)
	if name == "" {
		return trimmed
	}
	return name
}
