package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"
)

// filterPathEscaper escapes characters that terminate or split filter
// arguments inside an ffmpeg filtergraph.
var filterPathEscaper = strings.NewReplacer(
	`\`, `\\`,
	`:`, `\:`,
	`'`, `\'`,
	`[`, `\[`,
	`]`, `\]`,
	`,`, `\,`,
	`;`, `\;`,
)

// drawTextEscaper escapes characters with special meaning inside a drawtext
// text value.
var drawTextEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\\\'`,
	`:`, `\:`,
	`%`, `\%`,
)

// SubtitleBurn describes a subtitles burn-in filter with styling overrides.
type SubtitleBurn struct {
	SubtitlePath   string
	FontName       string
	FontSize       int
	MarginVertical int
	PrimaryColor   string
	OutlineColor   string
}

// Filter renders the subtitles filter string.
func (s SubtitleBurn) Filter() string {
	var builder strings.Builder
	builder.WriteString("subtitles='")
	builder.WriteString(filterPathEscaper.Replace(s.SubtitlePath))
	builder.WriteString("'")

	var styles []string
	if name := strings.TrimSpace(s.FontName); name != "" {
		styles = append(styles, "FontName="+name)
	}
	if s.FontSize > 0 {
		styles = append(styles, "FontSize="+strconv.Itoa(s.FontSize))
	}
	if color := strings.TrimSpace(s.PrimaryColor); color != "" {
		styles = append(styles, "PrimaryColour="+color)
	}
	if color := strings.TrimSpace(s.OutlineColor); color != "" {
		styles = append(styles, "OutlineColour="+color)
	}
	if s.MarginVertical > 0 {
		styles = append(styles, "MarginV="+strconv.Itoa(s.MarginVertical))
	}
	if len(styles) > 0 {
		builder.WriteString(":force_style='")
		builder.WriteString(strings.Join(styles, ","))
		builder.WriteString("'")
	}
	return builder.String()
}

// SourceText describes a drawtext attribution overlay. The X and Y anchors
// are clamped to the frame so long attributions cannot render off screen.
type SourceText struct {
	Text     string
	FontFile string
	FontSize int
	Color    string
	Opacity  float64
	X        int
	Y        int
}

// Filter renders the drawtext filter string.
func (s SourceText) Filter() string {
	parts := []string{
		"text='" + drawTextEscaper.Replace(s.Text) + "'",
	}
	if file := strings.TrimSpace(s.FontFile); file != "" {
		parts = append(parts, "fontfile='"+filterPathEscaper.Replace(file)+"'")
	}
	size := s.FontSize
	if size <= 0 {
		size = 24
	}
	parts = append(parts, "fontsize="+strconv.Itoa(size))

	color := strings.TrimSpace(s.Color)
	if color == "" {
		color = "white"
	}
	opacity := s.Opacity
	if opacity <= 0 || opacity > 1 {
		opacity = 1
	}
	parts = append(parts, fmt.Sprintf("fontcolor=%s@%s", color, formatFloat(opacity)))
	parts = append(parts, fmt.Sprintf("x='min(max(%d,0),w-tw)'", s.X))
	parts = append(parts, fmt.Sprintf("y='min(max(%d,0),h-th)'", s.Y))
	return "drawtext=" + strings.Join(parts, ":")
}

// BannerOverlay describes a chroma-keyed clip composited over the main video
// for a time window.
type BannerOverlay struct {
	ClipPath     string
	Width        int
	X            int
	Y            int
	ChromaColor  string
	Similarity   float64
	Blend        float64
	StartSeconds float64
	EndSeconds   float64
	Loop         bool
}

// InputArgs returns the ffmpeg input arguments that load the banner clip.
func (b BannerOverlay) InputArgs() []string {
	var args []string
	if b.Loop {
		args = append(args, "-stream_loop", "-1")
	}
	return append(args, "-i", b.ClipPath)
}

// FilterChain renders the scale/chromakey/overlay chain. bannerInput names
// the banner's filtergraph input (for example "1:v"), mainInput the video to
// composite onto, and outputLabel the resulting stream label.
func (b BannerOverlay) FilterChain(mainInput, bannerInput, outputLabel string) string {
	width := b.Width
	if width <= 0 {
		width = 480
	}
	color := strings.TrimSpace(b.ChromaColor)
	if color == "" {
		color = "0x00FF00"
	}

	var builder strings.Builder
	fmt.Fprintf(&builder, "[%s]scale=%d:-1,chromakey=%s:%s:%s[banner];",
		bannerInput, width, color, formatFloat(b.Similarity), formatFloat(b.Blend))
	fmt.Fprintf(&builder, "[%s][banner]overlay=%d:%d", mainInput, b.X, b.Y)
	if enable := b.enableExpression(); enable != "" {
		builder.WriteString(":enable='" + enable + "'")
	}
	if b.Loop {
		// The looped banner never reaches EOF; end the overlay with the main
		// video instead of running forever.
		builder.WriteString(":shortest=1")
	}
	builder.WriteString("[" + outputLabel + "]")
	return builder.String()
}

func (b BannerOverlay) enableExpression() string {
	if b.EndSeconds > b.StartSeconds {
		return fmt.Sprintf("between(t,%s,%s)", formatFloat(b.StartSeconds), formatFloat(b.EndSeconds))
	}
	if b.StartSeconds > 0 {
		return fmt.Sprintf("gte(t,%s)", formatFloat(b.StartSeconds))
	}
	return ""
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
