package ffmpeg

import (
	"strings"
	"testing"
)

func TestSubtitleBurnFilter(t *testing.T) {
	filter := SubtitleBurn{
		SubtitlePath:   "/work/item 1/subs.srt",
		FontName:       "Arial",
		FontSize:       16,
		MarginVertical: 60,
		PrimaryColor:   "&HFFFFFF&",
		OutlineColor:   "&H000000&",
	}.Filter()

	if !strings.HasPrefix(filter, "subtitles='") {
		t.Fatalf("expected subtitles prefix, got %q", filter)
	}
	if !strings.Contains(filter, "force_style='FontName=Arial,FontSize=16,PrimaryColour=&HFFFFFF&,OutlineColour=&H000000&,MarginV=60'") {
		t.Fatalf("unexpected force_style in %q", filter)
	}
}

func TestSubtitleBurnFilterEscapesPath(t *testing.T) {
	filter := SubtitleBurn{SubtitlePath: "/work/it's:here.srt"}.Filter()
	if !strings.Contains(filter, `it\'s\:here.srt`) {
		t.Fatalf("expected escaped path, got %q", filter)
	}
	if strings.Contains(filter, "force_style") {
		t.Fatalf("expected no force_style without overrides, got %q", filter)
	}
}

func TestSourceTextFilterClampsAndStyles(t *testing.T) {
	filter := SourceText{
		Text:     "Source: Weibo",
		FontSize: 28,
		Color:    "white",
		Opacity:  0.6,
		X:        40,
		Y:        120,
	}.Filter()

	if !strings.HasPrefix(filter, "drawtext=") {
		t.Fatalf("expected drawtext prefix, got %q", filter)
	}
	if !strings.Contains(filter, `text='Source\: Weibo'`) {
		t.Fatalf("expected escaped text, got %q", filter)
	}
	if !strings.Contains(filter, "fontcolor=white@0.6") {
		t.Fatalf("expected fontcolor with opacity, got %q", filter)
	}
	if !strings.Contains(filter, "x='min(max(40,0),w-tw)'") || !strings.Contains(filter, "y='min(max(120,0),h-th)'") {
		t.Fatalf("expected clamped anchors, got %q", filter)
	}
}

func TestSourceTextFilterDefaults(t *testing.T) {
	filter := SourceText{Text: "hello"}.Filter()
	if !strings.Contains(filter, "fontsize=24") {
		t.Fatalf("expected default font size, got %q", filter)
	}
	if !strings.Contains(filter, "fontcolor=white@1") {
		t.Fatalf("expected opaque white default, got %q", filter)
	}
	if strings.Contains(filter, "fontfile") {
		t.Fatalf("expected no fontfile without one configured, got %q", filter)
	}
}

func TestBannerOverlayFilterChain(t *testing.T) {
	banner := BannerOverlay{
		ClipPath:     "/assets/banner.mp4",
		Width:        480,
		X:            0,
		Y:            200,
		ChromaColor:  "0x00FF00",
		Similarity:   0.3,
		Blend:        0.1,
		StartSeconds: 1,
		EndSeconds:   6,
		Loop:         true,
	}

	chain := banner.FilterChain("0:v", "1:v", "vout")
	if !strings.Contains(chain, "[1:v]scale=480:-1,chromakey=0x00FF00:0.3:0.1[banner]") {
		t.Fatalf("unexpected banner branch in %q", chain)
	}
	if !strings.Contains(chain, "[0:v][banner]overlay=0:200:enable='between(t,1,6)':shortest=1[vout]") {
		t.Fatalf("unexpected overlay in %q", chain)
	}

	args := banner.InputArgs()
	if len(args) != 4 || args[0] != "-stream_loop" || args[1] != "-1" || args[3] != "/assets/banner.mp4" {
		t.Fatalf("unexpected input args %v", args)
	}
}

func TestBannerOverlayEnableVariants(t *testing.T) {
	open := BannerOverlay{ClipPath: "b.mp4", StartSeconds: 3}
	if chain := open.FilterChain("0:v", "1:v", "v"); !strings.Contains(chain, "enable='gte(t,3)'") {
		t.Fatalf("expected open-ended window, got %q", chain)
	}

	always := BannerOverlay{ClipPath: "b.mp4"}
	if chain := always.FilterChain("0:v", "1:v", "v"); strings.Contains(chain, "enable=") {
		t.Fatalf("expected no enable expression, got %q", chain)
	}
	if args := always.InputArgs(); len(args) != 2 {
		t.Fatalf("expected plain input args without loop, got %v", args)
	}
}
