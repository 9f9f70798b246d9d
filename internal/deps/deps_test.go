package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
}

func TestMissingRequired(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "FFprobe", Available: false},
		{Name: "Extra", Available: false, Optional: true},
	}

	missing := MissingRequired(statuses)
	if len(missing) != 1 {
		t.Fatalf("expected 1 missing requirement, got %d", len(missing))
	}
	if missing[0].Name != "FFprobe" {
		t.Fatalf("unexpected missing requirement: %s", missing[0].Name)
	}
}

func TestDefaultsCoverPipelineBinaries(t *testing.T) {
	names := make(map[string]bool)
	for _, req := range Defaults() {
		names[req.Command] = true
		if req.Optional {
			t.Fatalf("expected %s to be required", req.Name)
		}
	}
	for _, want := range []string{"ffmpeg", "ffprobe"} {
		if !names[want] {
			t.Fatalf("expected defaults to include %s", want)
		}
	}
}
