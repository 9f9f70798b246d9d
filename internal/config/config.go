package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration for batch processing.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	WorkDir   string `toml:"work_dir"`
	LogDir    string `toml:"log_dir"`
	ReviewDir string `toml:"review_dir"`
}

// Captioner contains configuration for the cloud caption service.
type Captioner struct {
	BaseURL        string   `toml:"base_url"`
	Model          string   `toml:"model"`
	APIKeys        []string `toml:"api_keys"`
	KeyFile        string   `toml:"key_file"`
	SourceLanguage string   `toml:"source_language"`
	TargetLanguage string   `toml:"target_language"`
	TimeoutSeconds int      `toml:"timeout_seconds"`
	MaxRetries     int      `toml:"max_retries"`
}

// Subtitles contains styling configuration for burned-in subtitles.
type Subtitles struct {
	FontName       string `toml:"font_name"`
	FontSize       int    `toml:"font_size"`
	MarginVertical int    `toml:"margin_vertical"`
	PrimaryColor   string `toml:"primary_color"`
	OutlineColor   string `toml:"outline_color"`
	MaxLineChars   int    `toml:"max_line_chars"`
}

// Banner contains configuration for the chroma-keyed banner overlay.
type Banner struct {
	Enabled      bool    `toml:"enabled"`
	ClipPath     string  `toml:"clip_path"`
	Width        int     `toml:"width"`
	X            int     `toml:"x"`
	Y            int     `toml:"y"`
	ChromaColor  string  `toml:"chroma_color"`
	Similarity   float64 `toml:"similarity"`
	Blend        float64 `toml:"blend"`
	StartSeconds float64 `toml:"start_seconds"`
	EndSeconds   float64 `toml:"end_seconds"`
	Loop         bool    `toml:"loop"`
}

// Source-attribution overlay modes.
const (
	SourceTextModeOff      = "off"
	SourceTextModeFilename = "filename"
	SourceTextModeCustom   = "custom"
)

// SourceText contains configuration for the source-attribution overlay.
type SourceText struct {
	// Mode selects where the attribution text comes from:
	// "off", "filename" (parsed from the input file name), or "custom".
	Mode     string  `toml:"mode"`
	Text     string  `toml:"text"`
	FontFile string  `toml:"font_file"`
	FontSize int     `toml:"font_size"`
	Color    string  `toml:"color"`
	Opacity  float64 `toml:"opacity"`
	X        int     `toml:"x"`
	Y        int     `toml:"y"`
}

// Notifications contains configuration for ntfy push notifications.
type Notifications struct {
	NtfyTopic      string `toml:"ntfy_topic"`
	RequestTimeout int    `toml:"request_timeout"`
	BatchStart     bool   `toml:"batch_start"`
	BatchComplete  bool   `toml:"batch_complete"`
	Errors         bool   `toml:"errors"`
}

// Workflow contains configuration for batch runner timing and retries.
type Workflow struct {
	QueuePollInterval int `toml:"queue_poll_interval"`
	MaxAttempts       int `toml:"max_attempts"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format        string `toml:"format"`
	Level         string `toml:"level"`
	RetentionDays int    `toml:"retention_days"`
}

// Config encapsulates all configuration values for reelpress.
//
// Configuration sections by subsystem:
//   - Paths: input/output/work directories
//   - Captioner: cloud caption service connection and language pair
//   - Subtitles: burned-in subtitle styling
//   - Banner: chroma-keyed banner overlay
//   - SourceText: source-attribution text overlay
//   - Notifications: ntfy push notification settings
//   - Workflow: batch runner polling and retry limits
//   - Logging: log format, level, and retention
type Config struct {
	Paths         Paths         `toml:"paths"`
	Captioner     Captioner     `toml:"captioner"`
	Subtitles     Subtitles     `toml:"subtitles"`
	Banner        Banner        `toml:"banner"`
	SourceText    SourceText    `toml:"source_text"`
	Notifications Notifications `toml:"notifications"`
	Workflow      Workflow      `toml:"workflow"`
	Logging       Logging       `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/reelpress/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/reelpress/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("reelpress.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for batch operation.
// OutputDir is created on a best-effort basis so the runner can start when
// external storage is temporarily unavailable.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.WorkDir, c.Paths.LogDir, c.Paths.ReviewDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	if strings.TrimSpace(c.Paths.OutputDir) != "" {
		// Best-effort to avoid failing config load when storage is offline.
		_ = os.MkdirAll(c.Paths.OutputDir, 0o755)
	}
	return nil
}

// QueueDatabasePath returns the SQLite queue database location inside the
// work directory.
func (c *Config) QueueDatabasePath() string {
	return filepath.Join(c.Paths.WorkDir, "queue.db")
}

// FFmpegBinary returns the ffmpeg executable name used for rendering.
func (c *Config) FFmpegBinary() string {
	return "ffmpeg"
}

// FFprobeBinary returns the ffprobe executable name used for media inspection.
func (c *Config) FFprobeBinary() string {
	return "ffprobe"
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	sample := sampleConfig

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sample), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
