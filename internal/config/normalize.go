package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeCaptioner(); err != nil {
		return err
	}
	c.normalizeSubtitles()
	if err := c.normalizeBanner(); err != nil {
		return err
	}
	if err := c.normalizeSourceText(); err != nil {
		return err
	}
	c.normalizeWorkflow()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.ReviewDir, err = expandPath(c.Paths.ReviewDir); err != nil {
		return fmt.Errorf("paths.review_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeCaptioner() error {
	c.Captioner.BaseURL = strings.TrimSpace(c.Captioner.BaseURL)
	if c.Captioner.BaseURL == "" {
		c.Captioner.BaseURL = defaultCaptionerBaseURL
	}
	c.Captioner.Model = strings.TrimSpace(c.Captioner.Model)
	if c.Captioner.Model == "" {
		c.Captioner.Model = defaultCaptionerModel
	}
	keys := make([]string, 0, len(c.Captioner.APIKeys))
	seen := make(map[string]struct{}, len(c.Captioner.APIKeys))
	for _, key := range c.Captioner.APIKeys {
		trimmed := strings.TrimSpace(key)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		keys = append(keys, trimmed)
	}
	if len(keys) == 0 {
		if value, ok := os.LookupEnv("CAPTIONER_API_KEY"); ok && strings.TrimSpace(value) != "" {
			keys = append(keys, strings.TrimSpace(value))
		} else if value, ok := os.LookupEnv("GEMINI_API_KEY"); ok && strings.TrimSpace(value) != "" {
			keys = append(keys, strings.TrimSpace(value))
		}
	}
	c.Captioner.APIKeys = keys
	if strings.TrimSpace(c.Captioner.KeyFile) != "" {
		var err error
		if c.Captioner.KeyFile, err = expandPath(c.Captioner.KeyFile); err != nil {
			return fmt.Errorf("captioner.key_file: %w", err)
		}
	}
	c.Captioner.SourceLanguage = strings.ToLower(strings.TrimSpace(c.Captioner.SourceLanguage))
	if c.Captioner.SourceLanguage == "" {
		c.Captioner.SourceLanguage = defaultSourceLanguage
	}
	c.Captioner.TargetLanguage = strings.ToLower(strings.TrimSpace(c.Captioner.TargetLanguage))
	if c.Captioner.TargetLanguage == "" {
		c.Captioner.TargetLanguage = defaultTargetLanguage
	}
	if c.Captioner.TimeoutSeconds <= 0 {
		c.Captioner.TimeoutSeconds = defaultCaptionerTimeout
	}
	if c.Captioner.MaxRetries <= 0 {
		c.Captioner.MaxRetries = defaultCaptionerRetries
	}
	return nil
}

func (c *Config) normalizeSubtitles() {
	c.Subtitles.FontName = strings.TrimSpace(c.Subtitles.FontName)
	if c.Subtitles.FontName == "" {
		c.Subtitles.FontName = defaultSubtitleFontName
	}
	if c.Subtitles.FontSize <= 0 {
		c.Subtitles.FontSize = defaultSubtitleFontSize
	}
	if c.Subtitles.MarginVertical < 0 {
		c.Subtitles.MarginVertical = defaultSubtitleMargin
	}
	c.Subtitles.PrimaryColor = strings.TrimSpace(c.Subtitles.PrimaryColor)
	if c.Subtitles.PrimaryColor == "" {
		c.Subtitles.PrimaryColor = defaultSubtitlePrimary
	}
	c.Subtitles.OutlineColor = strings.TrimSpace(c.Subtitles.OutlineColor)
	if c.Subtitles.OutlineColor == "" {
		c.Subtitles.OutlineColor = defaultSubtitleOutline
	}
	if c.Subtitles.MaxLineChars <= 0 {
		c.Subtitles.MaxLineChars = defaultSubtitleMaxChars
	}
}

func (c *Config) normalizeBanner() error {
	if strings.TrimSpace(c.Banner.ClipPath) != "" {
		var err error
		if c.Banner.ClipPath, err = expandPath(c.Banner.ClipPath); err != nil {
			return fmt.Errorf("banner.clip_path: %w", err)
		}
	}
	if c.Banner.Width <= 0 {
		c.Banner.Width = defaultBannerWidth
	}
	c.Banner.ChromaColor = strings.TrimSpace(c.Banner.ChromaColor)
	if c.Banner.ChromaColor == "" {
		c.Banner.ChromaColor = defaultBannerChromaColor
	}
	if c.Banner.Similarity <= 0 {
		c.Banner.Similarity = defaultBannerSimilarity
	}
	if c.Banner.Blend < 0 {
		c.Banner.Blend = defaultBannerBlend
	}
	return nil
}

func (c *Config) normalizeSourceText() error {
	c.SourceText.Mode = strings.ToLower(strings.TrimSpace(c.SourceText.Mode))
	switch c.SourceText.Mode {
	case "":
		c.SourceText.Mode = defaultSourceTextMode
	case SourceTextModeOff, SourceTextModeFilename, SourceTextModeCustom:
	default:
		return fmt.Errorf("source_text.mode must be off, filename, or custom (got %q)", c.SourceText.Mode)
	}
	if strings.TrimSpace(c.SourceText.FontFile) != "" {
		var err error
		if c.SourceText.FontFile, err = expandPath(c.SourceText.FontFile); err != nil {
			return fmt.Errorf("source_text.font_file: %w", err)
		}
	}
	if c.SourceText.FontSize <= 0 {
		c.SourceText.FontSize = defaultSourceTextFontSize
	}
	c.SourceText.Color = strings.TrimSpace(c.SourceText.Color)
	if c.SourceText.Color == "" {
		c.SourceText.Color = defaultSourceTextColor
	}
	if c.SourceText.Opacity <= 0 || c.SourceText.Opacity > 1 {
		c.SourceText.Opacity = defaultSourceTextOpacity
	}
	return nil
}

func (c *Config) normalizeWorkflow() {
	if c.Workflow.QueuePollInterval <= 0 {
		c.Workflow.QueuePollInterval = defaultQueuePollInterval
	}
	if c.Workflow.MaxAttempts <= 0 {
		c.Workflow.MaxAttempts = defaultWorkflowMaxAttempts
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	if c.Logging.RetentionDays < 0 {
		c.Logging.RetentionDays = 0
	}
}
