package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateCaptioner(); err != nil {
		return err
	}
	if err := c.validateBanner(); err != nil {
		return err
	}
	if err := c.validateSourceText(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.InputDir) == "" {
		return errors.New("paths.input_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.input_dir and paths.output_dir must differ")
	}
	return nil
}

func (c *Config) validateCaptioner() error {
	if c.Captioner.BaseURL == "" {
		return errors.New("captioner.base_url must be set")
	}
	if len(c.Captioner.APIKeys) == 0 && strings.TrimSpace(c.Captioner.KeyFile) == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/reelpress/config.toml"
		}
		return fmt.Errorf("captioner.api_keys or captioner.key_file is required. Set CAPTIONER_API_KEY env var or edit %s (create with 'reelpress config init')", defaultPath)
	}
	if _, err := language.Parse(c.Captioner.SourceLanguage); err != nil {
		return fmt.Errorf("captioner.source_language %q is not a valid language tag: %w", c.Captioner.SourceLanguage, err)
	}
	if _, err := language.Parse(c.Captioner.TargetLanguage); err != nil {
		return fmt.Errorf("captioner.target_language %q is not a valid language tag: %w", c.Captioner.TargetLanguage, err)
	}
	if c.Captioner.SourceLanguage == c.Captioner.TargetLanguage {
		return errors.New("captioner.source_language and captioner.target_language must differ")
	}
	return nil
}

func (c *Config) validateBanner() error {
	if !c.Banner.Enabled {
		return nil
	}
	if strings.TrimSpace(c.Banner.ClipPath) == "" {
		return errors.New("banner.clip_path must be set when banner.enabled is true")
	}
	if c.Banner.Similarity <= 0 || c.Banner.Similarity > 1 {
		return errors.New("banner.similarity must be between 0 and 1")
	}
	if c.Banner.Blend < 0 || c.Banner.Blend > 1 {
		return errors.New("banner.blend must be between 0 and 1")
	}
	if c.Banner.StartSeconds < 0 {
		return errors.New("banner.start_seconds must be >= 0")
	}
	if c.Banner.EndSeconds != 0 && c.Banner.EndSeconds <= c.Banner.StartSeconds {
		return errors.New("banner.end_seconds must be greater than banner.start_seconds")
	}
	return nil
}

func (c *Config) validateSourceText() error {
	if c.SourceText.Mode == SourceTextModeCustom && strings.TrimSpace(c.SourceText.Text) == "" {
		return errors.New("source_text.text must be set when source_text.mode is custom")
	}
	if c.SourceText.Opacity <= 0 || c.SourceText.Opacity > 1 {
		return errors.New("source_text.opacity must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"captioner.timeout_seconds":     c.Captioner.TimeoutSeconds,
		"captioner.max_retries":         c.Captioner.MaxRetries,
		"notifications.request_timeout": c.Notifications.RequestTimeout,
		"workflow.queue_poll_interval":  c.Workflow.QueuePollInterval,
		"workflow.max_attempts":         c.Workflow.MaxAttempts,
	})
}

func (c *Config) validateNotifications() error {
	if topic := strings.TrimSpace(c.Notifications.NtfyTopic); topic != "" {
		if !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
			return errors.New("notifications.ntfy_topic must be a full https URL including the topic")
		}
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for key, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", key)
		}
	}
	return nil
}
