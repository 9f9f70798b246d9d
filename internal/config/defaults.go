package config

const (
	defaultInputDir            = "~/reelpress/input"
	defaultOutputDir           = "~/reelpress/output"
	defaultWorkDir             = "~/.local/share/reelpress/work"
	defaultLogDir              = "~/.local/share/reelpress/logs"
	defaultReviewDir           = "~/reelpress/review"
	defaultLogRetentionDays    = 60
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
	defaultCaptionerBaseURL    = "https://generativelanguage.googleapis.com/v1beta"
	defaultCaptionerModel      = "gemini-2.5-flash"
	defaultCaptionerKeyFile    = "~/.config/reelpress/api_keys.json"
	defaultCaptionerTimeout    = 300
	defaultCaptionerRetries    = 3
	defaultSourceLanguage      = "zh"
	defaultTargetLanguage      = "en"
	defaultSubtitleFontName    = "Arial"
	defaultSubtitleFontSize    = 16
	defaultSubtitleMargin      = 60
	defaultSubtitlePrimary     = "&HFFFFFF&"
	defaultSubtitleOutline     = "&H000000&"
	defaultSubtitleMaxChars    = 30
	defaultBannerWidth         = 480
	defaultBannerChromaColor   = "0x00FF00"
	defaultBannerSimilarity    = 0.30
	defaultBannerBlend         = 0.10
	defaultSourceTextMode      = "filename"
	defaultSourceTextFontSize  = 28
	defaultSourceTextColor     = "white"
	defaultSourceTextOpacity   = 0.6
	defaultNotifyTimeout       = 10
	defaultQueuePollInterval   = 5
	defaultWorkflowMaxAttempts = 3
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			WorkDir:   defaultWorkDir,
			LogDir:    defaultLogDir,
			ReviewDir: defaultReviewDir,
		},
		Captioner: Captioner{
			BaseURL:        defaultCaptionerBaseURL,
			Model:          defaultCaptionerModel,
			KeyFile:        defaultCaptionerKeyFile,
			SourceLanguage: defaultSourceLanguage,
			TargetLanguage: defaultTargetLanguage,
			TimeoutSeconds: defaultCaptionerTimeout,
			MaxRetries:     defaultCaptionerRetries,
		},
		Subtitles: Subtitles{
			FontName:       defaultSubtitleFontName,
			FontSize:       defaultSubtitleFontSize,
			MarginVertical: defaultSubtitleMargin,
			PrimaryColor:   defaultSubtitlePrimary,
			OutlineColor:   defaultSubtitleOutline,
			MaxLineChars:   defaultSubtitleMaxChars,
		},
		Banner: Banner{
			Width:       defaultBannerWidth,
			ChromaColor: defaultBannerChromaColor,
			Similarity:  defaultBannerSimilarity,
			Blend:       defaultBannerBlend,
			Loop:        true,
		},
		SourceText: SourceText{
			Mode:     defaultSourceTextMode,
			FontSize: defaultSourceTextFontSize,
			Color:    defaultSourceTextColor,
			Opacity:  defaultSourceTextOpacity,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
			BatchStart:     true,
			BatchComplete:  true,
			Errors:         true,
		},
		Workflow: Workflow{
			QueuePollInterval: defaultQueuePollInterval,
			MaxAttempts:       defaultWorkflowMaxAttempts,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
