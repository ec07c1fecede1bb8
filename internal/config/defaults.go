package config

const (
	defaultDataDir            = "~/.local/share/runout"
	defaultLogDir             = "~/.local/share/runout/logs"
	defaultDiscogsBaseURL     = "https://api.discogs.com"
	defaultDiscogsCurrency    = "USD"
	defaultDiscogsUserAgent   = "runout/dev"
	defaultHighConfidence     = 0.85
	defaultInclusionThreshold = 0.4
	defaultTieMargin          = 0.05
	defaultMaxSuggestions     = 5
	defaultOCRConfidence      = 0.85
	defaultUncertainThreshold = 0.9
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
		},
		Discogs: Discogs{
			BaseURL:   defaultDiscogsBaseURL,
			Currency:  defaultDiscogsCurrency,
			UserAgent: defaultDiscogsUserAgent,
		},
		Matching: Matching{
			HighConfidence:     defaultHighConfidence,
			InclusionThreshold: defaultInclusionThreshold,
			TieMargin:          defaultTieMargin,
			MaxSuggestions:     defaultMaxSuggestions,
		},
		OCR: OCR{
			DefaultConfidence:  defaultOCRConfidence,
			UncertainThreshold: defaultUncertainThreshold,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
