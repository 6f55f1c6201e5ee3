package translator

import "time"

// Result sources beyond the fallback ones
const (
	SourceMapping   = "mapping"
	SourceRecovered = "recovered"
)

// Options controls a single translation
type Options struct {
	// Chain is a built-in or custom chain id. Empty means the default chain.
	Chain string `json:"chain,omitempty"`
	// Ecosystem forces an adapter instead of detecting one
	Ecosystem string `json:"ecosystem,omitempty"`
	// FallbackMessage replaces every fallback when nothing matches
	FallbackMessage      string `json:"fallbackMessage,omitempty"`
	IncludeOriginalError bool   `json:"includeOriginalError,omitempty"`
	// CustomMappings are pattern -> message pairs tried before everything else
	CustomMappings map[string]string `json:"customMappings,omitempty"`

	Language           string `json:"language,omitempty"`
	AutoDetectLanguage bool   `json:"autoDetectLanguage,omitempty"`
	FallbackLanguage   string `json:"fallbackLanguage,omitempty"`
	// CustomLocales maps language -> key -> message for this call only
	CustomLocales map[string]map[string]string `json:"customLocales,omitempty"`
}

// Result is the outcome of a translation
type Result struct {
	Message string `json:"message"`
	// Translated is true only when a mapping produced Message
	Translated    bool   `json:"translated"`
	OriginalError any    `json:"originalError,omitempty"`
	Chain         string `json:"chain"`
}

// DetailedResult adds diagnostics to Result
type DetailedResult struct {
	Result

	ID             string    `json:"id"`
	Timestamp      time.Time `json:"timestamp"`
	Ecosystem      string    `json:"ecosystem"`
	ErrorType      string    `json:"errorType,omitempty"`
	Severity       string    `json:"severity"`
	Retryable      bool      `json:"retryable"`
	Language       string    `json:"language,omitempty"`
	MatchedPattern string    `json:"matchedPattern,omitempty"`
	Source         string    `json:"source"`
}
