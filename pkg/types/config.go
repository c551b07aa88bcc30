package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "insight-engine/0.1"). The content platform rejects anonymous
	// default agents.
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// HarvestConfig holds settings for the harvest stage.
type HarvestConfig struct {
	HTTPConfig `yaml:",inline"`

	// Limit is the maximum number of posts fetched per source (default 25).
	Limit int `json:"limit" yaml:"limit"`

	// RequestDelay is the minimum delay enforced between consecutive
	// platform requests (default 1s).
	RequestDelay time.Duration `json:"request_delay" yaml:"request_delay"`

	// CommentLimit is the maximum number of comments expanded per post
	// (default 50).
	CommentLimit int `json:"comment_limit" yaml:"comment_limit"`

	// CommentDepth is the maximum reply-nesting depth expanded (default 3).
	CommentDepth int `json:"comment_depth" yaml:"comment_depth"`

	// OutputDir is the directory for corpus files and the dedupe index
	// (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// AIConfig holds shared settings for stages that call a completion API.
type AIConfig struct {
	// Provider selects the completion backend: "claude" or "gemini".
	Provider string `json:"provider" yaml:"provider"`

	// Model is the completion model identifier.
	Model string `json:"model" yaml:"model"`

	// APIKey is the authentication key for the completion API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the number of retry attempts for transient API failures
	// (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// AnalysisConfig holds settings for the analysis pipeline.
type AnalysisConfig struct {
	AIConfig `yaml:",inline"`

	// MaxChunkChars bounds the size of each completion request's source
	// text (default 12000 characters).
	MaxChunkChars int `json:"max_chunk_chars" yaml:"max_chunk_chars"`

	// QuoteFidelity requires every claim in every stage to carry a
	// supporting quote and permalink or be labeled an unverified hypothesis.
	QuoteFidelity bool `json:"quote_fidelity" yaml:"quote_fidelity"`

	// OutputDir is the directory for generated report artifacts
	// (default "output").
	OutputDir string `json:"output_dir" yaml:"output_dir"`
}

// ArchiveConfig holds settings for the SQLite harvest archive.
type ArchiveConfig struct {
	// ArchiveDir is the directory containing the archive database
	// (default "output/archive").
	ArchiveDir string `json:"archive_dir" yaml:"archive_dir"`

	// MaxResults is the default maximum number of query results (default 20).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// PipelineConfig groups all stage configurations.
type PipelineConfig struct {
	Harvest  HarvestConfig  `json:"harvest" yaml:"harvest"`
	Analysis AnalysisConfig `json:"analysis" yaml:"analysis"`
	Archive  ArchiveConfig  `json:"archive" yaml:"archive"`
}
