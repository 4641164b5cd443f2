package model

// Config is the full runtime configuration, assembled from defaults, the
// config file, FWCAT_* environment variables, and CLI flags.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Parse  ParseConfig  `yaml:"parse" mapstructure:"parse"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
}

// StoreConfig configures the SQLite store.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// ParseConfig configures the document parser.
type ParseConfig struct {
	// MaxFileSize bounds input documents in bytes.
	MaxFileSize int64 `yaml:"max_file_size" mapstructure:"max_file_size"`
}

// LLMConfig configures the optional enhancement providers.
type LLMConfig struct {
	// Providers is the static fallback priority. Empty disables the LLM
	// path entirely.
	Providers []string `yaml:"providers" mapstructure:"providers"`

	Model     string `yaml:"model" mapstructure:"model"`
	APIKey    string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds per call
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`

	// SimilarityThreshold is the cosine similarity above which two
	// definitions count as semantically related.
	SimilarityThreshold float64 `yaml:"similarity_threshold" mapstructure:"similarity_threshold"`

	// RequestsPerSecond paces calls against hosted providers.
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`

	// CacheDir persists embedding vectors between runs. Empty keeps the
	// cache in memory only.
	CacheDir string `yaml:"cache_dir" mapstructure:"cache_dir"`
}

// OutputConfig configures report rendering.
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Path: "fwcat.db",
		},
		Parse: ParseConfig{
			MaxFileSize: 50 * 1024 * 1024,
		},
		LLM: LLMConfig{
			Providers:           nil, // disabled by default
			Timeout:             30,
			MaxTokens:           1000,
			SimilarityThreshold: 0.7,
			RequestsPerSecond:   2,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
