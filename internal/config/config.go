package config

// Config holds all application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Store    StoreConfig    `mapstructure:"store"`
	Server   ServerConfig   `mapstructure:"server"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// LLMConfig configures the model provider used by the analysis stages.
type LLMConfig struct {
	Provider string `mapstructure:"provider"`
	APIKey   string `mapstructure:"api_key"`
	Model    string `mapstructure:"model"`
	Endpoint string `mapstructure:"endpoint"`
	Timeout  string `mapstructure:"timeout"`
}

// PipelineConfig configures the analysis pipeline.
type PipelineConfig struct {
	SummarizerEnabled bool   `mapstructure:"summarizer_enabled"`
	StageTimeout      string `mapstructure:"stage_timeout"`
}

// StoreConfig configures analysis persistence.
type StoreConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}
