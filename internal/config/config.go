package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"      validate:"required"`
	Task     TaskConfig     `mapstructure:"task"     validate:"required"`
	Upload   UploadConfig   `mapstructure:"upload"   validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// LLMConfig contains all model-backend integration settings.
type LLMConfig struct {
	// Provider selects the generator implementation ("ollama" or "gemini").
	Provider string `mapstructure:"provider" validate:"required,oneof=ollama gemini"`

	// OllamaURL is the base URL of the Ollama server (e.g. http://localhost:11434).
	OllamaURL string `mapstructure:"ollama_url" validate:"required_if=Provider ollama"`

	// ModelName is the model identifier passed on every generation request.
	ModelName string `mapstructure:"model_name" validate:"required"`

	// GeminiAPIKey authenticates against the Gemini API when Provider is "gemini".
	GeminiAPIKey string `mapstructure:"gemini_api_key" validate:"required_if=Provider gemini"`

	// RequestTimeoutSeconds bounds a single generation call. Generation latency
	// is unbounded, so this is deliberately long; the call already runs off the
	// request path.
	RequestTimeoutSeconds int `mapstructure:"request_timeout_seconds" validate:"required,gt=0"`
}

// TaskConfig contains background task runner settings.
type TaskConfig struct {
	WorkerCount int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize   int `mapstructure:"queue_size"   validate:"required,gt=0"`
}

// UploadConfig contains file upload settings.
type UploadConfig struct {
	Dir string `mapstructure:"dir" validate:"required"`

	// MaxFileSize is the per-file upload cap in bytes.
	MaxFileSize int64 `mapstructure:"max_file_size" validate:"required,gt=0"`

	// AllowedExtensions is a comma-separated allow-list (e.g. ".png,.pdf,.txt").
	AllowedExtensions string `mapstructure:"allowed_extensions" validate:"required"`
}
