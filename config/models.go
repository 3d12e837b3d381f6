package config

import "time"

const (
	ModeResponses = "responses"
	ModeChat      = "chat"
)

// Config holds the application configuration. It is built once at startup and never mutated.
type Config struct {
	APIKey          string        `mapstructure:"openai_api_key"`
	BaseURL         string        `mapstructure:"openai_base_url"`
	Model           string        `mapstructure:"model"`
	APIMode         string        `mapstructure:"api_mode"`
	SystemPrompt    string        `mapstructure:"system_prompt"`
	ListenHost      string        `mapstructure:"listen_host"`
	Port            int           `mapstructure:"port"`
	ExposeDebug     bool          `mapstructure:"expose_debug"`
	Debug           bool          `mapstructure:"debug"`
	MaxRequestBytes int           `mapstructure:"max_request_bytes"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	UpstreamTimeout time.Duration `mapstructure:"upstream_timeout"`
}
