package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"gptproxy/payload"
)

var configKeys = []string{
	"openai_api_key",
	"openai_base_url",
	"model",
	"api_mode",
	"system_prompt",
	"listen_host",
	"port",
	"expose_debug",
	"debug",
	"max_request_bytes",
	"max_body_bytes",
	"upstream_timeout",
}

// LoadConfig builds the configuration from defaults, an optional YAML file,
// the environment and any bound flags, in increasing order of precedence.
func LoadConfig(configFile string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	v.SetDefault("openai_base_url", "https://api.openai.com/v1")
	v.SetDefault("model", "gpt-4.1-mini")
	v.SetDefault("api_mode", ModeResponses)
	v.SetDefault("listen_host", "0.0.0.0")
	v.SetDefault("port", 8080)
	v.SetDefault("expose_debug", true)
	v.SetDefault("debug", false)
	v.SetDefault("max_request_bytes", payload.MaxRequestBytes)
	v.SetDefault("max_body_bytes", int64(64*1024*1024))
	v.SetDefault("upstream_timeout", 120*time.Second)

	// Env vars are only visible to Unmarshal when the key is known to viper.
	for _, key := range configKeys {
		if err := v.BindEnv(key, strings.ToUpper(key)); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	if flags != nil {
		if f := flags.Lookup("debug"); f != nil {
			if err := v.BindPFlag("debug", f); err != nil {
				return nil, fmt.Errorf("error binding debug flag: %w", err)
			}
		}
	}

	var configuration Config
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := configuration.validate(); err != nil {
		return nil, err
	}
	return &configuration, nil
}

func (c *Config) validate() error {
	c.APIKey = strings.TrimSpace(c.APIKey)
	if c.APIKey == "" {
		return errors.New("OPENAI_API_KEY is required")
	}
	if c.Model == "" {
		return errors.New("model must not be empty")
	}
	c.APIMode = strings.ToLower(strings.TrimSpace(c.APIMode))
	if c.APIMode != ModeResponses && c.APIMode != ModeChat {
		return fmt.Errorf("api_mode must be %q or %q, got %q", ModeResponses, ModeChat, c.APIMode)
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.BaseURL == "" {
		return errors.New("openai_base_url must not be empty")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.MaxRequestBytes <= 0 {
		return fmt.Errorf("max_request_bytes must be positive, got %d", c.MaxRequestBytes)
	}
	if c.MaxBodyBytes <= 0 {
		return fmt.Errorf("max_body_bytes must be positive, got %d", c.MaxBodyBytes)
	}
	return nil
}

// ListenAddress is the host:port the server binds to.
func (c *Config) ListenAddress() string {
	return net.JoinHostPort(c.ListenHost, strconv.Itoa(c.Port))
}
