package config

import "github.com/spf13/pflag"

type CliConfig struct {
	ConfigFile string
	Debug      bool
	EnvFile    string
}

// BindFlags registers the command line flags on fs.
func (c *CliConfig) BindFlags(fs *pflag.FlagSet) {
	fs.StringVar(&c.ConfigFile, "config", "", "Path to an optional YAML config file")
	fs.BoolVarP(&c.Debug, "debug", "d", false, "Enable debug mode")
	fs.StringVar(&c.EnvFile, "env-file", ".env", "Path to a .env file to load if present")
}
