package core

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config contains all of the configuration options available to the jeux
// server components.
type Config struct {
	// Hostname or IP address on which the server will listen for connections.
	Hostname string `mapstructure:"hostname"`
	// Port on which the server will accept Tic-Tac-Toe client connections.
	Port int `mapstructure:"port"`
	// Maximum number of concurrent client sessions the server will allow.
	MaxConnections int `mapstructure:"max_connections"`
	// Full path to file to which logs will be written. Blank will write to stderr.
	LogFilePath string `mapstructure:"log_file_path"`
	// Minimum level of a log required to be written. Options: debug, info, warn, error
	LogLevel string `mapstructure:"log_level"`

	Debugging struct {
		// Enable extra info-providing mechanisms for the server.
		PprofEnabled bool `mapstructure:"pprof_enabled"`
		// Port on which a pprof server will be started if debug mode is enabled.
		PprofPort int `mapstructure:"pprof_port"`
		// Loaded from config but not read by any server component: packets
		// are not logged, whatever its value.
		PacketLoggingEnabled bool `mapstructure:"packet_logging_enabled"`
	} `mapstructure:"debugging"`
}

const envVarPrefix = "JEUX"

// DefaultConfig returns a Config populated with the values the server falls
// back to when no config file is present and no flags override them.
func DefaultConfig() *Config {
	return &Config{
		Hostname:       "0.0.0.0",
		MaxConnections: 64,
		LogLevel:       "info",
	}
}

// LoadConfig initializes Viper with the contents of the config file under
// configPath, if one exists, layering it on top of DefaultConfig and any
// JEUX_-prefixed environment variables. A missing config file is not fatal:
// jeux is commonly run with nothing but the -p flag.
func LoadConfig(configPath string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	if configPath != "" {
		viper.AddConfigPath(configPath)
	}

	viper.SetEnvPrefix(envVarPrefix)
	viper.AutomaticEnv()

	def := DefaultConfig()
	viper.SetDefault("hostname", def.Hostname)
	viper.SetDefault("max_connections", def.MaxConnections)
	viper.SetDefault("log_level", def.LogLevel)

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Printf("error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	for _, k := range viper.AllKeys() {
		envVar := strings.ReplaceAll(strings.ToUpper(k), ".", "_")
		if err := viper.BindEnv(k, envVarPrefix+"_"+envVar); err != nil {
			fmt.Printf("error binding %s to %s\n", k, envVarPrefix+"_"+envVar)
			os.Exit(1)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		fmt.Printf("error unmarshaling config object: %v\n", err)
		os.Exit(1)
	}
	return config
}

// Address returns the listen address built from the Hostname and Port.
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Hostname, c.Port)
}
