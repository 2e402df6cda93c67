package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds the process settings of the chaincode binary
type Config struct {
	// ServerAddress switches the binary to chaincode-as-a-service mode
	ServerAddress string `mapstructure:"chaincode_server_address"`
	ChaincodeID   string `mapstructure:"chaincode_id"`

	TLSDisabled bool   `mapstructure:"chaincode_tls_disabled"`
	TLSKey      string `mapstructure:"chaincode_tls_key"`
	TLSCert     string `mapstructure:"chaincode_tls_cert"`
	TLSClientCA string `mapstructure:"chaincode_tls_client_ca"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	MaxCommandLength  int `mapstructure:"max_command_length"`
	MaxCurrencyLength int `mapstructure:"max_currency_length"`

	// AllowedMSPs restricts invocations to these organizations when set
	AllowedMSPs []string `mapstructure:"allowed_msps"`
}

var keys = []string{
	"chaincode_server_address",
	"chaincode_id",
	"chaincode_tls_disabled",
	"chaincode_tls_key",
	"chaincode_tls_cert",
	"chaincode_tls_client_ca",
	"log_level",
	"log_format",
	"max_command_length",
	"max_currency_length",
	"allowed_msps",
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	v := viper.New()
	v.SetDefault("chaincode_tls_disabled", true)
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("max_command_length", 0)
	v.SetDefault("max_currency_length", 10)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Unmarshal only sees keys viper knows about
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", k, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate ensures the configuration is usable
func (c *Config) Validate() error {
	if c.ServerAddress != "" && c.ChaincodeID == "" {
		return errors.New("CHAINCODE_ID is required when CHAINCODE_SERVER_ADDRESS is set")
	}
	if c.ServerAddress != "" && !c.TLSDisabled && (c.TLSKey == "" || c.TLSCert == "") {
		return errors.New("CHAINCODE_TLS_KEY and CHAINCODE_TLS_CERT are required unless CHAINCODE_TLS_DISABLED")
	}
	if c.MaxCommandLength < 0 {
		return fmt.Errorf("MAX_COMMAND_LENGTH must be >= 0, got %d", c.MaxCommandLength)
	}
	if c.MaxCurrencyLength < 0 {
		return fmt.Errorf("MAX_CURRENCY_LENGTH must be >= 0, got %d", c.MaxCurrencyLength)
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.LogFormat)
	}
	return nil
}
