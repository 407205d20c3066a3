package config

import (
	"encoding/json"
	"os"

	"github.com/manishrnl/authservice/internal/flagx"
	"github.com/manishrnl/authservice/internal/timex"
)

// JSONConfig is the DTO for reading a JSON configuration file. It uses
// timex.Duration so lifetimes can be written either as strings ("15m",
// "720h") or as integer nanoseconds. After unmarshalling, non-zero fields
// are copied into the runtime Config.
type JSONConfig struct {
	EndpointAddrHTTP             string         `json:"endpoint_addr_http"`
	DatabaseDSN                  string         `json:"database_dsn"`
	RedisAddr                    string         `json:"redis_addr"`
	TokenStoreBackend            string         `json:"token_store_backend"`
	SecretKey                    string         `json:"secret_key"`
	AccessTokenValidityDuration  timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration timex.Duration `json:"refresh_token_validity_duration"`
}

// parseJSON overlays values from the JSON file named by the -c/-config flag
// onto config. When no flag is given, nothing is loaded. An unreadable or
// invalid file panics: a config file that was explicitly requested but
// cannot be honored must not be silently ignored.
func parseJSON(config *Config) {
	jsonConfigFile := flagx.JSONConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	c := &JSONConfig{}
	if err := json.Unmarshal(data, c); err != nil {
		panic(err)
	}

	if c.EndpointAddrHTTP != "" {
		config.EndpointAddrHTTP = c.EndpointAddrHTTP
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.RedisAddr != "" {
		config.RedisAddr = c.RedisAddr
	}
	if c.TokenStoreBackend != "" {
		config.TokenStoreBackend = c.TokenStoreBackend
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.AccessTokenValidityDuration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Std()
	}
	if c.RefreshTokenValidityDuration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Std()
	}
}
