package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/fairmanage/tenantportal/internal/flagx"
	"github.com/fairmanage/tenantportal/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "30m" and integer nanoseconds.
//
// This struct is an intermediate DTO (Data Transfer Object) used only for
// reading JSON configuration files. After unmarshalling, its fields are
// copied into the runtime Config struct which uses time.Duration.
type JsonConfig struct {
	DatabaseDSN                  string         `json:"database_dsn"`
	SecretKey                    string         `json:"secret_key"`
	SessionTokenValidityDuration timex.Duration `json:"session_token_validity_duration"`
	SetupTokenValidityDuration   timex.Duration `json:"setup_token_validity_duration"`
	MinPasswordLength            int            `json:"min_password_length"`
	ActiveGroupName              string         `json:"active_group_name"`
	FallbackGroupName            string         `json:"fallback_group_name"`
	MainPortalURL                string         `json:"main_portal_url"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The file path is taken from the -c or -config command-line flags; when
// neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
//
// The caller is expected to merge these values with defaults and
// command-line flags as part of the full configuration process.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.DatabaseDSN = c.DatabaseDSN
	config.SecretKey = c.SecretKey
	config.SessionTokenValidityDuration = time.Duration(c.SessionTokenValidityDuration.Duration)
	config.SetupTokenValidityDuration = time.Duration(c.SetupTokenValidityDuration.Duration)
	config.MinPasswordLength = c.MinPasswordLength
	config.ActiveGroupName = c.ActiveGroupName
	config.FallbackGroupName = c.FallbackGroupName
	config.MainPortalURL = c.MainPortalURL
}
