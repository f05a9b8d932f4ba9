package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/chatledger/internal/flow"
	"github.com/Veraticus/chatledger/internal/llm"
	"github.com/Veraticus/chatledger/internal/sheets"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and
// environment variables. Precedence:
// 1. Viper configuration (from config file or CHATLEDGER_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	if v := viper.GetString("sheets.service_account_path"); v != "" {
		config.ServiceAccountPath = ExpandPath(v)
	}
	if v := viper.GetString("sheets.client_id"); v != "" {
		config.ClientID = v
	}
	if v := viper.GetString("sheets.client_secret"); v != "" {
		config.ClientSecret = v
	}
	if v := viper.GetString("sheets.refresh_token"); v != "" {
		config.RefreshToken = v
	}
	if v := viper.GetString("sheets.spreadsheet_id"); v != "" {
		config.SpreadsheetID = v
	}
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	}

	if config.ServiceAccountPath == "" {
		if v := os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"); v != "" {
			config.ServiceAccountPath = ExpandPath(v)
		}
	}
	if config.ClientID == "" {
		config.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	}
	if config.ClientSecret == "" {
		config.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	}
	if config.RefreshToken == "" {
		config.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	}
	if config.RefreshToken == "" {
		// Fall back to the token file written by `chatledger auth`.
		if token, err := sheets.LoadToken(tokenFilePath()); err == nil && token.RefreshToken != "" {
			config.RefreshToken = token.RefreshToken
		}
	}
	if config.SpreadsheetID == "" {
		config.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// tokenFilePath is where `chatledger auth` stores the OAuth2 token.
func tokenFilePath() string {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configDir = filepath.Join(home, ".config")
	}
	return filepath.Join(configDir, "chatledger", "sheets-token.json")
}

// LoadLLMConfig loads the category suggester configuration.
func LoadLLMConfig() llm.Config {
	config := llm.Config{
		Provider:    viper.GetString("llm.provider"),
		APIKey:      viper.GetString("llm.api_key"),
		Model:       viper.GetString("llm.model"),
		Temperature: viper.GetFloat64("llm.temperature"),
		MaxTokens:   viper.GetInt("llm.max_tokens"),
	}

	if config.APIKey == "" {
		switch config.Provider {
		case "openai":
			config.APIKey = os.Getenv("OPENAI_API_KEY")
		default:
			config.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}

	return config
}

// LoadEngineConfig loads the flow engine tunables.
func LoadEngineConfig() flow.Config {
	config := flow.DefaultConfig()

	if v := viper.GetInt("engine.max_name_length"); v > 0 {
		config.MaxNameLength = v
	}
	if v := viper.GetInt("engine.max_glyph_length"); v > 0 {
		config.MaxGlyphLength = v
	}
	if v := viper.GetDuration("engine.sweep_interval"); v > 0 {
		config.SweepInterval = v
	}

	return config
}

// SessionTimeout returns the configured edit-session inactivity timeout.
func SessionTimeout() time.Duration {
	if v := viper.GetDuration("engine.session_timeout"); v > 0 {
		return v
	}
	return 30 * time.Minute
}
