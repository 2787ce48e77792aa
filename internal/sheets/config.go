// Package sheets exports mileage reports to Google Sheets.
package sheets

import (
	"fmt"
	"os"
	"path/filepath"
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	TokenFile          string
	ServiceAccountPath string
	SpreadsheetID      string
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int
	EnableFormatting   bool
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		EnableFormatting: true,
		TimeZone:         "America/Los_Angeles",
		BatchSize:        1000,
	}
}

// LoadFromEnv loads credentials and spreadsheet settings from environment
// variables.
func (c *Config) LoadFromEnv() error {
	c.ClientID = os.Getenv("GOOGLE_SHEETS_CLIENT_ID")
	c.ClientSecret = os.Getenv("GOOGLE_SHEETS_CLIENT_SECRET")
	c.RefreshToken = os.Getenv("GOOGLE_SHEETS_REFRESH_TOKEN")
	c.TokenFile = os.Getenv("GOOGLE_SHEETS_TOKEN_FILE")

	// Service account path is the alternative to OAuth2
	c.ServiceAccountPath = os.Getenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH")

	c.SpreadsheetID = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_ID")
	c.SpreadsheetName = os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME")

	if c.ServiceAccountPath == "" && (c.ClientID == "" || c.ClientSecret == "") {
		return fmt.Errorf("missing Google Sheets authentication: provide either service account path or OAuth2 credentials")
	}

	// Without a refresh token the interactive flow saves its token here.
	if c.TokenFile == "" && c.RefreshToken == "" {
		if home, err := os.UserHomeDir(); err == nil {
			c.TokenFile = filepath.Join(home, ".config", "miles", "sheets-token.json")
		}
	}

	if c.SpreadsheetName == "" {
		c.SpreadsheetName = "Mileage Report"
	}

	return nil
}

// Validate checks if the configuration is valid. OAuth2 needs only client
// credentials; a missing refresh token is acquired interactively on the
// first run and kept in the token file after that.
func (c *Config) Validate() error {
	hasOAuth := c.ClientID != "" && c.ClientSecret != ""
	hasServiceAccount := c.ServiceAccountPath != ""

	if !hasOAuth && !hasServiceAccount {
		return fmt.Errorf("no authentication method configured")
	}
	if hasOAuth && hasServiceAccount {
		return fmt.Errorf("multiple authentication methods configured; use either OAuth2 or service account")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive")
	}
	return nil
}
