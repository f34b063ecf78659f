package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	defaultServerAddress = "http://localhost:8080"
	defaultMongoDatabase = "filesbot"
	defaultSheetName     = "Sheet1"
)

// SheetsConfig points at the spreadsheet receiving the upload audit
type SheetsConfig struct {
	CredentialsFile string `json:"credentials_file" yaml:"credentials_file"`
	TokenFile       string `json:"token_file" yaml:"token_file"`
	SpreadsheetID   string `json:"spreadsheet_id" yaml:"spreadsheet_id"`
	SheetName       string `json:"sheet_name" yaml:"sheet_name"`
}

// ObjectStorageConfig holds the minio bucket downloads can be saved into
type ObjectStorageConfig struct {
	Endpoint  string `json:"endpoint" yaml:"endpoint"`
	AccessKey string `json:"access_key" yaml:"access_key"`
	SecretKey string `json:"secret_key" yaml:"secret_key"`
	Bucket    string `json:"bucket" yaml:"bucket"`
	UseSSL    bool   `json:"use_ssl" yaml:"use_ssl"`
}

// Config stores bot configuration
type Config struct {
	BotToken      string              `json:"bot_token" yaml:"bot_token"`
	ServerAddress string              `json:"server_address" yaml:"server_address"`
	MongoURI      string              `json:"mongo_uri" yaml:"mongo_uri"`
	MongoDatabase string              `json:"mongo_database" yaml:"mongo_database"`
	Sheets        SheetsConfig        `json:"sheets" yaml:"sheets"`
	ObjectStorage ObjectStorageConfig `json:"object_storage" yaml:"object_storage"`
	Admins        map[string]bool     `json:"admins" yaml:"admins"`

	// guards Admins once the bot is running
	mu sync.RWMutex
}

// LoadConfig loads configuration from a JSON or YAML file
func LoadConfig(path string) (*Config, error) {
	file, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config Config
	if isYAML(path) {
		if err := yaml.Unmarshal(file, &config); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	} else if err := json.Unmarshal(file, &config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	config.setDefaults()
	return &config, nil
}

// SaveConfig saves configuration to a JSON or YAML file
func SaveConfig(config *Config, path string) error {
	config.mu.RLock()
	defer config.mu.RUnlock()

	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(config)
	} else {
		data, err = json.MarshalIndent(config, "", "  ")
	}
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

func (c *Config) setDefaults() {
	c.ServerAddress = strings.TrimRight(strings.TrimSpace(c.ServerAddress), "/")
	if c.ServerAddress == "" {
		c.ServerAddress = defaultServerAddress
	}
	if c.MongoDatabase == "" {
		c.MongoDatabase = defaultMongoDatabase
	}
	if c.Sheets.SheetName == "" {
		c.Sheets.SheetName = defaultSheetName
	}
	if c.Sheets.TokenFile == "" {
		c.Sheets.TokenFile = "token.json"
	}

	// Initialize admins map if it's nil
	if c.Admins == nil {
		c.Admins = make(map[string]bool)
	}
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

// IsAdmin checks if the username is in the admins list
func (c *Config) IsAdmin(username string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.Admins[username]
}

// SetAdmin adds a username to the admin list
func (c *Config) SetAdmin(username string, isAdmin bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Admins[username] = isAdmin
}

// SheetsEnabled reports whether the upload audit sheet is configured
func (c *Config) SheetsEnabled() bool {
	return c.Sheets.CredentialsFile != "" && c.Sheets.SpreadsheetID != ""
}

// ObjectStorageEnabled reports whether a minio bucket is configured
func (c *Config) ObjectStorageEnabled() bool {
	return c.ObjectStorage.Endpoint != "" && c.ObjectStorage.Bucket != ""
}
