package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/mcoot/lifeboard/internal/model"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	JoinFile  string
	Output    string
	Timeout   time.Duration
	Verbose   bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("LIFEBOARD_SERVER", "http://localhost:8080"),
		JoinFile:  getEnvOrDefault("LIFEBOARD_JOIN_FILE", defaultJoinFile()),
		Output:    "text",
		Timeout:   10 * time.Second,
		Verbose:   false,
	}
}

// LoadJoined returns the passwords recorded by earlier joins, keyed by game
func (c *Config) LoadJoined() (map[model.GameID]string, error) {
	joined := make(map[model.GameID]string)

	data, err := os.ReadFile(c.JoinFile)
	if err != nil {
		if os.IsNotExist(err) {
			return joined, nil // No join file is fine
		}
		return nil, err
	}

	if err := json.Unmarshal(data, &joined); err != nil {
		return nil, err
	}
	return joined, nil
}

// SaveJoined records the password used to join a game
func (c *Config) SaveJoined(id model.GameID, password string) error {
	joined, err := c.LoadJoined()
	if err != nil {
		return err
	}
	joined[id] = password

	data, err := json.MarshalIndent(joined, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(c.JoinFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.JoinFile, data, 0600)
}

func defaultJoinFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".lifeboard/joined.json"
	}
	return filepath.Join(home, ".lifeboard", "joined.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
