package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# TradeCoach Configuration

[database]
# SQLite database path
path = ""

[server]
# HTTP API listen address
addr = ":8090"
read_timeout = "15s"
write_timeout = "30s"

[scheduler]
# Background score recompute and challenge refresh loop
enabled = true
interval = "1h"

[sentiment]
# Redis cache populated by the sentiment collaborator (read-only here)
enabled = false
addr = "localhost:6379"
password = ""
db = 0

[narrative]
# LLM narrative generation; falls back to templated text when disabled
enabled = false
api_key = ""
model = "gpt-4o-mini"

[logging]
level = "info"
file = true
file_path = ""
max_size_mb = 100
max_backups = 7
max_age_days = 30

[ui]
color_enabled = true
`

// createTemplateConfig writes the default config.toml if missing.
func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if _, err := os.Stat(path); err == nil {
		return nil
	}

	if err := os.WriteFile(path, []byte(configTemplate), 0o600); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}
	return nil
}
