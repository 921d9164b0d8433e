package config

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/tildaslashalef/codecritic/internal/loggy"
)

//go:embed env.sample
var configFS embed.FS

// SetupConfigDirectory creates configDir and writes the sample .env into it.
// An existing .env is kept unless backupExisting is set, in which case it is
// copied to .env.<date>.bak before being replaced.
func SetupConfigDirectory(configDir string, backupExisting bool) (string, error) {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	target := filepath.Join(configDir, ".env")
	if err := extractEmbeddedFile("env.sample", target, backupExisting); err != nil {
		return "", err
	}
	return target, nil
}

func extractEmbeddedFile(embeddedPath, targetPath string, backupExisting bool) error {
	if _, err := os.Stat(targetPath); err == nil {
		if !backupExisting {
			loggy.Debug("Config file already present, leaving it alone", "path", targetPath)
			return nil
		}

		backupPath := fmt.Sprintf("%s.%s.bak", targetPath, time.Now().Format(time.DateOnly))
		existing, err := os.ReadFile(targetPath)
		if err != nil {
			return fmt.Errorf("failed to read existing file for backup: %w", err)
		}
		if err := os.WriteFile(backupPath, existing, 0600); err != nil {
			return fmt.Errorf("failed to write backup file: %w", err)
		}
		loggy.Info("Created backup of existing file", "original", targetPath, "backup", backupPath)
	}

	data, err := configFS.ReadFile(embeddedPath)
	if err != nil {
		return fmt.Errorf("reading embedded %s: %w", embeddedPath, err)
	}

	// 0600: the file holds the API key
	if err := os.WriteFile(targetPath, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", targetPath, err)
	}

	loggy.Info("Extracted embedded file", "source", embeddedPath, "target", targetPath)
	return nil
}

// SampleEnv returns the embedded sample configuration
func SampleEnv() string {
	data, _ := configFS.ReadFile("env.sample")
	return string(data)
}
