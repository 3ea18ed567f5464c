package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"gopkg.in/yaml.v3"
)

// FileConfig is the optional YAML config file.
type FileConfig struct {
	Data       string `yaml:"data"`
	DB         string `yaml:"db"`
	Category   string `yaml:"category"`
	Search     string `yaml:"search"`
	Sort       string `yaml:"sort"`
	ExportPath string `yaml:"export_path"`
	LogLevel   string `yaml:"log_level"`
	LogFile    string `yaml:"log_file"`
}

// LoadFileConfig reads path. A missing file is only an error when required.
func LoadFileConfig(path string, required bool) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !required {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	var fc FileConfig
	if err := yaml.Unmarshal(b, &fc); err != nil {
		return FileConfig{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return fc, nil
}
