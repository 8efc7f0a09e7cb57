package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// Overlay decodes a YAML file onto cfg. Only keys present in the file are
// replaced, so env-derived values survive for everything the file omits.
func Overlay(cfg *Config, path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return overlayBytes(cfg, b)
}

func overlayBytes(cfg *Config, b []byte) error {
	if len(b) == 0 {
		return nil
	}
	return yaml.Unmarshal(b, cfg)
}
