package cydterm

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Settings are the user choices that survive across sessions.
type Settings struct {
	BaudRate   int
	SchemeName string
	LogEnabled bool
}

// DefaultSettings returns the out-of-the-box configuration.
func DefaultSettings() Settings {
	return Settings{
		BaudRate:   DefaultBaudRate,
		SchemeName: "green",
		LogEnabled: false,
	}
}

// LoadSettings reads settings from a JSON file. A missing or malformed
// file yields the defaults; individually invalid fields fall back too.
func LoadSettings(path string) Settings {
	s := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		return s
	}
	root := gjson.ParseBytes(data)

	if baud := root.Get("baud_rate"); baud.Exists() && ValidBaudRate(int(baud.Int())) {
		s.BaudRate = int(baud.Int())
	}
	if name := root.Get("scheme"); name.Exists() && name.String() != "" {
		s.SchemeName = name.String()
	}
	if logging := root.Get("log_enabled"); logging.Exists() {
		s.LogEnabled = logging.Bool()
	}
	return s
}

// SaveSettings writes settings back to the JSON file, preserving any
// unknown fields an older or newer build may have stored there.
func SaveSettings(path string, s Settings) error {
	data, err := os.ReadFile(path)
	if err != nil || !gjson.ValidBytes(data) {
		data = []byte("{}")
	}

	for _, set := range []struct {
		key   string
		value interface{}
	}{
		{"baud_rate", s.BaudRate},
		{"scheme", s.SchemeName},
		{"log_enabled", s.LogEnabled},
	} {
		data, err = sjson.SetBytes(data, set.key, set.value)
		if err != nil {
			return fmt.Errorf("encode settings: %w", err)
		}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create settings dir: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
