package cydterm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/tidwall/gjson"
)

func TestLoadSettingsMissingFile(t *testing.T) {
	got := LoadSettings(filepath.Join(t.TempDir(), "nope.json"))
	if got != DefaultSettings() {
		t.Errorf("got %+v, want defaults %+v", got, DefaultSettings())
	}
}

func TestSettingsRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	want := Settings{BaudRate: 9600, SchemeName: "white", LogEnabled: true}

	if err := SaveSettings(path, want); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if got := LoadSettings(path); got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLoadSettingsInvalidBaudFallsBack(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte(`{"baud_rate": 12345, "scheme": "white"}`), 0o644)

	got := LoadSettings(path)
	if got.BaudRate != DefaultBaudRate {
		t.Errorf("baud = %d, want default %d", got.BaudRate, DefaultBaudRate)
	}
	if got.SchemeName != "white" {
		t.Errorf("scheme = %q, want %q (valid fields still apply)", got.SchemeName, "white")
	}
}

func TestLoadSettingsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte("{not json"), 0o644)

	if got := LoadSettings(path); got != DefaultSettings() {
		t.Errorf("got %+v, want defaults", got)
	}
}

func TestSaveSettingsPreservesUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	os.WriteFile(path, []byte(`{"baud_rate": 9600, "future_field": "keep me"}`), 0o644)

	if err := SaveSettings(path, Settings{BaudRate: 115200, SchemeName: "green"}); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}

	data, _ := os.ReadFile(path)
	if got := gjson.GetBytes(data, "future_field").String(); got != "keep me" {
		t.Errorf("future_field = %q, want %q", got, "keep me")
	}
	if got := gjson.GetBytes(data, "baud_rate").Int(); got != 115200 {
		t.Errorf("baud_rate = %d, want 115200", got)
	}
}

func TestSaveSettingsCreatesDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "settings.json")
	if err := SaveSettings(path, DefaultSettings()); err != nil {
		t.Fatalf("SaveSettings: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("settings file missing: %v", err)
	}
}

func TestValidBaudRate(t *testing.T) {
	for _, rate := range []int{9600, 19200, 38400, 57600, 115200, 230400} {
		if !ValidBaudRate(rate) {
			t.Errorf("ValidBaudRate(%d) = false", rate)
		}
	}
	if ValidBaudRate(300) {
		t.Error("ValidBaudRate(300) = true, want false")
	}
}
