package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Port  int    `yaml:"port"`
	valid bool
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return errors.New("port must be positive")
	}
	s.valid = true
	return nil
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "adr")
	p := writeConfig(t, "name: ${SAMPLE_NAME}\nport: 9000\n")

	var cfg sample
	if err := Load(p, &cfg); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Name != "adr" || cfg.Port != 9000 || !cfg.valid {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoad_ValidationError(t *testing.T) {
	p := writeConfig(t, "name: x\nport: 0\n")
	var cfg sample
	if err := Load(p, &cfg); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var cfg sample
	if err := Load(filepath.Join(t.TempDir(), "none.yaml"), &cfg); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadOptional(t *testing.T) {
	cfg := sample{Port: 8080}
	if err := LoadOptional(filepath.Join(t.TempDir(), "none.yaml"), &cfg); err != nil {
		t.Fatalf("LoadOptional missing: %v", err)
	}
	if cfg.Port != 8080 || !cfg.valid {
		t.Errorf("defaults not kept or not validated: %+v", cfg)
	}

	p := writeConfig(t, "port: 7000\n")
	if err := LoadOptional(p, &cfg); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if cfg.Port != 7000 {
		t.Errorf("port = %d, want 7000", cfg.Port)
	}

	bad := sample{}
	if err := LoadOptional("", &bad); err == nil {
		t.Error("expected validation error for invalid defaults")
	}
}
