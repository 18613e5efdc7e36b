package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name string `yaml:"name"`
	Port int    `yaml:"port"`
}

func (s *sample) Validate() error {
	if s.Port <= 0 {
		return os.ErrInvalid
	}
	return nil
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadExpandsEnvOverDefaults(t *testing.T) {
	t.Setenv("ITAM_TEST_NAME", "from-env")
	s := sample{Name: "default", Port: 1}
	if err := Load(writeFile(t, "name: ${ITAM_TEST_NAME}\n"), &s); err != nil {
		t.Fatal(err)
	}
	if s.Name != "from-env" || s.Port != 1 {
		t.Errorf("got %+v", s)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	s := sample{Port: 1}
	err := Load(writeFile(t, "nmae: typo\n"), &s)
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("err = %v", err)
	}
}

func TestLoadValidates(t *testing.T) {
	s := sample{}
	if err := Load(writeFile(t, "port: 0\n"), &s); err == nil {
		t.Error("invalid config accepted")
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Name: "default", Port: 8}
	if err := LoadOptional(filepath.Join(t.TempDir(), "missing.yaml"), &s); err != nil {
		t.Fatalf("missing file: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("defaults changed: %+v", s)
	}
	if err := LoadOptional(writeFile(t, ""), &s); err != nil {
		t.Errorf("empty file: %v", err)
	}
}
