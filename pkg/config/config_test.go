package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func (s *sample) Validate() error {
	if s.Count < 0 {
		return errors.New("count must not be negative")
	}
	return nil
}

func writeFile(t *testing.T, data string) string {
	t.Helper()
	file := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(file, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}
	return file
}

func TestLoad_ExpandsEnv(t *testing.T) {
	t.Setenv("SAMPLE_NAME", "vault")
	file := writeFile(t, "name: ${SAMPLE_NAME}\ncount: 3\n")

	var s sample
	if err := Load(file, &s); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if s != (sample{Name: "vault", Count: 3}) {
		t.Errorf("got %+v", s)
	}
}

func TestLoad_Validates(t *testing.T) {
	file := writeFile(t, "count: -1\n")
	var s sample
	err := Load(file, &s)
	if err == nil || !strings.Contains(err.Error(), "validation failed") {
		t.Fatalf("err = %v, want validation failure", err)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	var s sample
	if err := Load(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("missing file should fail")
	}
}

func TestLoadOptional(t *testing.T) {
	s := sample{Name: "default", Count: 1}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s.Name != "default" {
		t.Errorf("defaults lost: %+v", s)
	}

	s = sample{Count: -5}
	if err := LoadOptional(filepath.Join(t.TempDir(), "nope.yaml"), &s); err == nil {
		t.Fatal("defaults must still be validated")
	}

	file := writeFile(t, "name: file\n")
	s = sample{Name: "default", Count: 1}
	if err := LoadOptional(file, &s); err != nil {
		t.Fatalf("LoadOptional: %v", err)
	}
	if s != (sample{Name: "file", Count: 1}) {
		t.Errorf("got %+v", s)
	}
}
