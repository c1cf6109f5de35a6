package common

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadConfigLayers(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uefiscdi.yaml")
	yaml := `
version: 2024
cache:
  backend: sqlite
  dsn: /tmp/cache.db
urls:
  2024:
    ris: https://example.org/ris.xlsx
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("UEFISCDI_CONFIG", "")
	t.Setenv("UEFISCDI_DOWNLOAD_TIMEOUT", "5s")
	t.Setenv("UEFISCDI_RIF_URL", "file:///data/rif.xlsx")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	if cfg.Version != 2024 || cfg.Cache.Backend != BackendSQLite || cfg.Download.Timeout != 5*time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	tests := []struct {
		db   string
		want string
	}{
		{"ris", "https://example.org/ris.xlsx"},
		{"rif", "file:///data/rif.xlsx"},
		{"aisq", "https://uefiscdi.gov.ro/resource-861733-JCR.iunie.2024.pdf"},
	}
	for _, tt := range tests {
		if got, err := cfg.URL(tt.db, 2024); err != nil || got != tt.want {
			t.Errorf("URL(%s) = %q, %v; want %q", tt.db, got, err, tt.want)
		}
	}
	// other years keep their defaults
	if _, err := cfg.URL("ris", 2023); err != nil {
		t.Errorf("URL(ris, 2023): %v", err)
	}
}

func TestConfigURLMissing(t *testing.T) {
	cfg := DefaultConfig()
	_, err := cfg.URL("ris", 1999)
	if !errors.Is(err, ErrMissingURL) || !IsConfigError(err) {
		t.Errorf("err = %v, want config error wrapping ErrMissingURL", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad backend", func(c *Config) { c.Cache.Backend = "redis" }, true},
		{"sqlite without dsn", func(c *Config) { c.Cache.Backend = BackendSQLite }, true},
		{"bad pdf backend", func(c *Config) { c.PDF.Backend = "ocr" }, true},
		{"bad version", func(c *Config) { c.Version = 23 }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !IsValidation(err) {
				t.Errorf("error does not wrap ErrValidation: %v", err)
			}
		})
	}
}
