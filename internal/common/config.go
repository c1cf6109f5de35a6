package common

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joseph-ayodele/uefiscdi/constants"
)

// Config holds all application configuration. It is built once and passed
// explicitly to the components that need it.
type Config struct {
	// Version is the release year used when a command does not name one.
	Version int `yaml:"version"`
	// Password opens protected spreadsheets.
	Password string                    `yaml:"password"`
	URLs     map[int]map[string]string `yaml:"urls"`
	Cache    CacheConfig               `yaml:"cache"`
	Download DownloadConfig            `yaml:"download"`
	PDF      PDFConfig                 `yaml:"pdf"`
	Server   ServerConfig              `yaml:"server"`
}

// CacheConfig holds cache-store configuration
type CacheConfig struct {
	Backend         string        `yaml:"backend"` // json | sqlite | postgres
	Dir             string        `yaml:"dir"`
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	DialTimeout     time.Duration `yaml:"dial_timeout"`
}

// DownloadConfig holds HTTP download configuration
type DownloadConfig struct {
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
	TempDir   string        `yaml:"temp_dir"`
}

// PDFConfig selects the positioned-text backend
type PDFConfig struct {
	Backend   string `yaml:"backend"` // auto | native | poppler
	Pdftotext string `yaml:"pdftotext"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string `yaml:"grpc_addr"`
}

// Cache backends.
const (
	BackendJSON     = "json"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
)

// defaultURLs mostly has the last years, since those are required for UEFISCDI competitions.
var defaultURLs = map[int]map[string]string{
	2024: {
		"aisq": "https://uefiscdi.gov.ro/resource-861733-JCR.iunie.2024.pdf",
		"jifq": "https://uefiscdi.gov.ro/resource-861733-JCR.iunie.2024.pdf",
		"ais":  "https://uefiscdi.gov.ro/resource-861731-AIS.JCR2023.iunie2024.xlsx",
		"ris":  "https://uefiscdi.gov.ro/resource-861773-RIS.2023iunie2024.xlsx",
		"rif":  "https://uefiscdi.gov.ro/resource-861735-FIR.2023iunie2024.xlsx",
	},
	2023: {
		"aisq": "https://uefiscdi.gov.ro/resource-866007-zone.iunie.2023.ais.pdf",
		"jifq": "https://uefiscdi.gov.ro/resource-866009-zone.iunie.2023.jif.pdf",
		"ais":  "https://uefiscdi.gov.ro/resource-863884-ais_2022.xlsx",
		"ris":  "https://uefiscdi.gov.ro/resource-863882-ris_2022.xlsx",
		"rif":  "https://uefiscdi.gov.ro/resource-863887-rif_2022.xlsx",
	},
	2022: {
		"aisq": "https://uefiscdi.gov.ro/resource-862159-zone.2022.ais.pdf",
		"jifq": "https://uefiscdi.gov.ro/resource-862151-zone.2022.if.pdf",
		"ais":  "https://uefiscdi.gov.ro/resource-862108-ais.2021.xlsx",
		"ris":  "https://uefiscdi.gov.ro/resource-862102-ris.2021.xlsx",
		"rif":  "https://uefiscdi.gov.ro/resource-862155-rif.2021.xlsx",
	},
	2021: {
		"aisq": "https://uefiscdi.gov.ro/resource-820923-ais2021.pdf",
		"jifq": "https://uefiscdi.gov.ro/resource-820921-if2021.pdf",
		"ais":  "https://uefiscdi.gov.ro/resource-820980-ais.2020.xlsx",
		"ris":  "https://uefiscdi.gov.ro/resource-820984-sri.2020.xlsx",
		"rif":  "https://uefiscdi.gov.ro/resource-820987-rif.2020.xlsx",
	},
	2020: {
		"aisq": "https://uefiscdi.gov.ro/resource-821878-clasament2020.ais.pdf",
		"jifq": "https://uefiscdi.gov.ro/resource-821873-clasament2020.if.pdf",
		"ais":  "https://uefiscdi.gov.ro/resource-821312-ais2019-iunie2020-.valori.cuartile.xlsx",
		"ris":  "https://uefiscdi.gov.ro/resource-829001-sri.2019.xlsx",
		"rif":  "https://uefiscdi.gov.ro/resource-829003-rif.2019.xlsx",
	},
	2019: {
		"aisq": "https://uefiscdi.gov.ro/resource-822841",
		"jifq": "https://uefiscdi.gov.ro/resource-822843",
		"ais":  "https://uefiscdi.gov.ro/resource-828068",
		"ris":  "https://uefiscdi.gov.ro/resource-828022",
		"rif":  "https://uefiscdi.gov.ro/resource-828027",
	},
}

// DefaultConfig returns the built-in defaults. It does not read the environment.
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "uefiscdi")
	if dir, err := os.UserConfigDir(); err == nil {
		cacheDir = filepath.Join(dir, "uefiscdi")
	}

	return &Config{
		Version:  2023,
		Password: "uefiscdi",
		URLs:     cloneURLs(defaultURLs),
		Cache: CacheConfig{
			Backend:         BackendJSON,
			Dir:             cacheDir,
			MaxConns:        4,
			MinConns:        1,
			MaxConnLifetime: 30 * time.Minute,
			MaxConnIdleTime: 5 * time.Minute,
			DialTimeout:     3 * time.Second,
		},
		Download: DownloadConfig{
			Timeout:   2 * time.Minute,
			UserAgent: "uefiscdi/1.0",
		},
		PDF: PDFConfig{
			Backend:   "auto",
			Pdftotext: "pdftotext",
		},
		Server: ServerConfig{
			GRPCAddr: ":8080",
		},
	}
}

// LoadConfig loads configuration from defaults, an optional YAML file and the
// environment, in that order of precedence (later wins). A .env file in the
// working directory is loaded first if present. An empty path falls back to
// UEFISCDI_CONFIG.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := DefaultConfig()

	if path == "" {
		path = os.Getenv("UEFISCDI_CONFIG")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %q: %w", path, err)
		}
		if err := cfg.mergeYAML(data); err != nil {
			return nil, fmt.Errorf("parse config %q: %w", path, err)
		}
	}

	cfg.Version = getEnvAsInt("UEFISCDI_VERSION", cfg.Version)
	cfg.Password = getEnv("UEFISCDI_PASSWORD", cfg.Password)
	cfg.Cache.Backend = getEnv("UEFISCDI_CACHE_BACKEND", cfg.Cache.Backend)
	cfg.Cache.Dir = getEnv("UEFISCDI_CACHE_DIR", cfg.Cache.Dir)
	cfg.Cache.DSN = getEnv("UEFISCDI_CACHE_DSN", cfg.Cache.DSN)
	cfg.Cache.MaxConns = getEnvAsInt32("UEFISCDI_CACHE_MAX_CONNS", cfg.Cache.MaxConns)
	cfg.Cache.DialTimeout = getEnvAsDuration("UEFISCDI_CACHE_DIAL_TIMEOUT", cfg.Cache.DialTimeout)
	cfg.Download.Timeout = getEnvAsDuration("UEFISCDI_DOWNLOAD_TIMEOUT", cfg.Download.Timeout)
	cfg.Download.TempDir = getEnv("UEFISCDI_DOWNLOAD_DIR", cfg.Download.TempDir)
	cfg.PDF.Backend = getEnv("UEFISCDI_PDF_BACKEND", cfg.PDF.Backend)
	cfg.PDF.Pdftotext = getEnv("UEFISCDI_PDFTOTEXT", cfg.PDF.Pdftotext)
	cfg.Server.GRPCAddr = getEnv("UEFISCDI_GRPC_ADDR", cfg.Server.GRPCAddr)

	// per-database overrides apply to the configured version, e.g. UEFISCDI_AISQ_URL
	for _, db := range constants.AsStringSlice() {
		if u := os.Getenv("UEFISCDI_" + strings.ToUpper(db) + "_URL"); u != "" {
			cfg.SetURL(db, cfg.Version, u)
		}
	}

	return cfg, nil
}

// mergeYAML overlays a YAML document on cfg. URL tables are merged per key so a
// file may override a single database without repeating the rest.
func (c *Config) mergeYAML(data []byte) error {
	defaults := cloneURLs(c.URLs)
	c.URLs = nil
	if err := yaml.Unmarshal(data, c); err != nil {
		return err
	}
	overrides := c.URLs
	c.URLs = defaults
	for year, m := range overrides {
		for db, u := range m {
			c.SetURL(db, year, u)
		}
	}
	return nil
}

// URL returns the configured source location for a database release.
func (c *Config) URL(database string, year int) (string, error) {
	if u := c.URLs[year][database]; u != "" {
		return u, nil
	}
	return "", ConfigError(database, year, ErrMissingURL)
}

func (c *Config) SetURL(database string, year int, url string) {
	if c.URLs == nil {
		c.URLs = make(map[int]map[string]string)
	}
	if c.URLs[year] == nil {
		c.URLs[year] = make(map[string]string)
	}
	c.URLs[year][database] = url
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("version", c.Version, Between(2000, 2100))
	v.Field("cache.backend", c.Cache.Backend, OneOf(BackendJSON, BackendSQLite, BackendPostgres))
	v.Field("pdf.backend", c.PDF.Backend, OneOf("auto", "native", "poppler"))
	switch c.Cache.Backend {
	case BackendJSON:
		v.Field("cache.dir", c.Cache.Dir, Required)
	case BackendSQLite, BackendPostgres:
		v.Field("cache.dsn", c.Cache.DSN, Required)
	}
	if err := v.Error(); err != nil {
		return NewAppError(CodeConfig, "invalid configuration", err)
	}
	return nil
}

func cloneURLs(in map[int]map[string]string) map[int]map[string]string {
	out := make(map[int]map[string]string, len(in))
	for year, m := range in {
		inner := make(map[string]string, len(m))
		for k, v := range m {
			inner[k] = v
		}
		out[year] = inner
	}
	return out
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
