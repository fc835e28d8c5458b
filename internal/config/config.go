// Package config loads gateway configuration from environment variables and
// an optional config file. Connection DSNs are assembled here and never
// logged or exposed to tool responses.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Env var names. DBASSIST_DB_URI wins over the discrete DB_* parts; the
// parts mirror what the original deployment used.
const (
	EnvURI           = "DBASSIST_DB_URI"
	EnvDialect       = "DB_DIALECT"
	EnvHost          = "DB_HOST"
	EnvPort          = "DB_PORT"
	EnvUser          = "DB_USER"
	EnvPassword      = "DB_PASSWORD"
	EnvName          = "DB_NAME"
	EnvSchema        = "DBASSIST_SCHEMA"
	EnvMaxStatements = "DBASSIST_MAX_STATEMENTS"
	EnvQueryTimeout  = "DBASSIST_QUERY_TIMEOUT"
)

// Config file path: ~/.dbassist-mcp/config.yaml
const (
	DefaultConfigDir = ".dbassist-mcp"
	ConfigFileName   = "config.yaml"
)

// Config holds the loaded gateway configuration. The DSN is stored but
// never included in logs or tool output.
type Config struct {
	Dialect       string
	Schema        string
	MaxStatements int
	QueryTimeout  time.Duration

	dsn string
}

type fileFormat struct {
	Dialect       string `yaml:"dialect"`
	URI           string `yaml:"uri"`
	Host          string `yaml:"host"`
	Port          string `yaml:"port"`
	User          string `yaml:"user"`
	Password      string `yaml:"password"`
	Database      string `yaml:"database"`
	Schema        string `yaml:"schema"`
	MaxStatements int    `yaml:"max_statements"`
	QueryTimeout  string `yaml:"query_timeout"`
}

// Load reads configuration from ~/.dbassist-mcp/config.yaml if present,
// then applies env overrides.
func Load() (*Config, error) {
	var f fileFormat
	path, err := configFilePath()
	if err != nil {
		return nil, fmt.Errorf("config path: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("config file %s: %w", path, err)
		}
	}
	return fromFileAndEnv(f)
}

func fromFileAndEnv(f fileFormat) (*Config, error) {
	get := func(env, fileVal string) string {
		if v := os.Getenv(env); v != "" {
			return v
		}
		return fileVal
	}

	c := &Config{
		Dialect:       get(EnvDialect, f.Dialect),
		Schema:        get(EnvSchema, f.Schema),
		MaxStatements: f.MaxStatements,
	}
	if c.Dialect == "" {
		c.Dialect = "postgres"
	}
	switch c.Dialect {
	case "postgres", "mysql", "sqlserver", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported dialect %q", c.Dialect)
	}

	if v := os.Getenv(EnvMaxStatements); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%s: expected a positive integer, got %q", EnvMaxStatements, v)
		}
		c.MaxStatements = n
	}
	if timeout := get(EnvQueryTimeout, f.QueryTimeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", EnvQueryTimeout, err)
		}
		c.QueryTimeout = d
	}

	if uri := get(EnvURI, f.URI); uri != "" {
		c.dsn = uri
		return c, nil
	}
	dsn, err := buildDSN(c.Dialect,
		get(EnvHost, f.Host), get(EnvPort, f.Port),
		get(EnvUser, f.User), get(EnvPassword, f.Password),
		get(EnvName, f.Database))
	if err != nil {
		return nil, err
	}
	c.dsn = dsn
	return c, nil
}

// buildDSN assembles a driver DSN from discrete parts. An empty host (or
// file path, for sqlite) means no database is configured, which is not an
// error: the server still starts and the admission layer keeps working.
func buildDSN(dialect, host, port, user, password, name string) (string, error) {
	if dialect == "sqlite" {
		return name, nil // path to the database file
	}
	if host == "" {
		return "", nil
	}
	switch dialect {
	case "postgres":
		if port == "" {
			port = "5432"
		}
		u := &url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(user, password),
			Host:   host + ":" + port,
			Path:   "/" + name,
		}
		return u.String(), nil
	case "mysql":
		if port == "" {
			port = "3306"
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s", user, password, host, port, name), nil
	case "sqlserver":
		if port == "" {
			port = "1433"
		}
		u := &url.URL{
			Scheme:   "sqlserver",
			User:     url.UserPassword(user, password),
			Host:     host + ":" + port,
			RawQuery: url.Values{"database": []string{name}}.Encode(),
		}
		return u.String(), nil
	}
	return "", fmt.Errorf("unsupported dialect %q", dialect)
}

func configFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	p := filepath.Join(home, DefaultConfigDir, ConfigFileName)
	_, err = os.Stat(p)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return p, nil
}

// DSN returns the connection string for the db layer. Never log the result.
// ok is false when no database is configured.
func (c *Config) DSN() (dsn string, ok bool) {
	return c.dsn, c.dsn != ""
}
