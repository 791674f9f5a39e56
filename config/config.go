/*
Package config loads server configuration.

SOURCES (later wins):
  1. Built-in defaults
  2. .env file in the working directory (optional, via godotenv)
  3. Process environment
  4. Command-line flags

VARIABLES:
  PORT             HTTP port                                  (8080)
  DB_PATH          SQLite catalog store; empty disables it    ("")
  TEMPLATE_PATH    .docx contract template                    (contract_template.docx)
  CATALOG          active catalog: preset or stored name      (standard)
  CATALOG_FILE     JSON catalog file, overrides CATALOG       ("")
  DAY_POLICY       fixed | anchored                           (fixed)
  FIXED_DAY        billing day for the fixed policy           (10)
  RELOAD_SCHEDULE  cron spec for reloading the store catalog  (@every 5m)
  ALLOWED_ORIGINS  comma-separated CORS origins               (http://localhost:8080)
*/
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/warp/contract-engine/schedule"
)

type Config struct {
	Port           int
	DBPath         string
	TemplatePath   string
	Catalog        string
	CatalogFile    string
	DayPolicy      schedule.DayPolicy
	FixedDay       int
	ReloadSchedule string
	AllowedOrigins []string
}

func Default() Config {
	return Config{
		Port:           8080,
		TemplatePath:   "contract_template.docx",
		Catalog:        "standard",
		DayPolicy:      schedule.DayFixed,
		FixedDay:       schedule.DefaultFixedDay,
		ReloadSchedule: "@every 5m",
		AllowedOrigins: []string{"http://localhost:8080"},
	}
}

// Load reads .env (if present), the environment and then args as flags.
func Load(args []string) (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to read .env: %w", err)
	}
	cfg, err := FromEnv(os.Getenv)
	if err != nil {
		return Config{}, err
	}
	return cfg.ParseFlags(args)
}

// FromEnv applies environment overrides on top of Default.
func FromEnv(getenv func(string) string) (Config, error) {
	cfg := Default()

	if v := getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := getenv("FIXED_DAY"); v != "" {
		day, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("FIXED_DAY: %w", err)
		}
		cfg.FixedDay = day
	}
	if v := getenv("DAY_POLICY"); v != "" {
		p, err := schedule.ParseDayPolicy(v)
		if err != nil {
			return cfg, fmt.Errorf("DAY_POLICY: %w", err)
		}
		cfg.DayPolicy = p
	}

	setString(&cfg.DBPath, getenv("DB_PATH"))
	setString(&cfg.TemplatePath, getenv("TEMPLATE_PATH"))
	setString(&cfg.Catalog, getenv("CATALOG"))
	setString(&cfg.CatalogFile, getenv("CATALOG_FILE"))
	setString(&cfg.ReloadSchedule, getenv("RELOAD_SCHEDULE"))
	if v := getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.AllowedOrigins = splitList(v)
	}
	return cfg, nil
}

// ParseFlags overrides cfg with command-line flags.
func (cfg Config) ParseFlags(args []string) (Config, error) {
	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "SQLite catalog store path (empty = no store)")
	fs.StringVar(&cfg.TemplatePath, "template", cfg.TemplatePath, "contract .docx template")
	fs.StringVar(&cfg.Catalog, "catalog", cfg.Catalog, "active catalog name")
	fs.StringVar(&cfg.CatalogFile, "catalog-file", cfg.CatalogFile, "JSON catalog file")
	fs.IntVar(&cfg.FixedDay, "fixed-day", cfg.FixedDay, "billing day for the fixed day policy")
	fs.StringVar(&cfg.ReloadSchedule, "reload", cfg.ReloadSchedule, "cron spec for catalog reloads")
	dayPolicy := fs.String("day-policy", string(cfg.DayPolicy), "fixed or anchored")
	origins := fs.String("origins", strings.Join(cfg.AllowedOrigins, ","), "allowed CORS origins")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	p, err := schedule.ParseDayPolicy(*dayPolicy)
	if err != nil {
		return cfg, err
	}
	cfg.DayPolicy = p
	cfg.AllowedOrigins = splitList(*origins)
	return cfg, cfg.Validate()
}

// Policy returns the schedule policy described by the config.
func (cfg Config) Policy() schedule.Policy {
	if cfg.DayPolicy == schedule.DayAnchored {
		return schedule.AnchoredPolicy()
	}
	p := schedule.DefaultPolicy()
	p.FixedDay = cfg.FixedDay
	return p
}

func (cfg Config) Validate() error {
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d", cfg.Port)
	}
	if cfg.Catalog == "" && cfg.CatalogFile == "" {
		return errors.New("either a catalog name or a catalog file is required")
	}
	return cfg.Policy().Validate()
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
