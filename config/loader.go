package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"

	"branchscript-editor/formats"
	_ "branchscript-editor/formats/branch"
)

// DefaultConfigFile è il file cercato quando non ne viene indicato uno
const DefaultConfigFile = "branchscript.yaml"

// Load carica la configurazione con la gerarchia default < file < ENV
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom carica la configurazione dal file indicato. Il file è
// opzionale: se manca valgono default ed ENV.
func LoadFrom(path string) (*Config, error) {
	cfg := Defaults()

	if err := loadFile(&cfg, path); err != nil {
		return nil, fmt.Errorf("config file: %w", err)
	}

	loadEnv(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, fmt.Errorf("config non valida: %w", err)
	}

	return &cfg, nil
}

// loadFile legge YAML o TOML in base all'estensione
func loadFile(cfg *Config, path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("lettura %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml", "":
		err = yaml.Unmarshal(data, cfg)
	default:
		return fmt.Errorf("estensione non supportata: %s", filepath.Ext(path))
	}
	if err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// loadEnv sovrascrive i valori con le variabili d'ambiente non vuote
func loadEnv(cfg *Config) {
	setInt(&cfg.Server.Port, "BRANCHSCRIPT_PORT")
	setList(&cfg.Server.CORSOrigins, "BRANCHSCRIPT_CORS_ORIGINS")
	setBool(&cfg.Server.Debug, "BRANCHSCRIPT_DEBUG")

	setString(&cfg.Analysis.Format, "BRANCHSCRIPT_FORMAT")
	setInt(&cfg.Analysis.MaxDiagnostics, "BRANCHSCRIPT_MAX_DIAGNOSTICS")
	setInt64(&cfg.Analysis.CacheEntries, "BRANCHSCRIPT_CACHE_ENTRIES")

	setBool(&cfg.Watcher.Enabled, "BRANCHSCRIPT_WATCH")
	setList(&cfg.Watcher.Paths, "BRANCHSCRIPT_WATCH_PATHS")
	setInt(&cfg.Watcher.DebounceMS, "BRANCHSCRIPT_DEBOUNCE_MS")

	setString(&cfg.Runner.OutputDir, "BRANCHSCRIPT_REPORT_DIR")
	setInt(&cfg.Runner.Concurrency, "BRANCHSCRIPT_CONCURRENCY")
}

// validate controlla i campi obbligatori e i limiti
func validate(cfg *Config) error {
	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		return fmt.Errorf("server.port fuori intervallo: %d", cfg.Server.Port)
	}
	if !formats.IsFormatRegistered(cfg.Analysis.Format) {
		return fmt.Errorf("analysis.format sconosciuto: %q (disponibili: %v)",
			cfg.Analysis.Format, formats.GetAvailableFormats())
	}
	if cfg.Analysis.CacheEntries < 0 {
		return errors.New("analysis.cache_entries deve essere >= 0")
	}
	if cfg.Watcher.DebounceMS < 0 {
		return errors.New("watcher.debounce_ms deve essere >= 0")
	}
	if cfg.Watcher.Enabled && len(cfg.Watcher.Paths) == 0 {
		return errors.New("watcher.paths è obbligatorio con il watcher attivo")
	}
	if cfg.Runner.Concurrency < 1 {
		return errors.New("runner.concurrency deve essere >= 1")
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setInt64(dst *int64, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = n
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

// setList accetta valori separati da virgola
func setList(dst *[]string, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	list := []string{}
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	*dst = list
}
